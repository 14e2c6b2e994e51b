package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lingoflash/internal/models"
)

// MockItemRepository is a mock implementation of repository.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Get(ctx context.Context, key models.ItemKey) (*models.StoredItem, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredItem), args.Error(1)
}

func (m *MockItemRepository) List(ctx context.Context, filter models.ItemFilter) ([]models.StoredItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StoredItem), args.Error(1)
}

func (m *MockItemRepository) Count(ctx context.Context, filter models.ItemFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockItemRepository) Insert(ctx context.Context, item models.StoredItem, entry *models.ReviewHistory) (int64, error) {
	args := m.Called(ctx, item, entry)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, item models.StoredItem, entry *models.ReviewHistory) error {
	args := m.Called(ctx, item, entry)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, key models.ItemKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
