package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lingoflash/internal/models"
)

// MockHistoryRepository is a mock implementation of repository.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) DailyUsage(ctx context.Context, userID, language string, since time.Time) (models.DailyUsage, error) {
	args := m.Called(ctx, userID, language, since)
	return args.Get(0).(models.DailyUsage), args.Error(1)
}

func (m *MockHistoryRepository) ListForItem(ctx context.Context, key models.ItemKey, limit int) ([]models.ReviewHistory, error) {
	args := m.Called(ctx, key, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewHistory), args.Error(1)
}

func (m *MockHistoryRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
