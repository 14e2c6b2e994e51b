package api

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/services"
	"github.com/vytor/lingoflash/internal/srs"
)

type mockReviewService struct {
	mock.Mock
}

func (m *mockReviewService) SubmitReview(ctx context.Context, req services.ReviewRequest) (*services.ReviewResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ReviewResult), args.Error(1)
}

func (m *mockReviewService) SubmitResponse(ctx context.Context, req services.ResponseRequest) (*services.ReviewResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ReviewResult), args.Error(1)
}

func (m *mockReviewService) GetItem(ctx context.Context, key models.ItemKey) (*services.ItemStatus, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ItemStatus), args.Error(1)
}

func (m *mockReviewService) ListItems(ctx context.Context, req services.ListItemsRequest) (*services.ItemPage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ItemPage), args.Error(1)
}

func (m *mockReviewService) ResetItem(ctx context.Context, key models.ItemKey) (*services.ItemStatus, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ItemStatus), args.Error(1)
}

func (m *mockReviewService) RemoveItem(ctx context.Context, key models.ItemKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type mockQueueService struct {
	mock.Mock
}

func (m *mockQueueService) GetQueue(ctx context.Context, userID, language string, opts services.QueueOptions) (*srs.Queue, error) {
	args := m.Called(ctx, userID, language, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*srs.Queue), args.Error(1)
}

type mockStatsService struct {
	mock.Mock
}

func (m *mockStatsService) Summary(ctx context.Context, userID, language string) (*models.ReviewStats, error) {
	args := m.Called(ctx, userID, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewStats), args.Error(1)
}

type mockPinger struct {
	err error
}

func (p mockPinger) PingContext(context.Context) error { return p.err }
