package repository

import (
	"context"
	"time"

	"github.com/vytor/lingoflash/internal/models"
)

// HistoryRepository reads and prunes the append-only review log. Entries
// are written by ItemRepository together with the schedule they produced.
type HistoryRepository interface {
	DailyUsage(ctx context.Context, userID, language string, since time.Time) (models.DailyUsage, error)
	ListForItem(ctx context.Context, key models.ItemKey, limit int) ([]models.ReviewHistory, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
