package repository

import (
	"context"

	"github.com/vytor/lingoflash/internal/models"
)

// ItemRepository persists review scheduling state.
//
// Update is a compare-and-swap on StoredItem.Version: it fails with
// ErrVersionConflict when another writer got there first, so callers can
// re-read and recompute. Insert and Update append entry to the review log
// in the same transaction when it is non-nil, so the log never misses a
// stored review.
type ItemRepository interface {
	Get(ctx context.Context, key models.ItemKey) (*models.StoredItem, error)
	List(ctx context.Context, filter models.ItemFilter) ([]models.StoredItem, error)
	Count(ctx context.Context, filter models.ItemFilter) (int, error)
	Insert(ctx context.Context, item models.StoredItem, entry *models.ReviewHistory) (int64, error)
	Update(ctx context.Context, item models.StoredItem, entry *models.ReviewHistory) error
	Delete(ctx context.Context, key models.ItemKey) (bool, error)
}
