package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
)

type historyRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository implementation
func NewHistoryRepository(db *sql.DB) repository.HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) DailyUsage(ctx context.Context, userID, language string, since time.Time) (models.DailyUsage, error) {
	log := logger.FromContext(ctx).WithPrefix("history_repo")
	log.Debug("computing daily usage: user_id=%s, language=%s, since=%s", userID, language, since.Format(time.RFC3339))

	sqlStr, args, err := sqlBuilder.
		Select("COUNT(*)", "COALESCE(SUM(CASE WHEN was_new THEN 1 ELSE 0 END), 0)").
		From("review_history").
		Where(squirrel.Eq{"user_id": userID, "language": language}).
		Where(squirrel.GtOrEq{"reviewed_at": utc(since)}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return models.DailyUsage{}, err
	}

	var usage models.DailyUsage
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&usage.Reviews, &usage.NewItems); err != nil {
		log.Error("failed to compute daily usage: %v", err)
		return models.DailyUsage{}, err
	}
	log.Debug("daily usage: reviews=%d, new_items=%d", usage.Reviews, usage.NewItems)
	return usage, nil
}

func (r *historyRepository) ListForItem(ctx context.Context, key models.ItemKey, limit int) ([]models.ReviewHistory, error) {
	log := logger.FromContext(ctx).WithPrefix("history_repo")

	query := sqlBuilder.
		Select("id", "user_id", "language", "item_id", "item_type", "quality", "response_ms", "was_new", "reviewed_at").
		From("review_history").
		Where(squirrel.Eq{"user_id": key.UserID, "language": key.Language, "item_id": key.ItemID}).
		OrderBy("reviewed_at DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query review history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.ReviewHistory
	for rows.Next() {
		var h models.ReviewHistory
		var itemType string
		if err := rows.Scan(&h.ID, &h.UserID, &h.Language, &h.ItemID, &itemType, &h.Quality, &h.ResponseMs, &h.WasNew, &h.ReviewedAt); err != nil {
			log.Error("failed to scan review history row: %v", err)
			return nil, err
		}
		h.ItemType = models.ItemType(itemType)
		out = append(out, h)
	}
	return out, rows.Err()
}

// DeleteBefore drops log entries reviewed before cutoff and reports how many
// were removed.
func (r *historyRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("history_repo")

	sqlStr, args, err := sqlBuilder.Delete("review_history").
		Where(squirrel.Lt{"reviewed_at": utc(cutoff)}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to prune review history: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Debug("pruned %d review history rows before %s", n, cutoff.Format(time.RFC3339))
	return n, nil
}
