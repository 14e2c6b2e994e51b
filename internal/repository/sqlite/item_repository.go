package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
)

var itemColumns = []string{
	"id", "user_id", "language", "item_id", "item_type", "interval_days", "ease_factor",
	"repetitions", "quality_history", "last_reviewed_at", "due_at", "version",
	"created_at", "updated_at",
}

type itemRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewItemRepository creates a new ItemRepository implementation
func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (models.StoredItem, error) {
	var it models.StoredItem
	var itemType, history string
	err := row.Scan(&it.ID, &it.UserID, &it.Language, &it.ItemID, &itemType, &it.Interval, &it.EaseFactor,
		&it.Repetitions, &history, &it.LastReviewedAt, &it.DueAt, &it.Version, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return it, err
	}
	it.ItemType = models.ItemType(itemType)
	if it.QualityHistory, err = decodeHistory(history); err != nil {
		return it, fmt.Errorf("decode quality history of %s: %w", it.ItemID, err)
	}
	return it, nil
}

func applyItemFilter(query squirrel.SelectBuilder, filter models.ItemFilter) squirrel.SelectBuilder {
	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.Language != "" {
		query = query.Where(squirrel.Eq{"language": filter.Language})
	}
	if len(filter.ItemTypes) > 0 {
		types := make([]string, 0, len(filter.ItemTypes))
		for _, t := range filter.ItemTypes {
			types = append(types, string(t))
		}
		query = query.Where(squirrel.Eq{"item_type": types})
	}
	if filter.DueBefore != nil {
		query = query.Where(squirrel.LtOrEq{"due_at": utc(*filter.DueBefore)})
	}
	return query
}

func (r *itemRepository) Get(ctx context.Context, key models.ItemKey) (*models.StoredItem, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("getting item: user_id=%s, language=%s, item_id=%s", key.UserID, key.Language, key.ItemID)

	query, args, err := sqlBuilder.Select(itemColumns...).From("review_items").
		Where(squirrel.Eq{"user_id": key.UserID, "language": key.Language, "item_id": key.ItemID}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	it, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("item not found: item_id=%s", key.ItemID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get item: %v", err)
		return nil, err
	}
	log.Debug("item found: repetitions=%d, interval=%d", it.Repetitions, it.Interval)
	return &it, nil
}

func (r *itemRepository) List(ctx context.Context, filter models.ItemFilter) ([]models.StoredItem, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("listing items: user_id=%s, language=%s, types=%v", filter.UserID, filter.Language, filter.ItemTypes)

	query := applyItemFilter(sqlBuilder.Select(itemColumns...).From("review_items"), filter).
		OrderBy("due_at ASC", "item_id ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list items: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.StoredItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			log.Error("failed to scan item row: %v", err)
			return nil, err
		}
		items = append(items, it)
	}
	log.Debug("found %d items", len(items))
	return items, rows.Err()
}

func (r *itemRepository) Count(ctx context.Context, filter models.ItemFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")

	sqlStr, args, err := applyItemFilter(sqlBuilder.Select("COUNT(*)").From("review_items"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count items: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *itemRepository) Insert(ctx context.Context, it models.StoredItem, entry *models.ReviewHistory) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("inserting item: user_id=%s, item_id=%s", it.UserID, it.ItemID)

	history, err := encodeHistory(it.QualityHistory)
	if err != nil {
		return 0, err
	}
	now := utc(r.now())

	var id int64
	err = tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO review_items (user_id, language, item_id, item_type, interval_days, ease_factor, repetitions,
    quality_history, last_reviewed_at, due_at, version, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
`, it.UserID, it.Language, it.ItemID, string(it.ItemType), it.Interval, it.EaseFactor, it.Repetitions,
			history, utc(it.LastReviewedAt), utc(it.DueAt), now, now)
		if err != nil {
			if isUniqueViolation(err) {
				log.Warn("item already exists, concurrent first review: item_id=%s", it.ItemID)
				return repository.ErrVersionConflict
			}
			log.Error("failed to insert item: %v", err)
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			log.Error("failed to get item id: %v", err)
			return err
		}
		if entry != nil {
			if err := insertHistory(ctx, tx, *entry); err != nil {
				log.Error("failed to insert review history: %v", err)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Debug("item inserted: id=%d", id)
	return id, nil
}

func (r *itemRepository) Update(ctx context.Context, it models.StoredItem, entry *models.ReviewHistory) error {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("updating item: item_id=%s, version=%d, interval=%d, ease=%.2f", it.ItemID, it.Version, it.Interval, it.EaseFactor)

	history, err := encodeHistory(it.QualityHistory)
	if err != nil {
		return err
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE review_items
SET item_type = ?, interval_days = ?, ease_factor = ?, repetitions = ?, quality_history = ?,
    last_reviewed_at = ?, due_at = ?, version = version + 1, updated_at = ?
WHERE user_id = ? AND language = ? AND item_id = ? AND version = ?
`, string(it.ItemType), it.Interval, it.EaseFactor, it.Repetitions, history,
			utc(it.LastReviewedAt), utc(it.DueAt), utc(r.now()),
			it.UserID, it.Language, it.ItemID, it.Version)
		if err != nil {
			log.Error("failed to update item: %v", err)
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			log.Warn("stale write rejected: item_id=%s, version=%d", it.ItemID, it.Version)
			return repository.ErrVersionConflict
		}
		if entry != nil {
			if err := insertHistory(ctx, tx, *entry); err != nil {
				log.Error("failed to insert review history: %v", err)
				return err
			}
		}
		return nil
	})
}

func (r *itemRepository) Delete(ctx context.Context, key models.ItemKey) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("deleting item: user_id=%s, item_id=%s", key.UserID, key.ItemID)

	sqlStr, args, err := sqlBuilder.Delete("review_items").
		Where(squirrel.Eq{"user_id": key.UserID, "language": key.Language, "item_id": key.ItemID}).
		ToSql()
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to delete item: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
