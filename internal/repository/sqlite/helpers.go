package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

func tx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func encodeHistory(history []int) (string, error) {
	if history == nil {
		history = []int{}
	}
	b, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeHistory(raw string) ([]int, error) {
	if raw == "" {
		return []int{}, nil
	}
	var history []int
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, err
	}
	return history, nil
}

// utc normalizes times before they reach the driver so stored timestamps
// compare correctly as text.
func utc(t time.Time) time.Time {
	return t.UTC()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertHistory(ctx context.Context, db execer, h models.ReviewHistory) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO review_history (id, user_id, language, item_id, item_type, quality, response_ms, was_new, reviewed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, h.ID, h.UserID, h.Language, h.ItemID, string(h.ItemType), h.Quality, h.ResponseMs, h.WasNew, utc(h.ReviewedAt))
	return err
}
