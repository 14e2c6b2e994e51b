package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vytor/lingoflash/internal/logger"
)

type Config struct {
	Addr                 string
	DBPath               string
	LogLevel             string
	HistoryWorkerCount   int
	HistoryQueueSize     int
	// HistoryRetentionDays is how long review log entries are kept. Zero
	// keeps them forever.
	HistoryRetentionDays int
	DailyNewItemsLimit   int
	DailyReviewLimit     int
	ReviewThreshold      int
	ReviewRetryAttempts  int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                 envOr("ADDR", ":8080"),
		DBPath:               envOr("DB_PATH", "file:lingoflash.db"),
		LogLevel:             envOr("LOG_LEVEL", "INFO"),
		HistoryWorkerCount:   envIntOr("HISTORY_WORKER_COUNT", 2),
		HistoryQueueSize:     envIntOr("HISTORY_QUEUE_SIZE", 64),
		HistoryRetentionDays: envIntOr("HISTORY_RETENTION_DAYS", 365),
		DailyNewItemsLimit:   envIntOr("DAILY_NEW_ITEMS_LIMIT", 20),
		DailyReviewLimit:     envIntOr("DAILY_REVIEW_LIMIT", 0),
		ReviewThreshold:      envIntOr("REVIEW_THRESHOLD", 1),
		ReviewRetryAttempts:  envIntOr("REVIEW_RETRY_ATTEMPTS", 3),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if _, ok := logger.LookupLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if c.HistoryWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("HISTORY_WORKER_COUNT must be at least 1 (got %d)", c.HistoryWorkerCount))
	}
	if c.HistoryQueueSize < 1 {
		errs = append(errs, fmt.Errorf("HISTORY_QUEUE_SIZE must be at least 1 (got %d)", c.HistoryQueueSize))
	}
	if c.HistoryRetentionDays < 0 {
		errs = append(errs, fmt.Errorf("HISTORY_RETENTION_DAYS cannot be negative (got %d)", c.HistoryRetentionDays))
	}
	if c.DailyNewItemsLimit < -1 {
		errs = append(errs, fmt.Errorf("DAILY_NEW_ITEMS_LIMIT must be -1 (unlimited) or more (got %d)", c.DailyNewItemsLimit))
	}
	if c.DailyReviewLimit < 0 {
		errs = append(errs, fmt.Errorf("DAILY_REVIEW_LIMIT cannot be negative (got %d)", c.DailyReviewLimit))
	}
	if c.ReviewThreshold < 0 {
		errs = append(errs, fmt.Errorf("REVIEW_THRESHOLD cannot be negative (got %d)", c.ReviewThreshold))
	}
	if c.ReviewRetryAttempts < 1 {
		errs = append(errs, fmt.Errorf("REVIEW_RETRY_ATTEMPTS must be at least 1 (got %d)", c.ReviewRetryAttempts))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
