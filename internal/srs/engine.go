package srs

import (
	"time"

	"github.com/vytor/lingoflash/internal/models"
)

// Engine binds the scheduling functions to a clock.
type Engine struct {
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine's current time in UTC.
func (e *Engine) Now() time.Time {
	return e.now().UTC()
}

func (e *Engine) Review(prev *models.ReviewableItem, quality int) (models.ReviewableItem, error) {
	return CalculateNextReview(prev, quality, e.Now())
}

func (e *Engine) IsDue(item *models.ReviewableItem) bool {
	return IsDueForReview(item, e.Now())
}

func (e *Engine) Priority(item *models.ReviewableItem) int {
	return ReviewPriority(item, e.Now())
}

func (e *Engine) Queue(items []models.ReviewableItem, cfg QueueConfig, usage models.DailyUsage) Queue {
	return BuildQueue(items, cfg, usage, e.Now())
}
