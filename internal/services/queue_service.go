package services

import (
	"context"
	"time"

	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
	"github.com/vytor/lingoflash/internal/srs"
)

// MaxCandidates bounds how many unscheduled items one queue request may
// introduce.
const MaxCandidates = 100

// QueueOptions narrows and overrides a queue request. Nil limits fall back
// to the service defaults.
type QueueOptions struct {
	ItemTypes          []models.ItemType
	DailyNewItemsLimit *int
	DailyReviewLimit   *int
	// Candidates are items the learner has not started yet. Those without
	// a stored schedule join the queue as new items.
	Candidates []models.ReviewableItem
}

// QueueService builds review sessions
type QueueService interface {
	GetQueue(ctx context.Context, userID, language string, opts QueueOptions) (*srs.Queue, error)
}

type queueService struct {
	items    repository.ItemRepository
	history  repository.HistoryRepository
	engine   *srs.Engine
	defaults srs.QueueConfig
}

// NewQueueService creates a new QueueService
func NewQueueService(items repository.ItemRepository, history repository.HistoryRepository, engine *srs.Engine, defaults srs.QueueConfig) QueueService {
	return &queueService{
		items:    items,
		history:  history,
		engine:   engine,
		defaults: defaults,
	}
}

// startOfDay is the UTC midnight that daily caps are counted from.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *queueService) GetQueue(ctx context.Context, userID, language string, opts QueueOptions) (*srs.Queue, error) {
	log := logger.FromContext(ctx)
	log.Debug("building review queue: user_id=%s language=%s types=%v", userID, language, opts.ItemTypes)

	if userID == "" {
		return nil, errors.NewValidationError("user_id", "is required")
	}
	if language == "" {
		return nil, errors.NewValidationError("language", "is required")
	}
	for _, t := range opts.ItemTypes {
		if !t.Valid() {
			return nil, errors.NewValidationError("types", "unknown item type "+string(t))
		}
	}
	if len(opts.Candidates) > MaxCandidates {
		return nil, errors.NewValidationError("candidates", "too many candidates")
	}

	cfg := s.defaults
	if opts.DailyNewItemsLimit != nil {
		cfg.DailyNewItemsLimit = *opts.DailyNewItemsLimit
	}
	if opts.DailyReviewLimit != nil {
		if *opts.DailyReviewLimit < 0 {
			return nil, errors.NewValidationError("review_limit", "must not be negative")
		}
		cfg.DailyReviewLimit = *opts.DailyReviewLimit
	}

	now := s.engine.Now()
	stored, err := s.items.List(ctx, models.ItemFilter{
		UserID:    userID,
		Language:  language,
		ItemTypes: opts.ItemTypes,
		DueBefore: &now,
	})
	if err != nil {
		log.Error("failed to list due items: %v", err)
		return nil, errors.NewInternalError(err)
	}

	items := make([]models.ReviewableItem, 0, len(stored)+len(opts.Candidates))
	for _, it := range stored {
		items = append(items, it.ReviewableItem)
	}

	candidates, err := s.unscheduled(ctx, userID, language, opts)
	if err != nil {
		return nil, err
	}
	items = append(items, candidates...)

	usage, err := s.history.DailyUsage(ctx, userID, language, startOfDay(now))
	if err != nil {
		log.Error("failed to load daily usage: %v", err)
		return nil, errors.NewInternalError(err)
	}

	queue := s.engine.Queue(items, cfg, usage)
	log.Debug("queue built: due=%d new=%d reviews=%d deferred=%d",
		queue.TotalDue, queue.NewCount, queue.ReviewCount, queue.Deferred+queue.DeferredNew)
	return &queue, nil
}

// unscheduled returns the candidates that have no stored schedule yet,
// skipping duplicates and types the request filtered out.
func (s *queueService) unscheduled(ctx context.Context, userID, language string, opts QueueOptions) ([]models.ReviewableItem, error) {
	if len(opts.Candidates) == 0 {
		return nil, nil
	}

	allowed := make(map[models.ItemType]bool, len(opts.ItemTypes))
	for _, t := range opts.ItemTypes {
		allowed[t] = true
	}

	seen := make(map[string]bool, len(opts.Candidates))
	var out []models.ReviewableItem
	for _, c := range opts.Candidates {
		if c.ItemID == "" || seen[c.ItemID] {
			continue
		}
		seen[c.ItemID] = true
		if !c.ItemType.Valid() {
			return nil, errors.NewValidationError("candidates", "unknown item type "+string(c.ItemType))
		}
		if len(allowed) > 0 && !allowed[c.ItemType] {
			continue
		}

		existing, err := s.items.Get(ctx, models.ItemKey{UserID: userID, Language: language, ItemID: c.ItemID})
		if err != nil {
			logger.FromContext(ctx).Error("failed to look up candidate %s: %v", c.ItemID, err)
			return nil, errors.NewInternalError(err)
		}
		if existing != nil {
			continue
		}
		out = append(out, models.ReviewableItem{
			ItemID:     c.ItemID,
			ItemType:   c.ItemType,
			Interval:   srs.InitialInterval,
			EaseFactor: srs.DefaultEaseFactor,
		})
	}
	return out, nil
}
