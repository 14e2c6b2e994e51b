package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
	"github.com/vytor/lingoflash/internal/srs"
)

const (
	// recentHistoryLimit bounds the review log returned with an item.
	recentHistoryLimit = 10

	DefaultPageSize = 50
	MaxPageSize     = 200
)

// ReviewRequest is one graded review of an item.
type ReviewRequest struct {
	Key          models.ItemKey
	ItemType     models.ItemType
	Quality      int
	ResponseTime time.Duration
}

// ResponseRequest is a raw answer that still needs grading.
type ResponseRequest struct {
	Key          models.ItemKey
	ItemType     models.ItemType
	Correct      bool
	ResponseTime time.Duration
	Difficulty   string
}

// ReviewResult is the item's schedule after a review was applied.
type ReviewResult struct {
	Item     models.StoredItem `json:"item"`
	Quality  int               `json:"quality"`
	WasNew   bool              `json:"was_new"`
	Priority int               `json:"priority"`
	Mastery  srs.Mastery       `json:"mastery"`
}

// ItemStatus is an item's stored schedule plus its derived state at the
// time of the request.
type ItemStatus struct {
	Item     models.StoredItem      `json:"item"`
	Due      bool                   `json:"due"`
	Priority int                    `json:"priority"`
	Mastery  srs.Mastery            `json:"mastery"`
	Recent   []models.ReviewHistory `json:"recent"`
}

// ListItemsRequest selects one page of a user's items, ordered by due date.
type ListItemsRequest struct {
	UserID    string
	Language  string
	ItemTypes []models.ItemType
	DueOnly   bool
	Limit     int
	Offset    int
}

// ItemPage is one page of items plus the total matching the filter.
type ItemPage struct {
	Items  []ItemStatus
	Total  int
	Limit  int
	Offset int
}

// ReviewService applies reviews to stored items
type ReviewService interface {
	SubmitReview(ctx context.Context, req ReviewRequest) (*ReviewResult, error)
	SubmitResponse(ctx context.Context, req ResponseRequest) (*ReviewResult, error)
	GetItem(ctx context.Context, key models.ItemKey) (*ItemStatus, error)
	ListItems(ctx context.Context, req ListItemsRequest) (*ItemPage, error)
	ResetItem(ctx context.Context, key models.ItemKey) (*ItemStatus, error)
	RemoveItem(ctx context.Context, key models.ItemKey) error
}

type reviewService struct {
	items         repository.ItemRepository
	history       repository.HistoryRepository
	engine        *srs.Engine
	retryAttempts int
}

// NewReviewService creates a new ReviewService. retryAttempts is how many
// times a review is recomputed after losing a race with another writer.
func NewReviewService(
	items repository.ItemRepository,
	history repository.HistoryRepository,
	engine *srs.Engine,
	retryAttempts int,
) ReviewService {
	if retryAttempts <= 0 {
		retryAttempts = 1
	}
	return &reviewService{
		items:         items,
		history:       history,
		engine:        engine,
		retryAttempts: retryAttempts,
	}
}

func validateKey(key models.ItemKey) error {
	switch {
	case key.UserID == "":
		return errors.NewValidationError("user_id", "is required")
	case key.Language == "":
		return errors.NewValidationError("language", "is required")
	case key.ItemID == "":
		return errors.NewValidationError("item_id", "is required")
	}
	return nil
}

func (s *reviewService) SubmitReview(ctx context.Context, req ReviewRequest) (*ReviewResult, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"user_id":  req.Key.UserID,
		"language": req.Key.Language,
		"item_id":  req.Key.ItemID,
	})
	log.Debug("submitting review: quality=%d", req.Quality)

	if err := validateKey(req.Key); err != nil {
		return nil, err
	}
	if err := srs.ValidateQuality(req.Quality); err != nil {
		return nil, errors.NewValidationError("quality", "must be between 0 and 5")
	}
	if req.ItemType != "" && !req.ItemType.Valid() {
		return nil, errors.NewValidationError("item_type", "unknown item type "+string(req.ItemType))
	}

	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		result, err := s.applyReview(ctx, req)
		if err == nil {
			return result, nil
		}
		if !stderrors.Is(err, repository.ErrVersionConflict) {
			return nil, err
		}
		log.Warn("review lost a concurrent write (attempt %d/%d)", attempt, s.retryAttempts)
	}

	log.Error("review abandoned after %d conflicting attempts", s.retryAttempts)
	return nil, errors.NewConflictError("review item", req.Key.ItemID, repository.ErrVersionConflict)
}

// applyReview reads the current schedule, computes the next one and writes
// it back. It returns repository.ErrVersionConflict unwrapped when the write
// lost a race so the caller can retry.
func (s *reviewService) applyReview(ctx context.Context, req ReviewRequest) (*ReviewResult, error) {
	log := logger.FromContext(ctx)

	stored, err := s.items.Get(ctx, req.Key)
	if err != nil {
		log.Error("failed to load review item: %v", err)
		return nil, errors.NewInternalError(err)
	}

	var prev *models.ReviewableItem
	itemType := req.ItemType
	if stored != nil {
		prev = &stored.ReviewableItem
		if itemType != "" && itemType != stored.ItemType {
			return nil, errors.NewValidationError("item_type", "does not match stored item type "+string(stored.ItemType))
		}
		itemType = stored.ItemType
	} else if itemType == "" {
		return nil, errors.NewValidationError("item_type", "is required for an item's first review")
	}

	next, err := s.engine.Review(prev, req.Quality)
	if err != nil {
		return nil, errors.NewValidationError("quality", err.Error())
	}
	next.ItemID = req.Key.ItemID
	next.ItemType = itemType
	wasNew := prev == nil || prev.Repetitions == 0

	entry := &models.ReviewHistory{
		ID:         uuid.NewString(),
		UserID:     req.Key.UserID,
		Language:   req.Key.Language,
		ItemID:     req.Key.ItemID,
		ItemType:   itemType,
		Quality:    req.Quality,
		ResponseMs: req.ResponseTime.Milliseconds(),
		WasNew:     wasNew,
		ReviewedAt: next.LastReviewedAt,
	}

	var saved models.StoredItem
	if stored == nil {
		saved = models.StoredItem{
			UserID:         req.Key.UserID,
			Language:       req.Key.Language,
			ReviewableItem: next,
			Version:        1,
		}
		id, err := s.items.Insert(ctx, saved, entry)
		if err != nil {
			if stderrors.Is(err, repository.ErrVersionConflict) {
				return nil, err
			}
			log.Error("failed to insert review item: %v", err)
			return nil, errors.NewInternalError(err)
		}
		saved.ID = id
	} else {
		saved = *stored
		saved.ReviewableItem = next
		if err := s.items.Update(ctx, saved, entry); err != nil {
			if stderrors.Is(err, repository.ErrVersionConflict) {
				return nil, err
			}
			log.Error("failed to update review item: %v", err)
			return nil, errors.NewInternalError(err)
		}
		saved.Version++
	}

	log.Debug("scheduled item: interval=%d ease=%.2f reps=%d due=%s",
		next.Interval, next.EaseFactor, next.Repetitions, next.DueAt.Format(time.RFC3339))

	return &ReviewResult{
		Item:     saved,
		Quality:  req.Quality,
		WasNew:   wasNew,
		Priority: s.engine.Priority(&saved.ReviewableItem),
		Mastery:  srs.MasteryStatus(&saved.ReviewableItem),
	}, nil
}

func (s *reviewService) SubmitResponse(ctx context.Context, req ResponseRequest) (*ReviewResult, error) {
	difficulty, err := srs.ParseDifficulty(req.Difficulty)
	if err != nil {
		return nil, errors.NewValidationError("difficulty", err.Error())
	}
	if req.ResponseTime < 0 {
		return nil, errors.NewValidationError("response_ms", "must not be negative")
	}

	quality := srs.QualityFromResponse(req.Correct, req.ResponseTime, difficulty)
	logger.FromContext(ctx).Debug("graded response: correct=%t time=%v difficulty=%s quality=%d",
		req.Correct, req.ResponseTime, difficulty, quality)

	return s.SubmitReview(ctx, ReviewRequest{
		Key:          req.Key,
		ItemType:     req.ItemType,
		Quality:      quality,
		ResponseTime: req.ResponseTime,
	})
}

func (s *reviewService) GetItem(ctx context.Context, key models.ItemKey) (*ItemStatus, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting review item: user_id=%s language=%s item_id=%s", key.UserID, key.Language, key.ItemID)

	if err := validateKey(key); err != nil {
		return nil, err
	}

	stored, err := s.items.Get(ctx, key)
	if err != nil {
		log.Error("failed to load review item: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if stored == nil {
		return nil, errors.NewNotFoundError("review item", key.ItemID)
	}

	recent, err := s.history.ListForItem(ctx, key, recentHistoryLimit)
	if err != nil {
		log.Warn("failed to load review history: %v", err)
		recent = nil
	}
	if recent == nil {
		recent = []models.ReviewHistory{}
	}

	status := s.status(*stored)
	status.Recent = recent
	return status, nil
}

func (s *reviewService) status(stored models.StoredItem) *ItemStatus {
	return &ItemStatus{
		Item:     stored,
		Due:      s.engine.IsDue(&stored.ReviewableItem),
		Priority: s.engine.Priority(&stored.ReviewableItem),
		Mastery:  srs.MasteryStatus(&stored.ReviewableItem),
	}
}

func (s *reviewService) ListItems(ctx context.Context, req ListItemsRequest) (*ItemPage, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"user_id":  req.UserID,
		"language": req.Language,
	})
	log.Debug("listing review items: limit=%d offset=%d due_only=%t", req.Limit, req.Offset, req.DueOnly)

	switch {
	case req.UserID == "":
		return nil, errors.NewValidationError("user_id", "is required")
	case req.Language == "":
		return nil, errors.NewValidationError("language", "is required")
	case req.Limit < 0 || req.Limit > MaxPageSize:
		return nil, errors.NewValidationError("limit", "must be at most 200")
	case req.Offset < 0:
		return nil, errors.NewValidationError("offset", "must not be negative")
	}
	for _, t := range req.ItemTypes {
		if !t.Valid() {
			return nil, errors.NewValidationError("types", "unknown item type "+string(t))
		}
	}
	limit := req.Limit
	if limit == 0 {
		limit = DefaultPageSize
	}

	filter := models.ItemFilter{
		UserID:    req.UserID,
		Language:  req.Language,
		ItemTypes: req.ItemTypes,
	}
	if req.DueOnly {
		now := s.engine.Now()
		filter.DueBefore = &now
	}

	total, err := s.items.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count review items: %v", err)
		return nil, errors.NewInternalError(err)
	}

	filter.Limit = limit
	filter.Offset = req.Offset
	stored, err := s.items.List(ctx, filter)
	if err != nil {
		log.Error("failed to list review items: %v", err)
		return nil, errors.NewInternalError(err)
	}

	page := &ItemPage{
		Items:  make([]ItemStatus, 0, len(stored)),
		Total:  total,
		Limit:  limit,
		Offset: req.Offset,
	}
	for _, it := range stored {
		page.Items = append(page.Items, *s.status(it))
	}
	return page, nil
}

// ResetItem puts the item back into the never-passed state and makes it due
// immediately. LastReviewedAt is cleared because the reset schedule is not
// derived from a review. Its review log is kept.
func (s *reviewService) ResetItem(ctx context.Context, key models.ItemKey) (*ItemStatus, error) {
	log := logger.FromContext(ctx)
	log.Info("resetting review item: user_id=%s language=%s item_id=%s", key.UserID, key.Language, key.ItemID)

	if err := validateKey(key); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		stored, err := s.items.Get(ctx, key)
		if err != nil {
			log.Error("failed to load review item: %v", err)
			return nil, errors.NewInternalError(err)
		}
		if stored == nil {
			return nil, errors.NewNotFoundError("review item", key.ItemID)
		}

		reset := *stored
		reset.Interval = srs.InitialInterval
		reset.EaseFactor = srs.DefaultEaseFactor
		reset.Repetitions = 0
		reset.QualityHistory = []int{}
		reset.LastReviewedAt = time.Time{}
		reset.DueAt = s.engine.Now()

		err = s.items.Update(ctx, reset, nil)
		if err == nil {
			reset.Version++
			return s.status(reset), nil
		}
		if !stderrors.Is(err, repository.ErrVersionConflict) {
			log.Error("failed to reset review item: %v", err)
			return nil, errors.NewInternalError(err)
		}
		log.Warn("reset lost a concurrent write (attempt %d/%d)", attempt, s.retryAttempts)
	}

	return nil, errors.NewConflictError("review item", key.ItemID, repository.ErrVersionConflict)
}

func (s *reviewService) RemoveItem(ctx context.Context, key models.ItemKey) error {
	log := logger.FromContext(ctx)
	log.Info("removing review item: user_id=%s language=%s item_id=%s", key.UserID, key.Language, key.ItemID)

	if err := validateKey(key); err != nil {
		return err
	}

	deleted, err := s.items.Delete(ctx, key)
	if err != nil {
		log.Error("failed to delete review item: %v", err)
		return errors.NewInternalError(err)
	}
	if !deleted {
		return errors.NewNotFoundError("review item", key.ItemID)
	}
	return nil
}
