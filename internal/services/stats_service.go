package services

import (
	"context"

	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
	"github.com/vytor/lingoflash/internal/srs"
)

// StatsService handles statistics-related business logic
type StatsService interface {
	Summary(ctx context.Context, userID, language string) (*models.ReviewStats, error)
}

type statsService struct {
	items  repository.ItemRepository
	engine *srs.Engine
}

// NewStatsService creates a new StatsService
func NewStatsService(items repository.ItemRepository, engine *srs.Engine) StatsService {
	return &statsService{items: items, engine: engine}
}

func (s *statsService) Summary(ctx context.Context, userID, language string) (*models.ReviewStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting review stats: user_id=%s language=%s", userID, language)

	if userID == "" {
		return nil, errors.NewValidationError("user_id", "is required")
	}
	if language == "" {
		return nil, errors.NewValidationError("language", "is required")
	}

	items, err := s.items.List(ctx, models.ItemFilter{UserID: userID, Language: language})
	if err != nil {
		log.Error("failed to list review items: %v", err)
		return nil, errors.NewInternalError(err)
	}

	stats := &models.ReviewStats{
		TotalItems: len(items),
		ByMastery:  make(map[string]int, len(srs.Masteries)),
		ByType:     make(map[string]int, len(models.ItemTypes)),
	}
	for _, m := range srs.Masteries {
		stats.ByMastery[string(m)] = 0
	}
	for _, t := range models.ItemTypes {
		stats.ByType[string(t)] = 0
	}
	if len(items) == 0 {
		return stats, nil
	}

	now := s.engine.Now()
	dayAhead := now.Add(srs.Day)
	var easeSum float64
	var intervalSum int
	for i := range items {
		item := &items[i].ReviewableItem
		stats.ByMastery[string(srs.MasteryStatus(item))]++
		stats.ByType[string(item.ItemType)]++
		switch {
		case s.engine.IsDue(item):
			stats.DueNow++
		case !item.DueAt.After(dayAhead):
			stats.DueWithinDay++
		}
		easeSum += item.EaseFactor
		intervalSum += item.Interval
	}
	stats.AvgEaseFactor = easeSum / float64(len(items))
	stats.AvgIntervalDays = float64(intervalSum) / float64(len(items))

	return stats, nil
}
