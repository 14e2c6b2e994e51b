package srs

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vytor/lingoflash/internal/models"
)

const (
	MinQuality = 0
	MaxQuality = 5

	// PassingQuality is the lowest quality that counts as a successful recall.
	PassingQuality = 3

	MinEaseFactor     = 1.3
	MaxEaseFactor     = 2.5
	DefaultEaseFactor = 2.5

	InitialInterval = 1
	SecondInterval  = 6

	MaxQualityHistory = 10

	Day = 24 * time.Hour
)

var ErrInvalidQuality = errors.New("quality must be between 0 and 5")

// ValidateQuality rejects ratings outside 0..5.
func ValidateQuality(quality int) error {
	if quality < MinQuality || quality > MaxQuality {
		return fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
	}
	return nil
}

// CalculateNextReview applies one review of the given quality to prev using
// the SM-2 law. A nil prev means the item has never been reviewed.
// The returned item never aliases prev's quality history.
func CalculateNextReview(prev *models.ReviewableItem, quality int, now time.Time) (models.ReviewableItem, error) {
	if err := ValidateQuality(quality); err != nil {
		return models.ReviewableItem{}, err
	}

	if prev == nil {
		reps := 0
		if quality >= PassingQuality {
			reps = 1
		}
		return schedule(models.ReviewableItem{
			Interval:       InitialInterval,
			EaseFactor:     DefaultEaseFactor,
			Repetitions:    reps,
			QualityHistory: []int{quality},
		}, now), nil
	}

	next := *prev
	interval, ef, reps := normalize(prev)

	ef = clampEase(ef + easeDelta(quality))
	next.EaseFactor = ef
	next.QualityHistory = appendHistory(prev.QualityHistory, quality)

	if quality < PassingQuality {
		next.Interval = InitialInterval
		next.Repetitions = 0
		return schedule(next, now), nil
	}

	// Branches compare the repetition count before this review is counted.
	switch reps {
	case 0:
		next.Interval = InitialInterval
	case 1:
		next.Interval = SecondInterval
	default:
		next.Interval = int(math.Round(float64(interval) * ef))
	}
	if next.Interval < InitialInterval {
		next.Interval = InitialInterval
	}
	next.Repetitions = reps + 1

	return schedule(next, now), nil
}

// normalize fills in defaults for fields a partial record left unset.
func normalize(item *models.ReviewableItem) (interval int, ef float64, reps int) {
	interval = item.Interval
	if interval < InitialInterval {
		interval = InitialInterval
	}
	ef = item.EaseFactor
	if ef <= 0 {
		ef = DefaultEaseFactor
	}
	reps = item.Repetitions
	if reps < 0 {
		reps = 0
	}
	return interval, ef, reps
}

func easeDelta(quality int) float64 {
	miss := float64(MaxQuality - quality)
	return 0.1 - miss*(0.08+miss*0.02)
}

func clampEase(ef float64) float64 {
	return math.Min(MaxEaseFactor, math.Max(MinEaseFactor, ef))
}

func appendHistory(history []int, quality int) []int {
	out := make([]int, 0, len(history)+1)
	out = append(out, history...)
	out = append(out, quality)
	if len(out) > MaxQualityHistory {
		out = out[len(out)-MaxQualityHistory:]
	}
	return out
}

func schedule(item models.ReviewableItem, now time.Time) models.ReviewableItem {
	item.LastReviewedAt = now
	item.DueAt = now.Add(time.Duration(item.Interval) * Day)
	return item
}
