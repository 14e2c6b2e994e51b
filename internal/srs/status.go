package srs

import (
	"time"

	"github.com/vytor/lingoflash/internal/models"
)

const (
	PriorityNew     = 100
	PriorityOverdue = 90
	PriorityDueDay  = 50
	PriorityDueSoon = 30
	PriorityLater   = 10
)

// Mastery is a coarse classification of how well an item is known.
type Mastery string

const (
	MasteryNew      Mastery = "new"
	MasteryLearning Mastery = "learning"
	MasteryAdvanced Mastery = "advanced"
	MasteryMastered Mastery = "mastered"
)

// Masteries lists every status from least to most known.
var Masteries = []Mastery{MasteryNew, MasteryLearning, MasteryAdvanced, MasteryMastered}

// IsDueForReview reports whether item should be reviewed at now. Items with
// no record are always due.
func IsDueForReview(item *models.ReviewableItem, now time.Time) bool {
	if item == nil {
		return true
	}
	return !now.Before(item.DueAt)
}

// ReviewPriority scores item for queue ordering; higher is more urgent.
//
// Overdue items score 90 minus whole days overdue, floored at 0, so a long
// neglected item ranks below one that just became due.
func ReviewPriority(item *models.ReviewableItem, now time.Time) int {
	if item == nil || item.Repetitions == 0 {
		return PriorityNew
	}

	if !now.Before(item.DueAt) {
		daysOverdue := int(now.Sub(item.DueAt) / Day)
		return PriorityOverdue - min(PriorityOverdue, daysOverdue)
	}

	until := item.DueAt.Sub(now)
	switch {
	case until <= Day:
		return PriorityDueDay
	case until <= 3*Day:
		return PriorityDueSoon
	default:
		return PriorityLater
	}
}

// MasteryStatus classifies item, checking the most specific status first.
func MasteryStatus(item *models.ReviewableItem) Mastery {
	switch {
	case item == nil:
		return MasteryNew
	case item.Repetitions >= 5 && item.Interval >= 30 && meanQuality(item.QualityHistory) >= 4:
		return MasteryMastered
	case item.Repetitions >= 3 && item.Interval >= 7:
		return MasteryAdvanced
	case item.Repetitions >= 1:
		return MasteryLearning
	default:
		return MasteryNew
	}
}

func meanQuality(history []int) float64 {
	if len(history) == 0 {
		return 0
	}
	sum := 0
	for _, q := range history {
		sum += q
	}
	return float64(sum) / float64(len(history))
}
