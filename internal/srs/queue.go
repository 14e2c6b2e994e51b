package srs

import (
	"sort"
	"time"

	"github.com/vytor/lingoflash/internal/models"
)

// QueueConfig holds the per-learner daily caps.
type QueueConfig struct {
	// DailyNewItemsLimit caps never-passed items per day. Negative means unlimited.
	DailyNewItemsLimit int
	// DailyReviewLimit caps all reviews per day. Zero means unlimited.
	DailyReviewLimit int
	// ReviewThreshold is how many entries the queue needs before it is Ready.
	ReviewThreshold int
}

type QueueEntry struct {
	Item     models.ReviewableItem `json:"item"`
	Priority int                   `json:"priority"`
	Mastery  Mastery               `json:"mastery"`
	IsNew    bool                  `json:"is_new"`
}

// Queue is an ordered review session plus counts for the UI.
type Queue struct {
	Entries     []QueueEntry            `json:"entries"`
	ByModule    map[models.ItemType]int `json:"by_module"`
	TotalDue    int                     `json:"total_due"`
	NewCount    int                     `json:"new_count"`
	ReviewCount int                     `json:"review_count"`
	DeferredNew int                     `json:"deferred_new"`
	Deferred    int                     `json:"deferred"`
	Ready       bool                    `json:"ready"`
}

// BuildQueue picks the due items, orders them by priority (ties go to the
// oldest due date) and applies what is left of today's caps after usage.
func BuildQueue(items []models.ReviewableItem, cfg QueueConfig, usage models.DailyUsage, now time.Time) Queue {
	q := Queue{
		Entries:  []QueueEntry{},
		ByModule: make(map[models.ItemType]int),
	}

	due := make([]QueueEntry, 0, len(items))
	for i := range items {
		item := &items[i]
		if !IsDueForReview(item, now) {
			continue
		}
		due = append(due, QueueEntry{
			Item:     *item,
			Priority: ReviewPriority(item, now),
			Mastery:  MasteryStatus(item),
			IsNew:    item.Repetitions == 0,
		})
	}
	q.TotalDue = len(due)

	SortEntries(due)

	newLeft := -1
	if cfg.DailyNewItemsLimit >= 0 {
		newLeft = max(0, cfg.DailyNewItemsLimit-usage.NewItems)
	}
	totalLeft := -1
	if cfg.DailyReviewLimit > 0 {
		totalLeft = max(0, cfg.DailyReviewLimit-usage.Reviews)
	}

	for _, e := range due {
		if totalLeft == 0 {
			q.Deferred++
			continue
		}
		if e.IsNew {
			if newLeft == 0 {
				q.DeferredNew++
				continue
			}
			if newLeft > 0 {
				newLeft--
			}
			q.NewCount++
		} else {
			q.ReviewCount++
		}
		if totalLeft > 0 {
			totalLeft--
		}
		q.Entries = append(q.Entries, e)
		q.ByModule[e.Item.ItemType]++
	}

	q.Ready = len(q.Entries) > 0 && len(q.Entries) >= cfg.ReviewThreshold
	return q
}

// SortEntries orders entries by priority descending, then by due date
// ascending, then by item id.
func SortEntries(entries []QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.Item.DueAt.Equal(b.Item.DueAt) {
			return a.Item.DueAt.Before(b.Item.DueAt)
		}
		return a.Item.ItemID < b.Item.ItemID
	})
}
