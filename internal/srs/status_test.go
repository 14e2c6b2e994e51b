package srs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/srs"
)

func TestIsDueForReview(t *testing.T) {
	tests := []struct {
		name string
		item *models.ReviewableItem
		want bool
	}{
		{name: "never reviewed", item: nil, want: true},
		{name: "due exactly now", item: &models.ReviewableItem{DueAt: baseTime}, want: true},
		{name: "overdue", item: &models.ReviewableItem{DueAt: baseTime.Add(-time.Hour)}, want: true},
		{name: "not yet due", item: &models.ReviewableItem{DueAt: baseTime.Add(time.Minute)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, srs.IsDueForReview(tt.item, baseTime))
			assert.Equal(t, tt.want, srs.IsDueForReview(tt.item, baseTime), "repeat call must agree")
		})
	}
}

func TestReviewPriority(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		name string
		item *models.ReviewableItem
		want int
	}{
		{name: "never reviewed", item: nil, want: 100},
		{name: "no successful repetition", item: &models.ReviewableItem{Repetitions: 0, DueAt: baseTime.Add(5 * day)}, want: 100},
		{name: "just due", item: &models.ReviewableItem{Repetitions: 2, DueAt: baseTime}, want: 90},
		{name: "overdue by hours", item: &models.ReviewableItem{Repetitions: 2, DueAt: baseTime.Add(-20 * time.Hour)}, want: 90},
		{name: "ten days overdue", item: &models.ReviewableItem{Repetitions: 1, DueAt: baseTime.Add(-10 * day)}, want: 80},
		{name: "ninety days overdue", item: &models.ReviewableItem{Repetitions: 4, DueAt: baseTime.Add(-90 * day)}, want: 0},
		{name: "far overdue floors at zero", item: &models.ReviewableItem{Repetitions: 4, DueAt: baseTime.Add(-400 * day)}, want: 0},
		{name: "due within a day", item: &models.ReviewableItem{Repetitions: 2, DueAt: baseTime.Add(12 * time.Hour)}, want: 50},
		{name: "due in exactly a day", item: &models.ReviewableItem{Repetitions: 2, DueAt: baseTime.Add(day)}, want: 50},
		{name: "due within three days", item: &models.ReviewableItem{Repetitions: 2, DueAt: baseTime.Add(2 * day)}, want: 30},
		{name: "due later", item: &models.ReviewableItem{Repetitions: 2, DueAt: baseTime.Add(10 * day)}, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, srs.ReviewPriority(tt.item, baseTime))
		})
	}
}

func TestMasteryStatus(t *testing.T) {
	tests := []struct {
		name string
		item *models.ReviewableItem
		want srs.Mastery
	}{
		{name: "no record", item: nil, want: srs.MasteryNew},
		{name: "zero repetitions", item: &models.ReviewableItem{Interval: 1}, want: srs.MasteryNew},
		{name: "learning", item: &models.ReviewableItem{Repetitions: 1, Interval: 1}, want: srs.MasteryLearning},
		{name: "advanced needs interval", item: &models.ReviewableItem{Repetitions: 3, Interval: 6}, want: srs.MasteryLearning},
		{name: "advanced", item: &models.ReviewableItem{Repetitions: 3, Interval: 7}, want: srs.MasteryAdvanced},
		{
			name: "mastered",
			item: &models.ReviewableItem{Repetitions: 5, Interval: 30, QualityHistory: []int{4, 5, 4, 3, 5}},
			want: srs.MasteryMastered,
		},
		{
			name: "low average quality stays advanced",
			item: &models.ReviewableItem{Repetitions: 6, Interval: 45, QualityHistory: []int{3, 3, 4, 3}},
			want: srs.MasteryAdvanced,
		},
		{
			name: "empty history cannot be mastered",
			item: &models.ReviewableItem{Repetitions: 6, Interval: 45},
			want: srs.MasteryAdvanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, srs.MasteryStatus(tt.item))
		})
	}
}
