package models

type ReviewStats struct {
	TotalItems      int            `json:"total_items"`
	DueNow          int            `json:"due_now"`
	DueWithinDay    int            `json:"due_within_day"`
	ByMastery       map[string]int `json:"by_mastery"`
	ByType          map[string]int `json:"by_type"`
	AvgEaseFactor   float64        `json:"avg_ease_factor"`
	AvgIntervalDays float64        `json:"avg_interval_days"`
}
