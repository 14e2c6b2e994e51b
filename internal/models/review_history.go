package models

import "time"

type ReviewHistory struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Language   string    `json:"language"`
	ItemID     string    `json:"item_id"`
	ItemType   ItemType  `json:"item_type"`
	Quality    int       `json:"quality"`
	ResponseMs int64     `json:"response_ms"`
	WasNew     bool      `json:"was_new"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// DailyUsage is how much of the daily review budget a learner already spent.
type DailyUsage struct {
	NewItems int `json:"new_items"`
	Reviews  int `json:"reviews"`
}
