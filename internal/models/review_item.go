package models

import "time"

// ItemType is the lesson module a reviewable item belongs to.
type ItemType string

const (
	ItemTypeVocabulary ItemType = "vocabulary"
	ItemTypeKanji      ItemType = "kanji"
	ItemTypeGrammar    ItemType = "grammar"
	ItemTypeCharacter  ItemType = "character"
	ItemTypeReading    ItemType = "reading"
	ItemTypeListening  ItemType = "listening"
)

// ItemTypes lists every module in display order.
var ItemTypes = []ItemType{
	ItemTypeVocabulary,
	ItemTypeKanji,
	ItemTypeGrammar,
	ItemTypeCharacter,
	ItemTypeReading,
	ItemTypeListening,
}

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	for _, known := range ItemTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ReviewableItem is the scheduling state of one learned item.
type ReviewableItem struct {
	ItemID         string    `json:"item_id"`
	ItemType       ItemType  `json:"item_type"`
	Interval       int       `json:"interval"`
	EaseFactor     float64   `json:"ease_factor"`
	Repetitions    int       `json:"repetitions"`
	QualityHistory []int     `json:"quality_history"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	DueAt          time.Time `json:"due_at"`
}

// ItemKey identifies an item for one learner.
type ItemKey struct {
	UserID   string `json:"user_id"`
	Language string `json:"language"`
	ItemID   string `json:"item_id"`
}

// StoredItem is a ReviewableItem as persisted for a learner.
type StoredItem struct {
	ID       int64  `json:"id"`
	UserID   string `json:"user_id"`
	Language string `json:"language"`
	ReviewableItem
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the identity of the stored item.
func (s StoredItem) Key() ItemKey {
	return ItemKey{UserID: s.UserID, Language: s.Language, ItemID: s.ItemID}
}

// ItemFilter narrows item listings.
type ItemFilter struct {
	UserID    string
	Language  string
	ItemTypes []ItemType
	DueBefore *time.Time
	Limit     int
	Offset    int
}
