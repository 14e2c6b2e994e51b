package api

import (
	"time"

	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/services"
	"github.com/vytor/lingoflash/internal/srs"
)

// itemResponse carries timestamps both as RFC3339 and as epoch milliseconds.
// Unset timestamps are omitted.
type itemResponse struct {
	ItemID           string          `json:"item_id"`
	ItemType         models.ItemType `json:"item_type"`
	Interval         int             `json:"interval"`
	EaseFactor       float64         `json:"ease_factor"`
	Repetitions      int             `json:"repetitions"`
	QualityHistory   []int           `json:"quality_history"`
	LastReviewedAt   *time.Time      `json:"last_reviewed_at,omitempty"`
	LastReviewedAtMs int64           `json:"last_reviewed_at_ms,omitempty"`
	DueAt            *time.Time      `json:"due_at,omitempty"`
	DueAtMs          int64           `json:"due_at_ms,omitempty"`
	Version          int             `json:"version,omitempty"`
}

func newItemResponse(item models.ReviewableItem, version int) itemResponse {
	resp := itemResponse{
		ItemID:         item.ItemID,
		ItemType:       item.ItemType,
		Interval:       item.Interval,
		EaseFactor:     item.EaseFactor,
		Repetitions:    item.Repetitions,
		QualityHistory: item.QualityHistory,
		Version:        version,
	}
	if resp.QualityHistory == nil {
		resp.QualityHistory = []int{}
	}
	if !item.LastReviewedAt.IsZero() {
		last := item.LastReviewedAt
		resp.LastReviewedAt = &last
		resp.LastReviewedAtMs = last.UnixMilli()
	}
	if !item.DueAt.IsZero() {
		due := item.DueAt
		resp.DueAt = &due
		resp.DueAtMs = due.UnixMilli()
	}
	return resp
}

type reviewResponse struct {
	Item     itemResponse `json:"item"`
	Quality  int          `json:"quality"`
	WasNew   bool         `json:"was_new"`
	Priority int          `json:"priority"`
	Mastery  srs.Mastery  `json:"mastery"`
}

func newReviewResponse(res *services.ReviewResult) reviewResponse {
	return reviewResponse{
		Item:     newItemResponse(res.Item.ReviewableItem, res.Item.Version),
		Quality:  res.Quality,
		WasNew:   res.WasNew,
		Priority: res.Priority,
		Mastery:  res.Mastery,
	}
}

type historyResponse struct {
	Quality      int   `json:"quality"`
	ResponseMs   int64 `json:"response_ms"`
	WasNew       bool  `json:"was_new"`
	ReviewedAtMs int64 `json:"reviewed_at_ms"`
}

type itemStatusResponse struct {
	Item     itemResponse      `json:"item"`
	Due      bool              `json:"due"`
	Priority int               `json:"priority"`
	Mastery  srs.Mastery       `json:"mastery"`
	Recent   []historyResponse `json:"recent"`
}

func newItemStatusResponse(status *services.ItemStatus) itemStatusResponse {
	resp := itemStatusResponse{
		Item:     newItemResponse(status.Item.ReviewableItem, status.Item.Version),
		Due:      status.Due,
		Priority: status.Priority,
		Mastery:  status.Mastery,
		Recent:   make([]historyResponse, 0, len(status.Recent)),
	}
	for _, h := range status.Recent {
		resp.Recent = append(resp.Recent, historyResponse{
			Quality:      h.Quality,
			ResponseMs:   h.ResponseMs,
			WasNew:       h.WasNew,
			ReviewedAtMs: h.ReviewedAt.UnixMilli(),
		})
	}
	return resp
}

type itemPageResponse struct {
	Items  []itemStatusResponse `json:"items"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

func newItemPageResponse(page *services.ItemPage) itemPageResponse {
	resp := itemPageResponse{
		Items:  make([]itemStatusResponse, 0, len(page.Items)),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	for i := range page.Items {
		resp.Items = append(resp.Items, newItemStatusResponse(&page.Items[i]))
	}
	return resp
}

type queueEntryResponse struct {
	Item     itemResponse `json:"item"`
	Priority int          `json:"priority"`
	Mastery  srs.Mastery  `json:"mastery"`
	IsNew    bool         `json:"is_new"`
}

type queueResponse struct {
	Entries     []queueEntryResponse    `json:"entries"`
	ByModule    map[models.ItemType]int `json:"by_module"`
	TotalDue    int                     `json:"total_due"`
	NewCount    int                     `json:"new_count"`
	ReviewCount int                     `json:"review_count"`
	DeferredNew int                     `json:"deferred_new"`
	Deferred    int                     `json:"deferred"`
	Ready       bool                    `json:"ready"`
}

func newQueueResponse(q *srs.Queue) queueResponse {
	resp := queueResponse{
		Entries:     make([]queueEntryResponse, 0, len(q.Entries)),
		ByModule:    q.ByModule,
		TotalDue:    q.TotalDue,
		NewCount:    q.NewCount,
		ReviewCount: q.ReviewCount,
		DeferredNew: q.DeferredNew,
		Deferred:    q.Deferred,
		Ready:       q.Ready,
	}
	if resp.ByModule == nil {
		resp.ByModule = map[models.ItemType]int{}
	}
	for _, e := range q.Entries {
		resp.Entries = append(resp.Entries, queueEntryResponse{
			Item:     newItemResponse(e.Item, 0),
			Priority: e.Priority,
			Mastery:  e.Mastery,
			IsNew:    e.IsNew,
		})
	}
	return resp
}
