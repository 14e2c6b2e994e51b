package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/services"
)

// reviewRequest grades an item either with an explicit quality or with a raw
// answer (correct, response_ms, difficulty) that is graded server side.
type reviewRequest struct {
	ItemType   string `json:"item_type" validate:"omitempty,oneof=vocabulary kanji grammar character reading listening"`
	Quality    *int   `json:"quality" validate:"omitempty,min=0,max=5"`
	Correct    *bool  `json:"correct"`
	ResponseMs int64  `json:"response_ms" validate:"min=0,max=86400000"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy normal"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	key := itemKey(r)

	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if (req.Quality == nil) == (req.Correct == nil) {
		handleError(w, r, errors.NewBadRequestError("exactly one of quality or correct is required"))
		return
	}

	log = log.WithFields(map[string]any{
		"user_id":  key.UserID,
		"language": key.Language,
		"item_id":  key.ItemID,
	})
	ctx := logger.NewContext(r.Context(), log)
	responseTime := time.Duration(req.ResponseMs) * time.Millisecond

	var (
		result *services.ReviewResult
		err    error
	)
	if req.Quality != nil {
		result, err = s.ReviewService.SubmitReview(ctx, services.ReviewRequest{
			Key:          key,
			ItemType:     models.ItemType(req.ItemType),
			Quality:      *req.Quality,
			ResponseTime: responseTime,
		})
	} else {
		result, err = s.ReviewService.SubmitResponse(ctx, services.ResponseRequest{
			Key:          key,
			ItemType:     models.ItemType(req.ItemType),
			Correct:      *req.Correct,
			ResponseTime: responseTime,
			Difficulty:   req.Difficulty,
		})
	}
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("item reviewed: quality=%d interval=%d", result.Quality, result.Item.Interval)
	writeJSON(w, r, http.StatusOK, newReviewResponse(result))
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	types, err := parseItemTypes(r.URL.Query().Get("types"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	dueOnly, err := optionalBool(r, "due")
	if err != nil {
		handleError(w, r, err)
		return
	}
	limit, err := optionalInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := optionalInt(r, "offset")
	if err != nil {
		handleError(w, r, err)
		return
	}

	req := services.ListItemsRequest{
		UserID:    chi.URLParam(r, "userID"),
		Language:  chi.URLParam(r, "lang"),
		ItemTypes: types,
		DueOnly:   dueOnly,
	}
	if limit != nil {
		req.Limit = *limit
	}
	if offset != nil {
		req.Offset = *offset
	}

	page, err := s.ReviewService.ListItems(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newItemPageResponse(page))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	status, err := s.ReviewService.GetItem(r.Context(), itemKey(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newItemStatusResponse(status))
}

func (s *Server) handleResetItem(w http.ResponseWriter, r *http.Request) {
	status, err := s.ReviewService.ResetItem(r.Context(), itemKey(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newItemStatusResponse(status))
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := s.ReviewService.RemoveItem(r.Context(), itemKey(r)); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
