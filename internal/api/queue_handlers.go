package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/services"
)

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID := chi.URLParam(r, "userID")
	language := chi.URLParam(r, "lang")
	query := r.URL.Query()

	types, err := parseItemTypes(query.Get("types"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	candidates, err := parseCandidates(query.Get("new"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	newLimit, err := optionalInt(r, "new_limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	reviewLimit, err := optionalInt(r, "review_limit")
	if err != nil {
		handleError(w, r, err)
		return
	}

	queue, err := s.QueueService.GetQueue(r.Context(), userID, language, services.QueueOptions{
		ItemTypes:          types,
		DailyNewItemsLimit: newLimit,
		DailyReviewLimit:   reviewLimit,
		Candidates:         candidates,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("serving queue with %d entries", len(queue.Entries))
	writeJSON(w, r, http.StatusOK, newQueueResponse(queue))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.StatsService.Summary(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "lang"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}
