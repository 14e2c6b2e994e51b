package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 10 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/users/{userID}/languages/{lang}", func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))

		r.Get("/queue", s.handleQueue)
		r.Get("/stats", s.handleStats)
		r.Get("/items", s.handleListItems)
		r.Route("/items/{itemID}", func(r chi.Router) {
			r.Get("/", s.handleGetItem)
			r.Delete("/", s.handleRemoveItem)
			r.Post("/review", s.handleReview)
			r.Post("/reset", s.handleResetItem)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errNotFoundRoute(r))
	})
	return r
}
