package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// NewHandler builds the read-only status router. It exposes nothing that
// mutates state; all writes go through the Discord command surface.
func NewHandler(statusHandler *StatusHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Logger)

	r.Get("/healthz", statusHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", statusHandler.Leaderboard)
		r.Get("/tokens/stats", statusHandler.TokenStats)
	})

	return r
}

// requestID tags every request with a correlation id for log matching.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}
