package http

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/buildvote/bot/internal/core/ports"
)

type StatusHandler struct {
	db     *sql.DB
	votes  ports.VoteService
	tokens ports.TokenService
}

func NewStatusHandler(db *sql.DB, votes ports.VoteService, tokens ports.TokenService) *StatusHandler {
	return &StatusHandler{
		db:     db,
		votes:  votes,
		tokens: tokens,
	}
}

func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *StatusHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	votes, err := h.votes.Leaderboard(r.Context())
	if err != nil {
		http.Error(w, "failed to list active votes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(votes); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (h *StatusHandler) TokenStats(w http.ResponseWriter, r *http.Request) {
	stats := h.tokens.Stats(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
