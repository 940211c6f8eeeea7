package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/buildvote/bot/internal/core/ports"
)

// legacyCounterKey is the bot_state key older tooling reads the session
// number from. The vote_sessions table is the source of truth; rotation
// only mirrors the new number here.
const legacyCounterKey = "vote_session_number"

type SessionService struct {
	sessions ports.SessionRepository
	state    ports.StateRepository
	log      *slog.Logger
}

func NewSessionService(sessions ports.SessionRepository, state ports.StateRepository, log *slog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		state:    state,
		log:      log,
	}
}

func (s *SessionService) Init(ctx context.Context) error {
	if err := s.sessions.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize vote session: %w", err)
	}
	return nil
}

func (s *SessionService) Current(ctx context.Context) (int, error) {
	return s.sessions.Current(ctx)
}

func (s *SessionService) CurrentID(ctx context.Context) (int64, error) {
	return s.sessions.CurrentID(ctx)
}

// Rotate closes the active session and opens the next one. The legacy
// bot_state counter is updated best-effort after the rotation commits.
func (s *SessionService) Rotate(ctx context.Context) (int, error) {
	next, err := s.sessions.CloseAndOpenNext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to rotate vote session: %w", err)
	}

	if err := s.state.SetCounter(ctx, legacyCounterKey, next); err != nil {
		s.log.Warn("failed to mirror session number into bot_state", "number", next, "error", err)
	}

	return next, nil
}
