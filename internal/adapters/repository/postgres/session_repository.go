package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/buildvote/bot/internal/core/domain"
	"github.com/buildvote/bot/internal/core/ports"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) ports.SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Init(ctx context.Context) error {
	query := `
		INSERT INTO vote_sessions (number, is_active)
		SELECT 1, true
		WHERE NOT EXISTS (SELECT 1 FROM vote_sessions WHERE is_active = true)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to seed first session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Current(ctx context.Context) (int, error) {
	var number int
	err := r.db.QueryRowContext(ctx, `SELECT number FROM vote_sessions WHERE is_active = true`).Scan(&number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// First-run bootstrap before Init has been called.
			return 1, nil
		}
		return 0, fmt.Errorf("failed to get current session: %w", err)
	}
	return number, nil
}

func (r *SessionRepository) CurrentID(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM vote_sessions WHERE is_active = true`).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNoActiveSession
		}
		return 0, fmt.Errorf("failed to get current session id: %w", err)
	}
	return id, nil
}

// CloseAndOpenNext deactivates the current session and inserts the next one
// inside a single transaction, so an observer never sees zero or two active
// sessions and numbers are never skipped or reused.
func (r *SessionRepository) CloseAndOpenNext(ctx context.Context) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE vote_sessions SET is_active = false WHERE is_active = true`); err != nil {
		return 0, fmt.Errorf("failed to deactivate session: %w", err)
	}

	var next int
	query := `
		INSERT INTO vote_sessions (number, is_active)
		SELECT COALESCE(MAX(number), 0) + 1, true FROM vote_sessions
		RETURNING number
	`
	if err := tx.QueryRowContext(ctx, query).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to open next session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return next, nil
}
