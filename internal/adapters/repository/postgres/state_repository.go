package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/buildvote/bot/internal/core/ports"
)

// StateRepository drives the legacy bot_state key/value table. It survives
// only as a write-through mirror of the session counter; vote_sessions is
// the source of truth.
type StateRepository struct {
	db *sql.DB
}

func NewStateRepository(db *sql.DB) ports.StateRepository {
	return &StateRepository{db: db}
}

func (r *StateRepository) SetCounter(ctx context.Context, key string, value int) error {
	query := `
		INSERT INTO bot_state (key, value)
		VALUES ($1, jsonb_build_object('value', $2::int))
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set counter %q: %w", key, err)
	}
	return nil
}

func (r *StateRepository) Counter(ctx context.Context, key string) (int, bool, error) {
	var value int
	err := r.db.QueryRowContext(ctx, `SELECT (value->>'value')::int FROM bot_state WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get counter %q: %w", key, err)
	}
	return value, true, nil
}
