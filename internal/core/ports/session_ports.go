package ports

import "context"

type SessionRepository interface {
	// Init creates session 1 on first run; no-op when an active row exists.
	Init(ctx context.Context) error
	// Current returns the number of the active session, defaulting to 1
	// when no row exists yet.
	Current(ctx context.Context) (int, error)
	// CurrentID returns the primary key of the active session row.
	CurrentID(ctx context.Context) (int64, error)
	// CloseAndOpenNext transactionally deactivates the active session and
	// inserts a new active row numbered max(number)+1, returning the new
	// number. Exactly one session is active before and after.
	CloseAndOpenNext(ctx context.Context) (int, error)
}

// StateRepository is the legacy flat key/value counter store (bot_state).
// The session table is the source of truth; rotation mirrors the new number
// here for older tooling, and nothing in this codebase reads it back.
type StateRepository interface {
	SetCounter(ctx context.Context, key string, value int) error
	Counter(ctx context.Context, key string) (int, bool, error)
}
