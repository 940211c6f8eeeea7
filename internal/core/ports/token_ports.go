package ports

import (
	"context"

	"github.com/buildvote/bot/internal/core/domain"
)

type TokenRepository interface {
	// Upsert inserts the pair for the user or, on conflict, overwrites both
	// fields and re-marks the row valid.
	Upsert(ctx context.Context, discordUserID, accessToken, refreshToken string) error
	// UpdateAccessToken upserts only the access token; on first insert the
	// refresh token defaults to empty, on conflict it is left untouched.
	UpdateAccessToken(ctx context.Context, discordUserID, accessToken string) error
	// UpdateRefreshToken mirrors UpdateAccessToken for the refresh half.
	UpdateRefreshToken(ctx context.Context, discordUserID, refreshToken string) error
	// Get returns (nil, nil) when the user has no row.
	Get(ctx context.Context, discordUserID string) (*domain.UserToken, error)
	// Remove reports whether exactly one row was deleted.
	Remove(ctx context.Context, discordUserID string) (bool, error)
	// SetValidity reports whether exactly one row was affected.
	SetValidity(ctx context.Context, discordUserID string, valid bool) (bool, error)
	// InvalidateAll flips every valid row to invalid and returns the count.
	InvalidateAll(ctx context.Context) (int64, error)
	// ListValid returns valid tokens, newest-updated first.
	ListValid(ctx context.Context) ([]domain.UserToken, error)
	// List returns every token row, newest-updated first.
	List(ctx context.Context) ([]domain.UserToken, error)
	Stats(ctx context.Context) (*domain.TokenStats, error)
}

// TokenService is the command-facing surface over the token store. Failures
// are logged and collapsed into booleans and empty results; callers get no
// error detail.
type TokenService interface {
	SaveTokens(ctx context.Context, discordUserID, accessToken, refreshToken string) bool
	SaveAccessToken(ctx context.Context, discordUserID, accessToken string) bool
	SaveRefreshToken(ctx context.Context, discordUserID, refreshToken string) bool
	RemoveTokens(ctx context.Context, discordUserID string) bool
	SetValidity(ctx context.Context, discordUserID string, valid bool) bool
	InvalidateAll(ctx context.Context) int64
	ValidTokens(ctx context.Context) []domain.UserToken
	AllTokens(ctx context.Context) []domain.UserToken
	Stats(ctx context.Context) domain.TokenStats
}
