package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/buildvote/bot/internal/core/domain"
	"github.com/buildvote/bot/internal/core/ports"
)

type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) ports.TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Upsert(ctx context.Context, discordUserID, accessToken, refreshToken string) error {
	query := `
		INSERT INTO user_tokens (discord_user_id, access_token, refresh_token, valid_token)
		VALUES ($1, $2, $3, true)
		ON CONFLICT (discord_user_id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    refresh_token = EXCLUDED.refresh_token,
		    valid_token = true,
		    updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query, discordUserID, accessToken, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to upsert tokens: %w", err)
	}
	return nil
}

func (r *TokenRepository) UpdateAccessToken(ctx context.Context, discordUserID, accessToken string) error {
	query := `
		INSERT INTO user_tokens (discord_user_id, access_token, refresh_token, valid_token)
		VALUES ($1, $2, '', true)
		ON CONFLICT (discord_user_id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query, discordUserID, accessToken)
	if err != nil {
		return fmt.Errorf("failed to upsert access token: %w", err)
	}
	return nil
}

func (r *TokenRepository) UpdateRefreshToken(ctx context.Context, discordUserID, refreshToken string) error {
	query := `
		INSERT INTO user_tokens (discord_user_id, access_token, refresh_token, valid_token)
		VALUES ($1, '', $2, true)
		ON CONFLICT (discord_user_id) DO UPDATE
		SET refresh_token = EXCLUDED.refresh_token,
		    updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query, discordUserID, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to upsert refresh token: %w", err)
	}
	return nil
}

func (r *TokenRepository) Get(ctx context.Context, discordUserID string) (*domain.UserToken, error) {
	query := `
		SELECT id, discord_user_id, access_token, refresh_token, valid_token, created_at, updated_at
		FROM user_tokens
		WHERE discord_user_id = $1
	`
	token := &domain.UserToken{}
	err := r.db.QueryRowContext(ctx, query, discordUserID).Scan(
		&token.ID,
		&token.DiscordUserID,
		&token.AccessToken,
		&token.RefreshToken,
		&token.Valid,
		&token.CreatedAt,
		&token.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}
	return token, nil
}

func (r *TokenRepository) Remove(ctx context.Context, discordUserID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE discord_user_id = $1`, discordUserID)
	if err != nil {
		return false, fmt.Errorf("failed to remove tokens: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

func (r *TokenRepository) SetValidity(ctx context.Context, discordUserID string, valid bool) (bool, error) {
	query := `
		UPDATE user_tokens
		SET valid_token = $2, updated_at = CURRENT_TIMESTAMP
		WHERE discord_user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, discordUserID, valid)
	if err != nil {
		return false, fmt.Errorf("failed to update token validity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

func (r *TokenRepository) InvalidateAll(ctx context.Context) (int64, error) {
	query := `
		UPDATE user_tokens
		SET valid_token = false, updated_at = CURRENT_TIMESTAMP
		WHERE valid_token = true
	`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate tokens: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

func (r *TokenRepository) ListValid(ctx context.Context) ([]domain.UserToken, error) {
	query := `
		SELECT id, discord_user_id, access_token, refresh_token, valid_token, created_at, updated_at
		FROM user_tokens
		WHERE valid_token = true
		ORDER BY updated_at DESC
	`
	return r.list(ctx, query)
}

func (r *TokenRepository) List(ctx context.Context) ([]domain.UserToken, error) {
	query := `
		SELECT id, discord_user_id, access_token, refresh_token, valid_token, created_at, updated_at
		FROM user_tokens
		ORDER BY updated_at DESC
	`
	return r.list(ctx, query)
}

func (r *TokenRepository) list(ctx context.Context, query string) ([]domain.UserToken, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.UserToken
	for rows.Next() {
		var t domain.UserToken
		if err := rows.Scan(&t.ID, &t.DiscordUserID, &t.AccessToken, &t.RefreshToken, &t.Valid, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tokens: %w", err)
	}
	return tokens, nil
}

func (r *TokenRepository) Stats(ctx context.Context) (*domain.TokenStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_tokens,
			COALESCE(SUM(CASE WHEN valid_token THEN 1 ELSE 0 END), 0) AS valid_tokens,
			COALESCE(SUM(CASE WHEN NOT valid_token THEN 1 ELSE 0 END), 0) AS invalid_tokens,
			COUNT(DISTINCT discord_user_id) AS unique_users,
			MAX(updated_at) AS last_update
		FROM user_tokens
	`
	stats := &domain.TokenStats{}
	var lastUpdate sql.NullTime
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.Total,
		&stats.Valid,
		&stats.Invalid,
		&stats.UniqueUsers,
		&lastUpdate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token stats: %w", err)
	}
	if lastUpdate.Valid {
		stats.LastUpdate = &lastUpdate.Time
	}
	return stats, nil
}
