package services

import (
	"context"
	"log/slog"

	"github.com/buildvote/bot/internal/core/domain"
	"github.com/buildvote/bot/internal/core/ports"
)

// tokenService collapses persistence failures into booleans and empty
// results. The underlying cause is logged here; command handlers only
// relay a generic failure message to the user.
type tokenService struct {
	repo ports.TokenRepository
	log  *slog.Logger
}

func NewTokenService(repo ports.TokenRepository, log *slog.Logger) ports.TokenService {
	return &tokenService{
		repo: repo,
		log:  log,
	}
}

func (s *tokenService) SaveTokens(ctx context.Context, discordUserID, accessToken, refreshToken string) bool {
	if err := s.repo.Upsert(ctx, discordUserID, accessToken, refreshToken); err != nil {
		s.log.Error("failed to save token pair", "user_id", discordUserID, "error", err)
		return false
	}
	return true
}

func (s *tokenService) SaveAccessToken(ctx context.Context, discordUserID, accessToken string) bool {
	if err := s.repo.UpdateAccessToken(ctx, discordUserID, accessToken); err != nil {
		s.log.Error("failed to save access token", "user_id", discordUserID, "error", err)
		return false
	}
	return true
}

func (s *tokenService) SaveRefreshToken(ctx context.Context, discordUserID, refreshToken string) bool {
	if err := s.repo.UpdateRefreshToken(ctx, discordUserID, refreshToken); err != nil {
		s.log.Error("failed to save refresh token", "user_id", discordUserID, "error", err)
		return false
	}
	return true
}

func (s *tokenService) RemoveTokens(ctx context.Context, discordUserID string) bool {
	removed, err := s.repo.Remove(ctx, discordUserID)
	if err != nil {
		s.log.Error("failed to remove tokens", "user_id", discordUserID, "error", err)
		return false
	}
	return removed
}

func (s *tokenService) SetValidity(ctx context.Context, discordUserID string, valid bool) bool {
	updated, err := s.repo.SetValidity(ctx, discordUserID, valid)
	if err != nil {
		s.log.Error("failed to update token validity", "user_id", discordUserID, "error", err)
		return false
	}
	return updated
}

func (s *tokenService) InvalidateAll(ctx context.Context) int64 {
	affected, err := s.repo.InvalidateAll(ctx)
	if err != nil {
		s.log.Error("failed to invalidate tokens", "error", err)
		return 0
	}
	return affected
}

func (s *tokenService) ValidTokens(ctx context.Context) []domain.UserToken {
	tokens, err := s.repo.ListValid(ctx)
	if err != nil {
		s.log.Error("failed to list valid tokens", "error", err)
		return nil
	}
	return tokens
}

func (s *tokenService) AllTokens(ctx context.Context) []domain.UserToken {
	tokens, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("failed to list tokens", "error", err)
		return nil
	}
	return tokens
}

func (s *tokenService) Stats(ctx context.Context) domain.TokenStats {
	stats, err := s.repo.Stats(ctx)
	if err != nil || stats == nil {
		s.log.Error("failed to fetch token stats", "error", err)
		return domain.TokenStats{}
	}
	return *stats
}
