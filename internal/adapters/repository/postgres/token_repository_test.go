package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewTokenRepository(newTestDB(t))

	require.NoError(t, repo.Upsert(ctx, "user-1", "acc-1", "ref-1"))

	token, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "acc-1", token.AccessToken)
	assert.Equal(t, "ref-1", token.RefreshToken)
	assert.True(t, token.Valid)
	assert.True(t, token.Complete())

	// a second upsert overwrites both halves and re-marks the row valid
	_, err = repo.SetValidity(ctx, "user-1", false)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, "user-1", "acc-2", "ref-2"))

	token, err = repo.Get(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "acc-2", token.AccessToken)
	assert.Equal(t, "ref-2", token.RefreshToken)
	assert.True(t, token.Valid)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "upsert must not create a second row for the same user")
}

func TestTokenRepositoryPartialUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewTokenRepository(newTestDB(t))

	// access-only insert leaves the refresh half empty
	require.NoError(t, repo.UpdateAccessToken(ctx, "user-1", "acc-1"))
	token, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "acc-1", token.AccessToken)
	assert.Empty(t, token.RefreshToken)
	assert.False(t, token.Complete())

	// refresh update on the existing row keeps the access half
	require.NoError(t, repo.UpdateRefreshToken(ctx, "user-1", "ref-1"))
	token, err = repo.Get(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "acc-1", token.AccessToken)
	assert.Equal(t, "ref-1", token.RefreshToken)
	assert.True(t, token.Complete())
}

func TestTokenRepositoryGetMissing(t *testing.T) {
	repo := NewTokenRepository(newTestDB(t))

	token, err := repo.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestTokenRepositoryRemove(t *testing.T) {
	ctx := context.Background()
	repo := NewTokenRepository(newTestDB(t))

	require.NoError(t, repo.Upsert(ctx, "user-1", "acc", "ref"))

	removed, err := repo.Remove(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestTokenRepositoryInvalidateAll(t *testing.T) {
	ctx := context.Background()
	repo := NewTokenRepository(newTestDB(t))

	for i := 0; i < 10; i++ {
		userID := fmt.Sprintf("user-%d", i)
		require.NoError(t, repo.Upsert(ctx, userID, "acc-"+userID, "ref-"+userID))
	}

	affected, err := repo.InvalidateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), affected)

	valid, err := repo.ListValid(ctx)
	require.NoError(t, err)
	assert.Empty(t, valid)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 10)

	// a second pass touches nothing
	affected, err = repo.InvalidateAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestTokenRepositoryStats(t *testing.T) {
	ctx := context.Background()
	repo := NewTokenRepository(newTestDB(t))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Zero(t, stats.Total)
	assert.Nil(t, stats.LastUpdate)

	require.NoError(t, repo.Upsert(ctx, "user-1", "acc", "ref"))
	require.NoError(t, repo.Upsert(ctx, "user-2", "acc", "ref"))
	_, err = repo.SetValidity(ctx, "user-2", false)
	require.NoError(t, err)

	stats, err = repo.Stats(ctx)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Valid)
	assert.Equal(t, int64(1), stats.Invalid)
	assert.Equal(t, int64(2), stats.UniqueUsers)
	assert.NotNil(t, stats.LastUpdate)
}
