package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return mr, client
}

func TestBlacklistAddAndContains(t *testing.T) {
	_, client := setupTestRedis(t)
	bl := NewRedisBlacklist(client)
	ctx := context.Background()

	token := "v4.local.sometoken"

	found, err := bl.Contains(ctx, token)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, bl.Add(ctx, token, time.Now().Add(time.Hour)))

	found, err = bl.Contains(ctx, token)
	require.NoError(t, err)
	assert.True(t, found)

	// Unrelated tokens stay clean.
	found, err = bl.Contains(ctx, "v4.local.othertoken")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBlacklistAddIsIdempotent(t *testing.T) {
	mr, client := setupTestRedis(t)
	bl := NewRedisBlacklist(client)
	ctx := context.Background()

	token := "v4.local.repeated"
	expiry := time.Now().Add(time.Hour)

	require.NoError(t, bl.Add(ctx, token, expiry))
	require.NoError(t, bl.Add(ctx, token, expiry))

	found, err := bl.Contains(ctx, token)
	require.NoError(t, err)
	assert.True(t, found)

	assert.Len(t, mr.Keys(), 1)
}

func TestBlacklistEntryCarriesTokenLifetime(t *testing.T) {
	mr, client := setupTestRedis(t)
	bl := NewRedisBlacklist(client)
	ctx := context.Background()

	token := "v4.local.timed"
	require.NoError(t, bl.Add(ctx, token, time.Now().Add(time.Hour)))

	ttl := mr.TTL(blacklistKey(token))
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestBlacklistSkipsExpiredTokens(t *testing.T) {
	mr, client := setupTestRedis(t)
	bl := NewRedisBlacklist(client)
	ctx := context.Background()

	token := "v4.local.alreadyexpired"
	require.NoError(t, bl.Add(ctx, token, time.Now().Add(-time.Minute)))

	found, err := bl.Contains(ctx, token)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, mr.Keys())
}

func TestBlacklistEntryEvictsAtExpiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	bl := NewRedisBlacklist(client)
	ctx := context.Background()

	token := "v4.local.shortlived"
	require.NoError(t, bl.Add(ctx, token, time.Now().Add(time.Minute)))

	found, err := bl.Contains(ctx, token)
	require.NoError(t, err)
	assert.True(t, found)

	mr.FastForward(2 * time.Minute)

	found, err = bl.Contains(ctx, token)
	require.NoError(t, err)
	assert.False(t, found)
}
