package cache

import (
	"context"
	"testing"
	"time"

	"github.com/mikey/llm-smart-forward/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T, maxEntries int) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(zap.NewNop(), maxEntries, time.Hour)
	t.Cleanup(c.Stop)
	return c
}

func entry(key, response string, ttl time.Duration) *core.CacheEntry {
	now := time.Now()
	return &core.CacheEntry{
		Key:       key,
		Response:  response,
		LastSeen:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("k1", "cached response", time.Hour)))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "cached response", got.Response)
	assert.Equal(t, 2, got.Frequency) // 1 on insert, bumped by the read
}

func TestMemoryCache_MissAndExpiry(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	_, err := c.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Set(ctx, entry("stale", "old", -time.Minute)))
	_, err = c.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrExpired)

	// Expired entries are dropped on read
	_, err = c.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCache_EvictsLeastFrequentlyUsed(t *testing.T) {
	c := newTestCache(t, 2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("hot", "a", time.Hour)))
	require.NoError(t, c.Set(ctx, entry("cold", "b", time.Hour)))

	// Reads make "hot" more frequent than "cold"
	_, err := c.Get(ctx, "hot")
	require.NoError(t, err)
	_, err = c.Get(ctx, "hot")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, entry("new", "c", time.Hour)))
	assert.Equal(t, 2, c.Len())

	_, err = c.Get(ctx, "cold")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Get(ctx, "hot")
	assert.NoError(t, err)
	_, err = c.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestMemoryCache_UpdateExistingKeyDoesNotEvict(t *testing.T) {
	c := newTestCache(t, 2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("k1", "a", time.Hour)))
	require.NoError(t, c.Set(ctx, entry("k2", "b", time.Hour)))
	require.NoError(t, c.Set(ctx, entry("k1", "a2", time.Hour)))

	assert.Equal(t, 2, c.Len())
	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "a2", got.Response)
}

func TestMemoryCache_GetReturnsCopy(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("k1", "original", time.Hour)))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	got.Response = "mutated"

	again, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Response)
}

func TestMemoryCache_Cleanup(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("live", "a", time.Hour)))
	require.NoError(t, c.Set(ctx, entry("dead", "b", -time.Minute)))

	require.NoError(t, c.Cleanup(ctx))

	assert.Equal(t, 1, c.Len())
	_, err := c.Get(ctx, "live")
	assert.NoError(t, err)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("k1", "a", time.Hour)))
	require.NoError(t, c.Delete(ctx, "k1"))

	_, err := c.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)
}
