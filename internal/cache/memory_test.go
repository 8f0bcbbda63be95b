package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemoryCache()

	_, found, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found, "Expected miss for absent key")

	require.NoError(t, c.Set(ctx, "k", []byte("v1"), time.Minute))

	value, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found, "Expected hit after set")
	assert.Equal(t, []byte("v1"), value)

	// Set overwrites any existing entry for the key
	require.NoError(t, c.Set(ctx, "k", []byte("v2"), time.Minute))
	value, found, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v2"), value)
}

func TestMemoryCacheExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemoryCache()

	// Control the clock so expiry does not depend on wall time
	current := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 300*time.Second))

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found, "Expected hit before TTL elapses")

	current = current.Add(301 * time.Second)
	_, found, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found, "Expected miss after TTL elapses")
}

func TestMemoryCacheDefaultTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemoryCache()

	current := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	// Zero TTL falls back to DefaultTTL
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	current = current.Add(DefaultTTL - time.Second)
	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)

	current = current.Add(2 * time.Second)
	_, found, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCacheDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, c.Delete(ctx, "a", "never-existed"))

	_, found, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = c.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, found, "Expected unrelated key to survive delete")
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "search:u1:aaa", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "search:u1:bbb", []byte("2"), time.Minute))
	require.NoError(t, c.Set(ctx, "search:u2:ccc", []byte("3"), time.Minute))
	require.NoError(t, c.Set(ctx, "tasks:user:u1", []byte("4"), time.Minute))

	require.NoError(t, c.DeletePrefix(ctx, "search:u1:"))

	_, found, _ := c.Get(ctx, "search:u1:aaa")
	assert.False(t, found, "Expected prefixed key removed")
	_, found, _ = c.Get(ctx, "search:u1:bbb")
	assert.False(t, found, "Expected prefixed key removed")
	_, found, _ = c.Get(ctx, "search:u2:ccc")
	assert.True(t, found, "Expected other user's search keys untouched")
	_, found, _ = c.Get(ctx, "tasks:user:u1")
	assert.True(t, found, "Expected list key untouched")
}

func TestMemoryCacheValueIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemoryCache()

	original := []byte("payload")
	require.NoError(t, c.Set(ctx, "k", original, time.Minute))

	// Mutating the slice passed to Set must not change the cached copy
	original[0] = 'X'

	value, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("payload"), value)

	// Mutating the returned slice must not change the cached copy either
	value[0] = 'Y'
	value2, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("payload"), value2)
}

func TestMemoryCachePing(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewMemoryCache().Ping(context.Background()))
}
