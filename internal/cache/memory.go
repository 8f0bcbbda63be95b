package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache implementation backed by a map with
// per-entry expiry. It serves deployments that run without Redis and is
// the standard cache double in tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now is injectable for expiry tests.
	now func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Ensure MemoryCache implements the Cache interface
var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Cache.Get. Expired entries are removed lazily.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// replaced the entry since the read.
		if current, stillThere := c.entries[key]; stillThere && c.now().After(current.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	// Copy so callers cannot mutate the cached payload.
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true, nil
}

// Set implements Cache.Set.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.entries[key] = memoryEntry{
		value:     stored,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

// Delete implements Cache.Delete.
func (c *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

// DeletePrefix implements Cache.DeletePrefix.
func (c *MemoryCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
	return nil
}

// Ping implements Cache.Ping. An in-process map is always reachable.
func (c *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

// Len reports the number of live (possibly expired but not yet evicted)
// entries. Used by tests.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
