package cache

import (
	"context"
	"time"
)

// DefaultTTL is the expiry applied to cache entries when callers do not
// choose their own.
const DefaultTTL = 300 * time.Second

// Cache defines the key-value caching operations used by the service layer.
// Values are opaque serialized payloads; implementations must treat them
// as raw bytes.
//
// Implementations are expected to be safe for concurrent use. Errors from
// any method signal a degraded cache, never a missing entry: a clean miss
// is reported by Get's boolean, not by an error.
type Cache interface {
	// Get retrieves the value stored under key.
	// The boolean reports whether the key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key with the given TTL, overwriting any
	// existing entry. A non-positive TTL falls back to DefaultTTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Ping reports whether the cache backend is reachable.
	Ping(ctx context.Context) error
}
