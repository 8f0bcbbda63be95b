// Package redis provides a Redis-backed implementation of the cache.Cache
// interface using the go-redis client.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phrazzld/taskdeck-api/internal/cache"
)

// scanBatchSize bounds how many keys one SCAN iteration returns during
// prefix invalidation.
const scanBatchSize = 100

// RedisCache implements the cache.Cache interface using a Redis server
// as the storage backend.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisCache implements the cache.Cache interface
var _ cache.Cache = (*RedisCache)(nil)

// NewRedisCache creates a new Redis implementation of the cache.Cache
// interface. It accepts a client that should be initialized and managed
// by the caller. If logger is nil, a default logger will be used.
func NewRedisCache(client *redis.Client, logger *slog.Logger) *RedisCache {
	if client == nil {
		panic("client cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &RedisCache{
		client: client,
		logger: logger.With(slog.String("component", "redis_cache")),
	}
}

// Get implements cache.Cache.Get.
// A missing key is a clean miss, not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get failed for key %s: %w", key, err)
	}
	return data, true, nil
}

// Set implements cache.Cache.Set.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}

	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed for key %s: %w", key, err)
	}
	return nil
}

// Delete implements cache.Cache.Delete.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}
	return nil
}

// DeletePrefix implements cache.Cache.DeletePrefix.
// It walks the keyspace with SCAN rather than KEYS so invalidation does
// not block the server on large keyspaces.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	pattern := prefix + "*"

	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("cache scan failed for pattern %s: %w", pattern, err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache delete failed for pattern %s: %w", pattern, err)
			}
			deleted += len(keys)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	if deleted > 0 {
		c.logger.Debug("invalidated cache keys by prefix",
			slog.String("prefix", prefix),
			slog.Int("deleted", deleted))
	}
	return nil
}

// Ping implements cache.Cache.Ping.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache ping failed: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
