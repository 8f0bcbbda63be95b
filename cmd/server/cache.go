package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/taskdeck-api/internal/cache"
	"github.com/phrazzld/taskdeck-api/internal/config"
	"github.com/phrazzld/taskdeck-api/internal/platform/redis"
)

// setupCache connects to Redis when an address is configured, falling
// back to an in-process cache otherwise so the server can run without a
// Redis deployment. Returns the cache and a close function for cleanup.
func setupCache(cfg config.CacheConfig, appLogger *slog.Logger) (cache.Cache, func() error, error) {
	if cfg.RedisAddr == "" {
		appLogger.Warn("No Redis address configured, using in-process cache",
			"ttl_seconds", cfg.TTLSeconds)
		return cache.NewMemoryCache(), func() error { return nil }, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: cfg.RedisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			appLogger.Error("Error closing Redis client", "error", closeErr)
		}
		return nil, nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.RedisAddr, err)
	}

	appLogger.Info("Redis connection established",
		"addr", cfg.RedisAddr,
		"ttl_seconds", cfg.TTLSeconds)

	redisCache := redis.NewRedisCache(client, appLogger)
	return redisCache, client.Close, nil
}
