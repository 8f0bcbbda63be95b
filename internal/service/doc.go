// Package service contains the application's use-case layer. It orchestrates
// the task store and the cache: reads go through the cache with a miss
// falling back to PostgreSQL, and mutations write to PostgreSQL first and
// then invalidate every cache key that could hold a stale view. Cache
// failures are never surfaced to callers; the store remains the source
// of truth.
package service
