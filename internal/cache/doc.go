// Package cache defines the caching interface used by the service layer
// and the cache key scheme shared by all implementations. Backends live
// under internal/platform; an in-memory implementation is provided here
// for deployments without Redis and for tests.
package cache
