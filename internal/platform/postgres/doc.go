// Package postgres provides PostgreSQL implementations of the store
// interfaces using database/sql with the pgx driver. Driver-level errors
// are translated to store sentinel errors via MapError so callers never
// depend on PostgreSQL error codes.
package postgres
