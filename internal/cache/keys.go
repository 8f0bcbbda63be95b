package cache

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/store"
)

// Key scheme. Search keys hash the normalized query so keys stay bounded;
// because a search key cannot be mapped back to the tasks it contains,
// mutations clear the whole SearchPrefix instead of individual keys.

// TaskListKey returns the cache key for a user's full task list.
func TaskListKey(userID uuid.UUID) string {
	return fmt.Sprintf("tasks:user:%s", userID)
}

// TaskKey returns the cache key for a single task by ID.
func TaskKey(id uuid.UUID) string {
	return fmt.Sprintf("task:%s", id)
}

// SearchPrefix returns the key prefix covering all of a user's cached
// search results.
func SearchPrefix(userID uuid.UUID) string {
	return fmt.Sprintf("search:%s:", userID)
}

// SearchKey returns the cache key for one search result set. Queries that
// normalize to the same string (case-insensitive query text, same filters,
// same limit) share a key.
func SearchKey(userID uuid.UUID, query store.SearchQuery) string {
	var b strings.Builder
	b.WriteString("q=")
	b.WriteString(strings.ToLower(strings.TrimSpace(query.Query)))
	b.WriteString("&status=")
	if query.Status != nil {
		b.WriteString(string(*query.Status))
	}
	b.WriteString("&priority=")
	if query.Priority != nil {
		b.WriteString(string(*query.Priority))
	}
	fmt.Fprintf(&b, "&limit=%d", query.Limit)

	h := fnv.New64a()
	_, _ = h.Write([]byte(b.String()))
	return fmt.Sprintf("%s%x", SearchPrefix(userID), h.Sum64())
}
