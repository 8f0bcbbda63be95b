package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
)

// DefaultSearchLimit caps result sets when a search request does not
// specify its own limit. MaxSearchLimit bounds client-supplied limits.
const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 200
)

// SearchQuery describes a task search: a case-insensitive substring query
// over title and description, optionally intersected with status and
// priority filters. A zero Limit falls back to DefaultSearchLimit.
type SearchQuery struct {
	Query    string
	Status   *domain.TaskStatus
	Priority *domain.TaskPriority
	Limit    int
}

// TaskStore defines the interface for task data persistence.
// All operations are scoped to the owning user: a task owned by a
// different user is indistinguishable from a missing task.
type TaskStore interface {
	// List retrieves all tasks owned by the given user,
	// ordered newest-first by creation time.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist or is not owned
	// by the given user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)

	// Create saves a new task to the store.
	// The task must be valid according to domain validation rules.
	Create(ctx context.Context, task *domain.Task) error

	// Update applies a partial update to an existing task: only provided
	// fields overwrite stored values, and UpdatedAt is always refreshed.
	// Returns the updated task, or ErrTaskNotFound if no owned row matches.
	Update(
		ctx context.Context,
		userID, id uuid.UUID,
		update *domain.TaskUpdate,
	) (*domain.Task, error)

	// Delete removes a task from the store by its ID.
	// Returns ErrTaskNotFound if the task does not exist or is not owned
	// by the given user. Repeated deletes of the same ID keep returning
	// ErrTaskNotFound.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// Search retrieves tasks matching the query, ranked by a weighted
	// relevance score (title matches above description-only matches) with
	// ties broken by recency.
	Search(ctx context.Context, userID uuid.UUID, query SearchQuery) ([]*domain.Task, error)
}
