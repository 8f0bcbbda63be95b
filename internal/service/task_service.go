package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskdeck-api/internal/cache"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/platform/logger"
	"github.com/phrazzld/taskdeck-api/internal/store"
)

// CreateTaskParams carries the caller-supplied fields for a new task.
// Zero-value Status and Priority fall back to the domain defaults.
type CreateTaskParams struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
}

// TaskService defines the task use-case operations exposed to the API layer.
type TaskService interface {
	// ListTasks returns all tasks owned by the user, newest-first.
	ListTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// GetTask returns one task by ID.
	// Returns store.ErrTaskNotFound if absent or owned by another user.
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// CreateTask validates and persists a new task.
	CreateTask(ctx context.Context, userID uuid.UUID, params CreateTaskParams) (*domain.Task, error)

	// UpdateTask applies a partial update and returns the updated task.
	UpdateTask(
		ctx context.Context,
		userID, taskID uuid.UUID,
		update *domain.TaskUpdate,
	) (*domain.Task, error)

	// DeleteTask removes a task.
	// Returns store.ErrTaskNotFound if absent, idempotently on repeats.
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error

	// SearchTasks runs a ranked substring search with optional filters.
	SearchTasks(ctx context.Context, userID uuid.UUID, query store.SearchQuery) ([]*domain.Task, error)
}

// taskService implements TaskService over a TaskStore and a Cache.
type taskService struct {
	taskStore store.TaskStore
	cache     cache.Cache
	cacheTTL  time.Duration
	logger    *slog.Logger
}

// Ensure taskService implements TaskService interface
var _ TaskService = (*taskService)(nil)

// NewTaskService creates a new TaskService with the given dependencies.
// A non-positive cacheTTL falls back to cache.DefaultTTL.
func NewTaskService(
	taskStore store.TaskStore,
	taskCache cache.Cache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, fmt.Errorf("taskStore cannot be nil")
	}
	if taskCache == nil {
		return nil, fmt.Errorf("cache cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultTTL
	}

	return &taskService{
		taskStore: taskStore,
		cache:     taskCache,
		cacheTTL:  cacheTTL,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

// ListTasks implements TaskService.ListTasks with read-through caching.
func (s *taskService) ListTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	key := cache.TaskListKey(userID)

	var cached []*domain.Task
	if s.cacheLookup(ctx, key, &cached) {
		return cached, nil
	}

	tasks, err := s.taskStore.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cachePopulate(ctx, key, tasks)
	return tasks, nil
}

// GetTask implements TaskService.GetTask with read-through caching.
// The by-id key is not user-scoped, so a cached task is still checked for
// ownership before being returned.
func (s *taskService) GetTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
) (*domain.Task, error) {
	key := cache.TaskKey(taskID)

	var cached domain.Task
	if s.cacheLookup(ctx, key, &cached) {
		if cached.UserID != userID {
			return nil, store.ErrTaskNotFound
		}
		return &cached, nil
	}

	task, err := s.taskStore.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	s.cachePopulate(ctx, key, task)
	return task, nil
}

// CreateTask implements TaskService.CreateTask.
func (s *taskService) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	params CreateTaskParams,
) (*domain.Task, error) {
	task, err := domain.NewTask(
		userID,
		params.Title,
		params.Description,
		params.Status,
		params.Priority,
	)
	if err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, err
	}

	// A new task can appear in the list and in any search result set
	s.invalidate(ctx, userID, nil)
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask.
func (s *taskService) UpdateTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	update *domain.TaskUpdate,
) (*domain.Task, error) {
	task, err := s.taskStore.Update(ctx, userID, taskID, update)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID, &taskID)
	return task, nil
}

// DeleteTask implements TaskService.DeleteTask.
func (s *taskService) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.taskStore.Delete(ctx, userID, taskID); err != nil {
		return err
	}

	s.invalidate(ctx, userID, &taskID)
	return nil
}

// SearchTasks implements TaskService.SearchTasks with read-through caching.
func (s *taskService) SearchTasks(
	ctx context.Context,
	userID uuid.UUID,
	query store.SearchQuery,
) ([]*domain.Task, error) {
	if query.Limit <= 0 {
		query.Limit = store.DefaultSearchLimit
	}
	key := cache.SearchKey(userID, query)

	var cached []*domain.Task
	if s.cacheLookup(ctx, key, &cached) {
		return cached, nil
	}

	tasks, err := s.taskStore.Search(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	s.cachePopulate(ctx, key, tasks)
	return tasks, nil
}

// cacheLookup fetches and decodes a cached value. It reports a usable hit;
// cache errors and undecodable payloads count as misses and are only logged.
func (s *taskService) cacheLookup(ctx context.Context, key string, dest any) bool {
	log := logger.FromContextOrDefault(ctx, s.logger)

	data, found, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("cache read failed, falling back to store",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return false
	}
	if !found {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		log.Warn("cache payload undecodable, falling back to store",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return false
	}

	log.Debug("cache hit", slog.String("key", key))
	return true
}

// cachePopulate serializes and stores a fresh value. Failures are logged
// and swallowed; the caller already has the authoritative result.
func (s *taskService) cachePopulate(ctx context.Context, key string, value any) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	data, err := json.Marshal(value)
	if err != nil {
		log.Warn("cache serialization failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}

	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		log.Warn("cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// invalidate clears every key that could hold a stale view after a mutation:
// the owner's list key, the task's by-id key when known, and all of the
// owner's search keys (individual search keys cannot be mapped back to the
// tasks they contain). Errors are logged and swallowed; a failed
// invalidation means at worst a stale read until the TTL expires.
func (s *taskService) invalidate(ctx context.Context, userID uuid.UUID, taskID *uuid.UUID) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	keys := []string{cache.TaskListKey(userID)}
	if taskID != nil {
		keys = append(keys, cache.TaskKey(*taskID))
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Warn("cache invalidation failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}

	if err := s.cache.DeletePrefix(ctx, cache.SearchPrefix(userID)); err != nil {
		log.Warn("search cache invalidation failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}
}
