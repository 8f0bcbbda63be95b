package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskdeck-api/internal/cache"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/store"
)

// fakeTaskStore is an in-memory store.TaskStore used to exercise the
// service layer without a database. It counts reads so tests can tell
// cache hits from store round trips.
type fakeTaskStore struct {
	mu        sync.Mutex
	tasks     map[uuid.UUID]*domain.Task
	listCalls int
	getCalls  int
	failAll   bool
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

var errStoreDown = errors.New("store unavailable")

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (f *fakeTaskStore) List(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errStoreDown
	}
	f.listCalls++

	var tasks []*domain.Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			copied := *t
			tasks = append(tasks, &copied)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (f *fakeTaskStore) GetByID(
	ctx context.Context,
	userID, id uuid.UUID,
) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errStoreDown
	}
	f.getCalls++

	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errStoreDown
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) Update(
	ctx context.Context,
	userID, id uuid.UUID,
	update *domain.TaskUpdate,
) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errStoreDown
	}

	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	if err := t.Apply(update); err != nil {
		return nil, err
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errStoreDown
	}

	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskStore) Search(
	ctx context.Context,
	userID uuid.UUID,
	query store.SearchQuery,
) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errStoreDown
	}

	q := strings.ToLower(strings.TrimSpace(query.Query))
	type ranked struct {
		task *domain.Task
		rank float64
	}
	var matches []ranked
	for _, t := range f.tasks {
		if t.UserID != userID {
			continue
		}
		if query.Status != nil && t.Status != *query.Status {
			continue
		}
		if query.Priority != nil && t.Priority != *query.Priority {
			continue
		}
		var rank float64
		if strings.Contains(strings.ToLower(t.Title), q) {
			rank += 2
		}
		if strings.Contains(strings.ToLower(t.Description), q) {
			rank += 1
		}
		if rank == 0 {
			continue
		}
		copied := *t
		matches = append(matches, ranked{&copied, rank})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank > matches[j].rank
		}
		return matches[i].task.CreatedAt.After(matches[j].task.CreatedAt)
	})

	limit := query.Limit
	if limit <= 0 || limit > len(matches) {
		limit = len(matches)
	}
	tasks := make([]*domain.Task, 0, limit)
	for _, m := range matches[:limit] {
		tasks = append(tasks, m.task)
	}
	return tasks, nil
}

// faultyCache fails every operation, modeling an unreachable Redis.
type faultyCache struct{}

var _ cache.Cache = (*faultyCache)(nil)

var errCacheDown = errors.New("cache unreachable")

func (faultyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errCacheDown
}
func (faultyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errCacheDown
}
func (faultyCache) Delete(ctx context.Context, keys ...string) error { return errCacheDown }
func (faultyCache) DeletePrefix(ctx context.Context, prefix string) error {
	return errCacheDown
}
func (faultyCache) Ping(ctx context.Context) error { return errCacheDown }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService(t *testing.T) (TaskService, *fakeTaskStore, *cache.MemoryCache) {
	t.Helper()
	fake := newFakeTaskStore()
	mem := cache.NewMemoryCache()
	svc, err := NewTaskService(fake, mem, time.Minute, testLogger())
	require.NoError(t, err)
	return svc, fake, mem
}

func TestNewTaskServiceValidatesDependencies(t *testing.T) {
	t.Parallel()
	fake := newFakeTaskStore()
	mem := cache.NewMemoryCache()

	_, err := NewTaskService(nil, mem, time.Minute, testLogger())
	assert.Error(t, err)

	_, err = NewTaskService(fake, nil, time.Minute, testLogger())
	assert.Error(t, err)

	_, err = NewTaskService(fake, mem, time.Minute, nil)
	assert.Error(t, err)
}

func TestCreateTaskAppliesDefaultsAndTrimsTitle(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	task, err := svc.CreateTask(ctx, userID, CreateTaskParams{Title: "  Buy milk  "})
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", task.Title, "Title should be the trimmed input")
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
	assert.Equal(t, userID, task.UserID)
}

func TestCreateTaskRejectsEmptyTitle(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)

	_, err := svc.CreateTask(context.Background(), uuid.New(), CreateTaskParams{Title: "   "})
	assert.ErrorIs(t, err, domain.ErrTaskTitleEmpty)
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.CreateTask(ctx, userID, CreateTaskParams{
		Title:       "Team meeting",
		Description: "weekly sync",
		Priority:    domain.TaskPriorityHigh,
	})
	require.NoError(t, err)

	fetched, err := svc.GetTask(ctx, userID, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.Title, fetched.Title)
	assert.Equal(t, created.Description, fetched.Description)
	assert.Equal(t, created.Status, fetched.Status)
	assert.Equal(t, created.Priority, fetched.Priority)
}

func TestListTasksReadThrough(t *testing.T) {
	t.Parallel()
	svc, fake, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateTask(ctx, userID, CreateTaskParams{Title: "one"})
	require.NoError(t, err)

	first, err := svc.ListTasks(ctx, userID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, fake.listCalls, "First list should hit the store")

	second, err := svc.ListTasks(ctx, userID)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, fake.listCalls, "Second list should be served from cache")
}

func TestCreateInvalidatesListCache(t *testing.T) {
	t.Parallel()
	svc, fake, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateTask(ctx, userID, CreateTaskParams{Title: "first"})
	require.NoError(t, err)

	// Populate the list cache
	tasks, err := svc.ListTasks(ctx, userID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	// A POST after a cached GET must be visible on the next GET
	_, err = svc.CreateTask(ctx, userID, CreateTaskParams{Title: "second"})
	require.NoError(t, err)

	tasks, err = svc.ListTasks(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2, "List after create must reflect the new task")
	assert.Equal(t, 2, fake.listCalls, "Invalidation should force a store re-read")
}

func TestUpdateInvalidatesTaskCache(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.CreateTask(ctx, userID, CreateTaskParams{Title: "Buy milk"})
	require.NoError(t, err)

	// Populate the by-id cache
	_, err = svc.GetTask(ctx, userID, created.ID)
	require.NoError(t, err)

	status := domain.TaskStatusCompleted
	updated, err := svc.UpdateTask(ctx, userID, created.ID, &domain.TaskUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, updated.Status)
	assert.Equal(t, "Buy milk", updated.Title, "Title must survive a status-only update")
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	fetched, err := svc.GetTask(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, fetched.Status,
		"Get after update must not serve the stale cached task")
}

func TestDeleteLifecycle(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.CreateTask(ctx, userID, CreateTaskParams{Title: "Buy milk"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, userID, created.ID))

	_, err = svc.GetTask(ctx, userID, created.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound, "Get after delete must 404")

	// Deleting a missing id fails the same way on first and repeated calls
	err = svc.DeleteTask(ctx, userID, created.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	err = svc.DeleteTask(ctx, userID, created.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestGetTaskOwnershipOnCachedEntry(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	created, err := svc.CreateTask(ctx, owner, CreateTaskParams{Title: "private"})
	require.NoError(t, err)

	// Warm the by-id cache as the owner
	_, err = svc.GetTask(ctx, owner, created.ID)
	require.NoError(t, err)

	// The cached entry must not leak across users
	_, err = svc.GetTask(ctx, stranger, created.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestSearchRankingAndCaching(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateTask(ctx, userID, CreateTaskParams{Title: "Team meeting"})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, userID, CreateTaskParams{
		Title:       "Buy groceries",
		Description: "before the meeting",
	})
	require.NoError(t, err)

	results, err := svc.SearchTasks(ctx, userID, store.SearchQuery{Query: "meet"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Team meeting", results[0].Title,
		"Title match must rank above description-only match")

	// Same query again is served from cache
	cachedResults, err := svc.SearchTasks(ctx, userID, store.SearchQuery{Query: "meet"})
	require.NoError(t, err)
	assert.Len(t, cachedResults, 2)

	// A mutation clears search caches: new matching task shows up
	_, err = svc.CreateTask(ctx, userID, CreateTaskParams{Title: "meet the team"})
	require.NoError(t, err)

	results, err = svc.SearchTasks(ctx, userID, store.SearchQuery{Query: "meet"})
	require.NoError(t, err)
	assert.Len(t, results, 3, "Search after create must not serve stale results")
}

func TestSearchFilterIntersection(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	completed := domain.TaskStatusCompleted
	high := domain.TaskPriorityHigh

	_, err := svc.CreateTask(ctx, userID, CreateTaskParams{
		Title: "ship release", Status: completed, Priority: high,
	})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, userID, CreateTaskParams{
		Title: "ship docs", Status: completed, Priority: domain.TaskPriorityLow,
	})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, userID, CreateTaskParams{
		Title: "ship hotfix", Priority: high,
	})
	require.NoError(t, err)

	// Both predicates must hold: intersection, not union
	results, err := svc.SearchTasks(ctx, userID, store.SearchQuery{
		Query:    "ship",
		Status:   &completed,
		Priority: &high,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ship release", results[0].Title)
}

func TestCacheFailuresDoNotFailRequests(t *testing.T) {
	t.Parallel()
	fake := newFakeTaskStore()
	svc, err := NewTaskService(fake, faultyCache{}, time.Minute, testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	userID := uuid.New()

	// Every operation must succeed against the store even though every
	// cache call errors.
	created, err := svc.CreateTask(ctx, userID, CreateTaskParams{Title: "resilient"})
	require.NoError(t, err)

	tasks, err := svc.ListTasks(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	_, err = svc.GetTask(ctx, userID, created.ID)
	require.NoError(t, err)

	status := domain.TaskStatusInProgress
	_, err = svc.UpdateTask(ctx, userID, created.ID, &domain.TaskUpdate{Status: &status})
	require.NoError(t, err)

	_, err = svc.SearchTasks(ctx, userID, store.SearchQuery{Query: "resil"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, userID, created.ID))
}

func TestStoreErrorsSurface(t *testing.T) {
	t.Parallel()
	fake := newFakeTaskStore()
	fake.failAll = true
	svc, err := NewTaskService(fake, cache.NewMemoryCache(), time.Minute, testLogger())
	require.NoError(t, err)

	_, err = svc.ListTasks(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errStoreDown)
}
