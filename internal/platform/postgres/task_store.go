package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/platform/logger"
	"github.com/phrazzld/taskdeck-api/internal/store"
)

// taskColumns is the column list shared by every task query.
const taskColumns = "id, user_id, title, description, status, priority, created_at, updated_at"

// Relevance weights for search ranking. A title match always outranks a
// description-only match; ties fall back to recency.
const (
	titleMatchWeight       = 2.0
	descriptionMatchWeight = 1.0
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// List implements store.TaskStore.List
// It retrieves all tasks owned by the given user, newest-first.
func (s *PostgresTaskStore) List(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, taskColumns)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return scanTasks(rows)
}

// GetByID implements store.TaskStore.GetByID
// It retrieves a task by its unique ID scoped to the owning user.
// Returns store.ErrTaskNotFound if no owned row matches.
func (s *PostgresTaskStore) GetByID(
	ctx context.Context,
	userID, id uuid.UUID,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`, taskColumns)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found",
				slog.String("task_id", id.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the owner does not exist (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, user_id, title, description, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// Update implements store.TaskStore.Update
// It applies a partial update in a single statement: COALESCE keeps the
// stored value for every field the update does not provide, and updated_at
// is always refreshed. Returns the updated row.
// Returns store.ErrTaskNotFound if no owned row matches.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	userID, id uuid.UUID,
	update *domain.TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if update.IsEmpty() {
		return nil, store.ErrEmptyUpdate
	}
	if err := update.Validate(); err != nil {
		log.Warn("task update validation failed",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE tasks
		SET title       = COALESCE($3, title),
		    description = COALESCE($4, description),
		    status      = COALESCE($5, status),
		    priority    = COALESCE($6, priority),
		    updated_at  = $7
		WHERE id = $1 AND user_id = $2
		RETURNING %s
	`, taskColumns)

	var title *string
	if update.Title != nil {
		trimmed := strings.TrimSpace(*update.Title)
		title = &trimmed
	}

	task, err := scanTask(s.db.QueryRowContext(
		ctx,
		query,
		id,
		userID,
		title,
		update.Description,
		statusArg(update.Status),
		priorityArg(update.Priority),
		time.Now().UTC(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found during update",
				slog.String("task_id", id.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	log.Info("task updated successfully",
		slog.String("task_id", id.String()),
		slog.String("user_id", userID.String()))
	return task, nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if no owned row matches, including on
// repeated deletes of the same ID.
func (s *PostgresTaskStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		id,
		userID,
	)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if rowsAffected == 0 {
		log.Debug("task not found during delete",
			slog.String("task_id", id.String()),
			slog.String("user_id", userID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully",
		slog.String("task_id", id.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// Search implements store.TaskStore.Search
// The relevance score is a weighted sum of title and description substring
// matches, so a title match always sorts above a description-only match.
// Status and priority filters intersect with the text predicate.
func (s *PostgresTaskStore) Search(
	ctx context.Context,
	userID uuid.UUID,
	query store.SearchQuery,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit := query.Limit
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}

	var sb strings.Builder
	args := []any{userID}

	fmt.Fprintf(&sb, `
		SELECT %s,
		       (CASE WHEN title ILIKE '%%' || $2 || '%%' THEN %g ELSE 0 END
		      + CASE WHEN description ILIKE '%%' || $2 || '%%' THEN %g ELSE 0 END) AS rank
		FROM tasks
		WHERE user_id = $1
		  AND (title ILIKE '%%' || $2 || '%%' OR description ILIKE '%%' || $2 || '%%')
	`, taskColumns, titleMatchWeight, descriptionMatchWeight)
	args = append(args, strings.TrimSpace(query.Query))

	if query.Status != nil {
		args = append(args, string(*query.Status))
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if query.Priority != nil {
		args = append(args, string(*query.Priority))
		fmt.Fprintf(&sb, " AND priority = $%d", len(args))
	}

	args = append(args, limit)
	fmt.Fprintf(&sb, " ORDER BY rank DESC, created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		log.Error("failed to search tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		var task domain.Task
		var rank float64
		if err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.Priority,
			&task.CreatedAt,
			&task.UpdatedAt,
			&rank,
		); err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans a single task row in taskColumns order.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

// scanTasks drains rows into a task slice.
func scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

// statusArg converts an optional status to a driver-friendly *string.
func statusArg(status *domain.TaskStatus) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}

// priorityArg converts an optional priority to a driver-friendly *string.
func priorityArg(priority *domain.TaskPriority) *string {
	if priority == nil {
		return nil
	}
	p := string(*priority)
	return &p
}
