package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the completion state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskPriority represents the urgency of a task.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskUserIDEmpty is returned when a task's user ID is empty or nil.
	ErrTaskUserIDEmpty = errors.New("task user ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty after trimming.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrInvalidTaskStatus is returned when a task status is not a recognized value.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrInvalidTaskPriority is returned when a task priority is not a recognized value.
	ErrInvalidTaskPriority = errors.New("invalid task priority")
)

// Task represents a single to-do item owned by a user.
// Status and priority are restricted to their respective value sets;
// arbitrary strings are rejected at validation time rather than stored.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user.
// It generates a new UUID for the task ID, trims the title, applies the
// pending/medium defaults for empty status and priority, and sets the
// creation/update timestamps.
// Returns an error if validation fails.
func NewTask(
	userID uuid.UUID,
	title, description string,
	status TaskStatus,
	priority TaskPriority,
) (*Task, error) {
	if status == "" {
		status = TaskStatusPending
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}

	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      status,
		Priority:    priority,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrTaskTitleEmpty
	}

	if !IsValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if !IsValidTaskPriority(t.Priority) {
		return ErrInvalidTaskPriority
	}

	return nil
}

// TaskUpdate describes a partial update to a task. Nil fields are left
// untouched; provided fields overwrite the stored values.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
}

// Validate checks the provided fields of a TaskUpdate.
// Returns an error if a provided field has an invalid value.
func (u *TaskUpdate) Validate() error {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return ErrTaskTitleEmpty
	}

	if u.Status != nil && !IsValidTaskStatus(*u.Status) {
		return ErrInvalidTaskStatus
	}

	if u.Priority != nil && !IsValidTaskPriority(*u.Priority) {
		return ErrInvalidTaskPriority
	}

	return nil
}

// IsEmpty reports whether the update carries no fields at all.
func (u *TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil && u.Priority == nil
}

// Apply copies the provided fields of the update onto the task, trims a
// provided title, and refreshes the UpdatedAt timestamp.
// Returns an error if the update or the resulting task is invalid.
func (t *Task) Apply(update *TaskUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}

	if update.Title != nil {
		t.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.Status != nil {
		t.Status = *update.Status
	}
	if update.Priority != nil {
		t.Priority = *update.Priority
	}

	t.UpdatedAt = time.Now().UTC()
	return t.Validate()
}

// IsValidTaskStatus checks if the given status is a valid TaskStatus.
func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// IsValidTaskPriority checks if the given priority is a valid TaskPriority.
func IsValidTaskPriority(priority TaskPriority) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}
