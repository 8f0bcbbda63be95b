package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskdeck-api/internal/domain"
)

// Request/response structures shared across handlers.

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for register and login.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    string    `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=500"`
	Description string `json:"description" validate:"max=10000"`
	Status      string `json:"status"      validate:"omitempty,oneof=pending in_progress completed"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=low medium high"`
}

// UpdateTaskRequest defines the payload for partially updating a task.
// Absent fields keep their current values.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,max=500"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Status      *string `json:"status"      validate:"omitempty,oneof=pending in_progress completed"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=low medium high"`
}

// SearchTasksRequest defines the optional JSON body for POST search
// requests. Fields mirror the query-string parameters; enum and limit
// checks happen in the handler, shared with the GET path.
type SearchTasksRequest struct {
	Query    string `json:"q"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Limit    int    `json:"limit"`
}

// TaskDeletedResponse confirms a successful delete.
type TaskDeletedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskListResponse wraps a collection of tasks.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
}

// taskToResponse converts a domain.Task to its API representation.
func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID.String(),
		UserID:      task.UserID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// tasksToResponse converts a slice of tasks to a list response. A nil
// slice serializes as an empty list, not null.
func tasksToResponse(tasks []*domain.Task) TaskListResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return TaskListResponse{Tasks: out, Count: len(out)}
}
