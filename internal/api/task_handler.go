package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/taskdeck-api/internal/api/middleware"
	"github.com/phrazzld/taskdeck-api/internal/api/shared"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/platform/logger"
	"github.com/phrazzld/taskdeck-api/internal/service"
	"github.com/phrazzld/taskdeck-api/internal/store"
)

// TaskHandler handles task CRUD and search requests.
type TaskHandler struct {
	taskService service.TaskService
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewTaskHandler creates a TaskHandler backed by the given service.
func NewTaskHandler(taskService service.TaskService, log *slog.Logger) *TaskHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
		logger:      log.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to list tasks", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	task, err := h.taskService.GetTask(r.Context(), userID, taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), userID, service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// UpdateTask handles PUT /api/tasks/{id}. Only the fields present in the
// body change; absent fields keep their stored values.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	update := &domain.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		update.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		update.Priority = &priority
	}

	task, err := h.taskService.UpdateTask(r.Context(), userID, taskID, update)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), userID, taskID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, TaskDeletedResponse{
		Message: "Task deleted",
		ID:      taskID.String(),
	})
}

// SearchTasks handles GET and POST /api/tasks/search. GET reads
// q/status/priority/limit from the query string; POST additionally accepts
// the same fields as a JSON body, with body fields taking precedence.
func (h *TaskHandler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	params, err := searchParams(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	q := strings.TrimSpace(params.q)
	if q == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Search query is required")
		return
	}

	query := store.SearchQuery{Query: q, Limit: store.DefaultSearchLimit}

	if params.status != "" {
		status := domain.TaskStatus(params.status)
		if !domain.IsValidTaskStatus(status) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task status")
			return
		}
		query.Status = &status
	}
	if params.priority != "" {
		priority := domain.TaskPriority(params.priority)
		if !domain.IsValidTaskPriority(priority) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task priority")
			return
		}
		query.Priority = &priority
	}
	if params.limit != "" {
		limit, err := strconv.Atoi(params.limit)
		if err != nil || limit < 1 || limit > store.MaxSearchLimit {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		query.Limit = limit
	}

	tasks, err := h.taskService.SearchTasks(r.Context(), userID, query)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to search tasks", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// searchInputs carries the raw, not-yet-validated search parameters.
type searchInputs struct {
	q        string
	status   string
	priority string
	limit    string
}

// searchParams collects search inputs from the query string and, on POST,
// overlays any fields provided in a JSON body. An empty POST body is fine;
// a malformed one is an error.
func searchParams(r *http.Request) (searchInputs, error) {
	values := r.URL.Query()
	params := searchInputs{
		q:        values.Get("q"),
		status:   values.Get("status"),
		priority: values.Get("priority"),
		limit:    values.Get("limit"),
	}

	if r.Method != http.MethodPost {
		return params, nil
	}

	var req SearchTasksRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			return params, nil
		}
		return searchInputs{}, err
	}

	if req.Query != "" {
		params.q = req.Query
	}
	if req.Status != "" {
		params.status = req.Status
	}
	if req.Priority != "" {
		params.priority = req.Priority
	}
	if req.Limit != 0 {
		params.limit = strconv.Itoa(req.Limit)
	}
	return params, nil
}
