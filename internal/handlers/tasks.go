package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/auth"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	pkghttp "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/http"
)

// TaskServiceInterface defines the interface for task board business logic
type TaskServiceInterface interface {
	Board(ctx context.Context) (map[models.TaskStatus][]*models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, id string, update *models.TaskUpdate) (*models.Task, error)
	Move(ctx context.Context, id string, status models.TaskStatus, boardOrder int) error
	Delete(ctx context.Context, id string) error
}

// TaskHandler handles Kanban board HTTP requests
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

// CreateTaskRequest represents the request body for task creation
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Status      string  `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	AssigneeID  *string `json:"assignee_id"`
}

// UpdateTaskRequest represents a partial update to a task. Absent fields
// are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	AssigneeID  *string `json:"assignee_id"`
}

// MoveTaskRequest places a task into a column at a position
type MoveTaskRequest struct {
	Status     string `json:"status" validate:"required,oneof=todo in_progress done"`
	BoardOrder int    `json:"board_order" validate:"gte=0"`
}

// Board returns all tasks grouped by column
func (h *TaskHandler) Board(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.Board(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// Create adds a task to the board
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaimsFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		AssigneeID:  req.AssigneeID,
		CreatedBy:   claims.EmployeeID,
	})
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid task")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// Update edits a task's fields
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &models.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Task not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid update")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Move drags a task to a new column position
func (h *TaskHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	err := h.service.Move(r.Context(), chi.URLParam(r, "id"), models.TaskStatus(req.Status), req.BoardOrder)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Task not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid move")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a task
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Task not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
