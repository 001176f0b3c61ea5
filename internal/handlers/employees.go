package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/auth"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/services"
	pkghttp "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/http"
)

// EmployeeServiceInterface defines the interface for employee business logic
type EmployeeServiceInterface interface {
	GetByID(ctx context.Context, id string) (*models.Employee, error)
	List(ctx context.Context, limit, offset int) ([]*models.Employee, error)
	Create(ctx context.Context, emp *models.Employee, password string) (*models.Employee, error)
	Update(ctx context.Context, id string, update *models.EmployeeUpdate) (*models.Employee, error)
	Delete(ctx context.Context, id string) error
	ListDepartments(ctx context.Context) ([]*models.Department, error)
	CreateDepartment(ctx context.Context, name string) (*models.Department, error)
	DeleteDepartment(ctx context.Context, id string) error
	ListPositions(ctx context.Context) ([]*models.Position, error)
	CreatePosition(ctx context.Context, title string) (*models.Position, error)
	DeletePosition(ctx context.Context, id string) error
}

// EmployeeHandler handles employee and org-structure HTTP requests
type EmployeeHandler struct {
	service EmployeeServiceInterface
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(service EmployeeServiceInterface) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

// CreateEmployeeRequest represents the request body for employee creation
type CreateEmployeeRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required"`
	FirstName    string  `json:"first_name" validate:"required,min=1,max=100"`
	LastName     string  `json:"last_name" validate:"required,min=1,max=100"`
	Role         string  `json:"role" validate:"omitempty,oneof=employee manager hr admin"`
	DepartmentID *string `json:"department_id"`
	PositionID   *string `json:"position_id"`
}

// UpdateEmployeeRequest represents the request body for employee updates.
// Absent fields are left unchanged.
type UpdateEmployeeRequest struct {
	FirstName    *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName     *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Role         *string `json:"role" validate:"omitempty,oneof=employee manager hr admin"`
	Status       *string `json:"status" validate:"omitempty,oneof=active suspended disabled"`
	DepartmentID *string `json:"department_id"`
	PositionID   *string `json:"position_id"`
}

// NameRequest is the request body for department/position creation
type NameRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// Me returns the caller's own employee record
func (h *EmployeeHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaimsFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	emp, err := h.service.GetByID(r.Context(), claims.EmployeeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Employee not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, services.NewEmployeeResponse(emp))
}

// Get returns one employee by ID
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Employee not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, services.NewEmployeeResponse(emp))
}

// List returns a page of employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit < 1 || limit > 200 || offset < 0 {
		pkghttp.WriteBadRequest(w, "Invalid pagination parameters")
		return
	}

	employees, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	responses := make([]*services.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, services.NewEmployeeResponse(emp))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"employees": responses,
		"limit":     limit,
		"offset":    offset,
	})
}

// Create adds a new employee
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	emp := &models.Employee{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         models.Role(req.Role),
		DepartmentID: req.DepartmentID,
		PositionID:   req.PositionID,
	}

	created, err := h.service.Create(r.Context(), emp, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "An employee with this email already exists")
		case strings.Contains(err.Error(), "invalid password"):
			pkghttp.WriteBadRequest(w, "Password does not meet requirements")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, services.NewEmployeeResponse(created))
}

// Update applies a partial update to an employee
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	update := &models.EmployeeUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		DepartmentID: req.DepartmentID,
		PositionID:   req.PositionID,
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		update.Role = &role
	}
	if req.Status != nil {
		update.Status = req.Status
	}

	updated, err := h.service.Update(r.Context(), id, update)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Employee not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid update")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, services.NewEmployeeResponse(updated))
}

// Delete removes an employee
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Employee not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListDepartments returns all departments
func (h *EmployeeHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.service.ListDepartments(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"departments": departments})
}

// CreateDepartment adds a department
func (h *EmployeeHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	d, err := h.service.CreateDepartment(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteConflict(w, "Department already exists")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

// DeleteDepartment removes a department
func (h *EmployeeHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDepartment(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Department not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPositions returns all positions
func (h *EmployeeHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.service.ListPositions(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"positions": positions})
}

// CreatePosition adds a position
func (h *EmployeeHandler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	p, err := h.service.CreatePosition(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteConflict(w, "Position already exists")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

// DeletePosition removes a position
func (h *EmployeeHandler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePosition(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Position not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an integer query parameter with a default
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}
