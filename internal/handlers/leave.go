package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/auth"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/leavecalc"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/repositories"
	pkghttp "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/http"
)

const dateLayout = "2006-01-02"

// LeaveServiceInterface defines the interface for leave business logic
type LeaveServiceInterface interface {
	Create(ctx context.Context, req *models.LeaveRequest) (*models.LeaveRequest, error)
	GetByID(ctx context.Context, id, callerID string, callerRole models.Role) (*models.LeaveRequest, error)
	List(ctx context.Context, filter repositories.LeaveFilter, callerID string, callerRole models.Role) ([]*models.LeaveRequest, error)
	Update(ctx context.Context, id, callerID string, update *models.LeaveRequestUpdate) (*models.LeaveRequest, error)
	Decide(ctx context.Context, id string, status models.LeaveStatus, approverID string) (*models.LeaveRequest, error)
	Delete(ctx context.Context, id, callerID string, callerRole models.Role) error
	TypeStatistics(ctx context.Context, id string) (*leavecalc.TypeStats, error)
	MonthlySummary(ctx context.Context, asOf time.Time) ([]leavecalc.MonthlyEntry, error)
}

// EmployeeDirectory resolves the caller's current role
type EmployeeDirectory interface {
	GetByID(ctx context.Context, id string) (*models.Employee, error)
}

// LeaveHandler handles leave request HTTP requests
type LeaveHandler struct {
	service   LeaveServiceInterface
	directory EmployeeDirectory
}

// NewLeaveHandler creates a new LeaveHandler
func NewLeaveHandler(service LeaveServiceInterface, directory EmployeeDirectory) *LeaveHandler {
	return &LeaveHandler{
		service:   service,
		directory: directory,
	}
}

// CreateLeaveRequest represents the request body for leave submission.
// EmployeeID is honored only for manager-and-above callers filing on an
// employee's behalf; everyone else files for themselves.
type CreateLeaveRequest struct {
	EmployeeID *string `json:"employee_id"`
	Category   string  `json:"category" validate:"required,oneof=sick personal vacation maternity ordination other"`
	StartDate  string  `json:"start_date" validate:"required"`
	EndDate    string  `json:"end_date" validate:"required"`
	HalfDay    bool    `json:"half_day"`
	Hours      float64 `json:"hours" validate:"gte=0,lte=24"`
	Reason     string  `json:"reason" validate:"max=1000"`
}

// UpdateLeaveRequest represents a partial update to a pending request.
// Absent fields are left unchanged.
type UpdateLeaveRequest struct {
	Category  *string  `json:"category" validate:"omitempty,oneof=sick personal vacation maternity ordination other"`
	StartDate *string  `json:"start_date"`
	EndDate   *string  `json:"end_date"`
	HalfDay   *bool    `json:"half_day"`
	Hours     *float64 `json:"hours" validate:"omitempty,gte=0,lte=24"`
	Reason    *string  `json:"reason" validate:"omitempty,max=1000"`
}

// caller resolves the authenticated employee making the request
func (h *LeaveHandler) caller(r *http.Request) (*models.Employee, error) {
	claims := auth.GetClaimsFromContext(r)
	if claims == nil {
		return nil, models.ErrUnauthorized
	}
	return h.directory.GetByID(r.Context(), claims.EmployeeID)
}

// Create submits a new leave request for the caller
func (h *LeaveHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		pkghttp.WriteBadRequest(w, "start_date must be formatted YYYY-MM-DD")
		return
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		pkghttp.WriteBadRequest(w, "end_date must be formatted YYYY-MM-DD")
		return
	}

	ownerID := caller.ID
	if req.EmployeeID != nil && *req.EmployeeID != caller.ID {
		if !caller.Role.MeetsOrExceeds(models.RoleManager) {
			pkghttp.WriteForbidden(w, "Only managers may file leave on behalf of others")
			return
		}
		ownerID = *req.EmployeeID
	}

	created, err := h.service.Create(r.Context(), &models.LeaveRequest{
		EmployeeID: ownerID,
		Category:   models.LeaveCategory(req.Category),
		StartDate:  startDate,
		EndDate:    endDate,
		HalfDay:    req.HalfDay,
		Hours:      req.Hours,
		Reason:     req.Reason,
	})
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid leave request")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// Get returns one leave request
func (h *LeaveHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	req, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"), caller.ID, caller.Role)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Leave request not found")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "You may only view your own leave requests")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, req)
}

// List returns leave requests matching the query filters
func (h *LeaveHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	filter := repositories.LeaveFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Category:   models.LeaveCategory(r.URL.Query().Get("category")),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Statuses = []models.LeaveStatus{models.LeaveStatus(status)}
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			pkghttp.WriteBadRequest(w, "from must be formatted YYYY-MM-DD")
			return
		}
		filter.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			pkghttp.WriteBadRequest(w, "to must be formatted YYYY-MM-DD")
			return
		}
		filter.To = t
	}

	requests, err := h.service.List(r.Context(), filter, caller.ID, caller.Role)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leave_requests": requests})
}

// Update edits a pending leave request owned by the caller
func (h *LeaveHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req UpdateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	update := &models.LeaveRequestUpdate{
		HalfDay: req.HalfDay,
		Hours:   req.Hours,
		Reason:  req.Reason,
	}
	if req.Category != nil {
		cat := models.LeaveCategory(*req.Category)
		update.Category = &cat
	}
	if req.StartDate != nil {
		t, err := time.Parse(dateLayout, *req.StartDate)
		if err != nil {
			pkghttp.WriteBadRequest(w, "start_date must be formatted YYYY-MM-DD")
			return
		}
		update.StartDate = &t
	}
	if req.EndDate != nil {
		t, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			pkghttp.WriteBadRequest(w, "end_date must be formatted YYYY-MM-DD")
			return
		}
		update.EndDate = &t
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), caller.ID, update)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Leave request not found")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "You may only edit your own leave requests")
		case errors.Is(err, models.ErrAlreadyDecided):
			pkghttp.WriteConflict(w, "Only pending requests can be edited")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid update")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Approve approves a pending leave request
func (h *LeaveHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.LeaveApproved)
}

// Reject rejects a pending leave request
func (h *LeaveHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.LeaveRejected)
}

func (h *LeaveHandler) decide(w http.ResponseWriter, r *http.Request, status models.LeaveStatus) {
	claims := auth.GetClaimsFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	decided, err := h.service.Decide(r.Context(), chi.URLParam(r, "id"), status, claims.EmployeeID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Leave request not found")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "You cannot decide your own leave request")
		case errors.Is(err, models.ErrAlreadyDecided):
			pkghttp.WriteConflict(w, "This request has already been decided")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, decided)
}

// Delete removes a leave request: owners withdraw their own, managers
// and above may remove anyone's
func (h *LeaveHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), caller.ID, caller.Role); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Leave request not found")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "You may only withdraw your own leave requests")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Statistics returns the per-category fiscal-year figures for one request
func (h *LeaveHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.TypeStatistics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Leave request not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Summary returns the per-month chargeable-day buckets for the fiscal year
func (h *LeaveHandler) Summary(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			pkghttp.WriteBadRequest(w, "as_of must be formatted YYYY-MM-DD")
			return
		}
		asOf = t
	}

	entries, err := h.service.MonthlySummary(r.Context(), asOf)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"months": entries})
}
