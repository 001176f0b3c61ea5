package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	pkghttp "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/http"
)

// HolidayServiceInterface defines the interface for holiday management
type HolidayServiceInterface interface {
	ListHolidays(ctx context.Context) ([]*models.Holiday, error)
	CreateHoliday(ctx context.Context, h *models.Holiday) (*models.Holiday, error)
	SetHolidayActive(ctx context.Context, id string, active bool) error
	DeleteHoliday(ctx context.Context, id string) error
}

// HolidayHandler handles holiday calendar HTTP requests
type HolidayHandler struct {
	service HolidayServiceInterface
}

// NewHolidayHandler creates a new HolidayHandler
func NewHolidayHandler(service HolidayServiceInterface) *HolidayHandler {
	return &HolidayHandler{service: service}
}

// CreateHolidayRequest represents the request body for adding a holiday
type CreateHolidayRequest struct {
	Date   string `json:"date" validate:"required"`
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Active *bool  `json:"active"`
}

// SetHolidayActiveRequest toggles a holiday
type SetHolidayActiveRequest struct {
	Active bool `json:"active"`
}

// List returns the full holiday calendar
func (h *HolidayHandler) List(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.service.ListHolidays(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"holidays": holidays})
}

// Create adds a holiday
func (h *HolidayHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		pkghttp.WriteBadRequest(w, "date must be formatted YYYY-MM-DD")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	created, err := h.service.CreateHoliday(r.Context(), &models.Holiday{
		Date:   date,
		Name:   req.Name,
		Active: active,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "A holiday already exists on this date")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid holiday")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// SetActive toggles a holiday without deleting its history
func (h *HolidayHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req SetHolidayActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.SetHolidayActive(r.Context(), chi.URLParam(r, "id"), req.Active); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Holiday not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a holiday
func (h *HolidayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Holiday not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
