package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/leavecalc"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/repositories"
	pkglogger "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/logger"
)

// LeaveRepository defines the interface for leave request data access
type LeaveRepository interface {
	GetByID(ctx context.Context, id string) (*models.LeaveRequest, error)
	List(ctx context.Context, filter repositories.LeaveFilter) ([]*models.LeaveRequest, error)
	Create(ctx context.Context, req *models.LeaveRequest) (*models.LeaveRequest, error)
	Update(ctx context.Context, id string, req *models.LeaveRequest) (*models.LeaveRequest, error)
	Decide(ctx context.Context, id string, status models.LeaveStatus, approverID string, decidedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// HolidayRepository defines the interface for holiday data access
type HolidayRepository interface {
	List(ctx context.Context) ([]*models.Holiday, error)
	ListActiveDates(ctx context.Context, from, to time.Time) ([]time.Time, error)
	Create(ctx context.Context, h *models.Holiday) (*models.Holiday, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// LeaveService handles the leave request workflow and day accounting
type LeaveService struct {
	repo        LeaveRepository
	holidayRepo HolidayRepository
	empRepo     EmployeeRepository
	email       EmailService
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewLeaveService creates a new LeaveService. email may be nil when
// notifications are not configured.
func NewLeaveService(
	repo LeaveRepository,
	holidayRepo HolidayRepository,
	empRepo EmployeeRepository,
	email EmailService,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *LeaveService {
	return &LeaveService{
		repo:        repo,
		holidayRepo: holidayRepo,
		empRepo:     empRepo,
		email:       email,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// holidaySet fetches the active holiday dates covering [from, to]. A
// storage error degrades to an empty set rather than failing the
// operation: a request computed without holidays is recoverable, a
// rejected submission is not.
func (s *LeaveService) holidaySet(ctx context.Context, from, to time.Time) leavecalc.HolidaySet {
	dates, err := s.holidayRepo.ListActiveDates(ctx, from, to)
	if err != nil {
		s.logger.Error("failed to load holidays, computing without them", slog.Any("error", err))
		return leavecalc.NewHolidaySet(nil)
	}
	return leavecalc.NewHolidaySet(dates)
}

// Create validates and persists a new leave request. TotalDays is always
// computed server-side; any client-supplied value is ignored.
func (s *LeaveService) Create(ctx context.Context, req *models.LeaveRequest) (*models.LeaveRequest, error) {
	if !req.Category.Valid() {
		return nil, models.ErrBadRequest
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, models.ErrBadRequest
	}
	if req.Hours < 0 {
		return nil, models.ErrBadRequest
	}
	// Half-day and hour-based are distinct accounting modes
	if req.HalfDay && req.Hours > 0 {
		return nil, models.ErrBadRequest
	}

	holidays := s.holidaySet(ctx, req.StartDate, req.EndDate)
	req.TotalDays = leavecalc.ChargeableDays(req.StartDate, req.EndDate, req.HalfDay, req.Hours, holidays)
	req.Status = models.LeavePending

	created, err := s.repo.Create(ctx, req)
	if err != nil {
		s.logger.Error("failed to create leave request", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("leave request created",
		slog.String("leave_request_id", created.ID),
		slog.String("employee_id", created.EmployeeID),
		slog.Float64("total_days", created.TotalDays))
	return created, nil
}

// GetByID retrieves a leave request, restricted to its owner unless the
// caller holds at least the manager role.
func (s *LeaveService) GetByID(ctx context.Context, id, callerID string, callerRole models.Role) (*models.LeaveRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get leave request", slog.String("leave_request_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if req.EmployeeID != callerID && !callerRole.MeetsOrExceeds(models.RoleManager) {
		return nil, models.ErrForbidden
	}
	return req, nil
}

// List retrieves leave requests matching a filter. Non-managers only see
// their own requests regardless of the filter.
func (s *LeaveService) List(ctx context.Context, filter repositories.LeaveFilter, callerID string, callerRole models.Role) ([]*models.LeaveRequest, error) {
	if !callerRole.MeetsOrExceeds(models.RoleManager) {
		filter.EmployeeID = callerID
	}

	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list leave requests", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return requests, nil
}

// Update applies an explicit per-field update to a pending request. Only
// the owner may edit, and any change touching the accounting inputs
// recomputes TotalDays before persisting.
func (s *LeaveService) Update(ctx context.Context, id, callerID string, update *models.LeaveRequestUpdate) (*models.LeaveRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get leave request", slog.String("leave_request_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if req.EmployeeID != callerID {
		return nil, models.ErrForbidden
	}
	if req.Status != models.LeavePending {
		return nil, models.ErrAlreadyDecided
	}

	if update.Category != nil {
		if !update.Category.Valid() {
			return nil, models.ErrBadRequest
		}
		req.Category = *update.Category
	}
	if update.StartDate != nil {
		req.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		req.EndDate = *update.EndDate
	}
	if update.HalfDay != nil {
		req.HalfDay = *update.HalfDay
	}
	if update.Hours != nil {
		if *update.Hours < 0 {
			return nil, models.ErrBadRequest
		}
		req.Hours = *update.Hours
	}
	if update.Reason != nil {
		req.Reason = *update.Reason
	}

	if req.EndDate.Before(req.StartDate) {
		return nil, models.ErrBadRequest
	}
	if req.HalfDay && req.Hours > 0 {
		return nil, models.ErrBadRequest
	}

	if update.TouchesAccounting() {
		holidays := s.holidaySet(ctx, req.StartDate, req.EndDate)
		req.TotalDays = leavecalc.ChargeableDays(req.StartDate, req.EndDate, req.HalfDay, req.Hours, holidays)
	}

	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update leave request", slog.String("leave_request_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("leave request updated", slog.String("leave_request_id", id))
	return updated, nil
}

// Decide moves a pending request to approved or rejected. The transition
// happens exactly once: concurrent decisions lose with ErrAlreadyDecided.
// Approvers cannot decide their own requests.
func (s *LeaveService) Decide(ctx context.Context, id string, status models.LeaveStatus, approverID string) (*models.LeaveRequest, error) {
	if status != models.LeaveApproved && status != models.LeaveRejected {
		return nil, models.ErrBadRequest
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get leave request", slog.String("leave_request_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if req.EmployeeID == approverID {
		return nil, models.ErrForbidden
	}

	decidedAt := time.Now()
	if err := s.repo.Decide(ctx, id, status, approverID, decidedAt); err != nil {
		if errors.Is(err, models.ErrAlreadyDecided) {
			return nil, models.ErrAlreadyDecided
		}
		s.logger.Error("failed to decide leave request", slog.String("leave_request_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	req.Status = status
	req.ApproverID = &approverID
	req.DecidedAt = &decidedAt

	s.logger.Info("leave request decided",
		slog.String("leave_request_id", id),
		slog.String("status", string(status)),
		slog.String("approver_id", approverID))
	s.auditLogger.LogAccountAction("leave_"+string(status), req.EmployeeID, "", map[string]string{
		"leave_request_id": id,
		"approver_id":      approverID,
	})

	s.notifyDecision(ctx, req)

	return req, nil
}

// notifyDecision emails the requester about the decision. Best effort: a
// delivery failure never rolls back the decision itself.
func (s *LeaveService) notifyDecision(ctx context.Context, req *models.LeaveRequest) {
	if s.email == nil {
		return
	}

	emp, err := s.empRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		s.logger.Error("failed to look up requester for notification",
			slog.String("employee_id", req.EmployeeID),
			slog.Any("error", err))
		return
	}

	if err := s.email.SendLeaveDecisionEmail(ctx, emp.Email, req); err != nil {
		s.logger.Error("failed to send leave decision notification",
			slog.String("leave_request_id", req.ID),
			slog.Any("error", err))
	}
}

// Delete removes a request in any state. The owner may withdraw their
// own request; callers holding at least the manager role may remove
// anyone's. Deleting a decided request takes its days back out of the
// accounting, so every deletion is audited.
func (s *LeaveService) Delete(ctx context.Context, id, callerID string, callerRole models.Role) error {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get leave request", slog.String("leave_request_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if req.EmployeeID != callerID && !callerRole.MeetsOrExceeds(models.RoleManager) {
		return models.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete leave request", slog.String("leave_request_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("leave request deleted",
		slog.String("leave_request_id", id),
		slog.String("status", string(req.Status)),
		slog.String("deleted_by", callerID))
	s.auditLogger.LogAccountAction("leave_deleted", req.EmployeeID, "", map[string]string{
		"leave_request_id": id,
		"status":           string(req.Status),
		"deleted_by":       callerID,
	})
	return nil
}

// TypeStatistics returns the past/current/total figures for one request,
// scoped to the fiscal year holding its start date.
func (s *LeaveService) TypeStatistics(ctx context.Context, id string) (*leavecalc.TypeStats, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get leave request", slog.String("leave_request_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	fy := leavecalc.FiscalYearRange(req.StartDate)

	others, err := s.repo.List(ctx, repositories.LeaveFilter{
		EmployeeID: req.EmployeeID,
		Category:   req.Category,
		Statuses:   []models.LeaveStatus{models.LeaveApproved, models.LeavePending},
		From:       fy.Start,
		To:         fy.End,
	})
	if err != nil {
		s.logger.Error("failed to list leave requests for statistics", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	holidays := s.holidaySet(ctx, fy.Start, fy.End)
	stats := leavecalc.TypeStatistics(req, others, fy, holidays)
	return &stats, nil
}

// MonthlySummary returns the sparse per-month chargeable-day buckets for
// the fiscal year containing asOf.
func (s *LeaveService) MonthlySummary(ctx context.Context, asOf time.Time) ([]leavecalc.MonthlyEntry, error) {
	fy := leavecalc.FiscalYearRange(asOf)

	requests, err := s.repo.List(ctx, repositories.LeaveFilter{
		Statuses: []models.LeaveStatus{models.LeaveApproved, models.LeavePending},
		From:     fy.Start,
		To:       fy.End,
	})
	if err != nil {
		s.logger.Error("failed to list leave requests for summary", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	holidays := s.holidaySet(ctx, fy.Start, fy.End)
	return leavecalc.MonthlyBuckets(requests, fy, holidays), nil
}

// ListHolidays returns all configured holidays
func (s *LeaveService) ListHolidays(ctx context.Context) ([]*models.Holiday, error) {
	holidays, err := s.holidayRepo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list holidays", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return holidays, nil
}

// CreateHoliday adds a holiday to the calendar
func (s *LeaveService) CreateHoliday(ctx context.Context, h *models.Holiday) (*models.Holiday, error) {
	if h.Name == "" || h.Date.IsZero() {
		return nil, models.ErrBadRequest
	}

	created, err := s.holidayRepo.Create(ctx, h)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create holiday", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("holiday created", slog.String("holiday_id", created.ID), slog.String("name", created.Name))
	return created, nil
}

// SetHolidayActive toggles a holiday without losing its history
func (s *LeaveService) SetHolidayActive(ctx context.Context, id string, active bool) error {
	if err := s.holidayRepo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to toggle holiday", slog.String("holiday_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// DeleteHoliday removes a holiday from the calendar
func (s *LeaveService) DeleteHoliday(ctx context.Context, id string) error {
	if err := s.holidayRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete holiday", slog.String("holiday_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}
