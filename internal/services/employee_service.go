package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	pkgauth "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/auth"
)

// OrgRepository defines the interface for department/position lookups
type OrgRepository interface {
	ListDepartments(ctx context.Context) ([]*models.Department, error)
	CreateDepartment(ctx context.Context, name string) (*models.Department, error)
	DeleteDepartment(ctx context.Context, id string) error
	ListPositions(ctx context.Context) ([]*models.Position, error)
	CreatePosition(ctx context.Context, title string) (*models.Position, error)
	DeletePosition(ctx context.Context, id string) error
}

// EmployeeService handles employee and org-structure business logic
type EmployeeService struct {
	repo    EmployeeRepository
	orgRepo OrgRepository
	logger  *slog.Logger
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(repo EmployeeRepository, orgRepo OrgRepository, logger *slog.Logger) *EmployeeService {
	return &EmployeeService{
		repo:    repo,
		orgRepo: orgRepo,
		logger:  logger,
	}
}

// GetByID retrieves an employee by ID
func (s *EmployeeService) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	emp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get employee", slog.String("employee_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return emp, nil
}

// List retrieves employees with pagination
func (s *EmployeeService) List(ctx context.Context, limit, offset int) ([]*models.Employee, error) {
	employees, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list employees", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return employees, nil
}

// Create creates a new employee with a hashed password
func (s *EmployeeService) Create(ctx context.Context, emp *models.Employee, password string) (*models.Employee, error) {
	_, err := s.repo.GetByEmail(ctx, emp.Email)
	if err == nil {
		s.logger.Info("employee already exists")
		return nil, models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check if employee exists", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	emp.PasswordHash = hashedPassword

	created, err := s.repo.Create(ctx, emp)
	if err != nil {
		s.logger.Error("failed to create employee", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("employee created", slog.String("employee_id", created.ID))
	return created, nil
}

// Update applies an explicit per-field update to an employee
func (s *EmployeeService) Update(ctx context.Context, id string, update *models.EmployeeUpdate) (*models.Employee, error) {
	emp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get employee", slog.String("employee_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if update.FirstName != nil {
		emp.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		emp.LastName = *update.LastName
	}
	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, models.ErrBadRequest
		}
		emp.Role = *update.Role
	}
	if update.Status != nil {
		emp.Status = *update.Status
	}
	if update.DepartmentID != nil {
		emp.DepartmentID = update.DepartmentID
	}
	if update.PositionID != nil {
		emp.PositionID = update.PositionID
	}

	updated, err := s.repo.Update(ctx, id, emp)
	if err != nil {
		s.logger.Error("failed to update employee", slog.String("employee_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("employee updated", slog.String("employee_id", id))
	return updated, nil
}

// Delete removes an employee
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete employee", slog.String("employee_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("employee deleted", slog.String("employee_id", id))
	return nil
}

// ListDepartments returns all departments
func (s *EmployeeService) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	departments, err := s.orgRepo.ListDepartments(ctx)
	if err != nil {
		s.logger.Error("failed to list departments", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return departments, nil
}

// CreateDepartment adds a department
func (s *EmployeeService) CreateDepartment(ctx context.Context, name string) (*models.Department, error) {
	d, err := s.orgRepo.CreateDepartment(ctx, name)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create department", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return d, nil
}

// DeleteDepartment removes a department
func (s *EmployeeService) DeleteDepartment(ctx context.Context, id string) error {
	if err := s.orgRepo.DeleteDepartment(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete department", slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// ListPositions returns all positions
func (s *EmployeeService) ListPositions(ctx context.Context) ([]*models.Position, error) {
	positions, err := s.orgRepo.ListPositions(ctx)
	if err != nil {
		s.logger.Error("failed to list positions", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return positions, nil
}

// CreatePosition adds a position
func (s *EmployeeService) CreatePosition(ctx context.Context, title string) (*models.Position, error) {
	p, err := s.orgRepo.CreatePosition(ctx, title)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create position", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return p, nil
}

// DeletePosition removes a position
func (s *EmployeeService) DeletePosition(ctx context.Context, id string) error {
	if err := s.orgRepo.DeletePosition(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete position", slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}
