package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/auth"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	pkgauth "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/auth"
	pkglogger "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/logger"
)

// TokenRevocationRepository defines the interface for token revocation operations
type TokenRevocationRepository interface {
	RevokeToken(ctx context.Context, jti, employeeID, tokenType string, expiresAt time.Time, reason string) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// EmployeeRepository defines the interface for employee data access
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*models.Employee, error)
	GetByEmail(ctx context.Context, email string) (*models.Employee, error)
	List(ctx context.Context, limit, offset int) ([]*models.Employee, error)
	Create(ctx context.Context, emp *models.Employee) (*models.Employee, error)
	Update(ctx context.Context, id string, emp *models.Employee) (*models.Employee, error)
	Delete(ctx context.Context, id string) error
}

// AuthService handles authentication business logic
type AuthService struct {
	repo        EmployeeRepository
	revokeRepo  TokenRevocationRepository
	guard       *LoginGuard
	tm          *auth.TokenManager
	totp        *auth.TOTPManager
	timingDelay *auth.TimingDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	repo EmployeeRepository,
	revokeRepo TokenRevocationRepository,
	guard *LoginGuard,
	tm *auth.TokenManager,
	totp *auth.TOTPManager,
	timingDelay *auth.TimingDelay,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		revokeRepo:  revokeRepo,
		guard:       guard,
		tm:          tm,
		totp:        totp,
		timingDelay: timingDelay,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// EmployeeResponse represents an employee in HTTP responses
type EmployeeResponse struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Role         string  `json:"role"`
	Status       string  `json:"status"`
	DepartmentID *string `json:"department_id,omitempty"`
	PositionID   *string `json:"position_id,omitempty"`
	TOTPEnabled  bool    `json:"totp_enabled"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// AuthResponse represents the response from auth operations
type AuthResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	Employee     *EmployeeResponse `json:"employee"`
}

// NewEmployeeResponse converts an employee record to its response shape
func NewEmployeeResponse(emp *models.Employee) *EmployeeResponse {
	return &EmployeeResponse{
		ID:           emp.ID,
		Email:        emp.Email,
		FirstName:    emp.FirstName,
		LastName:     emp.LastName,
		Role:         string(emp.Role),
		Status:       emp.Status,
		DepartmentID: emp.DepartmentID,
		PositionID:   emp.PositionID,
		TOTPEnabled:  emp.TOTPEnabled,
		CreatedAt:    emp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    emp.UpdatedAt.Format(time.RFC3339),
	}
}

// Login authenticates an employee and returns a token pair. The login
// guard tracks the source IP and the username as independent identifier
// spaces: either one being over threshold rejects the attempt before
// credentials are even checked.
func (s *AuthService) Login(ctx context.Context, email, password, totpCode, ipAddress string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		s.logger.Warn("login attempt with empty email")
		return nil, models.ErrUnauthorized
	}

	if s.guard.IsBlocked(ctx, ipAddress) || s.guard.IsBlocked(ctx, email) {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_blocked",
			IPAddress:     ipAddress,
			FailureReason: "too_many_attempts",
			Success:       false,
		})
		return nil, models.ErrTooManyAttempts
	}

	emp, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: unknown email",
				slog.String("email", pkglogger.SanitizedEmail(email)))
			s.recordFailure(ctx, email, ipAddress, "invalid_credentials")
			s.timingDelay.Wait(false)
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get employee by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := validateAccountState(emp); err != nil {
		s.logger.Info("login blocked due to account state",
			slog.String("employee_id", emp.ID),
			slog.String("status", emp.Status))
		s.recordFailure(ctx, email, ipAddress, "account_blocked")
		s.timingDelay.Wait(false)
		return nil, err
	}

	if err := pkgauth.ComparePassword(emp.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials",
			slog.String("email", pkglogger.SanitizedEmail(email)))
		s.recordFailure(ctx, email, ipAddress, "invalid_credentials")
		s.timingDelay.Wait(false)
		return nil, models.ErrUnauthorized
	}

	if emp.TOTPEnabled {
		if totpCode == "" {
			return nil, models.ErrTOTPRequired
		}
		if emp.TOTPSecret == nil || !s.totp.ValidateCode(totpCode, *emp.TOTPSecret) {
			s.logger.Info("login failed: invalid totp code", slog.String("employee_id", emp.ID))
			s.recordFailure(ctx, email, ipAddress, "invalid_totp")
			s.timingDelay.Wait(false)
			return nil, models.ErrUnauthorized
		}
	}

	// Success: record it and clear both identifier spaces independently
	s.guard.RecordAttempt(ctx, ipAddress, models.IdentifierIP, true, nil)
	s.guard.RecordAttempt(ctx, email, models.IdentifierUsername, true, nil)
	s.guard.ClearAttempts(ctx, ipAddress)
	s.guard.ClearAttempts(ctx, email)

	accessToken, err := s.tm.GenerateAccessToken(emp.ID, emp.Email)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("employee_id", emp.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	refreshToken, err := s.tm.GenerateRefreshToken(emp.ID, emp.Email)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.String("employee_id", emp.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("employee logged in", slog.String("employee_id", emp.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:  "login_success",
		EmployeeID: emp.ID,
		IPAddress:  ipAddress,
		Success:    true,
	})

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Employee:     NewEmployeeResponse(emp),
	}, nil
}

// recordFailure appends a failure row for both identifier spaces
func (s *AuthService) recordFailure(ctx context.Context, email, ipAddress, reason string) {
	s.guard.RecordAttempt(ctx, ipAddress, models.IdentifierIP, false, &reason)
	s.guard.RecordAttempt(ctx, email, models.IdentifierUsername, false, &reason)

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		IPAddress:     ipAddress,
		FailureReason: reason,
		Success:       false,
	})
}

// RefreshToken generates a new token pair from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*AuthResponse, error) {
	if refreshTokenString = strings.TrimSpace(refreshTokenString); refreshTokenString == "" {
		return nil, models.ErrUnauthorized
	}

	claims, err := s.tm.ValidateToken(refreshTokenString)
	if err != nil {
		s.logger.Info("refresh token validation failed", slog.Any("error", err))
		return nil, models.ErrUnauthorized
	}

	if claims.Type != "refresh" {
		s.logger.Warn("refresh attempt with non-refresh token", slog.String("employee_id", claims.EmployeeID))
		return nil, models.ErrUnauthorized
	}

	if claims.ID != "" {
		revoked, err := s.revokeRepo.IsTokenRevoked(ctx, claims.ID)
		if err == nil && revoked {
			s.logger.Info("refresh attempt with revoked token", slog.String("employee_id", claims.EmployeeID))
			return nil, models.ErrUnauthorized
		}
	}

	emp, err := s.repo.GetByID(ctx, claims.EmployeeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get employee for token refresh", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := validateAccountState(emp); err != nil {
		return nil, models.ErrUnauthorized
	}

	accessToken, err := s.tm.GenerateAccessToken(emp.ID, emp.Email)
	if err != nil {
		return nil, models.ErrInternalServer
	}

	newRefreshToken, err := s.tm.GenerateRefreshToken(emp.ID, emp.Email)
	if err != nil {
		return nil, models.ErrInternalServer
	}

	s.logger.Info("token refreshed", slog.String("employee_id", emp.ID))

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		Employee:     NewEmployeeResponse(emp),
	}, nil
}

// Logout revokes the presented access token by JTI
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tm.ValidateToken(accessToken)
	if err != nil {
		return models.ErrUnauthorized
	}

	if claims.ID == "" || claims.ExpiresAt == nil {
		return models.ErrUnauthorized
	}

	if err := s.revokeRepo.RevokeToken(ctx, claims.ID, claims.EmployeeID, claims.Type, claims.ExpiresAt.Time, "logout"); err != nil {
		s.logger.Error("failed to revoke token", slog.String("employee_id", claims.EmployeeID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:  "logout",
		EmployeeID: claims.EmployeeID,
		Success:    true,
	})

	return nil
}

// SetupTOTP generates a fresh secret for the employee and returns it with
// a provisioning QR data URL. TOTP stays disabled until VerifyTOTP
// confirms the first code.
func (s *AuthService) SetupTOTP(ctx context.Context, employeeID string) (string, string, error) {
	emp, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", "", models.ErrNotFound
		}
		return "", "", models.ErrInternalServer
	}

	secret, qrDataURL, err := s.totp.GenerateSecret(emp.Email)
	if err != nil {
		s.logger.Error("failed to generate totp secret", slog.String("employee_id", employeeID), slog.Any("error", err))
		return "", "", models.ErrInternalServer
	}

	emp.TOTPSecret = &secret
	emp.TOTPEnabled = false
	if _, err := s.repo.Update(ctx, employeeID, emp); err != nil {
		return "", "", models.ErrInternalServer
	}

	return secret, qrDataURL, nil
}

// VerifyTOTP enables TOTP for the employee after validating the first code
func (s *AuthService) VerifyTOTP(ctx context.Context, employeeID, code string) error {
	emp, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return models.ErrInternalServer
	}

	if emp.TOTPSecret == nil {
		return models.ErrBadRequest
	}

	if !s.totp.ValidateCode(code, *emp.TOTPSecret) {
		return models.ErrUnauthorized
	}

	emp.TOTPEnabled = true
	if _, err := s.repo.Update(ctx, employeeID, emp); err != nil {
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("totp_enabled", employeeID, "", nil)
	return nil
}

// ChangePassword verifies the current password before setting a new one
func (s *AuthService) ChangePassword(ctx context.Context, employeeID, currentPassword, newPassword string) error {
	emp, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(emp.PasswordHash, currentPassword); err != nil {
		s.auditLogger.LogPasswordChange(employeeID, "", false)
		return models.ErrUnauthorized
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return models.ErrBadRequest
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("employee_id", employeeID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	emp.PasswordHash = hash
	if _, err := s.repo.Update(ctx, employeeID, emp); err != nil {
		return models.ErrInternalServer
	}

	s.auditLogger.LogPasswordChange(employeeID, "", true)
	return nil
}

// validateAccountState rejects suspended and disabled accounts
func validateAccountState(emp *models.Employee) error {
	switch emp.Status {
	case models.StatusSuspended:
		return models.ErrAccountSuspended
	case models.StatusDisabled:
		return models.ErrAccountDisabled
	}
	return nil
}
