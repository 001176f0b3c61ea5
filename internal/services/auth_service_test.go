package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/auth"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/services"
	pkgauth "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/auth"
	pkglogger "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/logger"
)

// MockRevocationRepository implements TokenRevocationRepository in memory
type MockRevocationRepository struct {
	revoked map[string]bool
}

func NewMockRevocationRepository() *MockRevocationRepository {
	return &MockRevocationRepository{revoked: make(map[string]bool)}
}

func (m *MockRevocationRepository) RevokeToken(ctx context.Context, jti, employeeID, tokenType string, expiresAt time.Time, reason string) error {
	m.revoked[jti] = true
	return nil
}

func (m *MockRevocationRepository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return m.revoked[jti], nil
}

type authFixture struct {
	service     *services.AuthService
	empRepo     *MockEmployeeRepository
	attemptRepo *MockAttemptRepository
}

// newAuthFixture wires an AuthService over in-memory repositories with
// zero timing delay
func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	logger := testLogger()
	empRepo := NewMockEmployeeRepository()
	attemptRepo := NewMockAttemptRepository()
	guard := services.NewLoginGuard(attemptRepo, logger)

	service := services.NewAuthService(
		empRepo,
		NewMockRevocationRepository(),
		guard,
		auth.NewTokenManager("test-secret-32-characters-long-for-testing", 15*time.Minute, 24*time.Hour),
		auth.NewTOTPManager("EMSTest"),
		auth.NewTimingDelay(auth.TimingConfig{}),
		logger,
		pkglogger.NewAuditLogger(logger),
	)

	return &authFixture{
		service:     service,
		empRepo:     empRepo,
		attemptRepo: attemptRepo,
	}
}

func (f *authFixture) seedEmployee(t *testing.T, email, password string) *models.Employee {
	t.Helper()

	hash, err := pkgauth.HashPassword(password)
	require.NoError(t, err)

	emp, err := f.empRepo.Create(context.Background(), &models.Employee{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Somsri",
		LastName:     "Jaidee",
		Role:         models.RoleEmployee,
		Status:       models.StatusActive,
	})
	require.NoError(t, err)
	return emp
}

// failedAttempts counts failed rows held for one identifier
func (f *authFixture) failedAttempts(identifier string) int {
	count := 0
	for _, a := range f.attemptRepo.attempts {
		if a.Identifier == identifier && !a.Success {
			count++
		}
	}
	return count
}

func TestAuthServiceLogin_Success(t *testing.T) {
	f := newAuthFixture(t)
	f.seedEmployee(t, "somsri@example.com", "CorrectHorse1!")

	resp, err := f.service.Login(context.Background(), "somsri@example.com", "CorrectHorse1!", "", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "somsri@example.com", resp.Employee.Email)
}

func TestAuthServiceLogin_NormalizesEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.seedEmployee(t, "somsri@example.com", "CorrectHorse1!")

	resp, err := f.service.Login(context.Background(), "  Somsri@Example.COM ", "CorrectHorse1!", "", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "somsri@example.com", resp.Employee.Email)
}

func TestAuthServiceLogin_WrongPasswordRecordsBothSpaces(t *testing.T) {
	f := newAuthFixture(t)
	f.seedEmployee(t, "somsri@example.com", "CorrectHorse1!")

	_, err := f.service.Login(context.Background(), "somsri@example.com", "wrong", "", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// One failure row per identifier space
	assert.Equal(t, 1, f.failedAttempts("somsri@example.com"))
	assert.Equal(t, 1, f.failedAttempts("10.0.0.1"))
}

func TestAuthServiceLogin_BlockedBeforeCredentialCheck(t *testing.T) {
	f := newAuthFixture(t)
	f.seedEmployee(t, "somsri@example.com", "CorrectHorse1!")

	for i := 0; i < services.MaxFailedAttempts; i++ {
		f.attemptRepo.addFailure("somsri@example.com", time.Minute)
	}

	// Even correct credentials are rejected while the lock holds
	_, err := f.service.Login(context.Background(), "somsri@example.com", "CorrectHorse1!", "", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrTooManyAttempts)
}

func TestAuthServiceLogin_IPSpaceBlocksIndependently(t *testing.T) {
	f := newAuthFixture(t)
	f.seedEmployee(t, "somsri@example.com", "CorrectHorse1!")

	for i := 0; i < services.MaxFailedAttempts; i++ {
		f.attemptRepo.addFailure("10.0.0.1", time.Minute)
	}

	_, err := f.service.Login(context.Background(), "somsri@example.com", "CorrectHorse1!", "", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrTooManyAttempts)

	// The username space is clean, so another address gets through
	_, err = f.service.Login(context.Background(), "somsri@example.com", "CorrectHorse1!", "", "10.0.0.2")
	assert.NoError(t, err)
}

func TestAuthServiceLogin_SuccessClearsBothSpaces(t *testing.T) {
	f := newAuthFixture(t)
	f.seedEmployee(t, "somsri@example.com", "CorrectHorse1!")

	for i := 0; i < services.MaxFailedAttempts-1; i++ {
		f.attemptRepo.addFailure("somsri@example.com", time.Minute)
		f.attemptRepo.addFailure("10.0.0.1", time.Minute)
	}

	_, err := f.service.Login(context.Background(), "somsri@example.com", "CorrectHorse1!", "", "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, 0, f.failedAttempts("somsri@example.com"))
	assert.Equal(t, 0, f.failedAttempts("10.0.0.1"))
}

func TestAuthServiceLogin_UnknownEmailIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.seedEmployee(t, "somsri@example.com", "CorrectHorse1!")

	_, unknownErr := f.service.Login(context.Background(), "nobody@example.com", "CorrectHorse1!", "", "10.0.0.1")
	_, wrongErr := f.service.Login(context.Background(), "somsri@example.com", "wrong", "", "10.0.0.1")

	assert.ErrorIs(t, unknownErr, models.ErrUnauthorized)
	assert.ErrorIs(t, wrongErr, models.ErrUnauthorized)
}

func TestAuthServiceLogin_SuspendedAccount(t *testing.T) {
	f := newAuthFixture(t)
	emp := f.seedEmployee(t, "somsri@example.com", "CorrectHorse1!")
	emp.Status = models.StatusSuspended

	_, err := f.service.Login(context.Background(), "somsri@example.com", "CorrectHorse1!", "", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrAccountSuspended)
	assert.Equal(t, 1, f.failedAttempts("somsri@example.com"))
}

func TestAuthServiceLogin_AccountStateFailureIsTimePadded(t *testing.T) {
	logger := testLogger()
	empRepo := NewMockEmployeeRepository()
	attemptRepo := NewMockAttemptRepository()

	service := services.NewAuthService(
		empRepo,
		NewMockRevocationRepository(),
		services.NewLoginGuard(attemptRepo, logger),
		auth.NewTokenManager("test-secret-32-characters-long-for-testing", 15*time.Minute, 24*time.Hour),
		auth.NewTOTPManager("EMSTest"),
		auth.NewTimingDelay(auth.TimingConfig{BaseDelayMs: 30}),
		logger,
		pkglogger.NewAuditLogger(logger),
	)

	hash, err := pkgauth.HashPassword("CorrectHorse1!")
	require.NoError(t, err)
	_, err = empRepo.Create(context.Background(), &models.Employee{
		Email:        "somsri@example.com",
		PasswordHash: hash,
		Role:         models.RoleEmployee,
		Status:       models.StatusSuspended,
	})
	require.NoError(t, err)

	start := time.Now()
	_, err = service.Login(context.Background(), "somsri@example.com", "CorrectHorse1!", "", "10.0.0.1")
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, models.ErrAccountSuspended)
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond,
		"suspended accounts must take the same failure padding as bad credentials")
}

func TestAuthServiceLogin_TOTPRequiredWithoutCode(t *testing.T) {
	f := newAuthFixture(t)
	emp := f.seedEmployee(t, "somsri@example.com", "CorrectHorse1!")
	secret := "JBSWY3DPEHPK3PXP"
	emp.TOTPSecret = &secret
	emp.TOTPEnabled = true

	_, err := f.service.Login(context.Background(), "somsri@example.com", "CorrectHorse1!", "", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrTOTPRequired)

	// The password already checked out, so nothing is held against the
	// identifier yet
	assert.Equal(t, 0, f.failedAttempts("somsri@example.com"))
}

func TestAuthServiceChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	emp := f.seedEmployee(t, "somsri@example.com", "CorrectHorse1!")
	ctx := context.Background()

	err := f.service.ChangePassword(ctx, emp.ID, "wrong", "NewHorse2@Stable")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	err = f.service.ChangePassword(ctx, emp.ID, "CorrectHorse1!", "weak")
	assert.ErrorIs(t, err, models.ErrBadRequest)

	err = f.service.ChangePassword(ctx, emp.ID, "CorrectHorse1!", "NewHorse2@Stable")
	require.NoError(t, err)

	_, err = f.service.Login(ctx, "somsri@example.com", "NewHorse2@Stable", "", "10.0.0.1")
	assert.NoError(t, err)
}
