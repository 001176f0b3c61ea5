package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
)

// stubRevocationChecker returns canned answers for revocation lookups
type stubRevocationChecker struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevocationChecker) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[jti], nil
}

// stubEmployeeFetcher serves a single employee record
type stubEmployeeFetcher struct {
	employee *models.Employee
}

func (s *stubEmployeeFetcher) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	if s.employee == nil || s.employee.ID != id {
		return nil, models.ErrNotFound
	}
	return s.employee, nil
}

func claimsEcho(t *testing.T, captured **models.TokenClaims) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = GetClaimsFromContext(r)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_InjectsClaims(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)
	token, err := tm.GenerateAccessToken("emp-1", "somsri@example.com")
	require.NoError(t, err)

	var captured *models.TokenClaims
	handler := AuthMiddleware(tm, &stubRevocationChecker{})(claimsEcho(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "emp-1", captured.EmployeeID)
}

func TestAuthMiddleware_RejectsMissingAndMalformedHeaders(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)
	handler := AuthMiddleware(tm, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	headers := []string{"", "Bearer", "Basic dXNlcjpwYXNz", "bearer token extra parts"}
	for _, header := range headers {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthMiddleware_RejectsRefreshTokenForAPIAccess(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)
	token, err := tm.GenerateRefreshToken("emp-1", "somsri@example.com")
	require.NoError(t, err)

	handler := AuthMiddleware(tm, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_RejectsRevokedToken(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)
	token, err := tm.GenerateAccessToken("emp-1", "somsri@example.com")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)

	checker := &stubRevocationChecker{revoked: map[string]bool{claims.ID: true}}
	handler := AuthMiddleware(tm, checker)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_RevocationCheckFailsOpen(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)
	token, err := tm.GenerateAccessToken("emp-1", "somsri@example.com")
	require.NoError(t, err)

	checker := &stubRevocationChecker{err: errors.New("connection refused")}
	var captured *models.TokenClaims
	handler := AuthMiddleware(tm, checker)(claimsEcho(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_EnforcesMinimumRank(t *testing.T) {
	tests := []struct {
		name     string
		role     models.Role
		minimum  models.Role
		expected int
	}{
		{"employee blocked from manager surface", models.RoleEmployee, models.RoleManager, http.StatusForbidden},
		{"manager passes manager surface", models.RoleManager, models.RoleManager, http.StatusOK},
		{"admin passes hr surface", models.RoleAdmin, models.RoleHR, http.StatusOK},
		{"hr blocked from admin surface", models.RoleHR, models.RoleAdmin, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &stubEmployeeFetcher{employee: &models.Employee{ID: "emp-1", Role: tt.role}}
			handler := RequireRole(fetcher, tt.minimum)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			claims := &models.TokenClaims{Type: "access", EmployeeID: "emp-1"}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(context.WithValue(req.Context(), ClaimsContextKey, claims))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestRequireRole_DeletedEmployeeIsRejected(t *testing.T) {
	handler := RequireRole(&stubEmployeeFetcher{}, models.RoleManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	claims := &models.TokenClaims{Type: "access", EmployeeID: "emp-gone"}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), ClaimsContextKey, claims))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
