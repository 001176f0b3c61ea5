package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/auth"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/database"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/handlers"
	middlewareCustom "github.com/MarchChawut/ems-trd-dtc-sub000/internal/middleware"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/routes"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/services"
	pkghttp "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/http"
	pkglogger "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/logger"
)

// SentEmail represents a captured leave decision notification
type SentEmail struct {
	To        string
	RequestID string
	Status    models.LeaveStatus
}

// MockEmailService captures sent emails for test assertions
type MockEmailService struct {
	SentEmails []SentEmail
	mu         sync.Mutex
}

// SendLeaveDecisionEmail records the notification instead of calling SES
func (m *MockEmailService) SendLeaveDecisionEmail(ctx context.Context, email string, req *models.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentEmails = append(m.SentEmails, SentEmail{
		To:        email,
		RequestID: req.ID,
		Status:    req.Status,
	})
	return nil
}

// GetLastEmail returns the most recent notification sent
func (m *MockEmailService) GetLastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *MockEmailService
	TokenManager *auth.TokenManager
}

// NewTestServer initializes a complete HTTP server with real database + mocked email.
// The wiring mirrors cmd/api/main.go so route, middleware, and role-gate
// behavior under test is exactly what production runs.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	employeeRepo, orgRepo, revokeRepo, loginAttemptRepo, leaveRepo, holidayRepo, taskRepo :=
		InitializeRepositories(db)

	mockEmail := &MockEmailService{
		SentEmails: []SentEmail{},
	}

	tokenManager := auth.NewTokenManager(
		"test-secret-32-characters-long-for-testing",
		15*time.Minute,
		7*24*time.Hour,
	)
	totpManager := auth.NewTOTPManager("EMSTest")

	auditLogger := pkglogger.NewAuditLogger(logger)
	loginGuard := services.NewLoginGuard(loginAttemptRepo, logger)

	// Minimal delays so failed-login tests stay fast
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   1,
		RandomDelayMs: 1,
	})

	authService := services.NewAuthService(employeeRepo, revokeRepo, loginGuard, tokenManager, totpManager, timingDelay, logger, auditLogger)
	employeeService := services.NewEmployeeService(employeeRepo, orgRepo, logger)
	leaveService := services.NewLeaveService(leaveRepo, holidayRepo, employeeRepo, mockEmail, logger, auditLogger)
	taskService := services.NewTaskService(taskRepo, logger)

	ipConfig := &pkghttp.IPConfig{TrustedProxies: []string{}}
	authHandler := handlers.NewAuthHandler(authService, ipConfig)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	leaveHandler := handlers.NewLeaveHandler(leaveService, employeeRepo)
	holidayHandler := handlers.NewHolidayHandler(leaveService)
	taskHandler := handlers.NewTaskHandler(taskService)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		routes.RegisterRoutes(r, authHandler, employeeHandler, leaveHandler, holidayHandler, taskHandler, tokenManager, employeeRepo, revokeRepo)
	})

	server := httptest.NewServer(r)

	return &TestServer{
		Server:       server,
		DB:           db,
		EmailService: mockEmail,
		TokenManager: tokenManager,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with access token
func (ts *TestServer) RequestWithAuth(method, path, accessToken string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + accessToken,
	}
	return ts.Request(method, path, body, headers)
}

// Login authenticates the given credentials and returns the token pair
func (ts *TestServer) Login(email, password string) (accessToken, refreshToken string, err error) {
	return ts.LoginFromIP(email, password, "")
}

// LoginFromIP authenticates from a spoofed client address. Tests use
// distinct addresses so one test's per-IP rate limit bucket cannot bleed
// into another's.
func (ts *TestServer) LoginFromIP(email, password, ip string) (accessToken, refreshToken string, err error) {
	var headers map[string]string
	if ip != "" {
		headers = map[string]string{"X-Real-IP": ip}
	}

	resp, err := ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, headers)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return "", "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	return ExtractTokensFromResponse(resp)
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// ExtractTokensFromResponse extracts access/refresh tokens from auth response
func ExtractTokensFromResponse(resp *http.Response) (accessToken, refreshToken string, err error) {
	defer resp.Body.Close()

	var authResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return "", "", fmt.Errorf("failed to parse response: %w", err)
	}

	if access, ok := authResp["access_token"].(string); ok {
		accessToken = access
	}
	if refresh, ok := authResp["refresh_token"].(string); ok {
		refreshToken = refresh
	}

	return
}

// GetErrorMessage extracts error message from error response
func GetErrorMessage(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var errResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", err
	}
	if msg, ok := errResp["message"].(string); ok {
		return msg, nil
	}
	return "", nil
}
