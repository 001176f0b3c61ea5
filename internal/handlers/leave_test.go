package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/auth"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/handlers"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/leavecalc"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/repositories"
)

// MockLeaveService implements LeaveServiceInterface for handler tests
type MockLeaveService struct {
	created       *models.LeaveRequest
	createErr     error
	decideErr     error
	decided       *models.LeaveRequest
	stats         *leavecalc.TypeStats
	deleteErr     error
	deletedID     string
	deletedBy     string
	deletedByRole models.Role
}

func (m *MockLeaveService) Create(ctx context.Context, req *models.LeaveRequest) (*models.LeaveRequest, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = req
	req.ID = "leave-1"
	req.Status = models.LeavePending
	return req, nil
}

func (m *MockLeaveService) GetByID(ctx context.Context, id, callerID string, callerRole models.Role) (*models.LeaveRequest, error) {
	return nil, models.ErrNotFound
}

func (m *MockLeaveService) List(ctx context.Context, filter repositories.LeaveFilter, callerID string, callerRole models.Role) ([]*models.LeaveRequest, error) {
	return nil, nil
}

func (m *MockLeaveService) Update(ctx context.Context, id, callerID string, update *models.LeaveRequestUpdate) (*models.LeaveRequest, error) {
	return nil, models.ErrNotFound
}

func (m *MockLeaveService) Decide(ctx context.Context, id string, status models.LeaveStatus, approverID string) (*models.LeaveRequest, error) {
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	return m.decided, nil
}

func (m *MockLeaveService) Delete(ctx context.Context, id, callerID string, callerRole models.Role) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	m.deletedBy = callerID
	m.deletedByRole = callerRole
	return nil
}

func (m *MockLeaveService) TypeStatistics(ctx context.Context, id string) (*leavecalc.TypeStats, error) {
	if m.stats == nil {
		return nil, models.ErrNotFound
	}
	return m.stats, nil
}

func (m *MockLeaveService) MonthlySummary(ctx context.Context, asOf time.Time) ([]leavecalc.MonthlyEntry, error) {
	return nil, nil
}

// MockDirectory implements EmployeeDirectory
type MockDirectory struct {
	employee *models.Employee
}

func (m *MockDirectory) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	if m.employee == nil {
		return nil, models.ErrNotFound
	}
	return m.employee, nil
}

// withClaims injects authenticated claims the way the auth middleware does
func withClaims(req *http.Request, employeeID string) *http.Request {
	claims := &models.TokenClaims{Type: "access", EmployeeID: employeeID}
	return req.WithContext(context.WithValue(req.Context(), auth.ClaimsContextKey, claims))
}

func TestLeaveHandlerCreate_OwnerFromClaims(t *testing.T) {
	svc := &MockLeaveService{}
	dir := &MockDirectory{employee: &models.Employee{ID: "emp-1", Role: models.RoleEmployee}}
	h := handlers.NewLeaveHandler(svc, dir)

	body, err := json.Marshal(handlers.CreateLeaveRequest{
		Category:  "vacation",
		StartDate: "2024-11-04",
		EndDate:   "2024-11-08",
		Reason:    "family trip",
	})
	require.NoError(t, err)

	req := withClaims(httptest.NewRequest(http.MethodPost, "/api/v1/leave", bytes.NewReader(body)), "emp-1")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.created)
	// The owner comes from the token, never from the body
	assert.Equal(t, "emp-1", svc.created.EmployeeID)
	assert.Equal(t, models.LeaveVacation, svc.created.Category)
}

func TestLeaveHandlerCreate_RejectsBadDate(t *testing.T) {
	h := handlers.NewLeaveHandler(&MockLeaveService{}, &MockDirectory{employee: &models.Employee{ID: "emp-1"}})

	body, _ := json.Marshal(handlers.CreateLeaveRequest{
		Category:  "vacation",
		StartDate: "04/11/2024",
		EndDate:   "2024-11-08",
	})

	req := withClaims(httptest.NewRequest(http.MethodPost, "/api/v1/leave", bytes.NewReader(body)), "emp-1")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaveHandlerCreate_RejectsUnknownCategory(t *testing.T) {
	h := handlers.NewLeaveHandler(&MockLeaveService{}, &MockDirectory{employee: &models.Employee{ID: "emp-1"}})

	body, _ := json.Marshal(handlers.CreateLeaveRequest{
		Category:  "sabbatical",
		StartDate: "2024-11-04",
		EndDate:   "2024-11-08",
	})

	req := withClaims(httptest.NewRequest(http.MethodPost, "/api/v1/leave", bytes.NewReader(body)), "emp-1")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaveHandlerCreate_Unauthenticated(t *testing.T) {
	h := handlers.NewLeaveHandler(&MockLeaveService{}, &MockDirectory{})

	body, _ := json.Marshal(handlers.CreateLeaveRequest{
		Category:  "vacation",
		StartDate: "2024-11-04",
		EndDate:   "2024-11-08",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leave", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func routedRequest(t *testing.T, router chi.Router, method, path string, employeeID string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if employeeID != "" {
		req = withClaims(req, employeeID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLeaveHandlerApprove_AlreadyDecided(t *testing.T) {
	svc := &MockLeaveService{decideErr: models.ErrAlreadyDecided}
	h := handlers.NewLeaveHandler(svc, &MockDirectory{employee: &models.Employee{ID: "mgr-1", Role: models.RoleManager}})

	router := chi.NewRouter()
	router.Post("/leave/{id}/approve", h.Approve)

	rec := routedRequest(t, router, http.MethodPost, "/leave/leave-1/approve", "mgr-1")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLeaveHandlerApprove_OwnRequestForbidden(t *testing.T) {
	svc := &MockLeaveService{decideErr: models.ErrForbidden}
	h := handlers.NewLeaveHandler(svc, &MockDirectory{employee: &models.Employee{ID: "mgr-1", Role: models.RoleManager}})

	router := chi.NewRouter()
	router.Post("/leave/{id}/approve", h.Approve)

	rec := routedRequest(t, router, http.MethodPost, "/leave/leave-1/approve", "mgr-1")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLeaveHandlerStatistics(t *testing.T) {
	svc := &MockLeaveService{stats: &leavecalc.TypeStats{
		Category: models.LeaveVacation,
		Past:     leavecalc.Bucket{Count: 2, Days: 3.5},
		Current:  leavecalc.Bucket{Count: 1, Days: 1},
		Total:    leavecalc.Bucket{Count: 3, Days: 4.5},
	}}
	h := handlers.NewLeaveHandler(svc, &MockDirectory{employee: &models.Employee{ID: "mgr-1", Role: models.RoleManager}})

	router := chi.NewRouter()
	router.Get("/leave/{id}/statistics", h.Statistics)

	rec := routedRequest(t, router, http.MethodGet, "/leave/leave-1/statistics", "mgr-1")

	assert.Equal(t, http.StatusOK, rec.Code)

	var stats leavecalc.TypeStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 4.5, stats.Total.Days)
	assert.Equal(t, 3, stats.Total.Count)
}

func TestLeaveHandlerSummary_BadAsOf(t *testing.T) {
	h := handlers.NewLeaveHandler(&MockLeaveService{}, &MockDirectory{employee: &models.Employee{ID: "mgr-1"}})

	router := chi.NewRouter()
	router.Get("/leave/summary", h.Summary)

	rec := routedRequest(t, router, http.MethodGet, "/leave/summary?as_of=yesterday", "mgr-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaveHandlerDelete_PassesCallerRole(t *testing.T) {
	svc := &MockLeaveService{}
	h := handlers.NewLeaveHandler(svc, &MockDirectory{employee: &models.Employee{ID: "mgr-1", Role: models.RoleManager}})

	router := chi.NewRouter()
	router.Delete("/leave/{id}", h.Delete)

	rec := routedRequest(t, router, http.MethodDelete, "/leave/leave-1", "mgr-1")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "leave-1", svc.deletedID)
	assert.Equal(t, "mgr-1", svc.deletedBy)
	assert.Equal(t, models.RoleManager, svc.deletedByRole)
}

func TestLeaveHandlerDelete_Forbidden(t *testing.T) {
	svc := &MockLeaveService{deleteErr: models.ErrForbidden}
	h := handlers.NewLeaveHandler(svc, &MockDirectory{employee: &models.Employee{ID: "emp-1", Role: models.RoleEmployee}})

	router := chi.NewRouter()
	router.Delete("/leave/{id}", h.Delete)

	rec := routedRequest(t, router, http.MethodDelete, "/leave/leave-1", "emp-1")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLeaveHandlerCreate_OnBehalfRequiresManager(t *testing.T) {
	svc := &MockLeaveService{}
	dir := &MockDirectory{employee: &models.Employee{ID: "emp-1", Role: models.RoleEmployee}}
	h := handlers.NewLeaveHandler(svc, dir)

	target := "emp-2"
	body, err := json.Marshal(handlers.CreateLeaveRequest{
		EmployeeID: &target,
		Category:   "sick",
		StartDate:  "2024-11-04",
		EndDate:    "2024-11-04",
	})
	require.NoError(t, err)

	req := withClaims(httptest.NewRequest(http.MethodPost, "/api/v1/leave", bytes.NewReader(body)), "emp-1")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, svc.created)
}

func TestLeaveHandlerCreate_ManagerFilesOnBehalf(t *testing.T) {
	svc := &MockLeaveService{}
	dir := &MockDirectory{employee: &models.Employee{ID: "mgr-1", Role: models.RoleManager}}
	h := handlers.NewLeaveHandler(svc, dir)

	target := "emp-2"
	body, err := json.Marshal(handlers.CreateLeaveRequest{
		EmployeeID: &target,
		Category:   "sick",
		StartDate:  "2024-11-04",
		EndDate:    "2024-11-04",
	})
	require.NoError(t, err)

	req := withClaims(httptest.NewRequest(http.MethodPost, "/api/v1/leave", bytes.NewReader(body)), "mgr-1")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, "emp-2", svc.created.EmployeeID)
}
