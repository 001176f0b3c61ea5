package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/auth"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestAs(employeeID string) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	if employeeID != "" {
		claims := &models.TokenClaims{EmployeeID: employeeID, Type: "access"}
		req = req.WithContext(context.WithValue(req.Context(), auth.ClaimsContextKey, claims))
	}
	return req
}

func TestRateLimitByEmployee_EnforcesLimit(t *testing.T) {
	handler := RateLimitByEmployee(RateLimitConfig{RequestsPerMinute: 5})(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestAs("emp-limit"))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d failed with status %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs("emp-limit"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", got)
	}
	if body := rec.Body.String(); body != `{"error":"rate_limit_exceeded","message":"Too many requests"}` {
		t.Errorf("unexpected response body: %s", body)
	}
}

func TestRateLimitByEmployee_IsolatesBuckets(t *testing.T) {
	handler := RateLimitByEmployee(RateLimitConfig{RequestsPerMinute: 3})(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestAs("emp-a"))
		if rec.Code != http.StatusOK {
			t.Fatalf("employee A request %d failed", i+1)
		}
	}

	// Employee B has an independent bucket
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs("emp-b"))
	if rec.Code != http.StatusOK {
		t.Errorf("employee B should have an independent bucket, got %d", rec.Code)
	}
}

func TestRateLimitByEmployee_FallsBackToIP(t *testing.T) {
	handler := RateLimitByEmployee(RateLimitConfig{RequestsPerMinute: 2})(okHandler())

	req := requestAs("")
	req.RemoteAddr = "192.168.1.50:9999"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("anonymous request should fall back to IP keying, got %d", rec.Code)
	}
}

func TestRateLimitByIP_EnforcesLimit(t *testing.T) {
	handler := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 2})(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/auth/login", nil)
		req.RemoteAddr = "10.1.1.1:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d failed with status %d", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = "10.1.1.1:1000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
}
