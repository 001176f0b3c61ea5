package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/auth"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultAuthRateLimit returns the rate limit for unauthenticated auth
// endpoints. This transport-level throttle is per-instance and in-memory;
// the durable failed-attempt lockout lives in the login guard.
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
	}
}

// DefaultAPIRateLimit returns the rate limit for authenticated API endpoints
func DefaultAPIRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 120,
	}
}

func limitHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"error":"rate_limit_exceeded","message":"Too many requests"}`))
}

// RateLimitByIP creates a middleware that rate limits requests by client IP
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(limitHandler),
	)
}

// RateLimitByEmployee creates a middleware that rate limits authenticated
// requests per employee, falling back to the client IP when no claims are
// present
func RateLimitByEmployee(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if claims := auth.GetClaimsFromContext(r); claims != nil {
				return "employee:" + claims.EmployeeID, nil
			}
			return httprate.KeyByRealIP(r)
		}),
		httprate.WithLimitHandler(limitHandler),
	)
}
