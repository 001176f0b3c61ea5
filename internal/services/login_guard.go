package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
)

// Guard thresholds. The sliding window is recomputed from durable attempt
// rows on every check, so the guard stays correct across restarts and
// multiple running instances.
const (
	MaxFailedAttempts = 5
	LockoutWindow     = 30 * time.Minute
)

// How long attempt rows are kept before the background cleanup purges them
const attemptRetention = 2 * LockoutWindow

// AttemptRepository defines the storage operations the guard needs
type AttemptRepository interface {
	RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error
	CountFailedAttempts(ctx context.Context, identifier string, since time.Time) (int, error)
	DeleteFailedAttempts(ctx context.Context, identifier string, since time.Time) error
}

// LoginGuard decides whether an identifier is currently blocked from
// authenticating, based on its recent failure history. IP addresses and
// usernames are independent identifier spaces sharing the same mechanism.
type LoginGuard struct {
	repo   AttemptRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewLoginGuard creates a new LoginGuard
func NewLoginGuard(repo AttemptRepository, logger *slog.Logger) *LoginGuard {
	return &LoginGuard{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// IsBlocked reports whether further attempts for the identifier should be
// rejected outright: true iff the identifier has accumulated
// MaxFailedAttempts or more failures inside the trailing window.
//
// This is a pure read. A storage error fails open: locking out
// legitimate users over an infrastructure fault is worse than letting a
// brute-force attempt through one check.
func (g *LoginGuard) IsBlocked(ctx context.Context, identifier string) bool {
	cutoff := g.now().Add(-LockoutWindow)

	count, err := g.repo.CountFailedAttempts(ctx, identifier, cutoff)
	if err != nil {
		g.logger.Error("failed to count login attempts, failing open",
			slog.String("identifier", identifier),
			slog.Any("error", err))
		return false
	}

	if count >= MaxFailedAttempts {
		g.logger.Warn("identifier blocked by login guard",
			slog.String("identifier", identifier),
			slog.Int("failed_attempts", count))
		return true
	}

	return false
}

// RecordAttempt appends one immutable attempt row. Nothing is mutated in
// place; the threshold state is always recomputed from raw rows, which
// keeps the guard stateless and safe under concurrent writers. A storage
// error is logged and swallowed; failing to record an attempt must never
// abort the authentication flow itself.
func (g *LoginGuard) RecordAttempt(ctx context.Context, identifier, identifierType string, success bool, failureReason *string) {
	now := g.now()
	attempt := &models.LoginAttempt{
		Identifier:     identifier,
		IdentifierType: identifierType,
		Success:        success,
		FailureReason:  failureReason,
		AttemptTime:    now,
		ExpiresAt:      now.Add(attemptRetention),
	}

	if err := g.repo.RecordAttempt(ctx, attempt); err != nil {
		g.logger.Error("failed to record login attempt",
			slog.String("identifier", identifier),
			slog.Any("error", err))
	}
}

// ClearAttempts deletes the identifier's failure rows inside the live
// window, immediately unblocking it. Older failures stay for audit; the
// window cutoff already keeps them out of the live count. Called after a
// successful authentication, once per identifier space. Errors are logged
// and swallowed.
func (g *LoginGuard) ClearAttempts(ctx context.Context, identifier string) {
	cutoff := g.now().Add(-LockoutWindow)

	if err := g.repo.DeleteFailedAttempts(ctx, identifier, cutoff); err != nil {
		g.logger.Error("failed to clear login attempts",
			slog.String("identifier", identifier),
			slog.Any("error", err))
	}
}
