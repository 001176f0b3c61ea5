package background

import (
	"context"
	"log/slog"
	"time"
)

// TokenCleaner removes expired revoked-token rows
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// AttemptCleaner removes login attempt rows past their retention window
type AttemptCleaner interface {
	DeleteExpiredAttempts(ctx context.Context) (int64, error)
}

// CleanupManager periodically purges expired revoked tokens and aged-out
// login attempt rows. Attempt rows outlive the lockout window so recent
// history stays auditable, then get swept here.
type CleanupManager struct {
	revokeRepo  TokenCleaner
	attemptRepo AttemptCleaner
	logger      *slog.Logger
	interval    time.Duration
	stopCh      chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	revokeRepo TokenCleaner,
	attemptRepo AttemptCleaner,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		revokeRepo:  revokeRepo,
		attemptRepo: attemptRepo,
		logger:      logger,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tokens, err := cm.revokeRepo.CleanupExpiredTokens(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to clean up expired tokens", slog.Any("error", err))
	} else if tokens > 0 {
		cm.logger.Info("expired token cleanup completed", slog.Int64("rows_deleted", tokens))
	}

	attempts, err := cm.attemptRepo.DeleteExpiredAttempts(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to clean up expired login attempts", slog.Any("error", err))
	} else if attempts > 0 {
		cm.logger.Info("login attempt cleanup completed", slog.Int64("rows_deleted", attempts))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
