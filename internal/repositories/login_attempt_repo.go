package repositories

import (
	"context"
	"time"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/database"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	"github.com/google/uuid"
)

// LoginAttemptRepository handles database operations for login attempts.
// Attempt rows are append-only; blocking state is always recomputed from
// them, never cached.
type LoginAttemptRepository struct {
	db *database.DB
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository
func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// RecordAttempt appends one immutable attempt record
func (r *LoginAttemptRepository) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (id, identifier, identifier_type, success, failure_reason, attempt_time, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		uuid.New().String(),
		attempt.Identifier,
		attempt.IdentifierType,
		attempt.Success,
		attempt.FailureReason,
		attempt.AttemptTime,
		attempt.ExpiresAt,
	)

	return database.MapPostgresError(err)
}

// CountFailedAttempts returns the number of failed attempts for an
// identifier recorded at or after the cutoff
func (r *LoginAttemptRepository) CountFailedAttempts(ctx context.Context, identifier string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM login_attempts
		WHERE identifier = $1 AND success = false AND attempt_time >= $2
	`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, identifier, since).Scan(&count)
	return count, database.MapPostgresError(err)
}

// DeleteFailedAttempts removes the failed attempts for an identifier that
// fall inside the live window. Older failure rows stay behind for audit;
// the window cutoff already excludes them from the count.
func (r *LoginAttemptRepository) DeleteFailedAttempts(ctx context.Context, identifier string, since time.Time) error {
	query := `
		DELETE FROM login_attempts
		WHERE identifier = $1 AND success = false AND attempt_time >= $2
	`

	_, err := r.db.Pool.Exec(ctx, query, identifier, since)
	return database.MapPostgresError(err)
}

// DeleteExpiredAttempts removes attempts past their retention horizon
func (r *LoginAttemptRepository) DeleteExpiredAttempts(ctx context.Context) (int64, error) {
	query := `DELETE FROM login_attempts WHERE expires_at <= CURRENT_TIMESTAMP`

	result, err := r.db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
