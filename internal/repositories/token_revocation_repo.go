package repositories

import (
	"context"
	"time"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokenRevocationRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRevocationRepository(db *database.DB) *TokenRevocationRepository {
	return &TokenRevocationRepository{pool: db.Pool}
}

// RevokeToken records a token's JTI as no longer acceptable
func (r *TokenRevocationRepository) RevokeToken(ctx context.Context, jti, employeeID, tokenType string, expiresAt time.Time, reason string) error {
	query := `
		INSERT INTO token_revocations (id, jti, employee_id, token_type, expires_at, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query, uuid.New().String(), jti, employeeID, tokenType, expiresAt, reason)
	return database.MapPostgresError(err)
}

// IsTokenRevoked reports whether the JTI has been revoked
func (r *TokenRevocationRepository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM token_revocations WHERE jti = $1)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, jti).Scan(&exists)
	if err != nil {
		return false, database.MapPostgresError(err)
	}

	return exists, nil
}

// CleanupExpiredTokens removes revocation rows whose tokens have
// expired anyway; the background cleanup calls this periodically
func (r *TokenRevocationRepository) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	query := `DELETE FROM token_revocations WHERE expires_at < $1`

	result, err := r.pool.Exec(ctx, query, time.Now())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
