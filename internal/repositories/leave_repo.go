package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/database"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeaveRepository struct {
	pool *pgxpool.Pool
}

func NewLeaveRepository(db *database.DB) *LeaveRepository {
	return &LeaveRepository{pool: db.Pool}
}

// LeaveFilter narrows leave request listings. Zero values mean "no filter".
type LeaveFilter struct {
	EmployeeID string
	Category   models.LeaveCategory
	Statuses   []models.LeaveStatus
	From       time.Time // Inclusive lower bound on start_date
	To         time.Time // Inclusive upper bound on start_date
}

const leaveColumns = `id, employee_id, category, start_date, end_date, half_day, hours, reason, status, total_days, approver_id, decided_at, created_at, updated_at`

func scanLeaveRow(scanner rowScanner) (*models.LeaveRequest, error) {
	var req models.LeaveRequest

	err := scanner.Scan(
		&req.ID, &req.EmployeeID, &req.Category, &req.StartDate, &req.EndDate,
		&req.HalfDay, &req.Hours, &req.Reason, &req.Status, &req.TotalDays,
		&req.ApproverID, &req.DecidedAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &req, nil
}

func scanLeaveRows(rows pgx.Rows) ([]*models.LeaveRequest, error) {
	defer rows.Close()

	requests := make([]*models.LeaveRequest, 0)

	for rows.Next() {
		req, err := scanLeaveRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return requests, nil
}

func (r *LeaveRepository) GetByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1`
	return scanLeaveRow(r.pool.QueryRow(ctx, query, id))
}

func (r *LeaveRepository) List(ctx context.Context, filter LeaveFilter) ([]*models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE 1=1`
	args := make([]interface{}, 0, 5)

	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, filter.Statuses)
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND start_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND start_date <= $%d", len(args))
	}

	query += " ORDER BY start_date DESC, created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}

	return scanLeaveRows(rows)
}

func (r *LeaveRepository) Create(ctx context.Context, req *models.LeaveRequest) (*models.LeaveRequest, error) {
	req.ID = uuid.New().String()

	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	if req.Status == "" {
		req.Status = models.LeavePending
	}

	query := `
		INSERT INTO leave_requests (id, employee_id, category, start_date, end_date, half_day, hours, reason, status, total_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.EmployeeID, req.Category, req.StartDate, req.EndDate,
		req.HalfDay, req.Hours, req.Reason, req.Status, req.TotalDays,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return req, nil
}

// Update persists the mutable fields of a pending request, including the
// recomputed total_days
func (r *LeaveRepository) Update(ctx context.Context, id string, req *models.LeaveRequest) (*models.LeaveRequest, error) {
	req.UpdatedAt = time.Now()

	query := `
		UPDATE leave_requests
		SET category = $2, start_date = $3, end_date = $4, half_day = $5,
		    hours = $6, reason = $7, total_days = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		id, req.Category, req.StartDate, req.EndDate, req.HalfDay,
		req.Hours, req.Reason, req.TotalDays, req.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return nil, models.ErrNotFound
	}

	return req, nil
}

// Decide moves a pending request to approved or rejected. The status
// predicate makes the transition exactly-once even under concurrent
// approvers: the second decision matches zero rows.
func (r *LeaveRepository) Decide(ctx context.Context, id string, status models.LeaveStatus, approverID string, decidedAt time.Time) error {
	query := `
		UPDATE leave_requests
		SET status = $2, approver_id = $3, decided_at = $4, updated_at = $4
		WHERE id = $1 AND status = $5
	`

	result, err := r.pool.Exec(ctx, query, id, status, approverID, decidedAt, models.LeavePending)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrAlreadyDecided
	}

	return nil
}

func (r *LeaveRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM leave_requests WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
