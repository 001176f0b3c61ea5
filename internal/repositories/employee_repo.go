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

type EmployeeRepository struct {
	pool *pgxpool.Pool
}

func NewEmployeeRepository(db *database.DB) *EmployeeRepository {
	return &EmployeeRepository{pool: db.Pool}
}

const employeeColumns = `id, email, password_hash, first_name, last_name, role, status, department_id, position_id, totp_secret, totp_enabled, created_at, updated_at`

// rowScanner covers both single-row and multi-row scanning
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployeeRow(scanner rowScanner) (*models.Employee, error) {
	var emp models.Employee

	err := scanner.Scan(
		&emp.ID, &emp.Email, &emp.PasswordHash, &emp.FirstName, &emp.LastName,
		&emp.Role, &emp.Status, &emp.DepartmentID, &emp.PositionID,
		&emp.TOTPSecret, &emp.TOTPEnabled,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &emp, nil
}

func scanEmployeeRows(rows pgx.Rows) ([]*models.Employee, error) {
	defer rows.Close()

	employees := make([]*models.Employee, 0)

	for rows.Next() {
		emp, err := scanEmployeeRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return employees, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	return scanEmployeeRow(r.pool.QueryRow(ctx, query, id))
}

func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE email = $1`
	return scanEmployeeRow(r.pool.QueryRow(ctx, query, email))
}

func (r *EmployeeRepository) List(ctx context.Context, limit, offset int) ([]*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}

	return scanEmployeeRows(rows)
}

func (r *EmployeeRepository) Create(ctx context.Context, emp *models.Employee) (*models.Employee, error) {
	emp.ID = uuid.New().String()

	now := time.Now()
	emp.CreatedAt = now
	emp.UpdatedAt = now

	if emp.Role == "" {
		emp.Role = models.RoleEmployee
	}
	if emp.Status == "" {
		emp.Status = models.StatusActive
	}

	query := `
		INSERT INTO employees (id, email, password_hash, first_name, last_name, role, status, department_id, position_id, totp_secret, totp_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		emp.ID, emp.Email, emp.PasswordHash, emp.FirstName, emp.LastName,
		emp.Role, emp.Status, emp.DepartmentID, emp.PositionID,
		emp.TOTPSecret, emp.TOTPEnabled,
		emp.CreatedAt, emp.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return emp, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, id string, emp *models.Employee) (*models.Employee, error) {
	emp.UpdatedAt = time.Now()

	query := `
		UPDATE employees
		SET first_name = $2, last_name = $3, role = $4, status = $5,
		    department_id = $6, position_id = $7, totp_secret = $8, totp_enabled = $9,
		    updated_at = $10
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		id, emp.FirstName, emp.LastName, emp.Role, emp.Status,
		emp.DepartmentID, emp.PositionID, emp.TOTPSecret, emp.TOTPEnabled,
		emp.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return nil, models.ErrNotFound
	}

	return emp, nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
