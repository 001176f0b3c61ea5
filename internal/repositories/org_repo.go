package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/database"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrgRepository handles the department and position lookup tables
type OrgRepository struct {
	pool *pgxpool.Pool
}

func NewOrgRepository(db *database.DB) *OrgRepository {
	return &OrgRepository{pool: db.Pool}
}

func (r *OrgRepository) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	departments := make([]*models.Department, 0)
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, database.MapPostgresError(err)
		}
		departments = append(departments, &d)
	}

	return departments, rows.Err()
}

func (r *OrgRepository) CreateDepartment(ctx context.Context, name string) (*models.Department, error) {
	d := &models.Department{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO departments (id, name, created_at) VALUES ($1, $2, $3)`,
		d.ID, d.Name, d.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return d, nil
}

func (r *OrgRepository) DeleteDepartment(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *OrgRepository) ListPositions(ctx context.Context) ([]*models.Position, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, created_at FROM positions ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := make([]*models.Position, 0)
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.Title, &p.CreatedAt); err != nil {
			return nil, database.MapPostgresError(err)
		}
		positions = append(positions, &p)
	}

	return positions, rows.Err()
}

func (r *OrgRepository) CreatePosition(ctx context.Context, title string) (*models.Position, error) {
	p := &models.Position{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: time.Now(),
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO positions (id, title, created_at) VALUES ($1, $2, $3)`,
		p.ID, p.Title, p.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return p, nil
}

func (r *OrgRepository) DeletePosition(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
