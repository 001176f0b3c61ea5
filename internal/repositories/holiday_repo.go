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

type HolidayRepository struct {
	pool *pgxpool.Pool
}

func NewHolidayRepository(db *database.DB) *HolidayRepository {
	return &HolidayRepository{pool: db.Pool}
}

func (r *HolidayRepository) List(ctx context.Context) ([]*models.Holiday, error) {
	query := `SELECT id, holiday_date, name, active, created_at FROM holidays ORDER BY holiday_date`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	holidays := make([]*models.Holiday, 0)
	for rows.Next() {
		var h models.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.Active, &h.CreatedAt); err != nil {
			return nil, database.MapPostgresError(err)
		}
		holidays = append(holidays, &h)
	}

	return holidays, rows.Err()
}

// ListActiveDates returns the active holiday dates inside [from, to],
// the shape the day accountant consumes
func (r *HolidayRepository) ListActiveDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	query := `
		SELECT holiday_date FROM holidays
		WHERE active = TRUE AND holiday_date >= $1 AND holiday_date <= $2
		ORDER BY holiday_date
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query holiday dates: %w", err)
	}
	defer rows.Close()

	dates := make([]time.Time, 0)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, database.MapPostgresError(err)
		}
		dates = append(dates, d)
	}

	return dates, rows.Err()
}

func (r *HolidayRepository) Create(ctx context.Context, h *models.Holiday) (*models.Holiday, error) {
	h.ID = uuid.New().String()
	h.CreatedAt = time.Now()

	query := `
		INSERT INTO holidays (id, holiday_date, name, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, h.ID, h.Date, h.Name, h.Active, h.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return h, nil
}

func (r *HolidayRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.pool.Exec(ctx, `UPDATE holidays SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *HolidayRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
