package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/database"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TaskRepository struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, title, description, status, assignee_id, created_by, board_order, created_at, updated_at`

func scanTaskRow(scanner rowScanner) (*models.Task, error) {
	var task models.Task

	err := scanner.Scan(
		&task.ID, &task.Title, &task.Description, &task.Status,
		&task.AssigneeID, &task.CreatedBy, &task.BoardOrder,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &task, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTaskRow(r.db.Pool.QueryRow(ctx, query, id))
}

// List returns the whole board ordered by column and position
func (r *TaskRepository) List(ctx context.Context) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY status, board_order, created_at`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTaskRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.ID = uuid.New().String()

	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if task.Status == "" {
		task.Status = models.TaskTodo
	}

	query := `
		INSERT INTO tasks (id, title, description, status, assignee_id, created_by, board_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6,
		        (SELECT COALESCE(MAX(board_order), 0) + 1 FROM tasks WHERE status = $4),
		        $7, $8)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		task.ID, task.Title, task.Description, task.Status,
		task.AssigneeID, task.CreatedBy, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return r.GetByID(ctx, task.ID)
}

func (r *TaskRepository) Update(ctx context.Context, id string, task *models.Task) (*models.Task, error) {
	task.UpdatedAt = time.Now()

	query := `
		UPDATE tasks
		SET title = $2, description = $3, assignee_id = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query, id, task.Title, task.Description, task.AssigneeID, task.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return nil, models.ErrNotFound
	}

	return task, nil
}

// Move places a task into a column at the given position, shifting the
// rest of the column down. Both updates run in one transaction so a
// concurrent board read never sees a torn ordering.
func (r *TaskRepository) Move(ctx context.Context, id string, status models.TaskStatus, boardOrder int) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		shift := `
			UPDATE tasks SET board_order = board_order + 1
			WHERE status = $1 AND board_order >= $2 AND id <> $3
		`
		if _, err := tx.Exec(ctx, shift, status, boardOrder, id); err != nil {
			return database.MapPostgresError(err)
		}

		place := `
			UPDATE tasks SET status = $2, board_order = $3, updated_at = $4
			WHERE id = $1
		`
		result, err := tx.Exec(ctx, place, id, status, boardOrder, time.Now())
		if err != nil {
			return database.MapPostgresError(err)
		}
		if result.RowsAffected() == 0 {
			return models.ErrNotFound
		}

		return nil
	})
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
