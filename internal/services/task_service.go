package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
)

// TaskRepository defines the interface for task board data access
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, id string, task *models.Task) (*models.Task, error)
	Move(ctx context.Context, id string, status models.TaskStatus, boardOrder int) error
	Delete(ctx context.Context, id string) error
}

// TaskService handles the Kanban board business logic
type TaskService struct {
	repo   TaskRepository
	logger *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(repo TaskRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		logger: logger,
	}
}

// Board returns every task grouped into columns in board order
func (s *TaskService) Board(ctx context.Context) (map[models.TaskStatus][]*models.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list tasks", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	board := map[models.TaskStatus][]*models.Task{
		models.TaskTodo:       {},
		models.TaskInProgress: {},
		models.TaskDone:       {},
	}
	for _, task := range tasks {
		board[task.Status] = append(board[task.Status], task)
	}
	return board, nil
}

// Create adds a task to the bottom of its column
func (s *TaskService) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.Title == "" {
		return nil, models.ErrBadRequest
	}
	if task.Status != "" && !task.Status.Valid() {
		return nil, models.ErrBadRequest
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.logger.Error("failed to create task", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("task created", slog.String("task_id", created.ID))
	return created, nil
}

// Update applies an explicit per-field update to a task
func (s *TaskService) Update(ctx context.Context, id string, update *models.TaskUpdate) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get task", slog.String("task_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if update.Title != nil {
		if *update.Title == "" {
			return nil, models.ErrBadRequest
		}
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.AssigneeID != nil {
		task.AssigneeID = update.AssigneeID
	}

	updated, err := s.repo.Update(ctx, id, task)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update task", slog.String("task_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("task updated", slog.String("task_id", id))
	return updated, nil
}

// Move places a task into a column at a position
func (s *TaskService) Move(ctx context.Context, id string, status models.TaskStatus, boardOrder int) error {
	if !status.Valid() || boardOrder < 0 {
		return models.ErrBadRequest
	}

	if err := s.repo.Move(ctx, id, status, boardOrder); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to move task", slog.String("task_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("task moved",
		slog.String("task_id", id),
		slog.String("status", string(status)),
		slog.Int("board_order", boardOrder))
	return nil
}

// Delete removes a task from the board
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete task", slog.String("task_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("task deleted", slog.String("task_id", id))
	return nil
}
