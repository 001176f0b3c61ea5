package models

import "time"

// TaskStatus is a Kanban board column.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

var taskStatuses = map[TaskStatus]bool{
	TaskTodo:       true,
	TaskInProgress: true,
	TaskDone:       true,
}

func (s TaskStatus) Valid() bool {
	return taskStatuses[s]
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	CreatedBy   string     `json:"created_by"`
	BoardOrder  int        `json:"board_order"` // Position within the column, ascending
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskUpdate enumerates the mutable fields of a task; nil means unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	AssigneeID  *string
}
