package model

import (
	"time"
)

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
)

// ValidTaskStatus reports whether s is one of the task status values.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          int64     `db:"id"`
	UserID      *int64    `db:"user_id"` // NULL for orphan rows predating ownership
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	DueDate     *string   `db:"due_date"` // calendar date, YYYY-MM-DD
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// TaskView is the wire shape for a task, shared by both transports.
type TaskView struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	DueDate     *string          `json:"dueDate,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Attachments []AttachmentView `json:"attachments"`
}
