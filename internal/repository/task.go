package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/taskhive/taskhive/internal/model"
)

var (
	ErrTaskNotFound = errors.New("task not found")
)

type TaskRepository interface {
	Create(task *model.Task) error
	ByID(userID, taskID int64) (*model.Task, error)
	Tasks(userID int64, status string) ([]*model.Task, error)
	Update(task *model.Task) error
	Delete(userID, taskID int64) error
	ClaimOrphan(taskID, userID int64) error
}

type taskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(task *model.Task) error {
	query := `INSERT INTO tasks (user_id, title, description, status, due_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	return r.db.Get(&task.ID, query,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
}

func (r *taskRepository) ByID(userID, taskID int64) (*model.Task, error) {
	task := &model.Task{}
	query := `SELECT * FROM tasks WHERE id = $1 AND user_id = $2`

	err := r.db.Get(task, query, taskID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrTaskNotFound
	}

	return task, err
}

func (r *taskRepository) Tasks(userID int64, status string) ([]*model.Task, error) {
	var tasks []*model.Task

	query := `SELECT * FROM tasks WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	args := []any{userID}

	if status != "" && status != "all" {
		query = `SELECT * FROM tasks WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC, id DESC`
		args = append(args, status)
	}

	err := r.db.Select(&tasks, query, args...)
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) Update(task *model.Task) error {
	query := `UPDATE tasks
	          SET title = $1, description = $2, status = $3, due_date = $4, updated_at = $5
	          WHERE id = $6 AND user_id = $7`

	task.UpdatedAt = time.Now()

	result, err := r.db.Exec(query,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func (r *taskRepository) Delete(userID, taskID int64) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(query, taskID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// ClaimOrphan adopts a task with no owner for the given user. Rows created
// before ownership existed have user_id NULL; the first user to mutate such a
// row by id takes it over. Returns ErrTaskNotFound when the task does not
// exist or already has an owner.
func (r *taskRepository) ClaimOrphan(taskID, userID int64) error {
	query := `UPDATE tasks SET user_id = $1, updated_at = $2 WHERE id = $3 AND user_id IS NULL`

	result, err := r.db.Exec(query, userID, time.Now(), taskID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrTaskNotFound
	}

	return nil
}
