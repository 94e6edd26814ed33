package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskhive/taskhive/internal/model"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/storage"
	"github.com/taskhive/taskhive/internal/validation"
)

// TaskInput carries the fields of a create request. Empty strings mean the
// field was omitted; create has no absent-vs-null distinction.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate"`
}

// TaskService implements the task operations once, for both transports.
type TaskService struct {
	taskRepository       repository.TaskRepository
	attachmentRepository repository.AttachmentRepository
	storage              storage.Storage
}

func NewTaskService(taskRepository repository.TaskRepository, attachmentRepository repository.AttachmentRepository, storage storage.Storage) *TaskService {
	return &TaskService{
		taskRepository:       taskRepository,
		attachmentRepository: attachmentRepository,
		storage:              storage,
	}
}

// List returns the caller's tasks, newest-created-first, optionally filtered
// by status equality ("all" and empty mean no filter).
func (s *TaskService) List(userID int64, status string) ([]model.TaskView, error) {
	tasks, err := s.taskRepository.Tasks(userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	views := make([]model.TaskView, 0, len(tasks))
	for _, task := range tasks {
		view, err := s.view(task)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *TaskService) Get(userID, taskID int64) (model.TaskView, error) {
	task, err := s.taskRepository.ByID(userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskView{}, err
		}
		return model.TaskView{}, fmt.Errorf("failed to get task: %w", err)
	}

	return s.view(task)
}

func (s *TaskService) Create(userID int64, in TaskInput) (model.TaskView, error) {
	if err := validation.ValidateTitle(in.Title); err != nil {
		return model.TaskView{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return model.TaskView{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	status := in.Status
	if status == "" {
		status = model.TaskStatusPending
	}
	if !model.ValidTaskStatus(status) {
		return model.TaskView{}, fmt.Errorf("%w: %v", ErrValidation, validation.ErrInvalidStatus)
	}

	var dueDate *string
	if in.DueDate != "" {
		if err := validation.ValidateDueDate(in.DueDate); err != nil {
			return model.TaskView{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		dueDate = &in.DueDate
	}

	task := newTask(userID, in.Title, in.Description, status, dueDate)
	err := s.taskRepository.Create(task)
	if err != nil {
		return model.TaskView{}, fmt.Errorf("failed to create task: %w", err)
	}

	// Re-read so the response reflects exactly what was persisted.
	created, err := s.taskRepository.ByID(userID, task.ID)
	if err != nil {
		return model.TaskView{}, fmt.Errorf("failed to read created task: %w", err)
	}

	return s.view(created)
}

// Update applies a partial update. Omitted fields keep their value, null
// clears the nullable ones. When no owned task matches, an ownerless task
// with the same id is claimed for the caller before giving up.
func (s *TaskService) Update(userID, taskID int64, patch model.TaskPatch) (model.TaskView, error) {
	task, err := s.resolveOwned(userID, taskID)
	if err != nil {
		return model.TaskView{}, err
	}

	if patch.Title.Set {
		if !patch.Title.Valid {
			return model.TaskView{}, fmt.Errorf("%w: %v", ErrValidation, validation.ErrTitleRequired)
		}
		if err := validation.ValidateTitle(patch.Title.Value); err != nil {
			return model.TaskView{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		task.Title = patch.Title.Value
	}

	if patch.Description.Set {
		description := ""
		if patch.Description.Valid {
			description = patch.Description.Value
		}
		if err := validation.ValidateDescription(description); err != nil {
			return model.TaskView{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		task.Description = description
	}

	if patch.Status.Set {
		if !patch.Status.Valid || !model.ValidTaskStatus(patch.Status.Value) {
			return model.TaskView{}, fmt.Errorf("%w: %v", ErrValidation, validation.ErrInvalidStatus)
		}
		task.Status = patch.Status.Value
	}

	if patch.DueDate.Set {
		// Explicit null and empty string both clear the due date.
		if !patch.DueDate.Valid || patch.DueDate.Value == "" {
			task.DueDate = nil
		} else {
			if err := validation.ValidateDueDate(patch.DueDate.Value); err != nil {
				return model.TaskView{}, fmt.Errorf("%w: %v", ErrValidation, err)
			}
			dueDate := patch.DueDate.Value
			task.DueDate = &dueDate
		}
	}

	err = s.taskRepository.Update(task)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskView{}, err
		}
		return model.TaskView{}, fmt.Errorf("failed to update task: %w", err)
	}

	return s.view(task)
}

// Delete removes a task and its attachments. The attachment rows go with the
// task via the store's cascade; stored files are cleaned up best-effort.
func (s *TaskService) Delete(userID, taskID int64) error {
	task, err := s.resolveOwned(userID, taskID)
	if err != nil {
		return err
	}

	attachments, err := s.attachmentRepository.ByTaskID(task.ID)
	if err != nil {
		return fmt.Errorf("failed to list attachments: %w", err)
	}

	err = s.taskRepository.Delete(userID, task.ID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	for _, attachment := range attachments {
		delErr := s.storage.Delete(attachment.Filename)
		if delErr != nil {
			slog.Warn("failed to delete stored file", "filename", attachment.Filename, "error", delErr)
		}
	}

	return nil
}

// resolveOwned loads a task owned by the caller, falling back to one-time
// adoption of an ownerless row with the same id.
func (s *TaskService) resolveOwned(userID, taskID int64) (*model.Task, error) {
	task, err := s.taskRepository.ByID(userID, taskID)
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, repository.ErrTaskNotFound) {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	err = s.taskRepository.ClaimOrphan(taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to claim task: %w", err)
	}

	slog.Info("claimed ownerless task", "task_id", taskID, "user_id", userID)

	task, err = s.taskRepository.ByID(userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get claimed task: %w", err)
	}

	return task, nil
}

func newTask(userID int64, title, description, status string, dueDate *string) *model.Task {
	now := time.Now()
	return &model.Task{
		UserID:      &userID,
		Title:       title,
		Description: description,
		Status:      status,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *TaskService) view(task *model.Task) (model.TaskView, error) {
	attachments, err := s.attachmentRepository.ByTaskID(task.ID)
	if err != nil {
		return model.TaskView{}, fmt.Errorf("failed to list attachments: %w", err)
	}

	views := make([]model.AttachmentView, 0, len(attachments))
	for _, attachment := range attachments {
		views = append(views, attachmentView(attachment, s.storage))
	}

	return model.TaskView{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Attachments: views,
	}, nil
}
