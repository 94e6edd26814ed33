package service

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/model"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/storage"
	"github.com/taskhive/taskhive/internal/validation"
)

// AttachmentService validates, stores and indexes uploaded files. Access
// control is inherited from the parent task; attachments have no owner of
// their own.
type AttachmentService struct {
	taskService          *TaskService
	attachmentRepository repository.AttachmentRepository
	storage              storage.Storage
	constraints          validation.UploadConstraints
}

func NewAttachmentService(taskService *TaskService, attachmentRepository repository.AttachmentRepository, storage storage.Storage, constraints validation.UploadConstraints) *AttachmentService {
	return &AttachmentService{
		taskService:          taskService,
		attachmentRepository: attachmentRepository,
		storage:              storage,
		constraints:          constraints,
	}
}

// Add stores the uploaded files against the task. The whole batch is
// validated up front; a persistence failure mid-batch aborts the remaining
// files but keeps the ones already stored.
func (s *AttachmentService) Add(userID, taskID int64, headers []*multipart.FileHeader) ([]model.AttachmentView, error) {
	task, err := s.taskService.resolveOwned(userID, taskID)
	if err != nil {
		return nil, err
	}

	err = validation.ValidateUploadBatch(headers, s.constraints)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadRejected, err)
	}

	views := make([]model.AttachmentView, 0, len(headers))
	for _, header := range headers {
		attachment, err := s.store(task.ID, header)
		if err != nil {
			return nil, err
		}
		views = append(views, attachmentView(attachment, s.storage))
	}

	return views, nil
}

func (s *AttachmentService) store(taskID int64, header *multipart.FileHeader) (*model.Attachment, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() { _ = file.Close() }()

	filename := storedFilename(header.Filename)

	err = s.storage.Save(filename, file)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	originalName := validation.SanitizeDisplayName(
		validation.RepairFilenameEncoding(header.Filename),
	)

	attachment := &model.Attachment{
		TaskID:       taskID,
		Filename:     filename,
		OriginalName: originalName,
		StoragePath:  filename,
		UploadedAt:   time.Now(),
	}

	err = s.attachmentRepository.Create(attachment)
	if err != nil {
		// If the row insert fails, try to cleanup the stored file.
		delErr := s.storage.Delete(filename)
		if delErr != nil {
			slog.Error("failed to delete stored file during cleanup", "error", delErr, "filename", filename)
		}
		return nil, fmt.Errorf("failed to create attachment record: %w", err)
	}

	return attachment, nil
}

// Delete removes an attachment by id. The parent task's ownership is not
// re-checked here; callers rely on attachment ids being unguessable, which is
// a known gap kept for compatibility with existing clients.
func (s *AttachmentService) Delete(id int64) error {
	attachment, err := s.attachmentRepository.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrAttachmentNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get attachment: %w", err)
	}

	delErr := s.storage.Delete(attachment.Filename)
	if delErr != nil {
		slog.Warn("failed to delete stored file", "filename", attachment.Filename, "error", delErr)
	}

	err = s.attachmentRepository.Delete(id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment record: %w", err)
	}

	return nil
}

// storedFilename builds a collision-resistant name: millisecond timestamp
// prefix, random suffix, sanitized lowercase extension of the original.
func storedFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String(), ext)
}

func attachmentView(attachment *model.Attachment, store storage.Storage) model.AttachmentView {
	return model.AttachmentView{
		ID:           attachment.ID,
		TaskID:       attachment.TaskID,
		Filename:     attachment.Filename,
		OriginalName: attachment.OriginalName,
		URL:          store.URL(attachment.Filename),
		UploadedAt:   attachment.UploadedAt,
	}
}
