package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/taskhive/taskhive/internal/model"
)

var (
	ErrAttachmentNotFound = errors.New("attachment not found")
)

type AttachmentRepository interface {
	Create(attachment *model.Attachment) error
	ByID(id int64) (*model.Attachment, error)
	ByTaskID(taskID int64) ([]*model.Attachment, error)
	Delete(id int64) error
}

type attachmentRepository struct {
	db *sqlx.DB
}

func NewAttachmentRepository(db *sqlx.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(attachment *model.Attachment) error {
	query := `INSERT INTO attachments (task_id, filename, original_name, storage_path, uploaded_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	return r.db.Get(&attachment.ID, query,
		attachment.TaskID,
		attachment.Filename,
		attachment.OriginalName,
		attachment.StoragePath,
		attachment.UploadedAt,
	)
}

func (r *attachmentRepository) ByID(id int64) (*model.Attachment, error) {
	attachment := &model.Attachment{}
	query := `SELECT * FROM attachments WHERE id = $1`

	err := r.db.Get(attachment, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrAttachmentNotFound
	}

	return attachment, err
}

func (r *attachmentRepository) ByTaskID(taskID int64) ([]*model.Attachment, error) {
	var attachments []*model.Attachment
	query := `SELECT * FROM attachments WHERE task_id = $1 ORDER BY uploaded_at ASC, id ASC`

	err := r.db.Select(&attachments, query, taskID)
	if err != nil {
		return nil, err
	}

	return attachments, nil
}

func (r *attachmentRepository) Delete(id int64) error {
	query := `DELETE FROM attachments WHERE id = $1`
	_, err := r.db.Exec(query, id)
	return err
}
