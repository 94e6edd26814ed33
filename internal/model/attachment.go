package model

import (
	"time"
)

type Attachment struct {
	ID           int64     `db:"id"`
	TaskID       int64     `db:"task_id"`
	Filename     string    `db:"filename"`      // generated, collision-resistant
	OriginalName string    `db:"original_name"` // user-supplied, display only
	StoragePath  string    `db:"storage_path"`
	UploadedAt   time.Time `db:"uploaded_at"`
}

// AttachmentView is the wire shape for an attachment.
type AttachmentView struct {
	ID           int64     `json:"id"`
	TaskID       int64     `json:"taskId"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	URL          string    `json:"url"`
	UploadedAt   time.Time `json:"uploadedAt"`
}
