package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/taskhive/taskhive/internal/ctxkeys"
	"github.com/taskhive/taskhive/internal/service"
)

// uploadFieldName is the multipart form field carrying the files.
const uploadFieldName = "attachment"

type AttachmentHandler struct {
	attachmentService *service.AttachmentService
	maxUploadSize     int64
	maxFilesPerUpload int
}

func NewAttachmentHandler(attachmentService *service.AttachmentService, maxUploadSize int64, maxFilesPerUpload int) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
		maxUploadSize:     maxUploadSize,
		maxFilesPerUpload: maxFilesPerUpload,
	}
}

func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Bound the whole request body; per-file size is validated downstream.
	maxBody := h.maxUploadSize*int64(h.maxFilesPerUpload) + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	err = r.ParseMultipartForm(32 << 20)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid multipart body", service.ErrUploadRejected))
		return
	}

	headers := r.MultipartForm.File[uploadFieldName]

	attachments, err := h.attachmentService.Add(user.ID, taskID, headers)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, attachments)
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid id", service.ErrValidation))
		return
	}

	err = h.attachmentService.Delete(id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
