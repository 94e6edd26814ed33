package validation

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// UploadConstraints defines validation rules for attachment uploads.
type UploadConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
	MaxFiles          int
}

// AttachmentConstraints matches the upload policy: both the file extension
// and the declared media type must be on the allow-list.
var AttachmentConstraints = UploadConstraints{
	AllowedMimeTypes: map[string]bool{
		"image/jpeg":      true,
		"image/png":       true,
		"image/gif":       true,
		"application/pdf": true,
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
		"text/plain":                   true,
		"application/zip":              true,
		"application/x-zip-compressed": true,
		"application/x-rar-compressed": true,
		"application/vnd.rar":          true,
	},
	AllowedExtensions: map[string]bool{
		".jpeg": true,
		".jpg":  true,
		".png":  true,
		".gif":  true,
		".pdf":  true,
		".doc":  true,
		".docx": true,
		".txt":  true,
		".zip":  true,
		".rar":  true,
	},
	MaxSize:  5 << 20, // 5MB
	MaxFiles: 10,
}

// ValidateUploadBatch checks the batch-level constraints before any file is
// persisted, so a violation rejects the whole call.
func ValidateUploadBatch(headers []*multipart.FileHeader, constraints UploadConstraints) error {
	if len(headers) == 0 {
		return fmt.Errorf("no files provided")
	}
	if len(headers) > constraints.MaxFiles {
		return fmt.Errorf("too many files: maximum is %d per upload", constraints.MaxFiles)
	}
	for _, header := range headers {
		err := ValidateUpload(header, constraints)
		if err != nil {
			return err
		}
	}
	return nil
}

// ValidateUpload validates a single file against the constraint set.
func ValidateUpload(header *multipart.FileHeader, constraints UploadConstraints) error {
	if header.Size > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return fmt.Errorf("file %q too large: maximum size is %d MB", header.Filename, maxMB)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !constraints.AllowedExtensions[ext] {
		return fmt.Errorf("file extension %q is not allowed", ext)
	}

	// The declared type must match too, so a renamed file with a mismatched
	// Content-Type is rejected.
	mimeType := header.Header.Get("Content-Type")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !constraints.AllowedMimeTypes[strings.ToLower(mimeType)] {
		return fmt.Errorf("file type %q is not allowed", mimeType)
	}

	return nil
}

// SanitizeDisplayName strips path separators and control characters from a
// user-supplied filename so it is safe to echo back in responses.
func SanitizeDisplayName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20, r == 0x7F:
			// drop control characters
		case r == '/', r == '\\', r == ':':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" || out == "." || out == ".." {
		return "file"
	}
	return out
}

// RepairFilenameEncoding re-decodes filenames that a client transmitted as
// one byte per character instead of UTF-8. When every rune fits in a single
// byte and the byte sequence forms valid multi-byte UTF-8, the re-decoded
// name is almost certainly the intended one. This is a heuristic: on any
// doubt the raw name is kept.
func RepairFilenameEncoding(name string) string {
	hasHighByte := false
	bytes := make([]byte, 0, len(name))
	for _, r := range name {
		if r > 0xFF {
			return name // already beyond single-byte range, nothing to repair
		}
		if r >= 0x80 {
			hasHighByte = true
		}
		bytes = append(bytes, byte(r))
	}
	if !hasHighByte {
		return name
	}
	if !utf8.Valid(bytes) {
		return name
	}
	return string(bytes)
}
