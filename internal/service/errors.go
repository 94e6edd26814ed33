package service

import (
	"errors"
)

// Error taxonomy shared by both transports. Each transport maps these to its
// own idiom (HTTP status codes vs. ack error codes) without losing which case
// occurred. Store-layer failures are never surfaced directly; they are logged
// and reported as a generic internal error.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrDuplicateUser      = errors.New("username or email already exists")
	ErrUploadRejected     = errors.New("upload rejected")
)
