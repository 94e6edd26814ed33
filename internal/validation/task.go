package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 10000
)

var (
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = fmt.Errorf("title must be at most %d characters", MaxTitleLength)
	ErrDescriptionTooLong = fmt.Errorf("description must be at most %d characters", MaxDescriptionLength)
	ErrInvalidStatus      = errors.New("status must be one of: pending, in-progress, completed")
	ErrInvalidDueDate     = errors.New("due date must be a calendar date in YYYY-MM-DD format")
)

// Length limits count characters, not bytes, so multi-byte titles are not
// penalized.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// ValidateDueDate checks a due date string. An empty string is treated as
// absent by the caller and never reaches this function.
func ValidateDueDate(dueDate string) error {
	_, err := time.Parse("2006-01-02", dueDate)
	if err != nil {
		return ErrInvalidDueDate
	}
	return nil
}
