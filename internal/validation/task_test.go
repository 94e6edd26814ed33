package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle("Buy milk"))
	assert.ErrorIs(t, ValidateTitle(""), ErrTitleRequired)
	assert.ErrorIs(t, ValidateTitle("   "), ErrTitleRequired)

	assert.NoError(t, ValidateTitle(strings.Repeat("a", MaxTitleLength)))
	assert.ErrorIs(t, ValidateTitle(strings.Repeat("a", MaxTitleLength+1)), ErrTitleTooLong)

	// Limits count characters, not bytes
	assert.NoError(t, ValidateTitle(strings.Repeat("é", MaxTitleLength)))
	assert.ErrorIs(t, ValidateTitle(strings.Repeat("é", MaxTitleLength+1)), ErrTitleTooLong)
}

func TestValidateDescription(t *testing.T) {
	assert.NoError(t, ValidateDescription(""))
	assert.NoError(t, ValidateDescription(strings.Repeat("d", MaxDescriptionLength)))
	assert.ErrorIs(t, ValidateDescription(strings.Repeat("d", MaxDescriptionLength+1)), ErrDescriptionTooLong)
	assert.NoError(t, ValidateDescription(strings.Repeat("文", MaxDescriptionLength)))
}

func TestValidateDueDate(t *testing.T) {
	assert.NoError(t, ValidateDueDate("2026-09-01"))
	assert.ErrorIs(t, ValidateDueDate("tomorrow"), ErrInvalidDueDate)
	assert.ErrorIs(t, ValidateDueDate("2026-13-01"), ErrInvalidDueDate)
	assert.ErrorIs(t, ValidateDueDate("01-09-2026"), ErrInvalidDueDate)
}
