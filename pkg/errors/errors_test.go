package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundKeepsCause(t *testing.T) {
	cause := fmt.Errorf("failed to get patient: %w", sql.ErrNoRows)
	err := NotFound("patient", cause)

	assert.Equal(t, "patient not found: failed to get patient: sql: no rows in result set", err.Error())
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.Equal(t, ErrNotFound, CodeOf(err))
}

func TestCodeOfWrappedError(t *testing.T) {
	err := fmt.Errorf("handler: %w", InvalidTransition("bill is already paid"))

	assert.Equal(t, ErrInvalidTransition, CodeOf(err))
	assert.True(t, IsCode(err, ErrInvalidTransition))
	assert.False(t, IsCode(err, ErrBadRequest))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, ErrInternal, CodeOf(errors.New("boom")))
}

func TestMessageWithoutCause(t *testing.T) {
	err := ScheduleConflict("doctor is not available on the requested date")
	assert.Equal(t, "doctor is not available on the requested date", err.Error())
}
