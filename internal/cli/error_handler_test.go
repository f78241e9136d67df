package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "taskdeck/internal/errors"
	"taskdeck/internal/validation"
)

func TestErrorHandler_Handle(t *testing.T) {
	eh := NewErrorHandler()

	tests := []struct {
		name      string
		operation string
		err       error
		expected  string
	}{
		{
			name:      "validation app error keeps its message",
			operation: "create task",
			err:       apperrors.NewValidationError("title is required", nil),
			expected:  "failed to create task: title is required",
		},
		{
			name:      "not found",
			operation: "show task",
			err:       apperrors.NewNotFoundError("task", "123"),
			expected:  "failed to show task: task not found: 123",
		},
		{
			name:      "database errors are generic",
			operation: "save task",
			err:       apperrors.NewDatabaseError("insert", errors.New("locked")),
			expected:  "failed to save task: A database error occurred. Please try again.",
		},
		{
			name:      "remote errors reassure",
			operation: "sync",
			err:       apperrors.NewRemoteError("select", "tasks", errors.New("refused")),
			expected:  "failed to sync: The sync server could not be reached. Your changes are kept locally.",
		},
		{
			name:      "timeouts get a hint",
			operation: "sync",
			err:       apperrors.NewTimeoutError("select", "30s"),
			expected:  "failed to sync: The operation timed out. Please try again. (raise --app-timeout for slow connections)",
		},
		{
			name:      "wrapped app errors are found",
			operation: "edit task",
			err:       fmt.Errorf("edit: %w", apperrors.NewInvalidInputError("priority", "urgent", "unknown priority")),
			expected:  "failed to edit task: invalid input for priority: unknown priority",
		},
		{
			name:      "plain errors pass through",
			operation: "process",
			err:       errors.New("regular error"),
			expected:  "failed to process: regular error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, eh.Handle(tt.operation, tt.err), tt.expected)
		})
	}
}

func TestErrorHandler_HandleValidationError(t *testing.T) {
	validationErr := &validation.ValidationError{
		Errors: []validation.FieldError{{Field: "title", Message: "title is required"}},
	}

	err := NewErrorHandler().Handle("create task", validationErr)
	assert.EqualError(t, err, "failed to create task: title is required")
}

func TestErrorHandler_HandleKeepsPlainCause(t *testing.T) {
	cause := errors.New("disk full")
	assert.ErrorIs(t, NewErrorHandler().Handle("export tasks", cause), cause)
}

func TestErrorHandler_HandleNil(t *testing.T) {
	assert.NoError(t, NewErrorHandler().Handle("anything", nil))
}
