package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewValidationError(t *testing.T) {
	cause := errors.New("title is required")
	err := NewValidationError("validation failed", cause)

	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "VALIDATION_FAILED", err.Code)
	assert.Equal(t, cause, err.Cause)
	assert.NotNil(t, err.Context)
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("task", "abc")

	assert.Equal(t, "task not found: abc", err.Message)
	resource, ok := err.GetContext("resource")
	assert.True(t, ok)
	assert.Equal(t, "task", resource)
}

func TestNewInvalidInputError(t *testing.T) {
	err := NewInvalidInputError("priority", "urgent", "unknown priority")

	assert.Equal(t, "invalid_input: invalid input for priority: unknown priority", err.Error())
	value, _ := err.GetContext("value")
	assert.Equal(t, "urgent", value)
}

func TestNewRemoteError(t *testing.T) {
	t.Run("plain failure", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewRemoteError("select", "projects", cause)

		assert.Equal(t, ErrorTypeRemote, err.Type)
		assert.Equal(t, "REMOTE_ERROR", err.Code)
		assert.Equal(t, "remote operation failed: select projects", err.Message)
		assert.ErrorIs(t, err, cause)
		table, ok := err.GetContext("table")
		assert.True(t, ok)
		assert.Equal(t, "projects", table)
	})

	t.Run("deadline becomes timeout", func(t *testing.T) {
		cause := fmt.Errorf("query: %w", context.DeadlineExceeded)
		err := NewRemoteError("delete", "tasks", cause)

		assert.Equal(t, ErrorTypeTimeout, err.Type)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		table, _ := err.GetContext("table")
		assert.Equal(t, "tasks", table)
	})
}

func TestNewMigrationError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewMigrationError("storage-backend-v1", cause)

	assert.Equal(t, ErrorTypeMigration, err.Type)
	assert.Equal(t, "migration storage-backend-v1 failed", err.Message)
	flag, _ := err.GetContext("flag")
	assert.Equal(t, "storage-backend-v1", flag)
}

func TestIsErrorType(t *testing.T) {
	err := NewNotFoundError("project", "p1")

	assert.True(t, IsErrorType(err, ErrorTypeNotFound))
	assert.False(t, IsErrorType(err, ErrorTypeDatabase))
	assert.False(t, IsErrorType(errors.New("plain"), ErrorTypeNotFound))
}

func TestGetUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"validation keeps message", NewValidationError("title is required", nil), "title is required"},
		{"database is generic", NewDatabaseError("insert", errors.New("locked")), "A database error occurred. Please try again."},
		{"migration retries", NewMigrationError("flag", nil), "Local data could not be upgraded. It will be retried on next start."},
		{"remote is reassuring", NewRemoteError("upsert", "tasks", errors.New("503")), "The sync server could not be reached. Your changes are kept locally."},
		{"plain error passes through", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetUserMessage(tt.err))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, "TIMEOUT", GetErrorCode(NewTimeoutError("sync", "30s")))
	assert.Equal(t, "UNKNOWN_ERROR", GetErrorCode(errors.New("x")))
}

func TestShouldLogError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"validation", NewValidationError("bad", nil), false},
		{"not found", NewNotFoundError("task", "1"), false},
		{"invalid input", NewInvalidInputError("priority", "urgent", "unknown priority"), false},
		{"database", NewDatabaseError("select", nil), true},
		{"remote", NewRemoteError("select", "tasks", nil), true},
		{"migration", NewMigrationError("flag", nil), true},
		{"unknown", errors.New("x"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldLogError(tt.err))
		})
	}
}
