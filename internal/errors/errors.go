package errors

import (
	"context"
	"errors"
	"fmt"
)

// newError builds an AppError. kv holds alternating context keys and values.
func newError(t ErrorType, code, message string, cause error, kv ...interface{}) *AppError {
	e := &AppError{Type: t, Code: code, Message: message, Cause: cause, Context: map[string]interface{}{}}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Context[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return e
}

func NewValidationError(message string, cause error) *AppError {
	return newError(ErrorTypeValidation, "VALIDATION_FAILED", message, cause)
}

func NewNotFoundError(resource string, identifier string) *AppError {
	return newError(ErrorTypeNotFound, "NOT_FOUND",
		fmt.Sprintf("%s not found: %s", resource, identifier), nil,
		"resource", resource, "identifier", identifier)
}

// NewDatabaseError wraps a failure of the local key-value database.
func NewDatabaseError(operation string, cause error) *AppError {
	return newError(ErrorTypeDatabase, "DATABASE_ERROR",
		"database operation failed: "+operation, cause, "operation", operation)
}

func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return newError(ErrorTypeInvalidInput, "INVALID_INPUT",
		fmt.Sprintf("invalid input for %s: %s", field, reason), nil,
		"field", field, "value", value, "reason", reason)
}

func NewTimeoutError(operation string, timeout interface{}) *AppError {
	return newError(ErrorTypeTimeout, "TIMEOUT",
		"operation timed out: "+operation, nil, "operation", operation, "timeout", timeout)
}

// NewRemoteError wraps a failed call against the remote store. Deadline
// expiry is reported as a timeout.
func NewRemoteError(operation string, table string, cause error) *AppError {
	if errors.Is(cause, context.DeadlineExceeded) {
		err := NewTimeoutError(operation, "context deadline")
		err.Cause = cause
		return err.WithContext("table", table)
	}
	return newError(ErrorTypeRemote, "REMOTE_ERROR",
		fmt.Sprintf("remote operation failed: %s %s", operation, table), cause,
		"operation", operation, "table", table)
}

func NewMigrationError(flag string, cause error) *AppError {
	return newError(ErrorTypeMigration, "MIGRATION_FAILED",
		fmt.Sprintf("migration %s failed", flag), cause, "flag", flag)
}

// AsAppError finds the first *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsErrorType(err error, errorType ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.IsType(errorType)
}

var fallbackMessages = map[ErrorType]string{
	ErrorTypeDatabase:  "A database error occurred. Please try again.",
	ErrorTypeTimeout:   "The operation timed out. Please try again.",
	ErrorTypeRemote:    "The sync server could not be reached. Your changes are kept locally.",
	ErrorTypeMigration: "Local data could not be upgraded. It will be retried on next start.",
}

// GetUserMessage returns text fit for an end user. Input errors keep their
// message; infrastructure errors get a generic one.
func GetUserMessage(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return err.Error()
	}
	if appErr.Type.userFacing() {
		return appErr.Message
	}
	if msg, ok := fallbackMessages[appErr.Type]; ok {
		return msg
	}
	return "An unexpected error occurred. Please try again."
}

func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError is false for errors caused by user input.
func ShouldLogError(err error) bool {
	appErr, ok := AsAppError(err)
	return !ok || !appErr.Type.userFacing()
}
