package validation

import (
	stderrors "errors"
	"fmt"
	"strings"

	"taskdeck/internal/errors"
)

// ValidationErrorType classifies a single failed check.
type ValidationErrorType string

const (
	ErrorTypeRequired         ValidationErrorType = "required"
	ErrorTypeInvalidFormat    ValidationErrorType = "invalid_format"
	ErrorTypeInvalidLength    ValidationErrorType = "invalid_length"
	ErrorTypeInvalidValue     ValidationErrorType = "invalid_value"
	ErrorTypeInvalidCharacter ValidationErrorType = "invalid_character"
)

// FieldError is one failed check on one field.
type FieldError struct {
	Field   string
	Type    ValidationErrorType
	Message string
	Value   interface{}
}

func (fe *FieldError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", fe.Field, fe.Message)
}

// ValidationError collects every failed check of one validation pass.
type ValidationError struct {
	Errors []FieldError
}

func NewValidationError() *ValidationError {
	return &ValidationError{Errors: []FieldError{}}
}

func (ve *ValidationError) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "validation error"
	case 1:
		return ve.Errors[0].Error()
	}
	parts := make([]string, len(ve.Errors))
	for i := range ve.Errors {
		parts[i] = ve.Errors[i].Error()
	}
	return "multiple validation errors: " + strings.Join(parts, "; ")
}

// IsValidationError checks if err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// ToAppError wraps the field errors into the application error taxonomy.
// The first failing field is recorded in the error context.
func (ve *ValidationError) ToAppError() *errors.AppError {
	appErr := errors.NewValidationError(ve.GetUserFriendlyMessage(), ve)
	if len(ve.Errors) > 0 {
		appErr = appErr.WithContext("field", ve.Errors[0].Field)
	}
	return appErr
}

// merge appends the field errors of err when it is a ValidationError.
func (ve *ValidationError) merge(err error) {
	var other *ValidationError
	if stderrors.As(err, &other) {
		ve.Errors = append(ve.Errors, other.Errors...)
	}
}

// result returns ve when it holds errors and nil otherwise.
func (ve *ValidationError) result() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func (ve *ValidationError) HasErrors() bool { return len(ve.Errors) > 0 }

func (ve *ValidationError) AddError(field string, errorType ValidationErrorType, message string, value interface{}) {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Type: errorType, Message: message, Value: value})
}

func (ve *ValidationError) AddRequiredError(field string) {
	ve.AddError(field, ErrorTypeRequired, field+" is required", nil)
}

func (ve *ValidationError) AddInvalidFormatError(field string, value interface{}, expectedFormat string) {
	ve.AddError(field, ErrorTypeInvalidFormat,
		fmt.Sprintf("%s has invalid format, expected: %s", field, expectedFormat), value)
}

// AddInvalidLengthError records a length violation. A zero bound is open.
func (ve *ValidationError) AddInvalidLengthError(field string, value interface{}, min, max int) {
	var bound string
	switch {
	case min > 0 && max > 0:
		bound = fmt.Sprintf("must be between %d and %d characters long", min, max)
	case min > 0:
		bound = fmt.Sprintf("must be at least %d characters long", min)
	case max > 0:
		bound = fmt.Sprintf("must be at most %d characters long", max)
	default:
		bound = "has invalid length"
	}
	ve.AddError(field, ErrorTypeInvalidLength, field+" "+bound, value)
}

func (ve *ValidationError) AddInvalidValueError(field string, value interface{}, reason string) {
	ve.AddError(field, ErrorTypeInvalidValue, fmt.Sprintf("%s has invalid value: %s", field, reason), value)
}

func (ve *ValidationError) AddInvalidCharacterError(field string, value interface{}) {
	ve.AddError(field, ErrorTypeInvalidCharacter, field+" contains invalid characters", value)
}

// GetFieldErrors returns the errors recorded for field, in order.
func (ve *ValidationError) GetFieldErrors(field string) []FieldError {
	var out []FieldError
	for _, fe := range ve.Errors {
		if fe.Field == field {
			out = append(out, fe)
		}
	}
	return out
}

// GetUserFriendlyMessage returns the bare message for a single error and a
// bulleted list for several.
func (ve *ValidationError) GetUserFriendlyMessage() string {
	switch len(ve.Errors) {
	case 0:
		return "Input validation failed"
	case 1:
		return ve.Errors[0].Message
	}
	var b strings.Builder
	b.WriteString("Multiple validation errors occurred:")
	for _, fe := range ve.Errors {
		b.WriteString("\n- ")
		b.WriteString(fe.Message)
	}
	return b.String()
}
