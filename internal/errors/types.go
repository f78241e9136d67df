package errors

import "fmt"

// ErrorType groups errors by how the application reacts to them.
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeDatabase
	ErrorTypeInvalidInput
	ErrorTypeTimeout
	ErrorTypeRemote
	ErrorTypeMigration
)

var typeNames = map[ErrorType]string{
	ErrorTypeValidation:   "validation",
	ErrorTypeNotFound:     "not_found",
	ErrorTypeDatabase:     "database",
	ErrorTypeInvalidInput: "invalid_input",
	ErrorTypeTimeout:      "timeout",
	ErrorTypeRemote:       "remote",
	ErrorTypeMigration:    "migration",
}

func (et ErrorType) String() string {
	if name, ok := typeNames[et]; ok {
		return name
	}
	return "unknown"
}

// userFacing reports whether errors of this type come from bad input rather
// than a failing dependency.
func (et ErrorType) userFacing() bool {
	switch et {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput:
		return true
	}
	return false
}

// AppError is the structured error returned across package boundaries.
// Context carries machine-readable details such as the offending field.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	msg := e.Type.String() + ": " + e.Message
	if e.Cause != nil {
		return fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches another *AppError with the same type and code.
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	return ok && other.Type == e.Type && other.Code == e.Code
}

func (e *AppError) IsType(errorType ErrorType) bool { return e.Type == errorType }

// WithContext records key=value on the error and returns it for chaining.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	e.Context[key] = value
	return e
}

func (e *AppError) GetContext(key string) (interface{}, bool) {
	value, ok := e.Context[key]
	return value, ok
}
