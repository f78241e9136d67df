package cli

import (
	stderrors "errors"
	"fmt"

	"taskdeck/internal/errors"
	"taskdeck/internal/validation"
)

// ErrorHandler turns business errors into messages for the terminal.
type ErrorHandler struct{}

func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle prefixes err with the failed operation. Structured errors are
// replaced by their user message; anything else stays wrapped.
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}

	var validationErr *validation.ValidationError
	if stderrors.As(err, &validationErr) {
		return fmt.Errorf("failed to %s: %s", operation, validationErr.GetUserFriendlyMessage())
	}
	if appErr, ok := errors.AsAppError(err); ok {
		msg := errors.GetUserMessage(appErr)
		if appErr.IsType(errors.ErrorTypeTimeout) {
			msg += " (raise --app-timeout for slow connections)"
		}
		return fmt.Errorf("failed to %s: %s", operation, msg)
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}
