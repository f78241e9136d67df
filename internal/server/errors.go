package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/errors"
	"taskdeck/internal/logging"
)

// APIError is the body of every error response.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error codes for failures that do not come from the business layer.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

func statusFor(errorType errors.ErrorType) int {
	switch errorType {
	case errors.ErrorTypeValidation, errors.ErrorTypeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrorTypeRemote:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError writes err as an APIError with a status derived from its type.
func respondError(c *gin.Context, err error) {
	if errors.ShouldLogError(err) {
		logging.Errorf("server: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, APIError{Code: ErrCodeInternalError, Message: err.Error()})
		return
	}
	body := APIError{Code: appErr.Code, Message: errors.GetUserMessage(err)}
	if len(appErr.Context) > 0 {
		body.Details = appErr.Context
	}
	c.JSON(statusFor(appErr.Type), body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, APIError{Code: ErrCodeInvalidInput, Message: message})
}
