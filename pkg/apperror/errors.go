package apperror

import (
	"errors"
	"net/http"
)

// AppError is an error whose message can be shown at the till as-is.
// The HTTP status travels with it so handlers never pick one themselves.
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`

	cause error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Cause returns the underlying error hidden from the caller, if any
func (e *AppError) Cause() error {
	return e.cause
}

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewFieldError creates a validation error for a single field
func NewFieldError(field, message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: message,
		Errors:  []FieldError{{Field: field, Message: message}},
	}
}

// NewUnprocessableError creates a 422 error for a rule violation that is not tied to one field
func NewUnprocessableError(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, message)
}

// NewPreconditionError asks the cashier for a decision before the request can
// go through, such as confirming a void or choosing an assignment.
func NewPreconditionError(message string) *AppError {
	return NewAppError(http.StatusPreconditionRequired, message)
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return NewAppError(http.StatusNotFound, resource+" not found")
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, message)
}

// NewBadGatewayError reports a failing remote collaborator (print service, hotel)
func NewBadGatewayError(message string, cause error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Message: message,
		cause:   cause,
	}
}

// Internal hides err behind a generic message. The cause stays reachable
// through errors.Unwrap for logging.
func Internal(err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "Internal server error",
		cause:   err,
	}
}

// GetAppError converts an error to AppError; anything unknown becomes Internal
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
