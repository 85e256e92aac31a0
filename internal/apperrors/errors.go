package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
// The transaction engine resolves it internally; it only reaches a handler for non-idempotent writes.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates a missing or invalid caller identity.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates an authenticated caller without the required role or ownership.
var ErrForbidden = errors.New("forbidden")

// ErrStore indicates a failure in the underlying persistence layer.
var ErrStore = errors.New("store error")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError. err may be nil.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(appErr, ErrStore) hold for every 5xx AppError.
func (e *AppError) Is(target error) bool {
	return target == ErrStore && e.Code >= 500
}
