package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType int

const (
	InternalError ErrorType = iota
	ValidationError
	ConflictError
	AuthError
	NotFoundError
)

// AppError carries a client-safe Message and the underlying cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error type to an HTTP status. Conflicts are reported
// as 400 to stay compatible with the existing web client.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ValidationError, ConflictError:
		return http.StatusBadRequest
	case AuthError:
		return http.StatusUnauthorized
	case NotFoundError:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func New(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

func Validation(message string) *AppError {
	return New(ValidationError, message, nil)
}

func Conflict(message string, err error) *AppError {
	return New(ConflictError, message, err)
}

func Auth(message string) *AppError {
	return New(AuthError, message, nil)
}

func NotFound(message string) *AppError {
	return New(NotFoundError, message, nil)
}

func Internal(message string, err error) *AppError {
	return New(InternalError, message, err)
}

// From returns the AppError in err's chain, if any.
func From(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Is(err error, t ErrorType) bool {
	appErr, ok := From(err)
	return ok && appErr.Type == t
}
