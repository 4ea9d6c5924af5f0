package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds. Every AppError wraps exactly one of them.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("resource not found")
	ErrForbidden     = errors.New("forbidden")
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("already exists")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRevoked       = errors.New("refresh token revoked")
	ErrTooManyCalls  = errors.New("too many requests")
	ErrInternal      = errors.New("internal error")
)

// AppError is a classified failure with an HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
	Kind    error  `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports the sentinel kind so errors.Is(err, ErrRevoked) works through wrapping.
func (e *AppError) Is(target error) bool {
	return e.Kind == target
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Configuration(key string) *AppError {
	return &AppError{
		Code:    "CONFIGURATION",
		Message: fmt.Sprintf("incorrect configuration, cannot be found %s", key),
		Status:  http.StatusInternalServerError,
		Kind:    ErrConfiguration,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id: %s not found", resource, id),
		Status:  http.StatusNotFound,
		Kind:    ErrNotFound,
	}
}

func Forbidden(message string, cause error) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Kind:    ErrForbidden,
		Err:     cause,
	}
}

// Validation is a 400 tied to a request field.
func Validation(field, message string) *AppError {
	return &AppError{
		Code:    "VALIDATION",
		Message: message,
		Field:   field,
		Status:  http.StatusBadRequest,
		Kind:    ErrValidation,
	}
}

// Conflict reports a duplicate value. It is surfaced as 400 like other validation failures.
func Conflict(field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s %q is already used", field, value),
		Field:   field,
		Status:  http.StatusBadRequest,
		Kind:    ErrConflict,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Kind:    ErrUnauthorized,
	}
}

// Revoked has the same external status as Unauthorized.
func Revoked() *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: "refresh token is no longer valid",
		Status:  http.StatusUnauthorized,
		Kind:    ErrRevoked,
	}
}

func TooManyRequests() *AppError {
	return &AppError{
		Code:    "TOO_MANY_REQUESTS",
		Message: "too many requests",
		Status:  http.StatusTooManyRequests,
		Kind:    ErrTooManyCalls,
	}
}

// Internal hides err from the caller; it is kept for logging only.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Kind:    ErrInternal,
		Err:     err,
	}
}

// Classify returns err unchanged if it is already an AppError, otherwise wraps it as Internal.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return Internal(err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrTooManyCalls):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
