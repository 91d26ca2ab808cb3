// Package errors holds the sentinel errors of the matching service and the
// AppError carrier that maps them onto HTTP responses.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Text processing and loading.
var (
	ErrInvalidInputKind     = errors.New("invalid input kind")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrDictionaryLoad       = errors.New("dictionary load failure")
	ErrCatalogItemLoad      = errors.New("catalog item load failure")
)

// Request handling.
var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidInput    = errors.New("invalid input")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrInternal        = errors.New("internal error")
	ErrTimeout         = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// InvalidKind reports a value of the wrong dynamic type handed to a
// tokenizer, spec parser or feature extractor.
func InvalidKind(where string, v any) error {
	return fmt.Errorf("%w: %s got %T", ErrInvalidInputKind, where, v)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrUnknownCategory):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidInputKind),
		errors.Is(err, ErrMissingRequiredField):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
