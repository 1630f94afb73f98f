package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrValidation               = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInvalidCreditConstraints = New("INVALID_CREDIT_CONSTRAINTS", http.StatusBadRequest, "minimum credits cannot be greater than maximum credits")
	ErrInvalidSeason            = New("INVALID_SEASON", http.StatusBadRequest, "invalid season code")
	ErrInvalidExportFormat      = New("INVALID_EXPORT_FORMAT", http.StatusBadRequest, "unsupported export format")
	ErrNotFound                 = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrCourseNotFound           = New("COURSE_NOT_FOUND", http.StatusNotFound, "course not found")
	ErrNoSectionsAvailable      = New("NO_SECTIONS_AVAILABLE", http.StatusNotFound, "no available sections for requested courses")
	ErrExportNotFound           = New("EXPORT_NOT_FOUND", http.StatusNotFound, "export not found or expired")
	ErrRateLimited              = New("RATE_LIMITED", http.StatusTooManyRequests, "rate limit exceeded")
	ErrGenerationFailed         = New("GENERATION_FAILED", http.StatusInternalServerError, "schedule generation failed")
	ErrInternal                 = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCatalogUnavailable       = New("CATALOG_UNAVAILABLE", http.StatusBadGateway, "course catalog unavailable")
	ErrAIUnavailable            = New("AI_UNAVAILABLE", http.StatusBadGateway, "ai service unavailable")
	ErrCacheMiss                = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
