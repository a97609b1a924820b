package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels that every AppError unwraps to, so callers can branch with Is
var (
	ErrNotFound    = errors.New("resource not found")
	ErrBadRequest  = errors.New("bad request")
	ErrConflict    = errors.New("resource conflict")
	ErrTooLarge    = errors.New("payload too large")
	ErrInternal    = errors.New("internal server error")
	ErrValidation  = errors.New("validation error")
	ErrUnavailable = errors.New("service unavailable")
)

// AppError is an error that knows how it should be rendered over HTTP
type AppError struct {
	Err        error             `json:"-"`
	Cause      error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the underlying cause
func (e *AppError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// WithDetails attaches per-field details
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// Wrap records cause on e. The cause is never rendered to clients.
func Wrap(cause error, e *AppError) *AppError {
	e.Cause = cause
	return e
}

func newError(sentinel error, code string, status int, message string) *AppError {
	return &AppError{Err: sentinel, Code: code, Message: message, StatusCode: status}
}

func NotFound(resource string) *AppError {
	return newError(ErrNotFound, "NOT_FOUND", http.StatusNotFound, resource+" not found")
}

func BadRequest(message string) *AppError {
	return newError(ErrBadRequest, "BAD_REQUEST", http.StatusBadRequest, message)
}

func Conflict(message string) *AppError {
	return newError(ErrConflict, "CONFLICT", http.StatusConflict, message)
}

// TooLarge reports an upload over limit bytes
func TooLarge(limit int64) *AppError {
	return newError(ErrTooLarge, "PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge,
		fmt.Sprintf("upload exceeds the %d byte limit", limit))
}

func Internal(message string) *AppError {
	return newError(ErrInternal, "INTERNAL_ERROR", http.StatusInternalServerError, message)
}

func Unavailable(message string) *AppError {
	return newError(ErrUnavailable, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, message)
}

func Validation(details map[string]string) *AppError {
	return newError(ErrValidation, "VALIDATION_ERROR", http.StatusBadRequest, "validation failed").
		WithDetails(details)
}

// StatusOf returns the HTTP status for err, 500 when err is not an AppError
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
