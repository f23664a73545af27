// Package errors provides custom error types for the wedding budget API.
// All service-layer errors should use AppError so clients always receive a
// stable code and never see storage or driver details.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so wrapped
// copies still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Retryable:  sentinel.Retryable,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Retryable:  sentinel.Retryable,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Identity errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Identity required", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Store and concurrency errors. Both are safe to retry.
var (
	ErrStoreUnavailable = &AppError{Code: "STORE_UNAVAILABLE", Message: "Plan storage is temporarily unavailable", Retryable: true, StatusCode: http.StatusServiceUnavailable}
	ErrPlanBusy         = &AppError{Code: "PLAN_BUSY", Message: "Another change to this plan is in progress", Retryable: true, StatusCode: http.StatusConflict}
)

// Plan errors.
var (
	ErrPlanNotFound     = &AppError{Code: "PLAN_NOT_FOUND", Message: "Plan not found", StatusCode: http.StatusNotFound}
	ErrDecisionNotFound = &AppError{Code: "DECISION_NOT_FOUND", Message: "Decision item not found", StatusCode: http.StatusNotFound}
	ErrOptionNotFound   = &AppError{Code: "OPTION_NOT_FOUND", Message: "Vendor option not found", StatusCode: http.StatusNotFound}
	ErrUndoNotAvailable = &AppError{Code: "UNDO_NOT_AVAILABLE", Message: "Nothing to undo for this decision", StatusCode: http.StatusNotFound}
)

// Redline errors.
var (
	ErrRedlineExceeded = &AppError{Code: "REDLINE_EXCEEDED", Message: "This change would push the plan over its redline", StatusCode: http.StatusConflict}
)
