package errors

import "fmt"

// ErrorCode represents a PulseAI error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"         // 404
	ErrCaptureTooLarge ErrorCode = "CAPTURE_TOO_LARGE" // 413
	ErrAIUnavailable   ErrorCode = "AI_UNAVAILABLE"    // 502
	ErrInternal        ErrorCode = "INTERNAL"          // 500
)

// PulseError represents a structured error with code, status, and details.
type PulseError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *PulseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PulseError {
	return &PulseError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when an analysis cannot be found.
func NewNotFound(id string) *PulseError {
	return &PulseError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("analysis not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewCaptureTooLarge creates a 413 error when a capture exceeds the size limit.
func NewCaptureTooLarge(max, actual int) *PulseError {
	return &PulseError{
		Code:    ErrCaptureTooLarge,
		Status:  413,
		Message: fmt.Sprintf("capture exceeds maximum size: %d chars (max %d)", actual, max),
		Details: map[string]any{"max_chars": max, "actual_chars": actual},
	}
}

// NewAIUnavailable creates a 502 error for remote analysis failures.
// Callers normally fall back to the heuristic pipeline instead of surfacing
// this; the strict ai engine mode returns it directly.
func NewAIUnavailable(err error) *PulseError {
	msg := "remote analysis unavailable"
	if err != nil {
		msg = fmt.Sprintf("remote analysis unavailable: %v", err)
	}
	return &PulseError{
		Code:    ErrAIUnavailable,
		Status:  502,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PulseError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PulseError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a PulseError with the given code.
func Is(err error, code ErrorCode) bool {
	if pErr, ok := err.(*PulseError); ok {
		return pErr.Code == code
	}
	return false
}
