package types

import "fmt"

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

const (
	// ErrValidation is a malformed request or config. Never retried.
	ErrValidation ErrorCode = "VALIDATION"
	// ErrRetrieval means every configured source failed.
	ErrRetrieval ErrorCode = "RETRIEVAL"
	// ErrCache is internal only; cache failures degrade to misses.
	ErrCache ErrorCode = "CACHE"
	// ErrConfigNotFound is a lookup on an unknown config id.
	ErrConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	// ErrTimeout marks an exceeded deadline on a source call.
	ErrTimeout ErrorCode = "TIMEOUT"
)

// Error represents a structured error with code, message, and cause.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return GetErrorCode(err) == ErrValidation
}

// IsRetrieval reports whether err is a total retrieval failure.
func IsRetrieval(err error) bool {
	return GetErrorCode(err) == ErrRetrieval
}
