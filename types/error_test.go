package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := NewError(ErrValidation, "query too short")
	assert.Equal(t, "[VALIDATION] query too short", err.Error())

	cause := errors.New("connection refused")
	err = NewError(ErrRetrieval, "all sources failed").WithCause(cause)
	assert.Contains(t, err.Error(), "RETRIEVAL")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(ErrCache, "cache get failed").WithCause(cause)

	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("outer: %w", err)
	var e *Error
	assert.True(t, errors.As(wrapped, &e))
	assert.Equal(t, ErrCache, e.Code)
}

func TestError_Retryable(t *testing.T) {
	err := NewError(ErrRetrieval, "all sources failed").WithRetryable(true)
	assert.True(t, IsRetryable(err))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestErrorCodeHelpers(t *testing.T) {
	assert.True(t, IsValidation(NewError(ErrValidation, "bad")))
	assert.False(t, IsValidation(NewError(ErrRetrieval, "down")))
	assert.True(t, IsRetrieval(NewError(ErrRetrieval, "down")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
}
