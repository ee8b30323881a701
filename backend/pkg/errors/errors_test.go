package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBaseErrorFormatting(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewBaseError(ErrorTypeGraph, "query failed", cause)

	assert.Equal(t, "[graph] query failed: connection refused", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))

	bare := NewBaseError(ErrorTypeConfig, "missing field", nil)
	assert.Equal(t, "[config] missing field", bare.Error())
}

func TestIsErrorType(t *testing.T) {
	err := NewBaseError(ErrorTypeInference, "timeout", nil)

	assert.True(t, IsErrorType(err, ErrorTypeInference))
	assert.False(t, IsErrorType(err, ErrorTypeGraph))
	assert.False(t, IsErrorType(errors.New("plain"), ErrorTypeInference))
}

func TestIsErrorTypeThroughWrapping(t *testing.T) {
	inner := NewBaseError(ErrorTypeGraph, "node missing", nil)
	wrapped := fmt.Errorf("upsert failed: %w", inner)

	assert.True(t, IsErrorType(wrapped, ErrorTypeGraph))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewBaseError(ErrorTypeInference, "flaky", nil)))
	assert.True(t, IsRetryable(NewBaseError(ErrorTypeGraph, "flaky", nil)))
	assert.False(t, IsRetryable(NewBaseError(ErrorTypeContext, "cancelled", nil)))
	assert.False(t, IsRetryable(NewMalformedPayload("entity extraction", nil)))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestTypedConstructors(t *testing.T) {
	callFailed := NewInferenceCallFailed("entity extraction", 3, errors.New("503"))
	assert.Equal(t, 3, callFailed.Attempts)
	assert.Contains(t, callFailed.Error(), "after 3 attempts")

	timeout := NewInferenceTimeout("classification", 30*time.Second)
	assert.Equal(t, 30*time.Second, timeout.Timeout)

	unavailable := NewGraphUnavailable("bolt://localhost:7687", errors.New("refused"))
	assert.Contains(t, unavailable.Error(), "bolt://localhost:7687")
}
