package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInference represents Inference Service errors
	ErrorTypeInference ErrorType = "inference"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeExtraction represents extraction pipeline errors
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeOrchestrator represents response orchestration errors
	ErrorTypeOrchestrator ErrorType = "orchestrator"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Inference Service Errors

// ErrInferenceCallFailed is returned when an Inference Service request fails
type ErrInferenceCallFailed struct {
	*BaseError
	Operation string
	Attempts  int
}

func NewInferenceCallFailed(operation string, attempts int, err error) *ErrInferenceCallFailed {
	return &ErrInferenceCallFailed{
		BaseError: NewBaseError(ErrorTypeInference, fmt.Sprintf("%s request failed after %d attempts", operation, attempts), err),
		Operation: operation,
		Attempts:  attempts,
	}
}

// ErrInferenceTimeout is returned when an Inference Service call times out
type ErrInferenceTimeout struct {
	*BaseError
	Operation string
	Timeout   time.Duration
}

func NewInferenceTimeout(operation string, timeout time.Duration) *ErrInferenceTimeout {
	return &ErrInferenceTimeout{
		BaseError: NewBaseError(ErrorTypeInference, fmt.Sprintf("operation timed out: %s (timeout: %v)", operation, timeout), nil),
		Operation: operation,
		Timeout:   timeout,
	}
}

// ErrMalformedPayload is returned when an Inference Service response does not
// match the expected structured shape. Callers treat it as an empty result.
type ErrMalformedPayload struct {
	*BaseError
	Operation string
}

func NewMalformedPayload(operation string, err error) *ErrMalformedPayload {
	return &ErrMalformedPayload{
		BaseError: NewBaseError(ErrorTypeExtraction, fmt.Sprintf("malformed %s payload", operation), err),
		Operation: operation,
	}
}

// Graph Errors

// ErrGraphUnavailable is returned when there is no active graph connection.
// All graph operations degrade to no-ops returning empty results.
type ErrGraphUnavailable struct {
	*BaseError
	URI string
}

func NewGraphUnavailable(uri string, err error) *ErrGraphUnavailable {
	return &ErrGraphUnavailable{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("graph store unavailable: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Operation string
}

func NewGraphQueryFailed(operation string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if baseErr, ok := err.(*BaseError); ok {
		return baseErr.Type == errType
	}
	// Check wrapped errors
	if wrapper, ok := err.(interface{ Unwrap() error }); ok {
		if inner := wrapper.Unwrap(); inner != nil {
			return IsErrorType(inner, errType)
		}
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Context errors are not retryable
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	// Malformed payloads will stay malformed; retrying is pointless
	if _, ok := err.(*ErrMalformedPayload); ok {
		return false
	}
	// Inference and graph failures are transient network conditions
	if IsErrorType(err, ErrorTypeInference) {
		return true
	}
	if IsErrorType(err, ErrorTypeGraph) {
		return true
	}
	return false
}
