package core

import (
	"errors"
	"fmt"
	"time"
)

// ProviderError represents an error returned by a provider with full context.
type ProviderError struct {
	Provider  string
	Status    int
	RequestID string
	Code      string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (status=%d, code=%s, request_id=%s)",
			e.Provider, e.Message, e.Status, e.Code, e.RequestID)
	}
	return fmt.Sprintf("%s: %s (status=%d, code=%s)",
		e.Provider, e.Message, e.Status, e.Code)
}

// Unwrap returns the underlying error for error chaining.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Sentinel errors for classification.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrDecode       = errors.New("decode error")
	ErrNotSupported = errors.New("operation not supported")

	// ErrFrameTruncated indicates a stream ended mid-frame: the transport
	// signaled end-of-stream while a protocol frame was still incomplete.
	// Distinct from ErrDecode; a truncated stream usually means a dropped
	// connection, so the whole operation is safe to reissue from scratch.
	ErrFrameTruncated = errors.New("stream truncated mid-frame")
)

// Validation errors with actionable guidance.
var (
	ErrModelRequired = errors.New("model required: pass a model ID to Client.Chat(), e.g., client.Chat(\"gpt-4o\")")
	ErrNoMessages    = errors.New("no messages: add at least one message using .System(), .User(), or .Assistant()")
)

// RetryExhaustedError is returned when an operation failed on every
// permitted attempt. It wraps the error from the final attempt.
type RetryExhaustedError struct {
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retry exhausted after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the error from the final attempt.
func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// CircuitOpenError is returned when the circuit breaker rejected the
// operation without attempting it. RetryAfter is the remaining cooldown.
type CircuitOpenError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open: retry after %s", e.RetryAfter)
}
