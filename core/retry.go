package core

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy determines retry behavior for failed operations.
type RetryPolicy interface {
	// NextDelay returns the delay before the next attempt and whether a
	// retry should happen at all. attempt is the number of attempts
	// already made (starting at 1 for the first failure).
	NextDelay(attempt int, err error) (delay time.Duration, ok bool)
}

// Classifier reports whether an error is worth retrying. RetryPolicy
// implementations may additionally implement Classifier; the Executor
// falls back to DefaultRetryable when they do not.
type Classifier interface {
	Retryable(err error) bool
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts int              // Total attempts including the first (default: 3, minimum: 1)
	BaseDelay   time.Duration    // Delay before the first retry (default: 1s)
	MaxDelay    time.Duration    // Delay cap, applied before jitter (default: 30s)
	Multiplier  float64          // Backoff growth factor (default: 2)
	Jitter      float64          // Multiplicative jitter factor 0.0-1.0 (default: 0.2)
	Retryable   func(error) bool // Error classification (default: DefaultRetryable)
}

// DefaultRetryPolicy returns a retry policy with sensible defaults:
// exponential backoff with jitter, 3 attempts, 30s delay cap.
func DefaultRetryPolicy() RetryPolicy {
	return NewRetryPolicy(RetryConfig{})
}

// NewRetryPolicy creates a retry policy with the given configuration.
// Zero-valued fields are replaced with defaults.
func NewRetryPolicy(cfg RetryConfig) RetryPolicy {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = 2
	}
	if cfg.Jitter < 0 || cfg.Jitter > 1 {
		cfg.Jitter = 0.2
	}
	if cfg.Retryable == nil {
		cfg.Retryable = DefaultRetryable
	}
	return &exponentialBackoff{cfg: cfg}
}

type exponentialBackoff struct {
	cfg RetryConfig
}

// NextDelay implements RetryPolicy.
// The delay for attempt n is min(base * multiplier^(n-1), max), with
// multiplicative jitter applied after the cap.
func (e *exponentialBackoff) NextDelay(attempt int, err error) (time.Duration, bool) {
	if attempt >= e.cfg.MaxAttempts {
		return 0, false
	}

	if !e.cfg.Retryable(err) {
		return 0, false
	}

	delay := float64(e.cfg.BaseDelay) * math.Pow(e.cfg.Multiplier, float64(attempt-1))
	if delay > float64(e.cfg.MaxDelay) {
		delay = float64(e.cfg.MaxDelay)
	}

	if e.cfg.Jitter > 0 {
		delay *= 1 + (rand.Float64()*2-1)*e.cfg.Jitter
	}
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay), true
}

// Retryable implements Classifier.
func (e *exponentialBackoff) Retryable(err error) bool {
	return e.cfg.Retryable(err)
}

// DefaultRetryable is the default error classification: transport-level
// failures, rate limits, and server-side errors are retryable; decode
// failures, client errors, and context cancellation are not.
//
// A truncated stream counts as retryable: it almost always means the
// connection dropped mid-response, and the whole operation is reissued
// from scratch rather than resumed.
func DefaultRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Non-retryable sentinels.
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrBadRequest) || errors.Is(err, ErrDecode) {
		return false
	}

	// Retryable sentinels.
	if errors.Is(err, ErrNetwork) || errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServer) {
		return true
	}
	if errors.Is(err, ErrFrameTruncated) {
		return true
	}

	// Fall back to HTTP status classification.
	var pe *ProviderError
	if errors.As(err, &pe) {
		return retryableStatus(pe.Status)
	}

	// Unknown errors are not retried by default.
	return false
}

// retryableStatus reports whether an HTTP status code indicates a
// transient failure.
func retryableStatus(status int) bool {
	if status == 429 {
		return true
	}
	return status >= 500 && status < 600
}
