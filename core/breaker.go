package core

import (
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// StateClosed is normal operation: calls pass through.
	StateClosed CircuitState = iota
	// StateOpen rejects all calls until the open timeout elapses.
	StateOpen
	// StateHalfOpen admits probe calls to test whether the backend recovered.
	StateHalfOpen
)

// String returns a human-readable state name.
func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a CircuitBreaker.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures in the
	// closed state that trips the breaker open (default: 5).
	FailureThreshold int

	// OpenTimeout is how long the breaker rejects calls before allowing
	// a half-open probe (default: 30s).
	OpenTimeout time.Duration

	// SuccessThreshold is the number of consecutive half-open probe
	// successes required to close the breaker again (default: 1).
	SuccessThreshold int
}

// CircuitBreaker is a shared health gate for a single backend. It trips
// open after repeated consecutive failures, rejects calls for a cooldown
// period, then admits probe calls before fully closing again.
//
// A CircuitBreaker is safe for concurrent use; one instance is meant to
// be shared by every operation targeting the same backend. All state
// transitions happen under a single mutex so concurrent attempts never
// observe a torn state machine.
type CircuitBreaker struct {
	mu sync.Mutex

	state               CircuitState
	consecutiveFailures int
	halfOpenSuccesses   int
	openUntil           time.Time

	failureThreshold int
	openTimeout      time.Duration
	successThreshold int

	now func() time.Time // stubbed in tests
}

// NewCircuitBreaker creates a circuit breaker in the closed state.
// Zero-valued config fields are replaced with defaults.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: cfg.FailureThreshold,
		openTimeout:      cfg.OpenTimeout,
		successThreshold: cfg.SuccessThreshold,
		now:              time.Now,
	}
}

// Allow reports whether a call may proceed. When the breaker is open and
// the cooldown has not elapsed, Allow returns false along with the
// remaining cooldown. When the cooldown has elapsed, the breaker moves
// to half-open and the call is admitted as a probe.
func (cb *CircuitBreaker) Allow() (retryAfter time.Duration, ok bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed, StateHalfOpen:
		return 0, true
	case StateOpen:
		now := cb.now()
		if now.Before(cb.openUntil) {
			return cb.openUntil.Sub(now), false
		}
		cb.state = StateHalfOpen
		cb.halfOpenSuccesses = 0
		return 0, true
	default:
		return 0, false
	}
}

// RecordSuccess records a successful call.
// In the closed state it resets the failure counter. In the half-open
// state it counts toward the success threshold and closes the breaker
// once the threshold is reached.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.consecutiveFailures = 0
	case StateHalfOpen:
		cb.halfOpenSuccesses++
		if cb.halfOpenSuccesses >= cb.successThreshold {
			cb.state = StateClosed
			cb.consecutiveFailures = 0
			cb.halfOpenSuccesses = 0
		}
	}
}

// RecordFailure records a failed call and returns true if this failure
// transitioned the breaker to the open state.
//
// In the closed state the failure counter increments and trips the
// breaker at the threshold. A half-open probe failure reopens the
// breaker immediately and resets all counters.
func (cb *CircuitBreaker) RecordFailure() (opened bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.consecutiveFailures++
		if cb.consecutiveFailures >= cb.failureThreshold {
			cb.trip()
			return true
		}
	case StateHalfOpen:
		cb.trip()
		return true
	}
	return false
}

// trip moves the breaker to open and resets counters. Caller holds mu.
func (cb *CircuitBreaker) trip() {
	cb.state = StateOpen
	cb.openUntil = cb.now().Add(cb.openTimeout)
	cb.consecutiveFailures = 0
	cb.halfOpenSuccesses = 0
}

// RetryAfter returns the remaining cooldown while the breaker is open,
// or zero in any other state.
func (cb *CircuitBreaker) RetryAfter() time.Duration {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != StateOpen {
		return 0
	}
	if remaining := cb.openUntil.Sub(cb.now()); remaining > 0 {
		return remaining
	}
	return 0
}

// State returns the current state without side effects.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
