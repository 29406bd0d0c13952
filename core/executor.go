package core

import (
	"context"
	"time"
)

// Executor runs idempotent operations with bounded retry, backoff, and an
// optional shared circuit breaker.
//
// An operation is a full request: for streaming calls it must open the
// stream and fully drain (or error out of) it before returning. The
// Executor never resumes a partially delivered stream; a failed attempt
// is discarded wholesale and the operation is reissued from scratch.
type Executor struct {
	policy  RetryPolicy
	breaker *CircuitBreaker
}

// NewExecutor creates an Executor. A nil policy uses DefaultRetryPolicy;
// a nil breaker disables circuit breaking.
func NewExecutor(policy RetryPolicy, breaker *CircuitBreaker) *Executor {
	if policy == nil {
		policy = DefaultRetryPolicy()
	}
	return &Executor{policy: policy, breaker: breaker}
}

// Do runs op until it succeeds, fails permanently, or attempts run out.
//
// Each attempt first consults the circuit breaker: a blocked attempt
// fails immediately with *CircuitOpenError and op is not invoked. Every
// attempt outcome is reported back to the breaker. A non-retryable
// failure propagates unchanged after the first occurrence; exhausting
// all attempts yields *RetryExhaustedError wrapping the last failure.
func (e *Executor) Do(ctx context.Context, op func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		if e.breaker != nil {
			if retryAfter, ok := e.breaker.Allow(); !ok {
				return &CircuitOpenError{RetryAfter: retryAfter}
			}
		}

		err := op(ctx)
		if err == nil {
			if e.breaker != nil {
				e.breaker.RecordSuccess()
			}
			return nil
		}

		var opened bool
		if e.breaker != nil {
			opened = e.breaker.RecordFailure()
		}

		if !e.retryable(err) {
			return err
		}

		delay, ok := e.policy.NextDelay(attempt, err)
		if !ok {
			return &RetryExhaustedError{Attempts: attempt, Err: err}
		}

		// The failure we just reported tripped the breaker: further
		// attempts would be rejected anyway, so stop here.
		if opened {
			return &CircuitOpenError{RetryAfter: e.breaker.RetryAfter()}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// retryable classifies err using the policy's own classifier when it has
// one, falling back to DefaultRetryable.
func (e *Executor) retryable(err error) bool {
	if c, ok := e.policy.(Classifier); ok {
		return c.Retryable(err)
	}
	return DefaultRetryable(err)
}

// Execute runs a value-returning operation through an Executor.
func Execute[T any](ctx context.Context, e *Executor, op func(context.Context) (T, error)) (T, error) {
	var out T
	err := e.Do(ctx, func(ctx context.Context) error {
		v, opErr := op(ctx)
		if opErr != nil {
			return opErr
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
