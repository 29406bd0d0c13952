package core

import (
	"time"

	"github.com/google/uuid"
)

// TelemetryHook receives notifications about request lifecycle events.
// Implementations can use this for logging, metrics, or tracing.
//
// Event types are designed to never include sensitive data: no API keys,
// no prompt content, no model output. Only operational metadata is
// exposed (provider, model, timing, token counts, error), so telemetry
// can be shipped to external systems without credential review.
type TelemetryHook interface {
	// OnRequestStart is called when a request to a provider begins.
	OnRequestStart(e RequestStartEvent)

	// OnRequestEnd is called when a request to a provider completes.
	// For streaming requests this fires after the stream terminates.
	OnRequestEnd(e RequestEndEvent)
}

// RequestStartEvent contains metadata about a starting request.
type RequestStartEvent struct {
	RequestID string    // Client-generated correlation ID
	Provider  string    // Provider identifier (e.g., "openai", "ollama")
	Model     ModelID   // Model being called
	Start     time.Time // When the request started
}

// RequestEndEvent contains metadata about a completed request.
// The Err field carries classified error values, never raw response bodies.
type RequestEndEvent struct {
	RequestID string     // Matches the RequestStartEvent
	Provider  string     // Provider identifier
	Model     ModelID    // Model that was called
	Start     time.Time  // When the request started
	End       time.Time  // When the request completed
	Usage     TokenUsage // Token consumption
	Err       error      // Error if the request failed, nil on success
}

// Duration returns the elapsed time for the request.
func (e RequestEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// newRequestID generates a correlation ID shared by the start and end
// events of one logical request (across all its retry attempts).
func newRequestID() string {
	return uuid.NewString()
}

// NoopTelemetryHook is a no-op implementation of TelemetryHook.
// Used as the default when no telemetry is configured.
type NoopTelemetryHook struct{}

// OnRequestStart does nothing.
func (NoopTelemetryHook) OnRequestStart(RequestStartEvent) {}

// OnRequestEnd does nothing.
func (NoopTelemetryHook) OnRequestEnd(RequestEndEvent) {}

// Compile-time check that NoopTelemetryHook implements TelemetryHook.
var _ TelemetryHook = NoopTelemetryHook{}
