// Package otel provides an OpenTelemetry TelemetryHook for rill clients.
//
// The hook opens a span per chat request and records provider, model,
// token usage, and outcome. Spans are correlated with the client's
// request ID, so retries of one logical request share a single span.
package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rill-labs/rill/core"
)

const tracerName = "github.com/rill-labs/rill/contrib/otel"

// Hook implements core.TelemetryHook using OpenTelemetry spans.
// Hook is safe for concurrent use.
type Hook struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]trace.Span
}

// Option configures a Hook.
type Option func(*Hook)

// WithTracerProvider sets the tracer provider. Defaults to the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(h *Hook) {
		if tp != nil {
			h.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewHook creates a telemetry hook backed by OpenTelemetry.
func NewHook(opts ...Option) *Hook {
	h := &Hook{
		tracer: otel.Tracer(tracerName),
		spans:  make(map[string]trace.Span),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnRequestStart opens a span for the request.
func (h *Hook) OnRequestStart(e core.RequestStartEvent) {
	_, span := h.tracer.Start(context.Background(), "llm.chat",
		trace.WithTimestamp(e.Start),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.request_id", e.RequestID),
			attribute.String("llm.provider", e.Provider),
			attribute.String("llm.model", string(e.Model)),
		),
	)

	h.mu.Lock()
	h.spans[e.RequestID] = span
	h.mu.Unlock()
}

// OnRequestEnd closes the request's span with usage and outcome.
// End events without a matching start are ignored.
func (h *Hook) OnRequestEnd(e core.RequestEndEvent) {
	h.mu.Lock()
	span, ok := h.spans[e.RequestID]
	if ok {
		delete(h.spans, e.RequestID)
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	span.SetAttributes(
		attribute.Int("llm.usage.prompt_tokens", e.Usage.PromptTokens),
		attribute.Int("llm.usage.completion_tokens", e.Usage.CompletionTokens),
		attribute.Int("llm.usage.total_tokens", e.Usage.TotalTokens),
	)

	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End(trace.WithTimestamp(e.End))
}

var _ core.TelemetryHook = (*Hook)(nil)
