// Package core provides the Rill SDK client and types for interacting
// with LLM providers over streaming HTTP APIs.
//
// Rill treats the streaming pipeline as the primary abstraction: raw
// transport chunks are reassembled into protocol frames, frames are
// decoded into typed events, and events are delivered to callers as a
// single-pass, cancellable stream. Above the pipeline sit a retry
// executor and a circuit breaker for resilient execution.
//
// # Client and Provider
//
// The primary entry point is [Client], which wraps a [Provider] and adds
// telemetry, retry, and circuit breaking:
//
//	provider := openai.New(os.Getenv("OPENAI_API_KEY"))
//	client := core.NewClient(provider,
//	    core.WithRetryPolicy(core.DefaultRetryPolicy()),
//	    core.WithCircuitBreaker(core.NewCircuitBreaker(core.BreakerConfig{})),
//	)
//
// # Streaming
//
// Use [ChatBuilder.Stream] for live consumption:
//
//	stream, err := client.Chat(model).User("Tell me a story.").Stream(ctx)
//	if err != nil {
//	    return err
//	}
//	for chunk := range stream.Ch {
//	    fmt.Print(chunk.Delta)
//	}
//
// The [ChatStream] type provides three channels:
//   - Ch: emits decoded chunks in wire order
//   - Err: emits at most one terminal error
//   - Final: emits the complete response with usage and tool calls
//
// Streams are single-pass and ordered: events are delivered in the exact
// order frames completed on the wire. Cancelling ctx releases the
// underlying connection promptly; a cancelled or failed stream never
// surfaces partial output as if it were complete.
//
// # Resilient execution
//
// [ChatBuilder.GetResponse] and [ChatBuilder.GetStreamedResponse] run
// through an [Executor]: bounded attempts with exponential backoff and
// jitter, policy-level error classification, and an optional shared
// [CircuitBreaker] gating every attempt. A streaming operation is always
// retried from scratch, never resumed mid-sequence.
//
// # Error handling
//
// The package defines sentinel errors for classification
// ([ErrNetwork], [ErrRateLimited], [ErrServer], [ErrBadRequest],
// [ErrUnauthorized], [ErrDecode], [ErrFrameTruncated]) plus the typed
// resilience errors [RetryExhaustedError] and [CircuitOpenError].
// Providers attach full context through [ProviderError]. Use errors.Is
// and errors.As:
//
//	if errors.Is(err, core.ErrRateLimited) {
//	    // back off harder
//	}
//	var open *core.CircuitOpenError
//	if errors.As(err, &open) {
//	    // backend is cooling down; retry after open.RetryAfter
//	}
//
// # Thread safety
//
// [Client] and [CircuitBreaker] are safe for concurrent use.
// [ChatBuilder] is not; use [ChatBuilder.Clone] to fan out.
// Each stream owns its decoding state, so concurrent streams never share
// buffers — the circuit breaker is the only cross-request state.
package core
