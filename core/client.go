package core

import (
	"context"
	"time"
)

// Provider is the interface that LLM providers must implement.
// Providers SHOULD be safe for concurrent calls.
// If a provider cannot be concurrent-safe, it MUST document this.
type Provider interface {
	// ID returns the provider identifier (e.g., "openai", "ollama").
	ID() string

	// Models returns the list of models available from this provider.
	Models() []ModelInfo

	// Supports reports whether the provider supports the given feature.
	Supports(feature Feature) bool

	// Chat sends a non-streaming chat request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// StreamChat sends a streaming chat request.
	StreamChat(ctx context.Context, req *ChatRequest) (*ChatStream, error)
}

// Client is the main entry point for interacting with LLM providers.
// It wraps a Provider with telemetry, retry, and circuit breaking.
// Client is safe for concurrent use.
type Client struct {
	provider  Provider
	telemetry TelemetryHook
	executor  *Executor
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	telemetry TelemetryHook
	retry     RetryPolicy
	breaker   *CircuitBreaker
}

// NewClient creates a new Client with the given provider and options.
func NewClient(p Provider, opts ...ClientOption) *Client {
	cfg := clientConfig{
		telemetry: NoopTelemetryHook{},
		retry:     DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{
		provider:  p,
		telemetry: cfg.telemetry,
		executor:  NewExecutor(cfg.retry, cfg.breaker),
	}
}

// WithTelemetry sets the telemetry hook for the client.
func WithTelemetry(h TelemetryHook) ClientOption {
	return func(c *clientConfig) {
		if h != nil {
			c.telemetry = h
		}
	}
}

// WithRetryPolicy sets the retry policy for the client.
func WithRetryPolicy(r RetryPolicy) ClientOption {
	return func(c *clientConfig) {
		if r != nil {
			c.retry = r
		}
	}
}

// WithCircuitBreaker attaches a circuit breaker to the client. Share one
// breaker across every client targeting the same backend; each client
// call reports its outcome to it.
func WithCircuitBreaker(cb *CircuitBreaker) ClientOption {
	return func(c *clientConfig) {
		c.breaker = cb
	}
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Chat returns a ChatBuilder for constructing and executing a chat request.
func (c *Client) Chat(model ModelID) *ChatBuilder {
	return &ChatBuilder{
		client: c,
		req: ChatRequest{
			Model: model,
		},
	}
}

// ChatBuilder provides a fluent API for building chat requests.
// ChatBuilder is NOT thread-safe and should not be shared across goroutines.
type ChatBuilder struct {
	client *Client
	req    ChatRequest
}

// System appends a system message.
func (b *ChatBuilder) System(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleSystem, Content: s})
	return b
}

// User appends a user message.
func (b *ChatBuilder) User(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleUser, Content: s})
	return b
}

// Assistant appends an assistant message.
func (b *ChatBuilder) Assistant(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleAssistant, Content: s})
	return b
}

// ToolResults appends a tool result message.
func (b *ChatBuilder) ToolResults(results ...ToolResult) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleTool, ToolResults: results})
	return b
}

// Temperature sets the temperature parameter.
func (b *ChatBuilder) Temperature(v float32) *ChatBuilder {
	b.req.Temperature = &v
	return b
}

// MaxTokens sets the maximum tokens parameter.
func (b *ChatBuilder) MaxTokens(n int) *ChatBuilder {
	b.req.MaxTokens = &n
	return b
}

// Tools sets the tools available for the request.
func (b *ChatBuilder) Tools(ts ...Tool) *ChatBuilder {
	b.req.Tools = ts
	return b
}

// Clone returns an independent copy of the builder. The copy shares the
// client but owns its message slice, so a base configuration can fan out
// across goroutines.
func (b *ChatBuilder) Clone() *ChatBuilder {
	clone := &ChatBuilder{
		client: b.client,
		req:    b.req,
	}
	clone.req.Messages = append([]Message(nil), b.req.Messages...)
	clone.req.Tools = append([]Tool(nil), b.req.Tools...)
	return clone
}

// validate checks that the request is well-formed.
func (b *ChatBuilder) validate() error {
	if b.req.Model == "" {
		return ErrModelRequired
	}
	if len(b.req.Messages) == 0 {
		return ErrNoMessages
	}
	for _, msg := range b.req.Messages {
		if msg.Content == "" && len(msg.ToolResults) == 0 && len(msg.ToolCalls) == 0 {
			return ErrNoMessages
		}
	}
	return nil
}

// GetResponse executes the chat request and returns the response.
// It applies validation, telemetry, circuit breaking, and retry.
func (b *ChatBuilder) GetResponse(ctx context.Context) (*ChatResponse, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	requestID := newRequestID()
	start := time.Now()
	providerID := b.client.provider.ID()

	b.client.telemetry.OnRequestStart(RequestStartEvent{
		RequestID: requestID,
		Provider:  providerID,
		Model:     b.req.Model,
		Start:     start,
	})

	resp, err := Execute(ctx, b.client.executor, func(ctx context.Context) (*ChatResponse, error) {
		return b.client.provider.Chat(ctx, &b.req)
	})

	usage := TokenUsage{}
	if resp != nil {
		usage = resp.Usage
	}
	b.client.telemetry.OnRequestEnd(RequestEndEvent{
		RequestID: requestID,
		Provider:  providerID,
		Model:     b.req.Model,
		Start:     start,
		End:       time.Now(),
		Usage:     usage,
		Err:       err,
	})

	return resp, err
}

// GetStreamedResponse executes the chat request as a stream, drains it
// fully, and returns the final response. The drain happens inside the
// retry loop: if the stream fails after partially delivering chunks, the
// partial output is discarded and the entire request is reissued.
func (b *ChatBuilder) GetStreamedResponse(ctx context.Context) (*ChatResponse, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	requestID := newRequestID()
	start := time.Now()
	providerID := b.client.provider.ID()

	b.client.telemetry.OnRequestStart(RequestStartEvent{
		RequestID: requestID,
		Provider:  providerID,
		Model:     b.req.Model,
		Start:     start,
	})

	resp, err := Execute(ctx, b.client.executor, func(ctx context.Context) (*ChatResponse, error) {
		stream, streamErr := b.client.provider.StreamChat(ctx, &b.req)
		if streamErr != nil {
			return nil, streamErr
		}
		return DrainStream(ctx, stream)
	})

	usage := TokenUsage{}
	if resp != nil {
		usage = resp.Usage
	}
	b.client.telemetry.OnRequestEnd(RequestEndEvent{
		RequestID: requestID,
		Provider:  providerID,
		Model:     b.req.Model,
		Start:     start,
		End:       time.Now(),
		Usage:     usage,
		Err:       err,
	})

	return resp, err
}

// Stream executes the chat request and returns a streaming response.
// It applies validation and telemetry but no retry: a live stream cannot
// be resumed, so callers that want resilience should use
// GetStreamedResponse, which reissues the whole request on failure.
//
// Abandoning the stream is done by cancelling ctx; the provider closes
// the underlying connection and all channels promptly.
func (b *ChatBuilder) Stream(ctx context.Context) (*ChatStream, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	requestID := newRequestID()
	start := time.Now()
	providerID := b.client.provider.ID()

	b.client.telemetry.OnRequestStart(RequestStartEvent{
		RequestID: requestID,
		Provider:  providerID,
		Model:     b.req.Model,
		Start:     start,
	})

	stream, err := b.client.provider.StreamChat(ctx, &b.req)
	if err != nil {
		b.client.telemetry.OnRequestEnd(RequestEndEvent{
			RequestID: requestID,
			Provider:  providerID,
			Model:     b.req.Model,
			Start:     start,
			End:       time.Now(),
			Err:       err,
		})
		return nil, err
	}

	return wrapStreamWithTelemetry(stream, b.client.telemetry, requestID, providerID, b.req.Model, start), nil
}

// wrapStreamWithTelemetry wraps a ChatStream to emit the end event once
// the stream terminates, while passing all channels through unchanged.
func wrapStreamWithTelemetry(
	stream *ChatStream,
	hook TelemetryHook,
	requestID string,
	provider string,
	model ModelID,
	start time.Time,
) *ChatStream {
	finalCh := make(chan *ChatResponse, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(finalCh)
		defer close(errCh)

		var finalResp *ChatResponse
		var finalErr error

		// Exactly one of Final/Err carries a value; the other is closed
		// empty. A closed channel is always ready, so on ok=false the
		// other channel holds the outcome.
		select {
		case resp, ok := <-stream.Final:
			if ok {
				finalResp = resp
				finalCh <- resp
			} else if err, ok := <-stream.Err; ok {
				finalErr = err
				errCh <- err
			}
		case err, ok := <-stream.Err:
			if ok {
				finalErr = err
				errCh <- err
			} else if resp, ok := <-stream.Final; ok {
				finalResp = resp
				finalCh <- resp
			}
		}

		usage := TokenUsage{}
		if finalResp != nil {
			usage = finalResp.Usage
		}
		hook.OnRequestEnd(RequestEndEvent{
			RequestID: requestID,
			Provider:  provider,
			Model:     model,
			Start:     start,
			End:       time.Now(),
			Usage:     usage,
			Err:       finalErr,
		})
	}()

	return &ChatStream{
		Ch:    stream.Ch,
		Err:   errCh,
		Final: finalCh,
	}
}
