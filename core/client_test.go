package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mockProvider scripts Chat and StreamChat behavior for client tests.
type mockProvider struct {
	mu          sync.Mutex
	chatCalls   int
	streamCalls int

	chatFn   func(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	streamFn func(ctx context.Context, req *ChatRequest) (*ChatStream, error)
}

func (m *mockProvider) ID() string          { return "mock" }
func (m *mockProvider) Models() []ModelInfo { return nil }
func (m *mockProvider) Supports(Feature) bool {
	return true
}

func (m *mockProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	m.chatCalls++
	m.mu.Unlock()
	return m.chatFn(ctx, req)
}

func (m *mockProvider) StreamChat(ctx context.Context, req *ChatRequest) (*ChatStream, error) {
	m.mu.Lock()
	m.streamCalls++
	m.mu.Unlock()
	return m.streamFn(ctx, req)
}

// recordingHook captures telemetry events.
type recordingHook struct {
	mu     sync.Mutex
	starts []RequestStartEvent
	ends   []RequestEndEvent
}

func (h *recordingHook) OnRequestStart(e RequestStartEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts = append(h.starts, e)
}

func (h *recordingHook) OnRequestEnd(e RequestEndEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ends = append(h.ends, e)
}

func TestGetResponseSuccess(t *testing.T) {
	p := &mockProvider{
		chatFn: func(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
			return &ChatResponse{Output: "hi there", Usage: TokenUsage{TotalTokens: 7}}, nil
		},
	}
	client := NewClient(p)

	resp, err := client.Chat("gpt-4o").User("hello").GetResponse(context.Background())
	if err != nil {
		t.Fatalf("GetResponse() error = %v", err)
	}
	if resp.Output != "hi there" {
		t.Errorf("Output = %q, want %q", resp.Output, "hi there")
	}
	if p.chatCalls != 1 {
		t.Errorf("chatCalls = %d, want 1", p.chatCalls)
	}
}

func TestGetResponseValidation(t *testing.T) {
	p := &mockProvider{}
	client := NewClient(p)

	tests := []struct {
		name    string
		builder *ChatBuilder
		wantErr error
	}{
		{"missing model", client.Chat("").User("hi"), ErrModelRequired},
		{"no messages", client.Chat("gpt-4o"), ErrNoMessages},
		{"empty message", client.Chat("gpt-4o").User(""), ErrNoMessages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.GetResponse(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GetResponse() error = %v, want %v", err, tt.wantErr)
			}
			if p.chatCalls != 0 {
				t.Errorf("provider invoked %d times on invalid request", p.chatCalls)
			}
		})
	}
}

func TestGetResponseRetriesTransientFailures(t *testing.T) {
	p := &mockProvider{}
	p.chatFn = func(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
		if p.chatCalls < 3 {
			return nil, &ProviderError{Provider: "mock", Status: 503, Err: ErrServer}
		}
		return &ChatResponse{Output: "recovered"}, nil
	}

	client := NewClient(p, WithRetryPolicy(NewRetryPolicy(RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Nanosecond,
		Jitter:      0,
	})))

	resp, err := client.Chat("gpt-4o").User("hello").GetResponse(context.Background())
	if err != nil {
		t.Fatalf("GetResponse() error = %v", err)
	}
	if resp.Output != "recovered" {
		t.Errorf("Output = %q, want %q", resp.Output, "recovered")
	}
	if p.chatCalls != 3 {
		t.Errorf("chatCalls = %d, want 3", p.chatCalls)
	}
}

func TestGetResponseCircuitBreaker(t *testing.T) {
	p := &mockProvider{
		chatFn: func(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
			return nil, &ProviderError{Provider: "mock", Status: 500, Err: ErrServer}
		},
	}

	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Hour})
	client := NewClient(p,
		WithRetryPolicy(NewRetryPolicy(RetryConfig{MaxAttempts: 1})),
		WithCircuitBreaker(cb),
	)

	builder := client.Chat("gpt-4o").User("hello")
	builder.GetResponse(context.Background())
	builder.GetResponse(context.Background())

	if cb.State() != StateOpen {
		t.Fatalf("breaker state = %v, want open", cb.State())
	}

	before := p.chatCalls
	_, err := builder.GetResponse(context.Background())
	var open *CircuitOpenError
	if !errors.As(err, &open) {
		t.Fatalf("GetResponse() error = %v, want *CircuitOpenError", err)
	}
	if p.chatCalls != before {
		t.Error("provider invoked while the breaker was open")
	}
}

func TestGetResponseTelemetry(t *testing.T) {
	p := &mockProvider{
		chatFn: func(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
			return &ChatResponse{Usage: TokenUsage{TotalTokens: 11}}, nil
		},
	}
	hook := &recordingHook{}
	client := NewClient(p, WithTelemetry(hook))

	_, err := client.Chat("gpt-4o").User("hello").GetResponse(context.Background())
	if err != nil {
		t.Fatalf("GetResponse() error = %v", err)
	}

	if len(hook.starts) != 1 || len(hook.ends) != 1 {
		t.Fatalf("events = %d starts, %d ends; want 1 each", len(hook.starts), len(hook.ends))
	}
	start, end := hook.starts[0], hook.ends[0]
	if start.RequestID == "" || start.RequestID != end.RequestID {
		t.Errorf("request IDs do not correlate: start=%q end=%q", start.RequestID, end.RequestID)
	}
	if start.Provider != "mock" || end.Provider != "mock" {
		t.Errorf("provider = %q/%q, want mock", start.Provider, end.Provider)
	}
	if end.Usage.TotalTokens != 11 {
		t.Errorf("Usage.TotalTokens = %d, want 11", end.Usage.TotalTokens)
	}
	if end.Err != nil {
		t.Errorf("end.Err = %v, want nil", end.Err)
	}
}

func TestGetStreamedResponseRetriesWholeStream(t *testing.T) {
	// A stream that fails mid-delivery is discarded and the request is
	// reissued from scratch; the partial output never leaks into the
	// final response.
	p := &mockProvider{}
	p.streamFn = func(ctx context.Context, req *ChatRequest) (*ChatStream, error) {
		if p.streamCalls == 1 {
			return feedStream([]ChatChunk{{Delta: "partial "}}, ErrFrameTruncated, nil), nil
		}
		return feedStream(
			[]ChatChunk{{Delta: "complete "}, {Delta: "answer"}},
			nil,
			&ChatResponse{Usage: TokenUsage{TotalTokens: 9}},
		), nil
	}

	client := NewClient(p, WithRetryPolicy(NewRetryPolicy(RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Nanosecond,
		Jitter:      0,
	})))

	resp, err := client.Chat("gpt-4o").User("hello").GetStreamedResponse(context.Background())
	if err != nil {
		t.Fatalf("GetStreamedResponse() error = %v", err)
	}
	if resp.Output != "complete answer" {
		t.Errorf("Output = %q, want %q", resp.Output, "complete answer")
	}
	if p.streamCalls != 2 {
		t.Errorf("streamCalls = %d, want 2", p.streamCalls)
	}
}

func TestStreamNoRetry(t *testing.T) {
	// Stream() hands the live stream to the caller; a failure is
	// delivered on Err, never retried behind the caller's back.
	p := &mockProvider{}
	p.streamFn = func(ctx context.Context, req *ChatRequest) (*ChatStream, error) {
		return feedStream([]ChatChunk{{Delta: "x"}}, ErrNetwork, nil), nil
	}
	client := NewClient(p)

	stream, err := client.Chat("gpt-4o").User("hello").Stream(context.Background())
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	for range stream.Ch {
	}
	if streamErr := <-stream.Err; !errors.Is(streamErr, ErrNetwork) {
		t.Errorf("stream error = %v, want ErrNetwork", streamErr)
	}
	if p.streamCalls != 1 {
		t.Errorf("streamCalls = %d, want 1", p.streamCalls)
	}
}

func TestStreamTelemetryEndFiresOnCompletion(t *testing.T) {
	p := &mockProvider{}
	p.streamFn = func(ctx context.Context, req *ChatRequest) (*ChatStream, error) {
		return feedStream(
			[]ChatChunk{{Delta: "hi"}},
			nil,
			&ChatResponse{Usage: TokenUsage{TotalTokens: 2}},
		), nil
	}
	hook := &recordingHook{}
	client := NewClient(p, WithTelemetry(hook))

	stream, err := client.Chat("gpt-4o").User("hello").Stream(context.Background())
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	for range stream.Ch {
	}
	final := <-stream.Final
	if final == nil || final.Usage.TotalTokens != 2 {
		t.Fatalf("final = %+v", final)
	}

	// The end event fires asynchronously after the stream terminates.
	deadline := time.After(time.Second)
	for {
		hook.mu.Lock()
		n := len(hook.ends)
		hook.mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("end event never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if hook.ends[0].Usage.TotalTokens != 2 {
		t.Errorf("end Usage.TotalTokens = %d, want 2", hook.ends[0].Usage.TotalTokens)
	}
}

func TestChatBuilderMessages(t *testing.T) {
	p := &mockProvider{}
	var captured *ChatRequest
	p.chatFn = func(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
		captured = req
		return &ChatResponse{}, nil
	}
	client := NewClient(p)

	_, err := client.Chat("gpt-4o").
		System("be brief").
		User("question").
		Assistant("answer").
		ToolResults(ToolResult{CallID: "call_1", Content: "42"}).
		Temperature(0.5).
		MaxTokens(100).
		GetResponse(context.Background())
	if err != nil {
		t.Fatalf("GetResponse() error = %v", err)
	}

	wantRoles := []Role{RoleSystem, RoleUser, RoleAssistant, RoleTool}
	if len(captured.Messages) != len(wantRoles) {
		t.Fatalf("messages = %d, want %d", len(captured.Messages), len(wantRoles))
	}
	for i, want := range wantRoles {
		if captured.Messages[i].Role != want {
			t.Errorf("message %d role = %q, want %q", i, captured.Messages[i].Role, want)
		}
	}
	if captured.Temperature == nil || *captured.Temperature != 0.5 {
		t.Errorf("Temperature = %v, want 0.5", captured.Temperature)
	}
	if captured.MaxTokens == nil || *captured.MaxTokens != 100 {
		t.Errorf("MaxTokens = %v, want 100", captured.MaxTokens)
	}
}

func TestChatBuilderClone(t *testing.T) {
	p := &mockProvider{
		chatFn: func(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
			return &ChatResponse{}, nil
		},
	}
	client := NewClient(p)

	base := client.Chat("gpt-4o").System("shared prefix")
	a := base.Clone().User("question a")
	b := base.Clone().User("question b")

	if len(base.req.Messages) != 1 {
		t.Errorf("base messages = %d, want 1: clones must not mutate the base", len(base.req.Messages))
	}
	if len(a.req.Messages) != 2 || len(b.req.Messages) != 2 {
		t.Errorf("clone messages = %d/%d, want 2/2", len(a.req.Messages), len(b.req.Messages))
	}
	if a.req.Messages[1].Content == b.req.Messages[1].Content {
		t.Error("clones share message content")
	}
}
