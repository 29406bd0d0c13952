package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rill-labs/rill/core"
)

func newTestHook(t *testing.T) (*Hook, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	hook, err := NewHook(reg)
	if err != nil {
		t.Fatalf("NewHook() error = %v", err)
	}
	return hook, reg
}

func TestHookCountsRequests(t *testing.T) {
	hook, _ := newTestHook(t)

	start := time.Now()
	hook.OnRequestStart(core.RequestStartEvent{RequestID: "r1", Provider: "openai", Model: "gpt-4o", Start: start})
	hook.OnRequestEnd(core.RequestEndEvent{
		RequestID: "r1",
		Provider:  "openai",
		Model:     "gpt-4o",
		Start:     start,
		End:       start.Add(time.Second),
		Usage:     core.TokenUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	})

	if got := testutil.ToFloat64(hook.requestsTotal.WithLabelValues("openai", "gpt-4o", "success")); got != 1 {
		t.Errorf("requests_total{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(hook.tokensTotal.WithLabelValues("openai", "gpt-4o", "prompt")); got != 10 {
		t.Errorf("tokens_total{prompt} = %v, want 10", got)
	}
	if got := testutil.ToFloat64(hook.tokensTotal.WithLabelValues("openai", "gpt-4o", "completion")); got != 20 {
		t.Errorf("tokens_total{completion} = %v, want 20", got)
	}
}

func TestHookCountsErrors(t *testing.T) {
	hook, _ := newTestHook(t)

	hook.OnRequestStart(core.RequestStartEvent{RequestID: "r2", Provider: "ollama", Model: "llama3.2", Start: time.Now()})
	hook.OnRequestEnd(core.RequestEndEvent{
		RequestID: "r2",
		Provider:  "ollama",
		Model:     "llama3.2",
		End:       time.Now(),
		Err:       errors.New("boom"),
	})

	if got := testutil.ToFloat64(hook.requestsTotal.WithLabelValues("ollama", "llama3.2", "error")); got != 1 {
		t.Errorf("requests_total{error} = %v, want 1", got)
	}
}

func TestHookTracksActiveRequests(t *testing.T) {
	hook, _ := newTestHook(t)

	hook.OnRequestStart(core.RequestStartEvent{RequestID: "r3"})
	hook.OnRequestStart(core.RequestStartEvent{RequestID: "r4"})
	if got := testutil.ToFloat64(hook.activeRequests); got != 2 {
		t.Errorf("active_requests = %v, want 2", got)
	}

	hook.OnRequestEnd(core.RequestEndEvent{RequestID: "r3"})
	if got := testutil.ToFloat64(hook.activeRequests); got != 1 {
		t.Errorf("active_requests = %v, want 1", got)
	}
}

func TestHookDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewHook(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := NewHook(reg); err == nil {
		t.Error("NewHook() error = nil on duplicate registration")
	}
}
