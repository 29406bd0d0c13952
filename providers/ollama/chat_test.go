package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rill-labs/rill/core"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Ollama {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(WithBaseURL(server.URL))
}

func basicRequest() *core.ChatRequest {
	return &core.ChatRequest{
		Model:    "llama3.2",
		Messages: []core.Message{{Role: core.RoleUser, Content: "hello"}},
	}
}

func TestChatSuccess(t *testing.T) {
	var gotReq ollamaRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want none for local instances", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}

		json.NewEncoder(w).Encode(ollamaResponse{
			Model:           "llama3.2",
			Message:         ollamaMessage{Role: "assistant", Content: "hi there"},
			Done:            true,
			DoneReason:      "stop",
			PromptEvalCount: 9,
			EvalCount:       3,
		})
	})

	resp, err := p.Chat(context.Background(), basicRequest())
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if gotReq.Stream {
		t.Error("request marked as streaming")
	}
	if resp.Output != "hi there" {
		t.Errorf("Output = %q", resp.Output)
	}
	if resp.FinishReason != core.FinishStop {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	if resp.Usage.PromptTokens != 9 || resp.Usage.CompletionTokens != 3 || resp.Usage.TotalTokens != 12 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
}

func TestChatModelNotPulled(t *testing.T) {
	// Ollama returns 404 for models that are not pulled locally; that is
	// a caller mistake, not a transient server fault.
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"nope\" not found, try pulling it first"}`))
	})

	_, err := p.Chat(context.Background(), basicRequest())
	if !errors.Is(err, core.ErrBadRequest) {
		t.Fatalf("Chat() error = %v, want bad request", err)
	}

	var pe *core.ProviderError
	if !errors.As(err, &pe) {
		t.Fatal("not a *core.ProviderError")
	}
	if pe.Status != http.StatusNotFound {
		t.Errorf("Status = %d", pe.Status)
	}
}

func TestChatServerError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"something broke"}`))
	})

	_, err := p.Chat(context.Background(), basicRequest())
	if !errors.Is(err, core.ErrServer) {
		t.Errorf("Chat() error = %v, want server error", err)
	}
}

func TestChatInlineError(t *testing.T) {
	// Ollama can return 200 with an error field in the body.
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaResponse{Error: "model load failed"})
	})

	_, err := p.Chat(context.Background(), basicRequest())
	if !errors.Is(err, core.ErrServer) {
		t.Errorf("Chat() error = %v, want server error", err)
	}
}

func TestChatToolCalls(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaResponse{
			Model: "llama3.2",
			Message: ollamaMessage{
				Role: "assistant",
				ToolCalls: []ollamaToolCall{{
					Function: ollamaFunctionCall{
						Name:      "get_weather",
						Arguments: map[string]any{"city": "Oslo"},
					},
				}},
			},
			Done:       true,
			DoneReason: "tool_calls",
		})
	})

	resp, err := p.Chat(context.Background(), basicRequest())
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	call := resp.FirstToolCall()
	if call == nil {
		t.Fatal("no tool calls")
	}
	if call.Name != "get_weather" {
		t.Errorf("Name = %q", call.Name)
	}
	if call.ID == "" {
		t.Error("synthesized call ID is empty")
	}

	var args map[string]any
	if err := json.Unmarshal(call.Arguments, &args); err != nil {
		t.Fatalf("arguments are not valid JSON: %v", err)
	}
	if args["city"] != "Oslo" {
		t.Errorf("args = %v", args)
	}
}

func TestChatSendsBearerForCloud(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(ollamaResponse{Done: true})
	}))
	defer server.Close()

	p := New(WithBaseURL(server.URL), WithAPIKey("ok-cloudkey"))
	if _, err := p.Chat(context.Background(), basicRequest()); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if gotAuth != "Bearer ok-cloudkey" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestMapRequestOptions(t *testing.T) {
	temp := float32(0.7)
	maxTokens := 128
	req := &core.ChatRequest{
		Model:       "llama3.2",
		Messages:    []core.Message{{Role: core.RoleUser, Content: "hi"}},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}

	out := mapRequest(req, true)
	if !out.Stream {
		t.Error("Stream = false")
	}
	if out.Options == nil {
		t.Fatal("Options = nil")
	}
	if out.Options.Temperature != 0.7 || out.Options.NumPredict != 128 {
		t.Errorf("Options = %+v", out.Options)
	}

	plain := mapRequest(basicRequest(), false)
	if plain.Options != nil {
		t.Error("Options set without temperature or max tokens")
	}
}

type weatherTool struct{}

func (weatherTool) Name() string        { return "get_weather" }
func (weatherTool) Description() string { return "current weather" }
func (weatherTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type":"object"}`)
}

func TestMapRequestTools(t *testing.T) {
	req := basicRequest()
	req.Tools = []core.Tool{weatherTool{}}

	out := mapRequest(req, false)
	if len(out.Tools) != 1 {
		t.Fatalf("Tools len = %d", len(out.Tools))
	}
	fn := out.Tools[0].Function
	if fn.Name != "get_weather" {
		t.Errorf("Name = %q", fn.Name)
	}
	params, ok := fn.Parameters.(json.RawMessage)
	if !ok || string(params) != `{"type":"object"}` {
		t.Errorf("Parameters = %v", fn.Parameters)
	}
}
