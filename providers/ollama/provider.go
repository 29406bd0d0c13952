// Package ollama provides an Ollama provider for Rill.
//
// Ollama's /api/chat endpoint streams a bare sequence of JSON objects
// with no framing beyond the values themselves; the stream reader feeds
// raw transport chunks through providers/internal/jsonseq, which finds
// value boundaries by brace counting. The transport end-of-stream is the
// only termination signal.
package ollama

import (
	"context"
	"net/http"

	"github.com/rill-labs/rill/core"
)

// Ollama is an LLM provider implementation for the Ollama API.
// Ollama is safe for concurrent use; each stream owns its own decoding
// state.
type Ollama struct {
	config Config
}

// New creates a new Ollama provider with the given options.
// For local Ollama instances, no API key is required.
func New(opts ...Option) *Ollama {
	cfg := Config{
		BaseURL:    DefaultLocalURL,
		HTTPClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Ollama{config: cfg}
}

// ID returns the provider identifier.
func (p *Ollama) ID() string {
	return "ollama"
}

// Models returns common example models. Ollama models are dynamic; any
// locally pulled model ID works.
func (p *Ollama) Models() []core.ModelInfo {
	return []core.ModelInfo{
		{ID: "llama3.2", DisplayName: "Llama 3.2", Capabilities: []core.Feature{core.FeatureChat, core.FeatureChatStreaming, core.FeatureToolCalling}},
		{ID: "mistral", DisplayName: "Mistral 7B", Capabilities: []core.Feature{core.FeatureChat, core.FeatureChatStreaming, core.FeatureToolCalling}},
		{ID: "qwen3", DisplayName: "Qwen 3", Capabilities: []core.Feature{core.FeatureChat, core.FeatureChatStreaming, core.FeatureToolCalling, core.FeatureReasoning}},
		{ID: "gemma3", DisplayName: "Gemma 3", Capabilities: []core.Feature{core.FeatureChat, core.FeatureChatStreaming}},
	}
}

// Supports reports whether the provider supports the given feature.
func (p *Ollama) Supports(feature core.Feature) bool {
	switch feature {
	case core.FeatureChat, core.FeatureChatStreaming, core.FeatureToolCalling, core.FeatureReasoning:
		return true
	default:
		return false
	}
}

// buildHeaders constructs the HTTP headers for an API request.
func (p *Ollama) buildHeaders() http.Header {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")

	// Authorization only for Ollama Cloud.
	if !p.config.APIKey.IsEmpty() {
		headers.Set("Authorization", "Bearer "+p.config.APIKey.Expose())
	}

	for key, values := range p.config.Headers {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return headers
}

// Chat sends a non-streaming chat request.
func (p *Ollama) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	return p.doChat(ctx, req)
}

// StreamChat sends a streaming chat request.
func (p *Ollama) StreamChat(ctx context.Context, req *core.ChatRequest) (*core.ChatStream, error) {
	return p.doStreamChat(ctx, req)
}

// Compile-time check that Ollama implements Provider.
var _ core.Provider = (*Ollama)(nil)
