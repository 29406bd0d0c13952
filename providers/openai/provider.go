// Package openai provides an OpenAI Chat Completions provider for Rill.
//
// Streaming responses use Server-Sent Events framing; the stream reader
// feeds raw transport chunks through providers/internal/sse, so frames
// split across chunk boundaries (including a split [DONE] sentinel)
// decode identically to unsplit input.
package openai

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/rill-labs/rill/core"
)

// DefaultAPIKeyEnvVar is the environment variable name for the OpenAI API key.
const DefaultAPIKeyEnvVar = "OPENAI_API_KEY"

// ErrAPIKeyNotFound is returned when the API key environment variable is not set.
var ErrAPIKeyNotFound = errors.New("openai: OPENAI_API_KEY environment variable not set")

// NewFromEnv creates a new OpenAI provider using the OPENAI_API_KEY
// environment variable:
//
//	provider, err := openai.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := core.NewClient(provider)
func NewFromEnv(opts ...Option) (*OpenAI, error) {
	apiKey := os.Getenv(DefaultAPIKeyEnvVar)
	if apiKey == "" {
		return nil, ErrAPIKeyNotFound
	}
	return New(apiKey, opts...), nil
}

// OpenAI is an LLM provider implementation for the OpenAI API.
// OpenAI is safe for concurrent use; each stream owns its own decoding
// state.
type OpenAI struct {
	config Config
}

// New creates a new OpenAI provider with the given API key and options.
func New(apiKey string, opts ...Option) *OpenAI {
	cfg := Config{
		APIKey:     core.NewSecret(apiKey),
		BaseURL:    DefaultBaseURL,
		HTTPClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &OpenAI{config: cfg}
}

// ID returns the provider identifier.
func (p *OpenAI) ID() string {
	return "openai"
}

// Models returns the list of available models.
func (p *OpenAI) Models() []core.ModelInfo {
	// Return a copy to prevent mutation
	result := make([]core.ModelInfo, len(models))
	copy(result, models)
	return result
}

// Supports reports whether the provider supports the given feature.
func (p *OpenAI) Supports(feature core.Feature) bool {
	switch feature {
	case core.FeatureChat, core.FeatureChatStreaming, core.FeatureToolCalling:
		return true
	default:
		return false
	}
}

// buildHeaders constructs the HTTP headers for an API request.
func (p *OpenAI) buildHeaders() http.Header {
	headers := make(http.Header)

	headers.Set("Authorization", "Bearer "+p.config.APIKey.Expose())
	headers.Set("Content-Type", "application/json")

	if p.config.OrgID != "" {
		headers.Set("OpenAI-Organization", p.config.OrgID)
	}
	if p.config.ProjectID != "" {
		headers.Set("OpenAI-Project", p.config.ProjectID)
	}

	for key, values := range p.config.Headers {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return headers
}

// Chat sends a non-streaming chat request.
func (p *OpenAI) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	return p.doChat(ctx, req)
}

// StreamChat sends a streaming chat request.
func (p *OpenAI) StreamChat(ctx context.Context, req *core.ChatRequest) (*core.ChatStream, error) {
	return p.doStreamChat(ctx, req)
}

// Compile-time check that OpenAI implements Provider.
var _ core.Provider = (*OpenAI)(nil)
