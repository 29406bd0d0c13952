// Package providers contains LLM provider implementations for Rill.
//
// Each provider lives in its own subpackage (providers/openai,
// providers/ollama) and implements core.Provider. The streaming halves
// differ only in wire framing: openai consumes Server-Sent Events
// through providers/internal/sse, ollama consumes concatenated JSON
// values through providers/internal/jsonseq. Both framings reassemble
// frames across arbitrary transport chunk boundaries.
//
// # Streaming contract
//
// StreamChat returns a *core.ChatStream. Providers MUST:
//   - Close all channels (Ch, Err, Final) when finished
//   - Close the response body and terminate promptly on context
//     cancellation
//   - Send at most one error on Err; an error voids any partial output
//   - Send exactly one response on Final (or zero on failure)
//   - Deliver chunks in the exact order frames completed on the wire
//
// # Registration
//
// Providers register a factory in their init(), so importing a provider
// package makes it available by name through Create:
//
//	import _ "github.com/rill-labs/rill/providers/openai"
//
//	p, err := providers.Create("openai", apiKey)
package providers

import "github.com/rill-labs/rill/core"

// Re-export core types for convenience, so provider consumers can
// import just the providers package.
type (
	// Provider is the interface that LLM providers must implement.
	Provider = core.Provider

	// Feature represents a capability that a provider may support.
	Feature = core.Feature

	// ModelInfo describes a model available from a provider.
	ModelInfo = core.ModelInfo

	// ModelID is a string identifier for a model.
	ModelID = core.ModelID

	// ChatRequest represents a request to a chat model.
	ChatRequest = core.ChatRequest

	// ChatResponse represents a response from a chat model.
	ChatResponse = core.ChatResponse

	// ChatStream represents a streaming response from a provider.
	ChatStream = core.ChatStream

	// ChatChunk is one decoded unit of a streaming response.
	ChatChunk = core.ChatChunk

	// Message represents a single message in a conversation.
	Message = core.Message

	// Role represents a message participant role.
	Role = core.Role

	// TokenUsage tracks token consumption for a request.
	TokenUsage = core.TokenUsage

	// ToolCall represents a tool invocation requested by the model.
	ToolCall = core.ToolCall

	// ProviderError represents an error returned by a provider.
	ProviderError = core.ProviderError
)

// Re-export feature constants.
const (
	FeatureChat          = core.FeatureChat
	FeatureChatStreaming = core.FeatureChatStreaming
	FeatureToolCalling   = core.FeatureToolCalling
)

// Re-export role constants.
const (
	RoleSystem    = core.RoleSystem
	RoleUser      = core.RoleUser
	RoleAssistant = core.RoleAssistant
)

// Re-export sentinel errors.
var (
	ErrUnauthorized   = core.ErrUnauthorized
	ErrRateLimited    = core.ErrRateLimited
	ErrBadRequest     = core.ErrBadRequest
	ErrServer         = core.ErrServer
	ErrNetwork        = core.ErrNetwork
	ErrDecode         = core.ErrDecode
	ErrFrameTruncated = core.ErrFrameTruncated
	ErrModelRequired  = core.ErrModelRequired
	ErrNoMessages     = core.ErrNoMessages
)
