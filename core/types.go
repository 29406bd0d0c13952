// Package core provides the Rill SDK client and types.
package core

import "encoding/json"

// Feature represents a capability that a provider may support.
type Feature string

const (
	FeatureChat          Feature = "chat"
	FeatureChatStreaming Feature = "chat_streaming"
	FeatureToolCalling   Feature = "tool_calling"
	FeatureReasoning     Feature = "reasoning"
)

// ModelInfo describes a model available from a provider.
type ModelInfo struct {
	ID           ModelID   `json:"id"`
	DisplayName  string    `json:"display_name"`
	Capabilities []Feature `json:"capabilities"`
}

// HasCapability reports whether the model supports the given feature.
func (m ModelInfo) HasCapability(f Feature) bool {
	for _, cap := range m.Capabilities {
		if cap == f {
			return true
		}
	}
	return false
}

// ModelID is a string identifier for a model.
// Using string avoids coupling to provider-specific enums.
type ModelID string

// Role represents a message participant role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool" // For tool result messages
)

// FinishReason describes why a model stopped generating.
type FinishReason string

const (
	FinishStop      FinishReason = "stop"       // Natural end of output
	FinishLength    FinishReason = "length"     // Hit the max token limit
	FinishToolCalls FinishReason = "tool_calls" // Stopped to request tool execution
)

// Message represents a single message in a conversation.
type Message struct {
	Role        Role         `json:"role"`
	Content     string       `json:"content,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`   // For assistant messages requesting tools
	ToolResults []ToolResult `json:"tool_results,omitempty"` // For tool result messages (RoleTool)
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ToolCall represents a tool invocation requested by the model.
// Arguments MUST be valid JSON bytes and MUST preserve raw JSON (no reformatting).
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult represents the outcome of executing a tool.
type ToolResult struct {
	CallID  string `json:"call_id"`  // Must match ToolCall.ID from the response
	Content any    `json:"content"`  // Result data (will be JSON marshaled)
	IsError bool   `json:"is_error"` // True if this represents an error
}

// Tool is a minimal tool definition passed through to providers.
type Tool interface {
	Name() string
	Description() string
}

// ChatRequest represents a request to a chat model.
type ChatRequest struct {
	Model       ModelID   `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float32  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Tools       []Tool    `json:"-"` // Tools are handled separately by providers
}

// ChatResponse represents a response from a chat model.
// For providers returning multiple choices, only the first choice is used.
type ChatResponse struct {
	ID           string       `json:"id"`
	Model        ModelID      `json:"model"`
	Output       string       `json:"output"`
	Usage        TokenUsage   `json:"usage"`
	ToolCalls    []ToolCall   `json:"tool_calls,omitempty"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
}

// HasToolCalls reports whether the response contains any tool calls.
func (r *ChatResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// FirstToolCall returns the first tool call, or nil if there are none.
func (r *ChatResponse) FirstToolCall() *ToolCall {
	if len(r.ToolCalls) > 0 {
		return &r.ToolCalls[0]
	}
	return nil
}
