package ollama

import (
	"encoding/json"
	"fmt"

	"github.com/rill-labs/rill/core"
)

// schemaProvider is optionally implemented by tools that carry a JSON
// schema for their parameters.
type schemaProvider interface {
	Parameters() json.RawMessage
}

// mapRequest converts a core ChatRequest to the Ollama wire format.
func mapRequest(req *core.ChatRequest, stream bool) *ollamaRequest {
	out := &ollamaRequest{
		Model:    string(req.Model),
		Messages: mapMessages(req.Messages),
		Stream:   stream,
	}

	if req.Temperature != nil || req.MaxTokens != nil {
		out.Options = &ollamaOptions{}
		if req.Temperature != nil {
			out.Options.Temperature = *req.Temperature
		}
		if req.MaxTokens != nil {
			out.Options.NumPredict = *req.MaxTokens
		}
	}

	if len(req.Tools) > 0 {
		out.Tools = make([]ollamaTool, len(req.Tools))
		for i, t := range req.Tools {
			fn := ollamaFunction{
				Name:        t.Name(),
				Description: t.Description(),
			}
			if sp, ok := t.(schemaProvider); ok {
				if params := sp.Parameters(); params != nil {
					fn.Parameters = params
				}
			}
			out.Tools[i] = ollamaTool{Type: "function", Function: fn}
		}
	}

	return out
}

// mapMessages converts core messages to the Ollama format.
func mapMessages(msgs []core.Message) []ollamaMessage {
	result := make([]ollamaMessage, len(msgs))
	for i, msg := range msgs {
		result[i] = ollamaMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return result
}

// mapFinishReason converts an Ollama done_reason string.
func mapFinishReason(reason string) core.FinishReason {
	switch reason {
	case "stop":
		return core.FinishStop
	case "length":
		return core.FinishLength
	case "tool_calls":
		return core.FinishToolCalls
	default:
		return core.FinishReason(reason)
	}
}

// mapResponse converts a final Ollama response to a core ChatResponse.
func mapResponse(resp *ollamaResponse) (*core.ChatResponse, error) {
	out := &core.ChatResponse{
		Model:        core.ModelID(resp.Model),
		Output:       resp.Message.Content,
		FinishReason: mapFinishReason(resp.DoneReason),
		Usage: core.TokenUsage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}

	if len(resp.Message.ToolCalls) > 0 {
		calls, err := mapToolCalls(resp.Message.ToolCalls)
		if err != nil {
			return nil, err
		}
		out.ToolCalls = calls
	}

	return out, nil
}

// mapToolCalls converts Ollama tool calls. Ollama sends arguments as a
// JSON object, so they are re-marshaled to raw JSON bytes.
func mapToolCalls(calls []ollamaToolCall) ([]core.ToolCall, error) {
	result := make([]core.ToolCall, len(calls))
	for i, call := range calls {
		args := call.Function.Arguments
		if args == nil {
			args = map[string]any{}
		}
		raw, err := json.Marshal(args)
		if err != nil {
			return nil, newDecodeError(fmt.Errorf("tool call %q: %w", call.Function.Name, err))
		}
		result[i] = core.ToolCall{
			// Ollama does not assign call IDs; the index stands in.
			ID:        fmt.Sprintf("call_%d", i),
			Name:      call.Function.Name,
			Arguments: raw,
		}
	}
	return result, nil
}
