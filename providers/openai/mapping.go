package openai

import (
	"encoding/json"

	"github.com/rill-labs/rill/core"
)

// mapMessages converts Rill messages to OpenAI message format.
func mapMessages(msgs []core.Message) []openAIMessage {
	result := make([]openAIMessage, len(msgs))
	for i, msg := range msgs {
		result[i] = openAIMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return result
}

// schemaProvider is optionally implemented by tools that carry a JSON
// schema for their parameters.
type schemaProvider interface {
	Parameters() json.RawMessage
}

// mapTools converts tool definitions to OpenAI tool format. Tools that
// implement schemaProvider have their schema included; others get an
// empty parameter object.
func mapTools(ts []core.Tool) []openAITool {
	if len(ts) == 0 {
		return nil
	}

	result := make([]openAITool, len(ts))
	for i, t := range ts {
		var params json.RawMessage
		if sp, ok := t.(schemaProvider); ok {
			params = sp.Parameters()
		}
		if params == nil {
			params = json.RawMessage(`{}`)
		}

		result[i] = openAITool{
			Type: "function",
			Function: openAIFunction{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  params,
			},
		}
	}
	return result
}

// buildRequest creates an OpenAI API request from a core ChatRequest.
func buildRequest(req *core.ChatRequest, stream bool) *openAIRequest {
	oaiReq := &openAIRequest{
		Model:    string(req.Model),
		Messages: mapMessages(req.Messages),
		Stream:   stream,
	}

	if stream {
		oaiReq.StreamOptions = &openAIStreamOptions{IncludeUsage: true}
	}

	if req.Temperature != nil {
		oaiReq.Temperature = req.Temperature
	}
	if req.MaxTokens != nil {
		oaiReq.MaxTokens = req.MaxTokens
	}

	if len(req.Tools) > 0 {
		oaiReq.Tools = mapTools(req.Tools)
		oaiReq.ToolChoice = "auto"
	}

	return oaiReq
}

// mapFinishReason converts an OpenAI finish_reason string.
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

// mapResponse converts an OpenAI response to a core ChatResponse.
func mapResponse(resp *openAIResponse) (*core.ChatResponse, error) {
	result := &core.ChatResponse{
		ID:    resp.ID,
		Model: core.ModelID(resp.Model),
		Usage: core.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		result.Output = choice.Message.Content
		result.FinishReason = mapFinishReason(choice.FinishReason)

		if len(choice.Message.ToolCalls) > 0 {
			toolCalls, err := mapToolCalls(choice.Message.ToolCalls)
			if err != nil {
				return nil, err
			}
			result.ToolCalls = toolCalls
		}
	}

	return result, nil
}

// mapToolCalls converts complete OpenAI tool calls, validating that the
// argument payloads are well-formed JSON.
func mapToolCalls(calls []openAIToolCall) ([]core.ToolCall, error) {
	result := make([]core.ToolCall, len(calls))

	for i, call := range calls {
		if !json.Valid([]byte(call.Function.Arguments)) {
			return nil, newDecodeError(errToolArgsInvalid)
		}

		result[i] = core.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(call.Function.Arguments),
		}
	}

	return result, nil
}
