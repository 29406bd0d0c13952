package core

import (
	"context"
	"strings"
)

// ChatChunk is one decoded unit of a streaming response.
// Delta carries incremental assistant text. Chunks that carry only a
// tool-call fragment or a finish reason have an empty Delta.
type ChatChunk struct {
	// Delta is the incremental text content, possibly empty.
	Delta string `json:"delta"`

	// Role is set on the first chunk when the wire protocol announces it.
	Role Role `json:"role,omitempty"`

	// ToolCall is a fragment of a streaming tool call, if present.
	// Fragments with the same Index belong to the same call; Arguments
	// accumulate across fragments.
	ToolCall *ToolCallDelta `json:"tool_call,omitempty"`

	// FinishReason is set on the chunk that terminates generation.
	FinishReason FinishReason `json:"finish_reason,omitempty"`
}

// ToolCallDelta is an incremental fragment of a streaming tool call.
type ToolCallDelta struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ChatStream represents a streaming response from a provider.
//
// A ChatStream is single-pass: events arrive in the exact order their
// frames completed on the wire, and once Ch is closed no further events
// follow.
//
// Channel rules:
//   - Providers MUST close Ch, Err, and Final when finished
//   - On context cancellation, providers MUST terminate promptly, close
//     the underlying connection, and close all channels
//   - Err emits at most one error; an error terminates the stream
//   - Final emits exactly once on success (or zero times on failure)
//   - Partial output delivered before a stream error is void; callers
//     must not treat it as a complete response
type ChatStream struct {
	// Ch emits decoded chunks in arrival order. Closed when the stream ends.
	Ch <-chan ChatChunk

	// Err emits at most one terminal error. Closed when the stream ends.
	Err <-chan error

	// Final is sent exactly once after successful completion, carrying
	// usage accounting and assembled tool calls when available.
	Final <-chan *ChatResponse
}

// DrainStream consumes an entire ChatStream and returns the final
// ChatResponse, accumulating text deltas along the way. It blocks until
// the stream completes, errors, or ctx is cancelled.
//
// If the stream fails after partially delivering chunks, the partial
// output is discarded and only the error is returned.
func DrainStream(ctx context.Context, s *ChatStream) (*ChatResponse, error) {
	if s == nil {
		return nil, ErrBadRequest
	}

	var accumulated strings.Builder
	var streamErr error
	var finalResp *ChatResponse

	// Receive from all three channels until each is closed. A nil
	// channel blocks forever, so closed cases drop out of the select.
	ch, errc, finalc := s.Ch, s.Err, s.Final
	for ch != nil || errc != nil || finalc != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case chunk, ok := <-ch:
			if !ok {
				ch = nil
				continue
			}
			accumulated.WriteString(chunk.Delta)

		case err, ok := <-errc:
			if !ok {
				errc = nil
				continue
			}
			if err != nil {
				streamErr = err
			}

		case resp, ok := <-finalc:
			if !ok {
				finalc = nil
				continue
			}
			finalResp = resp
		}
	}

	if streamErr != nil {
		return nil, streamErr
	}

	if finalResp == nil {
		finalResp = &ChatResponse{Output: accumulated.String()}
	} else if finalResp.Output == "" {
		finalResp.Output = accumulated.String()
	}

	return finalResp, nil
}
