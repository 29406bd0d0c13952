package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rill-labs/rill/core"
	"github.com/rill-labs/rill/providers/internal/sse"
	"github.com/rill-labs/rill/providers/internal/toolcalls"
)

// doneSentinel is the non-JSON payload that terminates an OpenAI stream.
const doneSentinel = "[DONE]"

// readChunkSize is the transport read buffer size. Frames routinely span
// multiple reads; the splitter reassembles them.
const readChunkSize = 4096

// doStreamChat performs a streaming chat completion request.
func (p *OpenAI) doStreamChat(ctx context.Context, req *core.ChatRequest) (*core.ChatStream, error) {
	oaiReq := buildRequest(req, true)

	body, err := json.Marshal(oaiReq)
	if err != nil {
		return nil, newDecodeError(err)
	}

	url := p.config.BaseURL + chatCompletionsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, newNetworkError(err)
	}

	for key, values := range p.buildHeaders() {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := p.config.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, newNetworkError(err)
	}

	requestID := resp.Header.Get("x-request-id")

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, normalizeError(resp.StatusCode, respBody, requestID)
	}

	chunkCh := make(chan core.ChatChunk, 100)
	errCh := make(chan error, 1)
	finalCh := make(chan *core.ChatResponse, 1)

	go p.processStream(ctx, resp.Body, chunkCh, errCh, finalCh)

	return &core.ChatStream{
		Ch:    chunkCh,
		Err:   errCh,
		Final: finalCh,
	}, nil
}

// streamState accumulates per-stream decoding state. Each stream owns
// its own instance; nothing here is shared across requests.
type streamState struct {
	responseID   string
	model        string
	finishReason core.FinishReason
	usage        *openAIUsage
	toolCalls    *toolcalls.Assembler
}

func newStreamState() *streamState {
	return &streamState{
		toolCalls: toolcalls.NewAssembler(toolcalls.Config{EmptyArgumentsJSON: "{}"}),
	}
}

// processStream reads the response body chunk by chunk, reassembles SSE
// frames, decodes them, and emits chunks until [DONE], end-of-stream, or
// error. On ctx cancellation the body is closed and all channels shut
// promptly; partially assembled frames are discarded.
func (p *OpenAI) processStream(
	ctx context.Context,
	body io.ReadCloser,
	chunkCh chan<- core.ChatChunk,
	errCh chan<- error,
	finalCh chan<- *core.ChatResponse,
) {
	defer body.Close()
	defer close(chunkCh)
	defer close(errCh)
	defer close(finalCh)

	splitter := sse.NewSplitter(doneSentinel)
	state := newStreamState()
	buf := make([]byte, readChunkSize)

	for {
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
			return
		default:
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			for _, ev := range splitter.Write(buf[:n]) {
				if ev.Done {
					p.emitFinal(state, errCh, finalCh)
					return
				}
				if err := p.handleFrame(ctx, ev.Data, state, chunkCh); err != nil {
					errCh <- err
					return
				}
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				if err := splitter.Close(); err != nil {
					errCh <- newTruncatedError(err)
					return
				}
				// Stream ended cleanly without a sentinel; treat the
				// transport EOF as termination.
				p.emitFinal(state, errCh, finalCh)
				return
			}
			if ctx.Err() != nil {
				errCh <- ctx.Err()
				return
			}
			errCh <- newNetworkError(readErr)
			return
		}
	}
}

// handleFrame decodes one complete SSE frame payload and pushes the
// resulting chunk events. Frames are pure inputs: decoding has no side
// effects beyond the per-stream state.
func (p *OpenAI) handleFrame(
	ctx context.Context,
	payload string,
	state *streamState,
	chunkCh chan<- core.ChatChunk,
) error {
	var frame openAIStreamChunk
	if err := json.Unmarshal([]byte(payload), &frame); err != nil {
		return newDecodeError(err)
	}

	if frame.ID != "" {
		state.responseID = frame.ID
	}
	if frame.Model != "" {
		state.model = frame.Model
	}
	if frame.Usage != nil {
		// Usage-only frame (or final delta carrying usage).
		state.usage = frame.Usage
	}

	if len(frame.Choices) == 0 {
		return nil
	}
	choice := frame.Choices[0]

	if choice.FinishReason != "" {
		state.finishReason = mapFinishReason(choice.FinishReason)
	}

	for _, tc := range choice.Delta.ToolCalls {
		fragment := core.ToolCallDelta{
			Index:     tc.Index,
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
		state.toolCalls.AddFragment(fragment)
		if err := push(ctx, chunkCh, core.ChatChunk{ToolCall: &fragment}); err != nil {
			return err
		}
	}

	if choice.Delta.Content != "" || choice.Delta.Role != "" {
		chunk := core.ChatChunk{
			Delta: choice.Delta.Content,
			Role:  core.Role(choice.Delta.Role),
		}
		if choice.FinishReason != "" {
			chunk.FinishReason = state.finishReason
		}
		return push(ctx, chunkCh, chunk)
	}

	return nil
}

// push delivers a chunk, abandoning the stream if the caller walked away.
func push(ctx context.Context, chunkCh chan<- core.ChatChunk, chunk core.ChatChunk) error {
	select {
	case chunkCh <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// emitFinal assembles and sends the final response.
func (p *OpenAI) emitFinal(state *streamState, errCh chan<- error, finalCh chan<- *core.ChatResponse) {
	final := &core.ChatResponse{
		ID:           state.responseID,
		Model:        core.ModelID(state.model),
		FinishReason: state.finishReason,
	}
	if state.usage != nil {
		final.Usage = core.TokenUsage{
			PromptTokens:     state.usage.PromptTokens,
			CompletionTokens: state.usage.CompletionTokens,
			TotalTokens:      state.usage.TotalTokens,
		}
	}

	calls, err := state.toolCalls.Finalize()
	if err != nil {
		errCh <- newDecodeError(err)
		return
	}
	final.ToolCalls = calls

	finalCh <- final
}
