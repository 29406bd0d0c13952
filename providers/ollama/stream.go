package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rill-labs/rill/core"
	"github.com/rill-labs/rill/providers/internal/jsonseq"
)

// readChunkSize is the transport read buffer size.
const readChunkSize = 4096

// doStreamChat sends a streaming chat request to the Ollama API.
func (p *Ollama) doStreamChat(ctx context.Context, req *core.ChatRequest) (*core.ChatStream, error) {
	body, err := json.Marshal(mapRequest(req, true))
	if err != nil {
		return nil, newDecodeError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+chatPath, bytes.NewReader(body))
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

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseErrorResponse(resp)
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

// ollamaStreamState accumulates per-stream decoding state.
type ollamaStreamState struct {
	content   bytes.Buffer
	toolCalls []ollamaToolCall
	final     *ollamaResponse
}

// processStream reads the response body chunk by chunk, splits it into
// JSON values by brace counting, and emits chunks until the done value,
// end-of-stream, or error. Ollama has no sentinel; the final value is
// marked done=true and the transport EOF confirms termination.
func (p *Ollama) processStream(
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

	splitter := jsonseq.NewSplitter()
	state := &ollamaStreamState{}
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
			frames, err := splitter.Write(buf[:n])
			if err != nil {
				errCh <- newDecodeError(err)
				return
			}
			for _, frame := range frames {
				done, err := p.handleFrame(ctx, frame, state, chunkCh)
				if err != nil {
					errCh <- err
					return
				}
				if done {
					p.emitFinal(state, errCh, finalCh)
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

// handleFrame decodes one complete JSON value from the stream and pushes
// the resulting chunk. Returns done=true on the terminal value.
func (p *Ollama) handleFrame(
	ctx context.Context,
	frame string,
	state *ollamaStreamState,
	chunkCh chan<- core.ChatChunk,
) (bool, error) {
	var value ollamaResponse
	if err := json.Unmarshal([]byte(frame), &value); err != nil {
		return false, newDecodeError(err)
	}

	if value.Error != "" {
		return false, newStreamError(value.Error)
	}

	if value.Message.Content != "" {
		state.content.WriteString(value.Message.Content)
		chunk := core.ChatChunk{
			Delta: value.Message.Content,
			Role:  core.Role(value.Message.Role),
		}
		select {
		case chunkCh <- chunk:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	if len(value.Message.ToolCalls) > 0 {
		state.toolCalls = append(state.toolCalls, value.Message.ToolCalls...)
	}

	if value.Done {
		state.final = &value
		return true, nil
	}
	return false, nil
}

// emitFinal assembles and sends the final response. A stream that ended
// without a done value still yields the accumulated content.
func (p *Ollama) emitFinal(state *ollamaStreamState, errCh chan<- error, finalCh chan<- *core.ChatResponse) {
	final := state.final
	if final == nil {
		final = &ollamaResponse{}
	}
	final.Message.Content = state.content.String()
	final.Message.ToolCalls = state.toolCalls

	resp, err := mapResponse(final)
	if err != nil {
		errCh <- err
		return
	}
	finalCh <- resp
}
