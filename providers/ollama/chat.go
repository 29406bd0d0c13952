package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rill-labs/rill/core"
)

// chatPath is the Ollama chat endpoint.
const chatPath = "/api/chat"

// doChat sends a non-streaming chat request.
func (p *Ollama) doChat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	body, err := json.Marshal(mapRequest(req, false))
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
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(err)
	}

	var ollamaResp ollamaResponse
	if err := json.Unmarshal(respBody, &ollamaResp); err != nil {
		return nil, newDecodeError(err)
	}
	if ollamaResp.Error != "" {
		return nil, newStreamError(ollamaResp.Error)
	}

	return mapResponse(&ollamaResp)
}
