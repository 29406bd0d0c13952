package ollama

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rill-labs/rill/core"
	"github.com/rill-labs/rill/providers/internal/normalize"
)

// parseErrorResponse reads and parses a non-2xx response from Ollama.
func parseErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &core.ProviderError{
			Provider: "ollama",
			Code:     "read_error",
			Message:  fmt.Sprintf("failed to read error response: %v", err),
			Status:   resp.StatusCode,
			Err:      core.ErrNetwork,
		}
	}

	var errResp ollamaErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return normalize.ProviderError("ollama", resp.StatusCode, "", "", string(body), nil)
	}

	// A 404 from Ollama means the model is not pulled; that is a caller
	// mistake, not a server fault.
	sentinel := normalize.SentinelForStatus(resp.StatusCode)
	if resp.StatusCode == http.StatusNotFound {
		sentinel = core.ErrBadRequest
	}

	return normalize.ProviderError("ollama", resp.StatusCode, "", "", errResp.Error, sentinel)
}

// newStreamError creates an error for an inline "error" field in the stream.
func newStreamError(errMsg string) error {
	return &core.ProviderError{
		Provider: "ollama",
		Code:     "stream_error",
		Message:  errMsg,
		Err:      core.ErrServer,
	}
}

// newNetworkError creates a ProviderError for network-related failures.
func newNetworkError(err error) error {
	return normalize.NetworkError("ollama", err)
}

// newDecodeError creates a ProviderError for JSON decode failures.
func newDecodeError(err error) error {
	return normalize.DecodeError("ollama", err)
}

// newTruncatedError creates a ProviderError for streams that ended mid-value.
func newTruncatedError(err error) error {
	return normalize.TruncatedError("ollama", err)
}
