package openai

import (
	"errors"

	"github.com/rill-labs/rill/providers/internal/normalize"
)

// errToolArgsInvalid is reported when tool call arguments are not valid JSON.
var errToolArgsInvalid = errors.New("tool args invalid json")

// normalizeError converts an HTTP error response to a ProviderError with
// the appropriate sentinel.
func normalizeError(status int, body []byte, requestID string) error {
	return normalize.OpenAIStyleProviderError("openai", status, body, requestID)
}

// newNetworkError creates a ProviderError for network-related failures.
func newNetworkError(err error) error {
	return normalize.NetworkError("openai", err)
}

// newDecodeError creates a ProviderError for JSON decode failures.
func newDecodeError(err error) error {
	return normalize.DecodeError("openai", err)
}

// newTruncatedError creates a ProviderError for streams that ended mid-frame.
func newTruncatedError(err error) error {
	return normalize.TruncatedError("openai", err)
}
