package ollama

import (
	"github.com/rill-labs/rill/core"
	"github.com/rill-labs/rill/providers"
)

func init() {
	// Ollama does not require an API key for local use; the registry
	// passes one through for Ollama Cloud.
	providers.Register("ollama", func(apiKey string) core.Provider {
		if apiKey != "" {
			return New(WithAPIKey(apiKey))
		}
		return New()
	})
}
