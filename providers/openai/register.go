package openai

import (
	"github.com/rill-labs/rill/core"
	"github.com/rill-labs/rill/providers"
)

func init() {
	providers.Register("openai", func(apiKey string) core.Provider {
		return New(apiKey)
	})
}
