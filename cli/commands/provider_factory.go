package commands

import (
	"fmt"

	"github.com/rill-labs/rill/cli/config"
	"github.com/rill-labs/rill/core"
	"github.com/rill-labs/rill/providers"
	"github.com/rill-labs/rill/providers/ollama"
	"github.com/rill-labs/rill/providers/openai"
)

// defaultProviderFactory builds providers for the CLI. The built-in
// providers get config-aware construction (base URLs, key handling);
// anything else falls through to the registry.
func defaultProviderFactory() ProviderFactory {
	return func(providerID, apiKey string, cfg *config.Config) (core.Provider, error) {
		pc := cfg.GetProvider(providerID)

		switch providerID {
		case "openai":
			if apiKey == "" {
				return nil, fmt.Errorf("no API key for openai: run 'rill keys set openai'")
			}
			var opts []openai.Option
			if pc != nil && pc.BaseURL != "" {
				opts = append(opts, openai.WithBaseURL(pc.BaseURL))
			}
			return openai.New(apiKey, opts...), nil

		case "ollama":
			var opts []ollama.Option
			if pc != nil && pc.BaseURL != "" {
				opts = append(opts, ollama.WithBaseURL(pc.BaseURL))
			}
			if apiKey != "" {
				opts = append(opts, ollama.WithAPIKey(apiKey))
			}
			return ollama.New(opts...), nil
		}

		if providers.IsRegistered(providerID) {
			return providers.Create(providerID, apiKey)
		}

		return nil, fmt.Errorf("unknown provider %q (registered: %v)", providerID, providers.List())
	}
}
