package ollama

import (
	"net/http"

	"github.com/rill-labs/rill/core"
)

// Default base URLs for the Ollama API.
const (
	// DefaultLocalURL is the default URL for local Ollama instances.
	DefaultLocalURL = "http://localhost:11434"

	// DefaultCloudURL is the URL for Ollama Cloud (ollama.com).
	DefaultCloudURL = "https://ollama.com/api"
)

// Config holds the configuration for the Ollama provider.
type Config struct {
	// APIKey is the API key for Ollama Cloud. Optional for local instances.
	APIKey core.Secret

	// BaseURL is the base URL for the Ollama API.
	// Defaults to DefaultLocalURL.
	BaseURL string

	// HTTPClient is the HTTP client to use for requests.
	// Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Headers contains additional HTTP headers to include in requests.
	Headers http.Header
}

// Option is a function that configures the Ollama provider.
type Option func(*Config)

// WithAPIKey sets the API key for Ollama Cloud.
// This is optional for local Ollama instances.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = core.NewSecret(key)
	}
}

// WithBaseURL sets a custom base URL for the Ollama API.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithCloud points the provider at Ollama Cloud.
func WithCloud() Option {
	return func(c *Config) {
		c.BaseURL = DefaultCloudURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithHeader adds an extra header to include in requests.
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(http.Header)
		}
		c.Headers.Set(key, value)
	}
}
