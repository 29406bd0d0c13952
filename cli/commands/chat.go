package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rill-labs/rill/cli/config"
	"github.com/rill-labs/rill/cli/keystore"
	"github.com/rill-labs/rill/core"
)

// Exit codes used by the chat command.
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitProvider   = 2
	ExitNetwork    = 3
)

// exitError carries a process exit code alongside the underlying error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func (a *App) newChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send a chat request to a model",
		Long: `Send a chat request to the configured provider and print the reply.

Examples:
  rill chat --prompt "What is the capital of Norway?"
  rill chat --provider ollama --model llama3.2 --prompt "hi" --stream`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd)
		},
	}

	cmd.Flags().StringVarP(&a.chatPrompt, "prompt", "p", "", "user prompt (required)")
	cmd.Flags().StringVarP(&a.chatSystem, "system", "s", "", "system prompt")
	cmd.Flags().Float32VarP(&a.chatTemperature, "temperature", "t", 0, "sampling temperature")
	cmd.Flags().IntVar(&a.chatMaxTokens, "max-tokens", 0, "maximum tokens to generate")
	cmd.Flags().BoolVar(&a.chatStream, "stream", false, "stream tokens as they arrive")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func (a *App) runChat(cmd *cobra.Command) error {
	if a.provider == "" {
		return &exitError{ExitValidation, errors.New("no provider specified: use --provider or set default_provider in config")}
	}
	if a.model == "" {
		return &exitError{ExitValidation, errors.New("no model specified: use --model or set default_model in config")}
	}

	apiKey, err := a.resolveAPIKey(a.provider)
	if err != nil {
		return &exitError{ExitValidation, err}
	}

	provider, err := a.createProvider(a.provider, apiKey, a.cfg)
	if err != nil {
		return &exitError{ExitValidation, err}
	}

	client := core.NewClient(provider, core.WithRetryPolicy(retryPolicyFromConfig(a.cfg.Retry)))

	builder := client.Chat(core.ModelID(a.model))
	if a.chatSystem != "" {
		builder.System(a.chatSystem)
	}
	builder.User(a.chatPrompt)
	if cmd.Flags().Changed("temperature") {
		builder.Temperature(a.chatTemperature)
	}
	if a.chatMaxTokens > 0 {
		builder.MaxTokens(a.chatMaxTokens)
	}

	ctx := cmd.Context()

	if a.chatStream && !a.jsonOutput {
		stream, err := builder.Stream(ctx)
		if err != nil {
			return a.chatError(err)
		}
		for chunk := range stream.Ch {
			fmt.Fprint(a.stdout, chunk.Delta)
		}
		if err, ok := <-stream.Err; ok && err != nil {
			fmt.Fprintln(a.stdout)
			return a.chatError(err)
		}
		fmt.Fprintln(a.stdout)
		if a.verbose {
			if resp, ok := <-stream.Final; ok && resp != nil {
				a.printUsage(resp)
			}
		}
		return nil
	}

	var resp *core.ChatResponse
	if a.chatStream {
		resp, err = builder.GetStreamedResponse(ctx)
	} else {
		resp, err = builder.GetResponse(ctx)
	}
	if err != nil {
		return a.chatError(err)
	}

	if a.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintln(a.stdout, resp.Output)
	if a.verbose {
		a.printUsage(resp)
	}
	return nil
}

func (a *App) printUsage(resp *core.ChatResponse) {
	fmt.Fprintf(a.stderr, "tokens: %d prompt, %d completion, %d total\n",
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
}

// resolveAPIKey looks the provider key up in the keystore. A missing
// key is not an error here: local providers run without one, and the
// provider factory decides whether a key is mandatory.
func (a *App) resolveAPIKey(providerID string) (string, error) {
	ks, err := a.newKeystore()
	if err != nil {
		return "", fmt.Errorf("opening keystore: %w", err)
	}

	value, err := ks.Get(providerID)
	if err != nil {
		var notFound *keystore.ErrKeyNotFound
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading key for %s: %w", providerID, err)
	}

	return value, nil
}

// retryPolicyFromConfig builds the client retry policy from config,
// falling back to defaults for missing or malformed values.
func retryPolicyFromConfig(rs *config.RetrySettings) core.RetryPolicy {
	if rs == nil {
		return core.DefaultRetryPolicy()
	}

	cfg := core.RetryConfig{MaxAttempts: rs.MaxAttempts}
	if d, err := time.ParseDuration(rs.BaseDelay); err == nil {
		cfg.BaseDelay = d
	}
	if d, err := time.ParseDuration(rs.MaxDelay); err == nil {
		cfg.MaxDelay = d
	}
	return core.NewRetryPolicy(cfg)
}

// chatError maps provider failures to exit codes and, in JSON mode,
// emits a machine-readable error object on stderr.
func (a *App) chatError(err error) error {
	code := ExitProvider
	switch {
	case errors.Is(err, core.ErrNetwork) || errors.Is(err, core.ErrFrameTruncated):
		code = ExitNetwork
	case errors.Is(err, core.ErrModelRequired) || errors.Is(err, core.ErrNoMessages) || errors.Is(err, core.ErrBadRequest):
		code = ExitValidation
	}

	if a.jsonOutput {
		var pe *core.ProviderError
		out := map[string]any{"error": err.Error()}
		if errors.As(err, &pe) {
			out["provider"] = pe.Provider
			out["status"] = pe.Status
			if pe.Code != "" {
				out["code"] = pe.Code
			}
			if pe.RequestID != "" {
				out["request_id"] = pe.RequestID
			}
		}
		enc := json.NewEncoder(a.stderr)
		_ = enc.Encode(out)
	}

	return &exitError{code, err}
}
