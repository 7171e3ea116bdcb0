package model

import "context"

// Provider abstracts the remote model API (Ollama, OpenAI, Anthropic,
// OpenRouter) behind provider-agnostic types.
//
// The interface lives in the model package rather than the provider package
// to avoid import cycles: provider implementations import model, and model
// consumes the interface without importing provider.
type Provider interface {
	// Chat sends messages and streams the response back via callback.
	Chat(ctx context.Context, messages []Message, callback StreamCallback) error

	// ListModels returns the model names available from this provider.
	ListModels(ctx context.Context) ([]string, error)

	// GetModel returns the currently selected model name.
	GetModel() string

	// GetDisplayName returns the model name formatted for display
	// (vendor prefixes stripped where the provider uses them).
	GetDisplayName() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks that the provider is reachable.
	Ping(ctx context.Context) error
}

// StreamCallback is called for each chunk of a streamed response.
type StreamCallback func(chunk string) error
