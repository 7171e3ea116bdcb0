// Package provider implements the model.Provider interface for the
// supported LLM backends: a local Ollama server and the OpenAI, Anthropic
// and OpenRouter APIs.
//
// The remote API is an opaque external service to the rest of the app: the
// response-command protocol rides entirely in the text the model returns,
// so every provider here is a plain text-streaming chat transport. All
// provider-specific type conversions stay inside this package.
package provider

// Type identifies the provider implementation.
type Type string

const (
	TypeOllama     Type = "ollama"
	TypeOpenAI     Type = "openai"
	TypeAnthropic  Type = "anthropic"
	TypeOpenRouter Type = "openrouter"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    Type
	BaseURL string
	Model   string
	APIKey  string // unused for Ollama
}
