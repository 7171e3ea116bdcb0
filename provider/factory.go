package provider

import (
	"fmt"

	"loqui/model"
)

// New creates a provider from configuration. This is the single dispatch
// point for provider construction; unknown types are an error.
func New(cfg Config) (model.Provider, error) {
	switch cfg.Type {
	case TypeOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model)
	case TypeOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case TypeAnthropic:
		return NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case TypeOpenRouter:
		return NewOpenRouterProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}
