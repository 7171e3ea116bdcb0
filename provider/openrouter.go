package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"loqui/model"
)

// OpenRouterProvider implements model.Provider against OpenRouter's
// OpenAI-compatible API. Model names carry a vendor prefix
// ("qwen/qwen3-coder:free") which is kept for API calls and stripped for
// display.
type OpenRouterProvider struct {
	client openai.Client
	model  string
}

// NewOpenRouterProvider creates an OpenRouter provider. The API key is
// required.
func NewOpenRouterProvider(baseURL, apiKey, modelName string) (*OpenRouterProvider, error) {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenRouterProvider{client: client, model: modelName}, nil
}

// Chat implements model.Provider.Chat with streaming.
func (p *OpenRouterProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	params := openai.ChatCompletionNewParams{
		Messages: convertToOpenAIMessages(messages),
		Model:    openai.ChatModel(p.model),
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			if callback != nil {
				if err := callback(chunk.Choices[0].Delta.Content); err != nil {
					return err
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("OpenRouter streaming error: %w", err)
	}
	return nil
}

// ListModels implements model.Provider.ListModels with full vendor-prefixed
// names.
func (p *OpenRouterProvider) ListModels(ctx context.Context) ([]string, error) {
	page, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list OpenRouter models: %w", err)
	}

	names := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		names = append(names, m.ID)
	}
	return names, nil
}

// GetModel implements model.Provider.GetModel with the full prefixed name.
func (p *OpenRouterProvider) GetModel() string { return p.model }

// GetDisplayName implements model.Provider.GetDisplayName, stripping the
// vendor prefix.
func (p *OpenRouterProvider) GetDisplayName() string {
	if i := strings.IndexByte(p.model, '/'); i >= 0 {
		return p.model[i+1:]
	}
	return p.model
}

// SetModel implements model.Provider.SetModel.
func (p *OpenRouterProvider) SetModel(modelName string) { p.model = modelName }

// Ping implements model.Provider.Ping by listing models.
func (p *OpenRouterProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("OpenRouter ping failed: %w", err)
	}
	return nil
}
