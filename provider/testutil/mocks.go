// Package testutil provides a configurable mock provider for tests.
package testutil

import (
	"context"

	"loqui/model"
)

// MockProvider implements model.Provider for testing.
type MockProvider struct {
	// Configurable responses
	ChatFunc       func(ctx context.Context, messages []model.Message, callback model.StreamCallback) error
	ListModelsFunc func(ctx context.Context) ([]string, error)
	PingFunc       func(ctx context.Context) error

	// State
	currentModel string

	// LastMessages records the messages of the most recent Chat call.
	LastMessages []model.Message
}

// NewMockProvider creates a mock provider with default implementations.
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{currentModel: modelName}
	mock.ChatFunc = mock.defaultChat
	mock.ListModelsFunc = mock.defaultListModels
	mock.PingFunc = func(ctx context.Context) error { return nil }
	return mock
}

// NewScriptedProvider creates a mock provider that always streams the given
// response in one chunk.
func NewScriptedProvider(modelName, response string) *MockProvider {
	mock := NewMockProvider(modelName)
	mock.ChatFunc = func(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
		return callback(response)
	}
	return mock
}

func (m *MockProvider) defaultChat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	if len(messages) > 0 {
		return callback("Mock response")
	}
	return nil
}

func (m *MockProvider) defaultListModels(ctx context.Context) ([]string, error) {
	return []string{"mock-model-1", "mock-model-2"}, nil
}

func (m *MockProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	m.LastMessages = append([]model.Message{}, messages...)
	return m.ChatFunc(ctx, messages, callback)
}

func (m *MockProvider) ListModels(ctx context.Context) ([]string, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockProvider) GetModel() string { return m.currentModel }

func (m *MockProvider) GetDisplayName() string { return m.currentModel }

func (m *MockProvider) SetModel(modelName string) { m.currentModel = modelName }

func (m *MockProvider) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
