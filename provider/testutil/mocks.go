// Package testutil provides mock backends and message fixtures for tests
// that need a chat.Backend without a live provider.
package testutil

import (
	"context"

	"aide/chat"
	"aide/ollama"
)

// MockBackend implements the chat.Backend interface for testing.
type MockBackend struct {
	// Configurable responses
	ChatFunc       func(ctx context.Context, messages []chat.Message, callback chat.StreamCallback) error
	ListModelsFunc func(ctx context.Context) ([]ollama.ModelInfo, error)
	PingFunc       func(ctx context.Context) error

	// State
	currentModel string
}

// NewMockBackend creates a mock backend with default implementations.
func NewMockBackend(modelName string) *MockBackend {
	mock := &MockBackend{
		currentModel: modelName,
	}
	mock.ChatFunc = mock.defaultChat
	mock.ListModelsFunc = mock.defaultListModels
	mock.PingFunc = mock.defaultPing
	return mock
}

func (m *MockBackend) defaultChat(ctx context.Context, messages []chat.Message, callback chat.StreamCallback) error {
	// Default: echo back a mock response
	if len(messages) > 0 && callback != nil {
		return callback("Mock response")
	}
	return nil
}

func (m *MockBackend) defaultListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return []ollama.ModelInfo{
		{Name: "mock-model-1", Size: 1000, Provider: "mock", InternalName: "mock-model-1"},
		{Name: "mock-model-2", Size: 2000, Provider: "mock", InternalName: "mock-model-2"},
	}, nil
}

func (m *MockBackend) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockBackend) Chat(ctx context.Context, messages []chat.Message, callback chat.StreamCallback) error {
	return m.ChatFunc(ctx, messages, callback)
}

func (m *MockBackend) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockBackend) GetModel() string {
	return m.currentModel
}

func (m *MockBackend) GetDisplayName() string {
	// Mock backend returns same value as GetModel (no prefix stripping)
	return m.currentModel
}

func (m *MockBackend) SetModel(model string) {
	m.currentModel = model
}

func (m *MockBackend) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}
