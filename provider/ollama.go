package provider

import (
	"context"
	"fmt"

	"aide/chat"
	"aide/ollama"
)

// OllamaProvider wraps ollama.Client to implement the chat.Backend interface.
//
// It converts chat.Message to api.Message on the way in; streamed chunks come
// back as plain text through the callback.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama backend.
//
// baseURL defaults to "http://localhost:11434" and model to "llama3.1:latest"
// when empty. Returns an error if the URL cannot be parsed.
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// Chat implements chat.Backend by converting messages and forwarding chunks.
func (p *OllamaProvider) Chat(ctx context.Context, messages []chat.Message, callback chat.StreamCallback) error {
	ollamaMessages := ConvertToOllamaMessages(messages)

	return p.client.Chat(ctx, ollamaMessages, func(chunk string) error {
		if callback == nil {
			return nil
		}
		return callback(chunk)
	})
}

// ListModels implements chat.Backend (direct passthrough).
func (p *OllamaProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return p.client.ListModels(ctx)
}

// GetModel implements chat.Backend (direct passthrough).
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// GetDisplayName implements chat.Backend.
// Ollama model names have no vendor prefix, so this matches GetModel.
func (p *OllamaProvider) GetDisplayName() string {
	return p.client.GetModel()
}

// SetModel implements chat.Backend (direct passthrough).
func (p *OllamaProvider) SetModel(model string) {
	p.client.SetModel(model)
}

// Ping implements chat.Backend (direct passthrough).
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
