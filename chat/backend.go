package chat

import (
	"context"

	"aide/ollama"
)

// Backend abstracts the model-serving collaborator: messages in, text
// stream out. Implementations live in the provider package; the
// interface is defined here, on the consumer side, to avoid import
// cycles.
type Backend interface {
	// Chat sends the conversation and streams the response through the
	// callback. The response is plain text; tool invocations arrive as
	// markers inside it, not as structured API tool calls.
	Chat(ctx context.Context, messages []Message, callback StreamCallback) error

	// ListModels returns the models this backend can serve.
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)

	// GetModel returns the active model identifier used for API calls.
	GetModel() string

	// GetDisplayName returns the model name formatted for display
	// (vendor prefixes stripped where the provider uses them).
	GetDisplayName() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the backend is reachable.
	Ping(ctx context.Context) error
}

// StreamCallback receives each chunk of a streamed response. Returning
// an error aborts the stream.
type StreamCallback func(chunk string) error
