package provider

import (
	"aide/chat"

	"github.com/ollama/ollama/api"
)

// ConvertToOllamaMessages converts chat.Message to Ollama api.Message.
//
// Both types carry compatible Role and Content fields, so this is a plain
// field mapping. History entries already use the role labels the backend
// expects (the engine applies the per-provider tool-result role before
// messages reach this layer).
func ConvertToOllamaMessages(messages []chat.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return result
}

// ConvertFromOllamaMessages converts Ollama api.Message back to chat.Message.
func ConvertFromOllamaMessages(messages []api.Message) []chat.Message {
	result := make([]chat.Message, len(messages))
	for i, msg := range messages {
		result[i] = chat.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return result
}
