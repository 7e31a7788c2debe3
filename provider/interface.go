// Package provider implements chat.Backend for the supported LLM APIs.
//
// aide talks to multiple backends (local Ollama, OpenRouter, OpenAI,
// Anthropic) through the chat.Backend interface. Tool invocations travel
// in-band as text markers inside the assistant response, so every provider
// here is a plain streaming text client: no provider-native tool-call
// plumbing, no per-provider message shapes leaking upward.
//
// # Architecture
//
//   - chat.Backend defines the contract (consumer side, in the chat package)
//   - provider.OllamaProvider wraps the ollama client
//   - provider.OpenRouterProvider and provider.OpenAIProvider share the
//     OpenAI SDK (OpenRouter is OpenAI-compatible)
//   - provider.AnthropicProvider uses the Anthropic SDK
//   - provider.NewProvider() dispatches on Config.Type
//
// # Usage
//
//	cfg := provider.Config{
//	    Type:    provider.ProviderTypeOllama,
//	    BaseURL: "http://localhost:11434",
//	    Model:   "llama3.1",
//	}
//	b, err := provider.NewProvider(cfg)
//	if err != nil {
//	    // handle error
//	}
//	err = b.Chat(ctx, messages, callback)
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // For cloud providers (unused for Ollama)
}
