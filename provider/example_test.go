package provider_test

import (
	"context"
	"fmt"
	"log"

	"aide/chat"
	"aide/provider"
)

// ExampleNewProvider demonstrates creating an Ollama backend using the factory.
func ExampleNewProvider() {
	cfg := provider.Config{
		Type:    provider.ProviderTypeOllama,
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
	}

	b, err := provider.NewProvider(cfg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Backend created: %T\n", b)
	// Output: Backend created: *provider.OllamaProvider
}

// ExampleNewOllamaProvider demonstrates creating an Ollama backend directly.
func ExampleNewOllamaProvider() {
	b, err := provider.NewOllamaProvider("http://localhost:11434", "llama3.1")
	if err != nil {
		log.Fatal(err)
	}

	// Check current model
	currentModel := b.GetModel()
	fmt.Printf("Current model: %s\n", currentModel)

	// Change model
	b.SetModel("llama3.2:latest")
	fmt.Printf("New model: %s\n", b.GetModel())

	// Output:
	// Current model: llama3.1
	// New model: llama3.2:latest
}

// ExampleOllamaProvider_Chat demonstrates a streamed chat request.
//
// Note: This example doesn't actually run because it requires a live Ollama
// server. It's provided for documentation purposes.
func ExampleOllamaProvider_Chat() {
	b, err := provider.NewOllamaProvider("http://localhost:11434", "llama3.1")
	if err != nil {
		log.Fatal(err)
	}

	messages := []chat.Message{
		{Role: "user", Content: "Hello! How are you?"},
	}

	ctx := context.Background()
	err = b.Chat(ctx, messages, func(chunk string) error {
		// Print each chunk as it arrives. Any [MARKER: arg] tool
		// invocations ride inside this text and are extracted by the
		// engine after the response completes.
		fmt.Print(chunk)
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}
}

// ExampleOllamaProvider_ListModels demonstrates listing available models.
//
// Note: This example doesn't actually run because it requires a live Ollama
// server. It's provided for documentation purposes.
func ExampleOllamaProvider_ListModels() {
	b, err := provider.NewOllamaProvider("http://localhost:11434", "llama3.1")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	models, err := b.ListModels(ctx)
	if err != nil {
		log.Fatal(err)
	}

	for _, m := range models {
		fmt.Printf("%s (%d bytes)\n", m.Name, m.Size)
	}
}

// ExampleConfig demonstrates different provider configurations.
func ExampleConfig() {
	// Ollama configuration (local server, no API key)
	ollamaCfg := provider.Config{
		Type:    provider.ProviderTypeOllama,
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
	}

	// OpenRouter configuration
	openrouterCfg := provider.Config{
		Type:    provider.ProviderTypeOpenRouter,
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "meta-llama/llama-3.2-90b-instruct",
		APIKey:  "sk-or-...", // Your OpenRouter API key
	}

	// Anthropic configuration
	anthropicCfg := provider.Config{
		Type:    provider.ProviderTypeAnthropic,
		BaseURL: "https://api.anthropic.com",
		Model:   "claude-sonnet-4-5-20250929",
		APIKey:  "sk-ant-...", // Your Anthropic API key
	}

	fmt.Printf("Ollama: %s\n", ollamaCfg.Type)
	fmt.Printf("OpenRouter: %s\n", openrouterCfg.Type)
	fmt.Printf("Anthropic: %s\n", anthropicCfg.Type)

	// Output:
	// Ollama: ollama
	// OpenRouter: openrouter
	// Anthropic: anthropic
}
