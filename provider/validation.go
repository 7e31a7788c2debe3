package provider

import (
	"context"
	"fmt"

	"aide/config"
	"aide/ollama"
)

// PingProvider validates a provider's credentials by calling Ping().
// Used before saving a new API key so a typo is caught immediately
// instead of on the first chat request.
func PingProvider(ctx context.Context, providerID, baseURL, apiKey string) error {
	providerType := MapProviderIDToType(providerID)

	p, err := NewProvider(Config{
		Type:    providerType,
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   "",
	})
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	if config.Debug {
		config.DebugLog.Printf("[Provider] Provider %s ping successful", providerID)
	}

	return nil
}

// FetchProviderModels fetches the model list from a specific provider.
//
// Ollama is special-cased because it needs no API key and its models carry
// the host's local names.
func FetchProviderModels(ctx context.Context, providerID, baseURL, apiKey, ollamaURL string) ([]ollama.ModelInfo, error) {
	var models []ollama.ModelInfo

	switch providerID {
	case "ollama":
		client, err := ollama.NewClient(ollamaURL, "")
		if err != nil {
			return nil, err
		}

		modelInfos, err := client.ListModels(ctx)
		if err != nil {
			return nil, err
		}

		for i := range modelInfos {
			modelInfos[i].Provider = "ollama"
			modelInfos[i].InternalName = modelInfos[i].Name
		}

		models = modelInfos

	default:
		providerType := MapProviderIDToType(providerID)
		p, err := NewProvider(Config{
			Type:    providerType,
			BaseURL: baseURL,
			APIKey:  apiKey,
			Model:   "",
		})
		if err != nil {
			return nil, err
		}

		fetched, err := p.ListModels(ctx)
		if err != nil {
			return nil, err
		}

		models = fetched
	}

	if config.Debug {
		config.DebugLog.Printf("[Provider] Fetched %d models from provider %s", len(models), providerID)
	}

	return models, nil
}
