package provider

import (
	"aide/chat"
	"aide/config"
)

// InitializeProviders creates backend instances for the application.
//
// This function is the single entry point for provider initialization.
// It handles:
//   - Creating the Ollama backend (always attempted)
//   - Creating all enabled cloud providers (OpenRouter, Anthropic, etc.)
//   - Loading API keys from the credential store
//   - Mapping provider IDs to provider types
//   - Graceful degradation (logs failures but doesn't abort)
//
// The returned map is keyed by provider ID. An entry is absent when its
// backend could not be constructed, e.g. a cloud provider with no stored
// API key or an unreachable Ollama host configuration.
func InitializeProviders(cfg *config.Config) map[string]chat.Backend {
	backends := make(map[string]chat.Backend)

	// Ollama first (special case - always attempted)
	ollamaBackend := initializeOllama(cfg)
	if ollamaBackend != nil {
		backends["ollama"] = ollamaBackend
		if config.Debug {
			config.DebugLog.Printf("[Provider] Initialized Ollama backend")
		}
	} else {
		if config.Debug {
			config.DebugLog.Printf("[Provider] Ollama backend initialization failed (offline mode)")
		}
	}

	// Cloud providers from config
	for _, entry := range cfg.Providers {
		if !entry.Enabled || entry.ID == "ollama" {
			continue
		}

		apiKey := ""
		if cfg.CredentialStore != nil {
			apiKey = cfg.CredentialStore.Get(entry.ID)
		}

		providerType := MapProviderIDToType(entry.ID)

		b, err := NewProvider(Config{
			Type:    providerType,
			BaseURL: cfg.ProviderBaseURL(entry.ID),
			APIKey:  apiKey,
			Model:   cfg.ProviderModel(entry.ID),
		})

		if err != nil {
			// Log and continue - a missing API key should not block startup
			if config.Debug {
				config.DebugLog.Printf("[Provider] Warning: failed to initialize provider %s: %v", entry.ID, err)
			}
			continue
		}

		backends[entry.ID] = b
		if config.Debug {
			config.DebugLog.Printf("[Provider] Initialized provider: %s (type: %s)", entry.ID, providerType)
		}
	}

	return backends
}

// initializeOllama creates the Ollama backend instance.
// Returns nil if initialization fails (allows offline mode).
func initializeOllama(cfg *config.Config) chat.Backend {
	b, err := NewProvider(Config{
		Type:    ProviderTypeOllama,
		BaseURL: cfg.OllamaHost,
		Model:   cfg.DefaultModel,
	})
	if err != nil {
		if config.Debug {
			config.DebugLog.Printf("[Provider] Ollama backend creation failed: %v", err)
		}
		return nil
	}

	return b
}
