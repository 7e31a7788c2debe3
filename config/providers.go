package config

// FindProvider returns the configured entry for a provider ID, if present.
func (c *Config) FindProvider(id string) (ProviderEntry, bool) {
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderEntry{}, false
}

// ProviderBaseURL returns the configured base URL for a provider, falling
// back to the well-known endpoint.
func (c *Config) ProviderBaseURL(id string) string {
	if p, ok := c.FindProvider(id); ok && p.BaseURL != "" {
		return p.BaseURL
	}
	return DefaultProviderBaseURL(id)
}

// ProviderModel returns the configured model for a provider, falling back
// to the global default model.
func (c *Config) ProviderModel(id string) string {
	if p, ok := c.FindProvider(id); ok && p.Model != "" {
		return p.Model
	}
	return c.DefaultModel
}

// DefaultProviderBaseURL returns the default API endpoint for a known provider
func DefaultProviderBaseURL(providerID string) string {
	switch providerID {
	case "openrouter":
		return "https://openrouter.ai/api/v1"
	case "anthropic":
		return "https://api.anthropic.com"
	case "openai":
		return "https://api.openai.com/v1"
	default:
		return ""
	}
}
