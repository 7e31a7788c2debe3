package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// PluginServer declares one MCP tool server launched over stdio.
// Env values may reference the credential store with the form
// "credential:<key>", resolved at launch time so secrets never
// sit in plugins.toml.
type PluginServer struct {
	ID      string            `toml:"id"`
	Command string            `toml:"command"`
	Args    []string          `toml:"args,omitempty"`
	Env     map[string]string `toml:"env,omitempty"`
	Enabled bool              `toml:"enabled"`
}

// PluginsConfig is the contents of <data_dir>/plugins.toml.
// Servers use array-of-tables form so declaration order is preserved;
// tool priorities are assigned in that order.
type PluginsConfig struct {
	Servers []PluginServer `toml:"server"`
}

func LoadPluginsConfig(dataDir string) (*PluginsConfig, error) {
	pluginsConfigPath := filepath.Join(dataDir, "plugins.toml")

	if _, err := os.Stat(pluginsConfigPath); os.IsNotExist(err) {
		return &PluginsConfig{}, nil
	}

	var config PluginsConfig
	if _, err := toml.DecodeFile(pluginsConfigPath, &config); err != nil {
		return nil, fmt.Errorf("failed to decode plugins config: %w", err)
	}

	return &config, nil
}

func SavePluginsConfig(dataDir string, config *PluginsConfig) error {
	pluginsConfigPath := filepath.Join(dataDir, "plugins.toml")

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// 0600: env values may hold secrets when not using credential: refs
	f, err := os.OpenFile(pluginsConfigPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create plugins config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode plugins config: %w", err)
	}

	return nil
}

// EnabledServers returns the enabled server declarations in file order.
func (pc *PluginsConfig) EnabledServers() []PluginServer {
	var enabled []PluginServer
	for _, s := range pc.Servers {
		if s.Enabled && s.ID != "" && s.Command != "" {
			enabled = append(enabled, s)
		}
	}
	return enabled
}

// ResolveEnv expands one env value, pulling "credential:<key>" references
// from the credential store under the plugin's namespace.
func ResolveEnv(store *CredentialStore, pluginID, value string) string {
	const prefix = "credential:"
	if !strings.HasPrefix(value, prefix) {
		return value
	}
	key := strings.TrimPrefix(value, prefix)
	return store.GetPlugin(pluginID, key)
}
