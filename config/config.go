package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type OllamaConfig struct {
	Host         string `toml:"host"`
	DefaultModel string `toml:"default_model"`
}

type ProviderEntry struct {
	ID      string `toml:"id"`
	BaseURL string `toml:"base_url,omitempty"`
	Model   string `toml:"model,omitempty"`
	Enabled bool   `toml:"enabled"`
}

// ToolsConfig controls the tool-call extraction and dispatch loop.
type ToolsConfig struct {
	// Protocol selects the marker syntax: "bracket" or "jsonline".
	Protocol string `toml:"protocol"`
	// MaxConsecutiveCalls bounds tool-call batches within one turn.
	MaxConsecutiveCalls int `toml:"max_consecutive_calls"`
	// WorkspaceDir overrides the default <data_dir>/workspace sandbox.
	WorkspaceDir string `toml:"workspace_dir,omitempty"`
	// EmbedModel is the ollama model used for memory embeddings.
	EmbedModel string `toml:"embed_model"`
}

// SMTPConfig configures the email tool's outbound server.
type SMTPConfig struct {
	Host string `toml:"host,omitempty"`
	Port int    `toml:"port,omitempty"`
	From string `toml:"from,omitempty"`
	User string `toml:"user,omitempty"`
	// Password lives in the credential store under "smtp".
}

type UserConfig struct {
	Provider            string            `toml:"provider"`
	Ollama              OllamaConfig      `toml:"ollama"`
	Providers           []ProviderEntry   `toml:"providers,omitempty"`
	Tools               ToolsConfig       `toml:"tools"`
	SMTP                SMTPConfig        `toml:"smtp,omitempty"`
	ToolResultRoles     map[string]string `toml:"tool_result_roles,omitempty"`
	DefaultSystemPrompt string            `toml:"default_system_prompt,omitempty"`
	PluginsEnabled      bool              `toml:"plugins_enabled"`
	Security            SecurityConfig    `toml:"security,omitempty"`
}

type SecurityConfig struct {
	Method     string `toml:"method,omitempty"` // "plaintext" or "ssh_key"
	SSHKeyPath string `toml:"ssh_key_path,omitempty"`
}

type Config struct {
	DataDirectory       string
	Provider            string
	OllamaHost          string
	DefaultModel        string
	Providers           []ProviderEntry
	Tools               ToolsConfig
	SMTP                SMTPConfig
	ToolResultRoles     map[string]string
	DefaultSystemPrompt string
	PluginsEnabled      bool
	Security            SecurityConfig
	CredentialStore     *CredentialStore
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// WorkspaceDir returns the sandbox root for the filesystem tools.
func (c *Config) WorkspaceDir() string {
	if c.Tools.WorkspaceDir != "" {
		return ExpandPath(c.Tools.WorkspaceDir)
	}
	return filepath.Join(c.DataDir(), "workspace")
}

// ToolResultRole returns the history role label used when injecting a
// tool result for the given provider. Backends disagree on which role
// they accept for injected tool output, so the mapping is configuration.
func (c *Config) ToolResultRole(providerID string) string {
	if role, ok := c.ToolResultRoles[providerID]; ok && role != "" {
		return role
	}
	if role, ok := defaultToolResultRoles[providerID]; ok {
		return role
	}
	return "system"
}

func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("AIDE_OLLAMA_HOST"); host != "" {
		c.OllamaHost = host
	}
	if model := os.Getenv("AIDE_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if dataDir := os.Getenv("AIDE_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

func CheckDebug() bool {
	debug := os.Getenv("AIDE_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: debug output can contain prompts and tool arguments
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (AIDE_DEBUG=%s) ===", os.Getenv("AIDE_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

func HasAllEnvVars() bool {
	return os.Getenv("AIDE_OLLAMA_HOST") != "" &&
		os.Getenv("AIDE_MODEL") != "" &&
		os.Getenv("AIDE_DATA_DIR") != ""
}

func HasAnyEnvVar() bool {
	return os.Getenv("AIDE_OLLAMA_HOST") != "" ||
		os.Getenv("AIDE_MODEL") != "" ||
		os.Getenv("AIDE_DATA_DIR") != ""
}

func GetMissingEnvVar() string {
	if os.Getenv("AIDE_OLLAMA_HOST") == "" {
		return "AIDE_OLLAMA_HOST"
	}
	if os.Getenv("AIDE_MODEL") == "" {
		return "AIDE_MODEL"
	}
	if os.Getenv("AIDE_DATA_DIR") == "" {
		return "AIDE_DATA_DIR"
	}
	return ""
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	settingsPath := GetSettingsFilePath()
	settingsExist := FileExists(settingsPath)

	if !settingsExist && HasAllEnvVars() {
		cfg.applyEnvOverrides()
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory

		userCfg, err := LoadUserConfig(cfg.DataDir())
		if err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
		cfg.applyUserConfig(userCfg)
		cfg.applyEnvOverrides()
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	if cfg.Security.Method == string(SecuritySSHKey) && cfg.Security.SSHKeyPath == "" {
		keys, err := FindSSHKeys()
		if err != nil {
			return nil, fmt.Errorf("failed to scan for SSH keys: %w", err)
		}
		if len(keys) == 0 {
			// First run with ssh_key security: generate a dedicated key.
			created, err := CreateEncryptionKey("")
			if err != nil {
				return nil, fmt.Errorf("security method is ssh_key but no SSH key was found and key generation failed (set security.ssh_key_path): %w", err)
			}
			keys = []string{created}
		}
		cfg.Security.SSHKeyPath = keys[0]
	}

	store := NewCredentialStore(SecurityMethod(cfg.Security.Method), cfg.Security.SSHKeyPath)
	if err := store.Load(dataDir); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	cfg.CredentialStore = store

	return cfg, nil
}

func (c *Config) applyUserConfig(user *UserConfig) {
	if user.Provider != "" {
		c.Provider = user.Provider
	}
	if user.Ollama.Host != "" {
		c.OllamaHost = user.Ollama.Host
	}
	if user.Ollama.DefaultModel != "" {
		c.DefaultModel = user.Ollama.DefaultModel
	}
	c.Providers = user.Providers
	if user.Tools.Protocol != "" {
		c.Tools.Protocol = user.Tools.Protocol
	}
	if user.Tools.MaxConsecutiveCalls > 0 {
		c.Tools.MaxConsecutiveCalls = user.Tools.MaxConsecutiveCalls
	}
	if user.Tools.WorkspaceDir != "" {
		c.Tools.WorkspaceDir = user.Tools.WorkspaceDir
	}
	if user.Tools.EmbedModel != "" {
		c.Tools.EmbedModel = user.Tools.EmbedModel
	}
	c.SMTP = user.SMTP
	if len(user.ToolResultRoles) > 0 {
		c.ToolResultRoles = user.ToolResultRoles
	}
	c.DefaultSystemPrompt = user.DefaultSystemPrompt
	c.PluginsEnabled = user.PluginsEnabled
	if user.Security.Method != "" {
		c.Security = user.Security
	}
}
