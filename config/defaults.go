package config

// DefaultMaxConsecutiveToolCalls bounds tool-call batches within a single
// conversational turn. It is a circuit breaker against models that keep
// requesting tools forever.
const DefaultMaxConsecutiveToolCalls = 15

// defaultToolResultRoles maps provider IDs to the history role label each
// backend accepts for injected tool output.
var defaultToolResultRoles = map[string]string{
	"ollama":     "tool",
	"openai":     "system",
	"openrouter": "system",
	"anthropic":  "user",
}

func defaultConfig() *Config {
	return &Config{
		DataDirectory: "~/.local/share/aide",
		Provider:      "ollama",
		OllamaHost:    "http://localhost:11434",
		DefaultModel:  "llama3.1:latest",
		Tools: ToolsConfig{
			Protocol:            "bracket",
			MaxConsecutiveCalls: DefaultMaxConsecutiveToolCalls,
			EmbedModel:          "bge-m3",
		},
		Security: SecurityConfig{Method: string(SecurityPlainText)},
	}
}

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/aide",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Provider: "ollama",
		Ollama: OllamaConfig{
			Host:         "http://localhost:11434",
			DefaultModel: "llama3.1:latest",
		},
		Tools: ToolsConfig{
			Protocol:            "bracket",
			MaxConsecutiveCalls: DefaultMaxConsecutiveToolCalls,
			EmbedModel:          "bge-m3",
		},
		PluginsEnabled: false,
	}
}

func GenerateSystemConfigTemplate() string {
	return `# aide System Configuration
# Location: ~/.config/aide/settings.toml
# This file uses TOML format: https://toml.io

# Directory where user config, credentials, memory and workspace are stored
data_directory = "~/.local/share/aide"
`
}

func GenerateUserConfigTemplate() string {
	return `# aide User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

# Active model backend: "ollama", "openai", "openrouter" or "anthropic"
# API keys for cloud providers live in credentials.toml / credentials.enc
provider = "ollama"

[ollama]
# Ollama server URL
host = "http://localhost:11434"

# Default model to use
default_model = "llama3.1:latest"

[tools]
# Marker syntax the model is prompted with and parsed for:
#   "bracket"  -> [TOOL_NAME: argument]
#   "jsonline" -> TOOL_CALL::{"tool": "...", "args": {...}}
protocol = "bracket"

# Hard ceiling on consecutive tool-call batches within one turn
max_consecutive_calls = 15

# Sandbox directory for the fs_* tools (default: <data_directory>/workspace)
# workspace_dir = "~/aide-workspace"

# Ollama model used to embed memory entries
embed_model = "bge-m3"

# Role label used when a tool result is appended to the history,
# per backend. Uncomment to override the defaults.
# [tool_result_roles]
# ollama = "tool"
# openai = "system"
# openrouter = "system"
# anthropic = "user"

# Outbound mail server for the email tool (password goes in credentials
# under the "smtp" key)
# [smtp]
# host = "smtp.example.com"
# port = 587
# from = "assistant@example.com"
# user = "assistant@example.com"

# MCP plugin servers (declared in <data_directory>/plugins.toml)
plugins_enabled = false
`
}
