package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestToolResultRole(t *testing.T) {
	tests := []struct {
		name       string
		configured map[string]string
		providerID string
		want       string
	}{
		{
			name:       "configured override wins",
			configured: map[string]string{"ollama": "function"},
			providerID: "ollama",
			want:       "function",
		},
		{
			name:       "ollama default",
			providerID: "ollama",
			want:       "tool",
		},
		{
			name:       "anthropic default",
			providerID: "anthropic",
			want:       "user",
		},
		{
			name:       "openrouter default",
			providerID: "openrouter",
			want:       "system",
		},
		{
			name:       "unknown provider falls back to system",
			providerID: "somebackend",
			want:       "system",
		},
		{
			name:       "empty configured value falls through to default",
			configured: map[string]string{"ollama": ""},
			providerID: "ollama",
			want:       "tool",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ToolResultRoles: tt.configured}
			if got := cfg.ToolResultRole(tt.providerID); got != tt.want {
				t.Errorf("ToolResultRole(%q) = %q, want %q", tt.providerID, got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty stays empty", "", ""},
		{"tilde expands to home", "~/data", filepath.Join(home, "data")},
		{"absolute path untouched", "/var/lib/aide", "/var/lib/aide"},
		{"env var expands", "$HOME/data", filepath.Join(home, "data")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveEnv(t *testing.T) {
	store := NewCredentialStore(SecurityPlainText, "")
	if err := store.SetPlugin("github", "token", "ghp_secret"); err != nil {
		t.Fatalf("SetPlugin: %v", err)
	}

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain value passes through", "info", "info"},
		{"credential reference resolves", "credential:token", "ghp_secret"},
		{"missing credential resolves to empty", "credential:absent", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveEnv(store, "github", tt.value); got != tt.want {
				t.Errorf("ResolveEnv(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestLoadPluginsConfig(t *testing.T) {
	t.Run("missing file yields empty config", func(t *testing.T) {
		pc, err := LoadPluginsConfig(t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pc.Servers) != 0 {
			t.Errorf("expected no servers, got %d", len(pc.Servers))
		}
	})

	t.Run("enabled servers keep file order", func(t *testing.T) {
		dataDir := t.TempDir()
		content := `
[[server]]
id = "files"
command = "mcp-files"
enabled = true

[[server]]
id = "disabled"
command = "mcp-disabled"
enabled = false

[[server]]
id = "incomplete"
enabled = true

[[server]]
id = "web"
command = "mcp-web"
enabled = true

[server.env]
API_KEY = "credential:api_key"
`
		path := filepath.Join(dataDir, "plugins.toml")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("write plugins.toml: %v", err)
		}

		pc, err := LoadPluginsConfig(dataDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		enabled := pc.EnabledServers()
		if len(enabled) != 2 {
			t.Fatalf("expected 2 enabled servers, got %d", len(enabled))
		}
		if enabled[0].ID != "files" || enabled[1].ID != "web" {
			t.Errorf("expected [files web], got [%s %s]", enabled[0].ID, enabled[1].ID)
		}
		if enabled[1].Env["API_KEY"] != "credential:api_key" {
			t.Errorf("expected raw credential reference, got %q", enabled[1].Env["API_KEY"])
		}
	})
}
