package mcp

import (
	"context"

	"aide/config"
	"aide/registry"
)

// basePriority is the first priority assigned to plugin tools; built-in
// tools stay below it.
const basePriority = 100

// Manager launches the enabled plugin servers and registers their tools.
// A failing plugin is logged and skipped, never fatal.
type Manager struct {
	dataDir string
	store   *config.CredentialStore
	pm      *ProcessManager
}

func NewManager(dataDir string, store *config.CredentialStore) *Manager {
	return &Manager{
		dataDir: dataDir,
		store:   store,
		pm:      NewProcessManager(),
	}
}

// Start reads <data_dir>/plugins.toml, launches every enabled server,
// and registers the advertised tools with reg. Tool priorities continue
// from basePriority in declaration order.
func (m *Manager) Start(ctx context.Context, reg *registry.Registry) error {
	pc, err := config.LoadPluginsConfig(m.dataDir)
	if err != nil {
		return err
	}

	priority := basePriority
	for _, decl := range pc.EnabledServers() {
		env := make(map[string]string, len(decl.Env))
		for k, v := range decl.Env {
			env[k] = config.ResolveEnv(m.store, decl.ID, v)
		}

		tools, err := m.pm.Start(ctx, decl, env)
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[MCP] Skipping plugin '%s': %v", decl.ID, err)
			}
			continue
		}

		for _, tool := range tools {
			d := toolDescriptor(decl.ID, tool, priority, m.pm)
			if err := reg.Register(d); err != nil {
				if config.DebugLog != nil {
					config.DebugLog.Printf("[MCP] Skipping tool '%s': %v", d.Name, err)
				}
				continue
			}
			priority++
		}
	}
	return nil
}

// Shutdown stops all running plugin servers.
func (m *Manager) Shutdown(ctx context.Context) error {
	return m.pm.Shutdown(ctx)
}
