// Package mcp launches MCP tool servers declared in plugins.toml and
// registers the tools they advertise as extra descriptors. Servers run
// as child processes speaking MCP over stdio.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"aide/config"
)

// closeGrace bounds how long Stop waits for a client to close before
// killing the process.
const closeGrace = 1 * time.Second

// serverProcess tracks one running plugin server.
type serverProcess struct {
	id     string
	cmd    *exec.Cmd
	client *client.Client
	tools  []mcptypes.Tool
}

// ProcessManager owns the plugin server processes and their MCP
// clients.
type ProcessManager struct {
	mu        sync.RWMutex
	processes map[string]*serverProcess
}

func NewProcessManager() *ProcessManager {
	return &ProcessManager{
		processes: make(map[string]*serverProcess),
	}
}

// Start launches the declared server over stdio, performs the MCP
// handshake, and returns the tools it advertises. env entries are
// appended to the parent environment so PATH and friends survive.
func (pm *ProcessManager) Start(ctx context.Context, decl config.PluginServer, env map[string]string) ([]mcptypes.Tool, error) {
	pm.mu.Lock()
	if _, running := pm.processes[decl.ID]; running {
		pm.mu.Unlock()
		return nil, fmt.Errorf("plugin %s already running", decl.ID)
	}
	pm.mu.Unlock()

	var capturedCmd *exec.Cmd
	cmdFunc := func(ctx context.Context, command string, env []string, args []string) (*exec.Cmd, error) {
		cmd := exec.CommandContext(ctx, command, args...)
		cmd.Env = env
		capturedCmd = cmd
		return cmd, nil
	}

	mcpClient, err := client.NewStdioMCPClientWithOptions(
		decl.Command,
		mergedEnv(env),
		decl.Args,
		transport.WithCommandFunc(cmdFunc),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start plugin %s: %w", decl.ID, err)
	}

	initReq := mcptypes.InitializeRequest{
		Params: mcptypes.InitializeParams{
			ProtocolVersion: "2025-06-18",
			Capabilities:    mcptypes.ClientCapabilities{},
			ClientInfo: mcptypes.Implementation{
				Name:    "aide",
				Version: "1.0.0",
			},
		},
	}
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		mcpClient.Close()
		return nil, fmt.Errorf("failed to initialize plugin %s: %w", decl.ID, err)
	}

	toolsResult, err := mcpClient.ListTools(ctx, mcptypes.ListToolsRequest{})
	if err != nil {
		mcpClient.Close()
		return nil, fmt.Errorf("failed to list tools for %s: %w", decl.ID, err)
	}

	if config.DebugLog != nil {
		pid := 0
		if capturedCmd != nil && capturedCmd.Process != nil {
			pid = capturedCmd.Process.Pid
		}
		config.DebugLog.Printf("[MCP] Started plugin '%s' (PID %d): %d tools", decl.ID, pid, len(toolsResult.Tools))
	}

	pm.mu.Lock()
	pm.processes[decl.ID] = &serverProcess{
		id:     decl.ID,
		cmd:    capturedCmd,
		client: mcpClient,
		tools:  toolsResult.Tools,
	}
	pm.mu.Unlock()

	return toolsResult.Tools, nil
}

// CallTool invokes one tool on a running server.
func (pm *ProcessManager) CallTool(ctx context.Context, pluginID, toolName string, args map[string]any) (*mcptypes.CallToolResult, error) {
	pm.mu.RLock()
	proc, ok := pm.processes[pluginID]
	pm.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("plugin %s not running", pluginID)
	}

	return proc.client.CallTool(ctx, mcptypes.CallToolRequest{
		Params: mcptypes.CallToolParams{
			Name:      toolName,
			Arguments: args,
		},
	})
}

// Tools returns the advertised tools of a running server.
func (pm *ProcessManager) Tools(pluginID string) ([]mcptypes.Tool, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	proc, ok := pm.processes[pluginID]
	if !ok {
		return nil, fmt.Errorf("plugin %s not running", pluginID)
	}
	return proc.tools, nil
}

// Stop closes one server's client, killing the process when the close
// hangs past its grace period.
func (pm *ProcessManager) Stop(ctx context.Context, pluginID string) error {
	pm.mu.Lock()
	proc, ok := pm.processes[pluginID]
	if !ok {
		pm.mu.Unlock()
		return fmt.Errorf("plugin %s not found", pluginID)
	}
	delete(pm.processes, pluginID)
	pm.mu.Unlock()

	closed := false
	if proc.client != nil {
		closeCtx, cancel := context.WithTimeout(ctx, closeGrace)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- proc.client.Close()
		}()

		select {
		case err := <-done:
			closed = err == nil
		case <-closeCtx.Done():
		}
	}

	if !closed && proc.cmd != nil && proc.cmd.Process != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[MCP] Stop: killing plugin '%s' (PID %d)", pluginID, proc.cmd.Process.Pid)
		}
		if err := proc.cmd.Process.Kill(); err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[MCP] Stop: kill plugin '%s': %v", pluginID, err)
			}
		}
	}

	return nil
}

// Shutdown stops every running server in parallel.
func (pm *ProcessManager) Shutdown(ctx context.Context) error {
	pm.mu.Lock()
	ids := make([]string, 0, len(pm.processes))
	for id := range pm.processes {
		ids = append(ids, id)
	}
	pm.mu.Unlock()

	var wg sync.WaitGroup
	errc := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := pm.Stop(ctx, id); err != nil {
				errc <- err
			}
		}(id)
	}
	wg.Wait()
	close(errc)

	var errs []error
	for err := range errc {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("plugin shutdown errors: %v", errs)
	}
	return nil
}

// mergedEnv starts from the current process environment so PATH and
// other system variables survive, then appends the plugin's own.
func mergedEnv(extra map[string]string) []string {
	env := os.Environ()
	for k, v := range extra {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
