package tools

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// OpenApp launches an application by name using the platform's
// conventional mechanism. The launched process is detached; the
// handler reports the attempt, not the application's fate.
func OpenApp(ctx context.Context, appName, _ string) (string, error) {
	name := strings.TrimSpace(appName)
	if err := launchApp(ctx, name); err != nil {
		return fmt.Sprintf("Error opening application %s: %v", name, err), nil
	}
	return fmt.Sprintf("Attempted to open application: %s", name), nil
}

func launchApp(ctx context.Context, name string) error {
	switch runtime.GOOS {
	case "windows":
		// "start" resolves app names and file associations itself.
		return exec.CommandContext(ctx, "cmd", "/c", "start", "", name).Start()
	case "darwin":
		return exec.CommandContext(ctx, "open", "-a", name).Start()
	default:
		path, err := exec.LookPath(name)
		if err != nil {
			return fmt.Errorf("application %q not found in PATH", name)
		}
		// The application must outlive the tool call, so the command
		// is not bound to ctx.
		cmd := exec.Command(path)
		if err := cmd.Start(); err != nil {
			return err
		}
		return cmd.Process.Release()
	}
}
