package registry

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"aide/config"
)

// Dispatcher resolves extracted calls against the registry and executes
// their handlers. Every failure mode is returned as conversational text
// (errors are data here): results flow back into the model conversation,
// so nothing the dispatcher does may abort the enclosing turn.
type Dispatcher struct {
	reg *Registry
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Execute runs one extracted call and returns the result text. Unknown
// tools, argument validation failures, handler errors, and handler
// panics all come back as text.
func (dp *Dispatcher) Execute(ctx context.Context, call ExtractedCall) (result string) {
	d, ok := dp.reg.Lookup(call.Tool)
	if !ok {
		return fmt.Sprintf("Unknown tool type: %s", call.Tool)
	}

	raw := strings.TrimSpace(call.Raw)
	var arg1, arg2 string

	switch d.Arity {
	case ArityTwo:
		if !strings.Contains(raw, "|") {
			return fmt.Sprintf("Error: Invalid arguments for %s. Usage: %s. Got: '%s'", d.Name, d.Usage, call.Raw)
		}
		parts := strings.SplitN(raw, "|", 2)
		arg1 = strings.TrimSpace(parts[0])
		arg2 = strings.TrimSpace(parts[1])
		if arg1 == "" {
			return fmt.Sprintf("Error: Path/start_path argument cannot be empty for %s.", d.Name)
		}

	default:
		arg1 = raw
		if arg1 == "" {
			if d.DefaultArg != "" {
				arg1 = d.DefaultArg
			} else {
				return fmt.Sprintf("Error: Missing argument for tool %s.", d.Name)
			}
		}
	}

	if d.Handler == nil {
		return fmt.Sprintf("Error: tool '%s' has no handler.", d.Name)
	}

	// A panicking handler must never take down the turn loop.
	defer func() {
		if r := recover(); r != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Dispatcher] Tool %q panicked: %v\n%s", d.Name, r, debug.Stack())
			}
			result = fmt.Sprintf("Error: An unexpected error occurred while executing tool '%s'.", d.Name)
		}
	}()

	out, err := d.Handler(ctx, arg1, arg2)
	if err != nil {
		if config.Debug && config.DebugLog != nil {
			config.DebugLog.Printf("[Dispatcher] Tool %q failed: %v", d.Name, err)
		}
		return fmt.Sprintf("Error: tool '%s' failed: %v", d.Name, err)
	}

	return out
}
