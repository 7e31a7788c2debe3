package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"aide/registry"
)

// toolCaller is the slice of ProcessManager the call handler needs.
type toolCaller interface {
	CallTool(ctx context.Context, pluginID, toolName string, args map[string]any) (*mcptypes.CallToolResult, error)
}

// toolDescriptor converts one advertised plugin tool into a registry
// descriptor. The registry name is "<pluginID>.<tool>"; the marker is
// the same name upper-cased with separators folded to underscores.
func toolDescriptor(pluginID string, tool mcptypes.Tool, priority int, caller toolCaller) registry.ToolDescriptor {
	name := pluginID + "." + tool.Name
	marker := markerFor(name)
	argKey := argKeyFor(tool.InputSchema)

	return registry.ToolDescriptor{
		Name:        name,
		Marker:      marker,
		Description: tool.Description,
		Pattern:     registry.BracketPattern(marker),
		Priority:    priority,
		Arity:       registry.ArityOne,
		ArgKeys:     []string{argKey},
		Usage:       fmt.Sprintf("[%s: %s]", marker, argKey),
		PassRawArgs: true,
		Handler:     callHandler(caller, pluginID, tool.Name, argKey),
	}
}

// markerFor builds the bracket marker for a namespaced tool name.
func markerFor(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(strings.ToUpper(name))
}

// argKeyFor picks the argument key raw bracket arguments map to: the
// first required schema property, or "input" when the schema requires
// nothing.
func argKeyFor(schema mcptypes.ToolInputSchema) string {
	if len(schema.Required) > 0 {
		return schema.Required[0]
	}
	return "input"
}

// callHandler adapts one plugin tool to the registry handler contract.
// A JSON object argument passes through as the tool's arguments;
// anything else is wrapped under the tool's argument key.
func callHandler(caller toolCaller, pluginID, toolName, argKey string) registry.Handler {
	return func(ctx context.Context, arg1, arg2 string) (string, error) {
		args := map[string]any{}
		if err := json.Unmarshal([]byte(arg1), &args); err != nil {
			args = map[string]any{argKey: arg1}
		}

		result, err := caller.CallTool(ctx, pluginID, toolName, args)
		if err != nil {
			return "", fmt.Errorf("plugin tool %s.%s: %w", pluginID, toolName, err)
		}
		return flattenResult(result), nil
	}
}

// flattenResult renders a tool result as conversation text: text blocks
// joined, anything else marshaled whole.
func flattenResult(result *mcptypes.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return "Tool executed successfully (no output)"
	}

	var texts []string
	for _, block := range result.Content {
		if tc, ok := mcptypes.AsTextContent(block); ok {
			texts = append(texts, tc.Text)
		}
	}
	if len(texts) > 0 {
		return strings.Join(texts, "\n")
	}

	raw, err := json.Marshal(result.Content)
	if err != nil {
		return fmt.Sprintf("Tool result (marshal error): %v", err)
	}
	return string(raw)
}
