package chat

import (
	"fmt"
	"strings"

	"aide/registry"
)

// BuildSystemPrompt generates the system prompt from the registered
// tools, teaching the model the invocation syntax of the active
// protocol. extra is the user's configured system prompt, appended
// after the tool instructions.
func BuildSystemPrompt(reg *registry.Registry, protocol string, extra string) string {
	var b strings.Builder

	b.WriteString("You are a helpful AI assistant controlling parts of a computer via specific tools.\n")
	b.WriteString("Use tools ONLY when necessary and explicitly requested or implied.\n")
	b.WriteString("Plan step-by-step for multi-tool tasks, waiting for results before proceeding.\n\n")

	b.WriteString("**Tool Invocation Format:**\n")
	switch protocol {
	case registry.ProtocolJSONLine:
		b.WriteString("On a new line, starting exactly with `TOOL_CALL::` followed immediately by a valid JSON object containing \"tool\" and \"args\":\n")
		b.WriteString("`TOOL_CALL::{\"tool\": \"tool_name\", \"args\": {\"arg_key\": \"value\", ...}}`\n\n")
	default:
		b.WriteString("Embed a marker in your response exactly as shown for each tool: `[MARKER: argument]`.\n")
		b.WriteString("Dual-argument tools separate their two fields with a literal `|`.\n\n")
	}

	b.WriteString("**Available Tools:**\n")
	for i, d := range reg.Descriptors() {
		fmt.Fprintf(&b, "%d. %s", i+1, d.Name)
		if d.Description != "" {
			fmt.Fprintf(&b, ": %s", d.Description)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "   Format: `%s`\n", invocationFormat(d, protocol))
	}
	b.WriteString("\n")

	b.WriteString("**Interaction Flow:**\n")
	b.WriteString("1. You respond. To execute tools, include the invocation in your response.\n")
	b.WriteString("2. You receive a 'Tool execution result...' message for each call.\n")
	b.WriteString("3. Only output an invocation to execute a tool, never to explain one.\n")
	b.WriteString("4. Use tool results for your final response or next action. Summarize results clearly.\n")

	if extra != "" {
		b.WriteString("\n")
		b.WriteString(extra)
		b.WriteString("\n")
	}

	return b.String()
}

// invocationFormat renders the per-tool usage line for the protocol.
func invocationFormat(d *registry.ToolDescriptor, protocol string) string {
	if protocol != registry.ProtocolJSONLine {
		if d.Usage != "" {
			return d.Usage
		}
		return fmt.Sprintf("[%s: argument]", d.Marker)
	}

	var args strings.Builder
	for i, key := range d.ArgKeys {
		if i > 0 {
			args.WriteString(", ")
		}
		fmt.Fprintf(&args, "%q: \"<%s>\"", key, key)
	}
	return fmt.Sprintf("TOOL_CALL::{\"tool\": %q, \"args\": {%s}}", d.Name, args.String())
}
