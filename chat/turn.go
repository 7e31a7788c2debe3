// Package chat owns the conversation state and the turn loop: it sends
// history to a model backend, extracts tool calls from the response,
// executes them, feeds results back, and repeats until the model stops
// requesting tools or the consecutive-call ceiling trips.
package chat

// Role labels the steps a turn emits to its caller.
type Role string

const (
	RoleUser          Role = "user"
	RoleAssistant     Role = "assistant"
	RoleToolExecution Role = "tool_execution"
	RoleToolResult    Role = "tool_result"
	RoleError         Role = "error"
	RoleSystemInfo    Role = "system_info"
)

// Step is one entry of a turn's result: what happened, in order.
// History entries are a different thing: they carry backend-facing role
// labels (tool results enter history under whatever role the active
// backend accepts).
type Step struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
