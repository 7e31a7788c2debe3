// Package registry implements the tool-call protocol: a priority-ordered
// table of tool descriptors, extraction of invocation markers from model
// output, and dispatch of extracted calls to their handlers.
package registry

import (
	"context"
	"fmt"
	"regexp"
)

// Arity is the number of fields a tool expects in its raw argument.
type Arity int

const (
	// ArityOne passes the trimmed raw argument straight through.
	ArityOne Arity = 1
	// ArityTwo splits the raw argument at the first '|' into two
	// trimmed fields; the first field must be non-empty.
	ArityTwo Arity = 2
)

// Handler executes one tool call. arg2 is empty for ArityOne tools.
// Returned errors become conversational error text; they never abort
// the turn.
type Handler func(ctx context.Context, arg1, arg2 string) (string, error)

// ToolDescriptor is the static registration record for one tool.
// Descriptors are immutable after registration; the registry resolves
// extraction order by Priority (lower first).
type ToolDescriptor struct {
	// Name is the unique registry key ("app", "fs_write", ...).
	Name string
	// Marker is the bracket-protocol tag ("OPEN_APP", "FS_WRITE", ...).
	Marker string
	// Description tells the model what the tool does; quoted in the
	// generated system prompt.
	Description string
	// Pattern is the detection regex with exactly one capture group
	// holding the raw argument. Usually BracketPattern(Marker).
	Pattern string
	// Priority orders extraction; lower values are scanned first.
	Priority int
	Arity    Arity
	// ArgKeys names the JSON-protocol argument fields, in order.
	// ArityTwo descriptors list exactly two keys.
	ArgKeys []string
	// Usage is quoted in validation error texts, e.g.
	// "[FS_WRITE: relative_path | content]".
	Usage string
	// DefaultArg substitutes for an empty argument instead of a
	// validation error (sysinfo defaults to "basic").
	DefaultArg string
	// PassRawArgs makes the JSON protocol re-marshal the args object
	// into the raw argument unmodified instead of flattening it through
	// ArgKeys. Used by plugin tools whose handlers take the schema
	// arguments whole.
	PassRawArgs bool
	Handler     Handler

	regex *regexp.Regexp
}

// BracketPattern builds the standard detection pattern for a bracket
// marker: [MARKER: argument] with everything up to the closing bracket
// captured.
func BracketPattern(marker string) string {
	return fmt.Sprintf(`\[%s:\s*([^\]]+)\]`, regexp.QuoteMeta(marker))
}

// Compiled returns the compiled detection pattern, or nil if the
// pattern failed to compile at registration.
func (d *ToolDescriptor) Compiled() *regexp.Regexp {
	return d.regex
}
