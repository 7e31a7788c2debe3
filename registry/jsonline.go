package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"aide/config"
)

// jsonLinePrefix introduces a tool call in the JSON-line protocol.
const jsonLinePrefix = "TOOL_CALL::"

// unknownToolPriority sorts calls for unregistered tools after every
// registered descriptor.
const unknownToolPriority = 1 << 30

// JSONLineExtractor recovers tool calls written one per line as
//
//	TOOL_CALL::{"tool": "<name>", "args": {...}}
//
// Args are flattened into the same raw-argument string the bracket
// protocol produces (ArityTwo joins its two fields with " | "), so
// dispatch validation is shared between protocols. A malformed line
// contributes zero calls and never aborts the others.
type JSONLineExtractor struct {
	reg *Registry
}

// NewJSONLineExtractor creates the JSON-line protocol strategy.
func NewJSONLineExtractor(reg *Registry) *JSONLineExtractor {
	return &JSONLineExtractor{reg: reg}
}

type jsonLineCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// Extract implements Extractor. Output order matches the bracket
// contract: priority ascending, then line order; unknown tools last.
func (e *JSONLineExtractor) Extract(text string) []ExtractedCall {
	type entry struct {
		call     ExtractedCall
		priority int
	}
	var entries []entry

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, jsonLinePrefix) {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, jsonLinePrefix))
		var jc jsonLineCall
		if err := json.Unmarshal([]byte(payload), &jc); err != nil {
			if config.Debug && config.DebugLog != nil {
				config.DebugLog.Printf("[Extractor] Skipping malformed tool call line: %v", err)
			}
			continue
		}
		if jc.Tool == "" {
			continue
		}

		d, ok := e.reg.Lookup(jc.Tool)
		if !ok {
			// Unknown tools pass through so the dispatcher can answer
			// conversationally.
			entries = append(entries, entry{
				call:     ExtractedCall{Tool: jc.Tool},
				priority: unknownToolPriority,
			})
			continue
		}

		entries = append(entries, entry{
			call:     ExtractedCall{Tool: d.Name, Raw: flattenArgs(d, jc.Args)},
			priority: d.Priority,
		})
	}

	if len(entries) == 0 {
		return nil
	}

	// Stable: same-priority calls keep line order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority < entries[j].priority
	})

	calls := make([]ExtractedCall, 0, len(entries))
	for _, en := range entries {
		calls = append(calls, en.call)
	}
	return calls
}

// flattenArgs converts a JSON args object into the raw-argument string
// the dispatcher expects for the descriptor's arity.
func flattenArgs(d *ToolDescriptor, args map[string]any) string {
	if d.PassRawArgs {
		if len(args) == 0 {
			return ""
		}
		b, err := json.Marshal(args)
		if err != nil {
			return ""
		}
		return string(b)
	}

	if len(d.ArgKeys) == 0 {
		return ""
	}

	if d.Arity == ArityTwo && len(d.ArgKeys) >= 2 {
		first := argString(args[d.ArgKeys[0]])
		second := argString(args[d.ArgKeys[1]])
		return first + " | " + second
	}

	return argString(args[d.ArgKeys[0]])
}

// argString renders one JSON argument value as the string a bracket
// marker would have carried.
func argString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case bool, float64:
		return fmt.Sprintf("%v", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
