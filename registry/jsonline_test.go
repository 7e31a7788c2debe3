package registry

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestJSONLineExtract(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []ExtractedCall
	}{
		{
			name:     "no tool call lines",
			text:     "Just a normal answer.\nAcross two lines.",
			expected: nil,
		},
		{
			name:     "single one-arity call",
			text:     `TOOL_CALL::{"tool": "search", "args": {"query": "weather in oslo"}}`,
			expected: []ExtractedCall{{Tool: "search", Raw: "weather in oslo"}},
		},
		{
			name: "two-arity args joined for shared validation",
			text: `TOOL_CALL::{"tool": "fs_write", "args": {"relative_path": "notes.txt", "content": "hello world"}}`,
			expected: []ExtractedCall{
				{Tool: "fs_write", Raw: "notes.txt | hello world"},
			},
		},
		{
			name: "calls sorted by priority then line order",
			text: `TOOL_CALL::{"tool": "search", "args": {"query": "b"}}
TOOL_CALL::{"tool": "app", "args": {"app_name": "notepad"}}
TOOL_CALL::{"tool": "search", "args": {"query": "a"}}`,
			expected: []ExtractedCall{
				{Tool: "app", Raw: "notepad"},
				{Tool: "search", Raw: "b"},
				{Tool: "search", Raw: "a"},
			},
		},
		{
			name: "unknown tool passes through empty and sorts last",
			text: `TOOL_CALL::{"tool": "teleport", "args": {"destination": "mars"}}
TOOL_CALL::{"tool": "search", "args": {"query": "weather"}}`,
			expected: []ExtractedCall{
				{Tool: "search", Raw: "weather"},
				{Tool: "teleport", Raw: ""},
			},
		},
		{
			name: "malformed line skipped without aborting others",
			text: `TOOL_CALL::{"tool": "search", "args": {"query": "ok"}}
TOOL_CALL::{not even json}
TOOL_CALL::{"tool": "app", "args": {"app_name": "code"}}`,
			expected: []ExtractedCall{
				{Tool: "app", Raw: "code"},
				{Tool: "search", Raw: "ok"},
			},
		},
		{
			name:     "prefix must start the line",
			text:     `I could call TOOL_CALL::{"tool": "search", "args": {"query": "x"}} inline`,
			expected: nil,
		},
		{
			name:     "leading whitespace before prefix tolerated",
			text:     `   TOOL_CALL::{"tool": "app", "args": {"app_name": "notepad"}}`,
			expected: []ExtractedCall{{Tool: "app", Raw: "notepad"}},
		},
		{
			name:     "missing args yields empty raw",
			text:     `TOOL_CALL::{"tool": "sysinfo"}`,
			expected: []ExtractedCall{{Tool: "sysinfo", Raw: ""}},
		},
		{
			name:     "numeric argument rendered as text",
			text:     `TOOL_CALL::{"tool": "sysinfo", "args": {"param": 42}}`,
			expected: []ExtractedCall{{Tool: "sysinfo", Raw: "42"}},
		},
		{
			name:     "empty tool name skipped",
			text:     `TOOL_CALL::{"tool": "", "args": {}}`,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t)
			ex := NewJSONLineExtractor(reg)

			got := ex.Extract(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestJSONLineExtractPassRawArgs(t *testing.T) {
	reg := New()
	if err := reg.Register(ToolDescriptor{
		Name:        "files.read",
		Pattern:     BracketPattern("FILES.READ"),
		Priority:    100,
		Arity:       ArityOne,
		ArgKeys:     []string{"path"},
		PassRawArgs: true,
	}); err != nil {
		t.Fatal(err)
	}

	ex := NewJSONLineExtractor(reg)
	got := ex.Extract(`TOOL_CALL::{"tool": "files.read", "args": {"path": "a.txt", "offset": 10}}`)

	if len(got) != 1 {
		t.Fatalf("expected 1 call, got %d", len(got))
	}
	if got[0].Tool != "files.read" {
		t.Errorf("expected tool 'files.read', got %q", got[0].Tool)
	}
	// Raw must carry the whole args object for schema-driven handlers.
	want := map[string]any{"path": "a.txt", "offset": float64(10)}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(got[0].Raw), &decoded); err != nil {
		t.Fatalf("raw argument is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(decoded, want) {
		t.Errorf("expected args %v, got %v", want, decoded)
	}
}
