package registry

import (
	"reflect"
	"testing"
)

// newTestRegistry registers a small descriptor set mirroring the default
// marker protocol: two ONE-arity tools with distinct priorities, a
// defaulted tool, and a TWO-arity tool.
func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	reg := New()
	descriptors := []ToolDescriptor{
		{
			Name:     "app",
			Marker:   "OPEN_APP",
			Pattern:  BracketPattern("OPEN_APP"),
			Priority: 10,
			Arity:    ArityOne,
			ArgKeys:  []string{"app_name"},
			Usage:    "[OPEN_APP: application_name]",
		},
		{
			Name:     "search",
			Marker:   "SEARCH",
			Pattern:  BracketPattern("SEARCH"),
			Priority: 20,
			Arity:    ArityOne,
			ArgKeys:  []string{"query"},
			Usage:    "[SEARCH: query]",
		},
		{
			Name:       "sysinfo",
			Marker:     "SYSINFO",
			Pattern:    BracketPattern("SYSINFO"),
			Priority:   30,
			Arity:      ArityOne,
			ArgKeys:    []string{"param"},
			Usage:      "[SYSINFO: param]",
			DefaultArg: "basic",
		},
		{
			Name:     "fs_write",
			Marker:   "FS_WRITE",
			Pattern:  BracketPattern("FS_WRITE"),
			Priority: 42,
			Arity:    ArityTwo,
			ArgKeys:  []string{"relative_path", "content"},
			Usage:    "[FS_WRITE: relative_path | content]",
		},
	}
	for _, d := range descriptors {
		if err := reg.Register(d); err != nil {
			t.Fatalf("failed to register %s: %v", d.Name, err)
		}
	}
	return reg
}

func TestRegistryRegister(t *testing.T) {
	reg := New()

	err := reg.Register(ToolDescriptor{Name: "app", Pattern: BracketPattern("OPEN_APP"), Priority: 10})
	if err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	err = reg.Register(ToolDescriptor{Name: "app", Pattern: BracketPattern("OPEN_APP"), Priority: 11})
	if err == nil {
		t.Error("expected error registering duplicate name, got nil")
	}

	err = reg.Register(ToolDescriptor{Pattern: BracketPattern("X")})
	if err == nil {
		t.Error("expected error registering unnamed descriptor, got nil")
	}
}

func TestRegistryDescriptorsOrder(t *testing.T) {
	reg := New()
	// Register out of priority order, with a same-priority pair.
	for _, d := range []ToolDescriptor{
		{Name: "c", Priority: 30},
		{Name: "a", Priority: 10},
		{Name: "b1", Priority: 20},
		{Name: "b2", Priority: 20},
	} {
		if err := reg.Register(d); err != nil {
			t.Fatalf("register %s: %v", d.Name, err)
		}
	}

	var names []string
	for _, d := range reg.Descriptors() {
		names = append(names, d.Name)
	}
	want := []string{"a", "b1", "b2", "c"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected order %v, got %v", want, names)
	}
}

func TestBracketExtract(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []ExtractedCall
	}{
		{
			name:     "no markers",
			text:     "Sure, here is a plain answer with no tools.",
			expected: nil,
		},
		{
			name:     "single marker",
			text:     "Let me open that. [OPEN_APP: notepad]",
			expected: []ExtractedCall{{Tool: "app", Raw: "notepad"}},
		},
		{
			name:     "argument whitespace trimmed",
			text:     "[OPEN_APP:    spotify   ]",
			expected: []ExtractedCall{{Tool: "app", Raw: "spotify"}},
		},
		{
			name: "two tools in priority order",
			text: "[OPEN_APP: notepad] and [SEARCH: weather]",
			expected: []ExtractedCall{
				{Tool: "app", Raw: "notepad"},
				{Tool: "search", Raw: "weather"},
			},
		},
		{
			name: "priority wins over text position",
			text: "[SEARCH: weather today] first, then [OPEN_APP: notepad]",
			expected: []ExtractedCall{
				{Tool: "app", Raw: "notepad"},
				{Tool: "search", Raw: "weather today"},
			},
		},
		{
			name: "same tool matches keep text order",
			text: "[SEARCH: first query] and later [SEARCH: second query]",
			expected: []ExtractedCall{
				{Tool: "search", Raw: "first query"},
				{Tool: "search", Raw: "second query"},
			},
		},
		{
			name: "dual argument payload is kept raw",
			text: "[FS_WRITE: notes.txt | hello world]",
			expected: []ExtractedCall{
				{Tool: "fs_write", Raw: "notes.txt | hello world"},
			},
		},
		{
			name:     "unknown marker ignored",
			text:     "[TELEPORT: mars]",
			expected: nil,
		},
		{
			name: "marker embedded in prose",
			text: "I'll check the system now.\n[SYSINFO: network]\nGive me a second.",
			expected: []ExtractedCall{
				{Tool: "sysinfo", Raw: "network"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t)
			ex := NewBracketExtractor(reg)

			got := ex.Extract(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestBracketExtractIdempotent(t *testing.T) {
	reg := newTestRegistry(t)
	ex := NewBracketExtractor(reg)
	text := "[SEARCH: go generics] then [OPEN_APP: code] then [FS_WRITE: a.txt | b]"

	first := ex.Extract(text)
	second := ex.Extract(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction not idempotent: first %v, second %v", first, second)
	}
	if len(first) != 3 {
		t.Errorf("expected 3 calls, got %d", len(first))
	}
}

func TestBracketExtractClaimedSpans(t *testing.T) {
	// The low-priority pattern would match inside the span the
	// high-priority descriptor already claimed; the occupancy set must
	// prevent the re-match.
	reg := New()
	if err := reg.Register(ToolDescriptor{
		Name:     "wrapper",
		Pattern:  `\[WRAP:\s*([^\]]+)\]`,
		Priority: 1,
	}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(ToolDescriptor{
		Name:     "greedy",
		Pattern:  `WRAP:\s*(\w+)`,
		Priority: 2,
	}); err != nil {
		t.Fatal(err)
	}

	ex := NewBracketExtractor(reg)
	got := ex.Extract("[WRAP: payload] and a bare WRAP: other")

	want := []ExtractedCall{
		{Tool: "wrapper", Raw: "payload"},
		{Tool: "greedy", Raw: "other"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBracketExtractNoCaptureGroup(t *testing.T) {
	reg := New()
	if err := reg.Register(ToolDescriptor{
		Name:     "ping",
		Pattern:  `\[PING\]`,
		Priority: 5,
	}); err != nil {
		t.Fatal(err)
	}

	ex := NewBracketExtractor(reg)
	got := ex.Extract("are you there? [PING]")

	want := []ExtractedCall{{Tool: "ping", Raw: ""}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBracketExtractBadPatternIsolated(t *testing.T) {
	reg := New()
	if err := reg.Register(ToolDescriptor{
		Name:     "broken",
		Pattern:  `\[BAD:(`,
		Priority: 1,
	}); err != nil {
		t.Fatalf("registration must retain a descriptor with a bad pattern: %v", err)
	}
	if err := reg.Register(ToolDescriptor{
		Name:     "search",
		Pattern:  BracketPattern("SEARCH"),
		Priority: 20,
	}); err != nil {
		t.Fatal(err)
	}

	ex := NewBracketExtractor(reg)
	got := ex.Extract("[BAD:(x] and [SEARCH: weather]")

	want := []ExtractedCall{{Tool: "search", Raw: "weather"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNewExtractorSelectsProtocol(t *testing.T) {
	reg := newTestRegistry(t)

	if _, ok := NewExtractor(ProtocolBracket, reg).(*BracketExtractor); !ok {
		t.Error("expected bracket protocol to select BracketExtractor")
	}
	if _, ok := NewExtractor(ProtocolJSONLine, reg).(*JSONLineExtractor); !ok {
		t.Error("expected jsonline protocol to select JSONLineExtractor")
	}
	if _, ok := NewExtractor("nonsense", reg).(*BracketExtractor); !ok {
		t.Error("expected unknown protocol to fall back to BracketExtractor")
	}
}
