package tools

import (
	"context"
	"strings"
	"testing"

	"aide/registry"
)

func TestRegisterDefaultsTable(t *testing.T) {
	reg := registry.New()
	if err := RegisterDefaults(reg, Deps{}); err != nil {
		t.Fatalf("RegisterDefaults() error = %v", err)
	}

	wantOrder := []string{
		"app", "search", "sysinfo",
		"fs_list", "fs_read", "fs_write", "fs_mkdir", "fs_find",
		"email", "memory_store", "memory_query",
	}
	descriptors := reg.Descriptors()
	if len(descriptors) != len(wantOrder) {
		t.Fatalf("registered %d tools, want %d", len(descriptors), len(wantOrder))
	}
	for i, d := range descriptors {
		if d.Name != wantOrder[i] {
			t.Errorf("descriptor[%d] = %q, want %q", i, d.Name, wantOrder[i])
		}
		if d.Handler == nil {
			t.Errorf("tool %q has no handler", d.Name)
		}
		if d.Compiled() == nil {
			t.Errorf("tool %q has no compiled pattern", d.Name)
		}
	}

	for name, wantArity := range map[string]registry.Arity{
		"fs_write": registry.ArityTwo,
		"fs_find":  registry.ArityTwo,
		"fs_read":  registry.ArityOne,
		"email":    registry.ArityOne,
	} {
		d, ok := reg.Lookup(name)
		if !ok {
			t.Fatalf("tool %q not registered", name)
		}
		if d.Arity != wantArity {
			t.Errorf("tool %q arity = %d, want %d", name, d.Arity, wantArity)
		}
	}

	if d, _ := reg.Lookup("sysinfo"); d.DefaultArg != "basic" {
		t.Errorf("sysinfo DefaultArg = %q, want basic", d.DefaultArg)
	}
}

func TestRegisterDefaultsRejectsDuplicates(t *testing.T) {
	reg := registry.New()
	if err := RegisterDefaults(reg, Deps{}); err != nil {
		t.Fatalf("first RegisterDefaults() error = %v", err)
	}
	if err := RegisterDefaults(reg, Deps{}); err == nil {
		t.Error("second RegisterDefaults() succeeded, want duplicate error")
	}
}

func TestRegisterDefaultsNilDepsReportUnavailable(t *testing.T) {
	reg := registry.New()
	if err := RegisterDefaults(reg, Deps{}); err != nil {
		t.Fatalf("RegisterDefaults() error = %v", err)
	}
	dispatcher := registry.NewDispatcher(reg)
	ctx := context.Background()

	tests := []struct {
		tool string
		raw  string
		want string
	}{
		{"fs_list", ".", "Error: Workspace directory not available."},
		{"search", "some query", "Error: Web search is not configured."},
		{"memory_store", "a fact", "Error: Memory database is not available for storing."},
		{"email", "to:a@example.com", "Error: Email is not configured."},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			got := dispatcher.Execute(ctx, registry.ExtractedCall{Tool: tt.tool, Raw: tt.raw})
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("Execute(%s) = %q, want prefix %q", tt.tool, got, tt.want)
			}
		})
	}
}
