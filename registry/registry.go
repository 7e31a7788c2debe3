package registry

import (
	"fmt"
	"regexp"
	"sort"

	"aide/config"
)

// Registry holds the registered tool descriptors. Registration happens
// at process start; lookups and ordered scans are read-only afterwards,
// so no locking is needed.
type Registry struct {
	byName  map[string]*ToolDescriptor
	ordered []*ToolDescriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]*ToolDescriptor),
	}
}

// Register adds a descriptor. Duplicate names are rejected. A detection
// pattern that fails to compile does not reject the descriptor: it is
// retained for dispatch (JSON protocol, direct execution) but contributes
// zero calls to bracket extraction.
func (r *Registry) Register(d ToolDescriptor) error {
	if d.Name == "" {
		return fmt.Errorf("tool descriptor has no name")
	}
	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("tool %q is already registered", d.Name)
	}

	if d.Pattern != "" {
		re, err := regexp.Compile(d.Pattern)
		if err != nil {
			if config.Debug && config.DebugLog != nil {
				config.DebugLog.Printf("[Registry] Pattern for tool %q failed to compile, tool disabled for extraction: %v", d.Name, err)
			}
		} else {
			d.regex = re
		}
	}

	stored := d
	r.byName[d.Name] = &stored
	r.ordered = append(r.ordered, &stored)

	// Priority ascending; stable, so same-priority tools keep
	// registration order.
	sort.SliceStable(r.ordered, func(i, j int) bool {
		return r.ordered[i].Priority < r.ordered[j].Priority
	})

	return nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*ToolDescriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Descriptors returns all descriptors ordered by ascending priority.
// The returned slice is shared; callers must not mutate it.
func (r *Registry) Descriptors() []*ToolDescriptor {
	return r.ordered
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.ordered)
}
