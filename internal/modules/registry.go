package modules

import (
	"fmt"
	"sort"
	"sync"
)

// CategoryUniversal is the reserved pseudo-category that aggregates every
// module across every category.
const CategoryUniversal = "universal"

// Registry is the process-wide catalog of live module instances, keyed by
// module id. It is constructed once at startup and injected into the
// execution engine and the agent; there is no package-level singleton.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Module
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Module)}
}

// Register adds a module instance. Registering a duplicate or empty id is
// an error.
func (r *Registry) Register(m Module) error {
	meta := m.Metadata()
	if meta.ID == "" {
		return fmt.Errorf("module has empty id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[meta.ID]; exists {
		return fmt.Errorf("module %q already registered", meta.ID)
	}
	r.entries[meta.ID] = m
	return nil
}

// Get returns the module registered under id.
func (r *Registry) Get(id string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.entries[id]
	return m, ok
}

// All returns every registered module sorted by descending priority,
// then id.
func (r *Registry) All() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Module, 0, len(r.entries))
	for _, m := range r.entries {
		out = append(out, m)
	}
	sortModules(out)
	return out
}

// ByCategory returns the modules in one category, sorted by descending
// priority then id. The reserved CategoryUniversal returns every module.
func (r *Registry) ByCategory(category string) []Module {
	if category == CategoryUniversal {
		return r.All()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Module
	for _, m := range r.entries {
		if m.Metadata().Category == category {
			out = append(out, m)
		}
	}
	sortModules(out)
	return out
}

// Categories returns the sorted list of distinct module categories.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, m := range r.entries {
		seen[m.Metadata().Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func sortModules(ms []Module) {
	sort.Slice(ms, func(i, j int) bool {
		a, b := ms[i].Metadata(), ms[j].Metadata()
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.ID < b.ID
	})
}
