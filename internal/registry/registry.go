package registry

import (
	"fmt"
	"slices"
	"strings"
)

// Entry is either a concrete builder or an alias to another type name.
type Entry struct {
	Builder *Builder
	AliasTo string
}

// Entries collects registrations before a Registry is built.
type Entries map[string]Entry

// Add registers a concrete builder.
func (e Entries) Add(nodeType string, b *Builder) {
	if _, exists := e[nodeType]; exists {
		panic(fmt.Sprintf("node type '%s' already registered", nodeType))
	}
	e[nodeType] = Entry{Builder: b}
}

// Alias registers nodeType as another name for target.
func (e Entries) Alias(nodeType, target string) {
	if _, exists := e[nodeType]; exists {
		panic(fmt.Sprintf("node type '%s' already registered", nodeType))
	}
	e[nodeType] = Entry{AliasTo: target}
}

// Merge copies other into e, letting other win on conflicts.
func (e Entries) Merge(other Entries) {
	for name, entry := range other {
		e[name] = entry
	}
}

// Resolved is the outcome of a registry lookup.
type Resolved struct {
	// Type is the concrete type name at the end of the alias chain.
	Type    string
	Builder *Builder
}

// Registry is an immutable, alias-flattened lookup table.
type Registry struct {
	table map[string]Resolved
}

// New flattens entries into a Registry.
func New(entries Entries) (*Registry, error) {
	r := &Registry{table: make(map[string]Resolved, len(entries))}
	var errs []string

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		resolved, err := follow(entries, name)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		r.table[name] = resolved
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return r, nil
}

// follow walks an alias chain to its concrete builder.
func follow(entries Entries, name string) (Resolved, error) {
	chain := []string{name}
	seen := map[string]bool{name: true}
	current := name

	for {
		entry, ok := entries[current]
		if !ok {
			return Resolved{}, fmt.Errorf("alias '%s' points to unknown type '%s'", name, current)
		}
		if entry.AliasTo == "" {
			if entry.Builder == nil {
				return Resolved{}, fmt.Errorf("type '%s' has neither builder nor alias", current)
			}
			return Resolved{Type: current, Builder: entry.Builder}, nil
		}
		current = entry.AliasTo
		chain = append(chain, current)
		if seen[current] {
			return Resolved{}, fmt.Errorf("alias cycle detected: %s", strings.Join(chain, " -> "))
		}
		seen[current] = true
	}
}

// Resolve looks a node type up, following aliases.
func (r *Registry) Resolve(nodeType string) (Resolved, bool) {
	resolved, ok := r.table[nodeType]
	return resolved, ok
}

// Has reports whether nodeType resolves to a builder.
func (r *Registry) Has(nodeType string) bool {
	_, ok := r.table[nodeType]
	return ok
}

// Types returns every registered name, aliases included, sorted.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.table))
	for name := range r.table {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
