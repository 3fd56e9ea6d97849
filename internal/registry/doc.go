// Package registry maps node type names to builders.
//
// A builder is a capability record: it knows how to turn a node's literal
// arguments into named args, which typed inlets and outlets the node exposes,
// and how message connections landing on its signal inlets are treated.
//
// Entries are either concrete builders or aliases to another type name.
// Alias chains are flattened once, when the Registry is constructed, so that
// a lookup is a single map access. Chains that loop or end on an unknown type
// are rejected at construction time.
package registry
