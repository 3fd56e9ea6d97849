// Package pd defines the in-memory patch tree that the compiler consumes: a
// Pd document holds patches and arrays keyed by global id, each patch holds
// nodes keyed by a local id plus the connections between their portlets.
//
// The tree is produced by an external parser (or by the patchfile package)
// and is treated as read-only by the compiler. The abstraction resolver never
// mutates its input; it builds a fresh tree out of clones.
package pd
