// Package abstraction expands abstractions, reusable patches referenced by
// type name, into subpatches of a host document.
//
// Instantiate renumbers every patch and array of the host into a fresh id
// space, then walks the patch tree from the root. Node types unknown to the
// registry are treated as abstraction names and fetched through a Loader,
// once per name. Every instance gets its own renumbered copy of the loaded
// document, so two instances never share patches or arrays.
//
// Unknown types and malformed abstraction sources are collected across the
// whole tree and reported in the Result. Malformed input (dangling patch
// references, several root patches) aborts with an error wrapping
// ErrInvariant.
package abstraction
