// Package dspgraph is the flat dataflow graph handed to code generation
// backends. Every node declares typed inlets and outlets, and connections are
// stored twice: as sinks on the source node and as sources on the sink node.
//
// The graph carries no nesting information. Subpatches, inlets and outlets
// have been dissolved by the compiler before a graph is returned.
package dspgraph
