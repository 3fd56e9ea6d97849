// Package compiler flattens a fully resolved patch tree into a DSP graph.
//
// Compilation runs in distinct passes:
//
//  1. Node building: every object of every patch becomes a graph node named
//     "n_<patchId>_<localId>". Builders flagged as no-op are skipped.
//  2. Proxy elimination: each patch connection is resolved through subpatch
//     boundaries into connections between real nodes.
//  3. Composition: resolved connections are grouped by sink inlet. Several
//     signal sources get a summing node, message sources reaching a signal
//     inlet go through a routing node, and unconnected signal inlets that
//     accept messages get a constant signal source.
//  4. Cleanup: subpatch, inlet and outlet nodes are removed.
//
// Arrays are materialized separately, keyed by their resolved name.
package compiler
