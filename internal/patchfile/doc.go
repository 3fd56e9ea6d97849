// Package patchfile reads and writes Pd documents serialized as YAML.
//
// The format mirrors the in-memory tree of package pd:
//
//	root: "0"
//	patches:
//	  "0":
//	    args: [440]
//	    nodes:
//	      "0": {type: osc~, args: [$1]}
//	      "1": {type: dac~}
//	    connections:
//	      - {source: {node: "0", portlet: 0}, sink: {node: "1", portlet: 0}}
//	arrays:
//	  "1": {args: [$0-table, 64]}
//
// It is a serialized tree, not the Pd text format.
package patchfile
