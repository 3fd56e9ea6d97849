package dspgraph

import (
	"fmt"
	"slices"
	"strconv"
)

// Graph is a flat set of nodes keyed by id.
type Graph struct {
	Nodes map[string]*Node
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// AddNode inserts n. Node ids are unique; adding an existing id is an error.
func (g *Graph) AddNode(n *Node) error {
	if _, ok := g.Nodes[n.ID]; ok {
		return fmt.Errorf("node already exists: %s", n.ID)
	}
	g.Nodes[n.ID] = n
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.Nodes[id]
	return n, ok
}

// Connect creates a directed edge from an outlet to an inlet. Both nodes and
// both portlets must exist. Connecting the same pair twice is a no-op.
func (g *Graph) Connect(source, sink Endpoint) error {
	sourceNode, ok := g.Nodes[source.NodeID]
	if !ok {
		return fmt.Errorf("source node not found: %s", source.NodeID)
	}
	sinkNode, ok := g.Nodes[sink.NodeID]
	if !ok {
		return fmt.Errorf("sink node not found: %s", sink.NodeID)
	}
	if _, ok := sourceNode.Outlets[source.PortletID]; !ok {
		return fmt.Errorf("outlet %s not declared on node %s (%s)", source.PortletID, source.NodeID, sourceNode.Type)
	}
	if _, ok := sinkNode.Inlets[sink.PortletID]; !ok {
		return fmt.Errorf("inlet %s not declared on node %s (%s)", sink.PortletID, sink.NodeID, sinkNode.Type)
	}

	if slices.Contains(sourceNode.Sinks[source.PortletID], sink) {
		return nil
	}
	sourceNode.Sinks[source.PortletID] = append(sourceNode.Sinks[source.PortletID], sink)
	sinkNode.Sources[sink.PortletID] = append(sinkNode.Sources[sink.PortletID], source)
	return nil
}

// DeleteNode removes a node along with every edge touching it.
func (g *Graph) DeleteNode(id string) {
	n, ok := g.Nodes[id]
	if !ok {
		return
	}
	for outletID, sinks := range n.Sinks {
		source := Endpoint{NodeID: id, PortletID: outletID}
		for _, sink := range sinks {
			if other, ok := g.Nodes[sink.NodeID]; ok {
				other.Sources[sink.PortletID] = remove(other.Sources[sink.PortletID], source)
			}
		}
	}
	for inletID, sources := range n.Sources {
		sink := Endpoint{NodeID: id, PortletID: inletID}
		for _, source := range sources {
			if other, ok := g.Nodes[source.NodeID]; ok {
				other.Sinks[source.PortletID] = remove(other.Sinks[source.PortletID], sink)
			}
		}
	}
	delete(g.Nodes, id)
}

func remove(endpoints []Endpoint, e Endpoint) []Endpoint {
	out := endpoints[:0]
	for _, x := range endpoints {
		if x != e {
			out = append(out, x)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedIDs returns node ids in a stable order.
func (g *Graph) SortedIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SignalCycles checks the signal-rate part of the graph for feedback loops.
// Message connections may legally form cycles; signal connections may not.
func (g *Graph) SignalCycles() error {
	// Classic depth-first search with three sets of nodes:
	// permanent: fully visited and not part of a cycle.
	// temporary: on the current recursion stack.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if permanent[n.ID] {
			return nil
		}
		if temporary[n.ID] {
			return fmt.Errorf("signal loop detected involving node '%s'", n.ID)
		}
		temporary[n.ID] = true

		for _, outletID := range sortedKeys(n.Sinks) {
			if n.Outlets[outletID].Type != Signal {
				continue
			}
			for _, sink := range n.Sinks[outletID] {
				next, ok := g.Nodes[sink.NodeID]
				if !ok {
					continue
				}
				if err := visit(next); err != nil {
					return err
				}
			}
		}

		delete(temporary, n.ID)
		permanent[n.ID] = true
		return nil
	}

	for _, id := range g.SortedIDs() {
		if err := visit(g.Nodes[id]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortIDs(keys)
	return keys
}

// sortIDs sorts portlet ids, numeric ones first in numeric order.
func sortIDs(ids []string) {
	slices.SortFunc(ids, func(a, b string) int {
		ai, aErr := strconv.Atoi(a)
		bi, bErr := strconv.Atoi(b)
		switch {
		case aErr == nil && bErr == nil:
			return ai - bi
		case aErr == nil:
			return -1
		case bErr == nil:
			return 1
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
}
