package dspgraph

import "fmt"

// PortletType distinguishes audio-rate from event-rate portlets.
type PortletType string

const (
	Signal  PortletType = "signal"
	Message PortletType = "message"
)

// Portlet is a typed connection point.
type Portlet struct {
	ID   string      `json:"id" yaml:"id" msgpack:"id"`
	Type PortletType `json:"type" yaml:"type" msgpack:"type"`
}

// Endpoint addresses a portlet of a graph node.
type Endpoint struct {
	NodeID    string `json:"nodeId" yaml:"nodeId" msgpack:"nodeId"`
	PortletID string `json:"portletId" yaml:"portletId" msgpack:"portletId"`
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%s", e.NodeID, e.PortletID)
}

// Node is a vertex of the graph.
type Node struct {
	ID      string             `json:"id" yaml:"id" msgpack:"id"`
	Type    string             `json:"type" yaml:"type" msgpack:"type"`
	Args    map[string]any     `json:"args" yaml:"args" msgpack:"args"`
	Inlets  map[string]Portlet `json:"inlets" yaml:"inlets" msgpack:"inlets"`
	Outlets map[string]Portlet `json:"outlets" yaml:"outlets" msgpack:"outlets"`
	// Sources lists, per inlet id, the outlets feeding that inlet.
	Sources map[string][]Endpoint `json:"sources" yaml:"sources" msgpack:"sources"`
	// Sinks lists, per outlet id, the inlets fed by that outlet.
	Sinks map[string][]Endpoint `json:"sinks" yaml:"sinks" msgpack:"sinks"`
}

// NewNode creates a node with the given ports and empty adjacency.
func NewNode(id, nodeType string, args map[string]any, ports Ports) *Node {
	if args == nil {
		args = make(map[string]any)
	}
	n := &Node{
		ID:      id,
		Type:    nodeType,
		Args:    args,
		Inlets:  make(map[string]Portlet, len(ports.Inlets)),
		Outlets: make(map[string]Portlet, len(ports.Outlets)),
		Sources: make(map[string][]Endpoint),
		Sinks:   make(map[string][]Endpoint),
	}
	for _, p := range ports.Inlets {
		n.Inlets[p.ID] = p
	}
	for _, p := range ports.Outlets {
		n.Outlets[p.ID] = p
	}
	return n
}

// Ports is the inlet/outlet declaration produced by a node builder.
type Ports struct {
	Inlets  []Portlet
	Outlets []Portlet
}

// SignalInlets returns the ids of the node's signal inlets in sorted order.
func (n *Node) SignalInlets() []string {
	var ids []string
	for id, p := range n.Inlets {
		if p.Type == Signal {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids
}
