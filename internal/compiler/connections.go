package compiler

import (
	"slices"

	"github.com/vk/patchc/internal/pd"
)

// endpoint is a portlet of a real graph node.
type endpoint struct {
	nodeID  string
	portlet int
}

// link is a connection between two real graph nodes.
type link struct {
	source endpoint
	sink   endpoint
}

type visitKey struct {
	patchID string
	nodeID  string
	portlet int
}

// resolveConnections resolves every patch connection through subpatch
// boundaries. The result is deduplicated and ordered by discovery.
func (c *compiler) resolveConnections() ([]link, error) {
	var links []link
	seen := make(map[link]bool)

	for _, patchID := range c.order {
		for _, conn := range c.patches[patchID].patch.Connections {
			sources, err := c.resolveSources(patchID, conn.Source, make(map[visitKey]bool))
			if err != nil {
				return nil, err
			}
			sinks, err := c.resolveSinks(patchID, conn.Sink, make(map[visitKey]bool))
			if err != nil {
				return nil, err
			}
			for _, source := range sources {
				for _, sink := range sinks {
					l := link{source: source, sink: sink}
					if !seen[l] {
						seen[l] = true
						links = append(links, l)
					}
				}
			}
		}
	}
	return links, nil
}

func (c *compiler) lookup(patchID string, ep pd.Endpoint) (*patchInfo, *pd.Node, error) {
	info := c.patches[patchID]
	node, ok := info.patch.Nodes[ep.NodeID]
	if !ok {
		return nil, nil, pd.Invariantf("connection in patch '%s' references missing node '%s'", patchID, ep.NodeID)
	}
	return info, node, nil
}

// real returns the graph endpoint of an ordinary node, or nothing when the
// node was skipped during node building.
func (c *compiler) real(patchID string, ep pd.Endpoint) []endpoint {
	id := graphNodeID(patchID, ep.NodeID)
	if _, ok := c.graph.Node(id); !ok {
		return nil
	}
	return []endpoint{{nodeID: id, portlet: ep.PortletID}}
}

// resolveSinks follows an inlet endpoint to the real inlets behind it.
func (c *compiler) resolveSinks(patchID string, ep pd.Endpoint, visited map[visitKey]bool) ([]endpoint, error) {
	key := visitKey{patchID: patchID, nodeID: ep.NodeID, portlet: ep.PortletID}
	if visited[key] {
		return nil, nil
	}
	visited[key] = true

	info, node, err := c.lookup(patchID, ep)
	if err != nil {
		return nil, err
	}

	switch node.Kind {
	case pd.KindOutlet:
		// Leaving the patch: continue from the embedding node's outlet.
		position := slices.Index(info.patch.Outlets, node.ID)
		if position < 0 {
			return nil, pd.Invariantf("outlet '%s' missing from the outlets of patch '%s'", node.ID, patchID)
		}
		if info.parentID == "" {
			return nil, nil
		}
		parent := c.patches[info.parentID].patch
		from := pd.Endpoint{NodeID: info.nodeID, PortletID: position}
		var out []endpoint
		for _, conn := range parent.Connections {
			if conn.Source != from {
				continue
			}
			sinks, err := c.resolveSinks(parent.ID, conn.Sink, visited)
			if err != nil {
				return nil, err
			}
			out = append(out, sinks...)
		}
		return out, nil

	case pd.KindSubpatch:
		// Entering the subpatch through its inlet proxy.
		sub := c.patches[node.PatchID].patch
		if ep.PortletID < 0 || ep.PortletID >= len(sub.Inlets) {
			return nil, pd.Invariantf("inlet %d out of range for subpatch '%s' of patch '%s' (%d inlets)",
				ep.PortletID, node.ID, patchID, len(sub.Inlets))
		}
		proxy := sub.Inlets[ep.PortletID]
		var out []endpoint
		for _, conn := range sub.Connections {
			if conn.Source.NodeID != proxy {
				continue
			}
			sinks, err := c.resolveSinks(sub.ID, conn.Sink, visited)
			if err != nil {
				return nil, err
			}
			out = append(out, sinks...)
		}
		return out, nil

	case pd.KindInlet, pd.KindText:
		return nil, pd.Invariantf("%s node '%s' of patch '%s' cannot receive connections", node.Kind, node.ID, patchID)
	}

	return c.real(patchID, ep), nil
}

// resolveSources follows an outlet endpoint to the real outlets behind it.
func (c *compiler) resolveSources(patchID string, ep pd.Endpoint, visited map[visitKey]bool) ([]endpoint, error) {
	key := visitKey{patchID: patchID, nodeID: ep.NodeID, portlet: ep.PortletID}
	if visited[key] {
		return nil, nil
	}
	visited[key] = true

	info, node, err := c.lookup(patchID, ep)
	if err != nil {
		return nil, err
	}

	switch node.Kind {
	case pd.KindInlet:
		// Leaving the patch: continue from whatever feeds the embedding node.
		position := slices.Index(info.patch.Inlets, node.ID)
		if position < 0 {
			return nil, pd.Invariantf("inlet '%s' missing from the inlets of patch '%s'", node.ID, patchID)
		}
		if info.parentID == "" {
			return nil, nil
		}
		parent := c.patches[info.parentID].patch
		to := pd.Endpoint{NodeID: info.nodeID, PortletID: position}
		var out []endpoint
		for _, conn := range parent.Connections {
			if conn.Sink != to {
				continue
			}
			sources, err := c.resolveSources(parent.ID, conn.Source, visited)
			if err != nil {
				return nil, err
			}
			out = append(out, sources...)
		}
		return out, nil

	case pd.KindSubpatch:
		// Entering the subpatch through its outlet proxy.
		sub := c.patches[node.PatchID].patch
		if ep.PortletID < 0 || ep.PortletID >= len(sub.Outlets) {
			return nil, pd.Invariantf("outlet %d out of range for subpatch '%s' of patch '%s' (%d outlets)",
				ep.PortletID, node.ID, patchID, len(sub.Outlets))
		}
		proxy := sub.Outlets[ep.PortletID]
		var out []endpoint
		for _, conn := range sub.Connections {
			if conn.Sink.NodeID != proxy {
				continue
			}
			sources, err := c.resolveSources(sub.ID, conn.Source, visited)
			if err != nil {
				return nil, err
			}
			out = append(out, sources...)
		}
		return out, nil

	case pd.KindOutlet, pd.KindText:
		return nil, pd.Invariantf("%s node '%s' of patch '%s' cannot send connections", node.Kind, node.ID, patchID)
	}

	return c.real(patchID, ep), nil
}
