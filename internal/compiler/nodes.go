package compiler

import (
	"fmt"

	"github.com/vk/patchc/internal/dollar"
	"github.com/vk/patchc/internal/dspgraph"
	"github.com/vk/patchc/internal/pd"
)

// buildNodes creates a graph node for every object of every patch.
func (c *compiler) buildNodes() error {
	for _, patchID := range c.order {
		info := c.patches[patchID]
		for _, localID := range info.patch.SortedNodeIDs() {
			if err := c.buildNode(info, info.patch.Nodes[localID]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *compiler) buildNode(info *patchInfo, node *pd.Node) error {
	id := graphNodeID(info.patch.ID, node.ID)

	switch node.Kind {
	case pd.KindText:
		return nil
	case pd.KindSubpatch, pd.KindInlet, pd.KindOutlet:
		// Kept until connections are resolved, then removed.
		c.structural = append(c.structural, id)
		return c.graph.AddNode(dspgraph.NewNode(id, node.Type, nil, dspgraph.Ports{}))
	}

	resolved, ok := c.reg.Resolve(node.Type)
	if !ok {
		if node.Kind == pd.KindArray {
			return nil
		}
		return pd.Invariantf("node '%s' of patch '%s' has unregistered type '%s'", node.ID, info.patch.ID, node.Type)
	}
	builder := resolved.Builder
	if builder.IsNoop {
		return nil
	}

	resolvedNode := node.Clone()
	if !builder.SkipDollarArgsResolution {
		resolvedNode.Args = dollar.ResolveArgs(node.Args, info.instanceRoot)
	}

	args, err := builder.Translate(resolvedNode)
	if err != nil {
		return fmt.Errorf("node '%s' (%s): failed to translate args: %w", id, node.Type, err)
	}
	ports, err := builder.Ports(args)
	if err != nil {
		return fmt.Errorf("node '%s' (%s): failed to build ports: %w", id, node.Type, err)
	}

	if err := c.graph.AddNode(dspgraph.NewNode(id, resolved.Type, args, ports)); err != nil {
		return pd.Invariantf("%v", err)
	}
	c.builders[id] = builder
	return nil
}
