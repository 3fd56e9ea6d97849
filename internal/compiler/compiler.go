package compiler

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/patchc/internal/ctxlog"
	"github.com/vk/patchc/internal/dspgraph"
	"github.com/vk/patchc/internal/pd"
	"github.com/vk/patchc/internal/registry"
)

// ErrInvariant is wrapped by every error signalling malformed input.
var ErrInvariant = pd.ErrInvariant

// Compilation is the output of Compile.
type Compilation struct {
	Graph *dspgraph.Graph
	// Arrays maps resolved array names to their sample buffers.
	Arrays map[string][]float64
}

// patchInfo places one patch in the tree.
type patchInfo struct {
	patch *pd.Patch
	// parentID is empty for the root patch.
	parentID string
	// nodeID is the local id, in the parent, of the node embedding patch.
	nodeID string
	// instanceRoot is the root patch of the abstraction instance patch
	// belongs to. Dollar args resolve against it.
	instanceRoot *pd.Patch
}

type compiler struct {
	doc   *pd.Pd
	reg   *registry.Registry
	graph *dspgraph.Graph

	patches map[string]*patchInfo
	// order lists patch ids in pre-order.
	order []string
	// builders holds the builder of every graph node created from a patch
	// object. Structural and synthesized nodes have none.
	builders   map[string]*registry.Builder
	structural []string
}

// Compile flattens doc, whose abstractions must already be instantiated,
// into a graph.
func Compile(ctx context.Context, doc *pd.Pd, reg *registry.Registry) (*Compilation, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Compile: Starting graph compilation.", "root", doc.RootPatchID)

	root, ok := doc.RootPatch()
	if !ok {
		return nil, pd.Invariantf("root patch '%s' not found", doc.RootPatchID)
	}

	c := &compiler{
		doc:      doc,
		reg:      reg,
		graph:    dspgraph.New(),
		patches:  make(map[string]*patchInfo),
		builders: make(map[string]*registry.Builder),
	}
	if err := c.collectPatches(root, "", "", root); err != nil {
		return nil, err
	}
	logger.Debug("Compile: Patch tree collected.", "patch_count", len(c.order))

	if err := c.buildNodes(); err != nil {
		return nil, err
	}
	logger.Debug("Compile: Node building complete.", "node_count", len(c.graph.Nodes))

	links, err := c.resolveConnections()
	if err != nil {
		return nil, err
	}
	logger.Debug("Compile: Proxy elimination complete.", "connection_count", len(links))

	if err := c.compose(links); err != nil {
		return nil, err
	}
	if err := c.addDefaultSignals(); err != nil {
		return nil, err
	}
	logger.Debug("Compile: Connection composition complete.", "node_count", len(c.graph.Nodes))

	for _, id := range c.structural {
		c.graph.DeleteNode(id)
	}
	logger.Debug("Compile: Structural nodes removed.", "removed", len(c.structural))

	arrays, err := c.materializeArrays(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("Compile: Graph compilation successful.",
		"node_count", len(c.graph.Nodes), "array_count", len(arrays))

	return &Compilation{Graph: c.graph, Arrays: arrays}, nil
}

// collectPatches records patch and every patch nested in it, pre-order.
func (c *compiler) collectPatches(patch *pd.Patch, parentID, nodeID string, instanceRoot *pd.Patch) error {
	if _, seen := c.patches[patch.ID]; seen {
		return pd.Invariantf("patch '%s' is embedded more than once", patch.ID)
	}
	if patch.IsRoot {
		instanceRoot = patch
	}
	c.patches[patch.ID] = &patchInfo{
		patch:        patch,
		parentID:     parentID,
		nodeID:       nodeID,
		instanceRoot: instanceRoot,
	}
	c.order = append(c.order, patch.ID)

	for _, localID := range patch.SortedNodeIDs() {
		node := patch.Nodes[localID]
		if node.Kind != pd.KindSubpatch {
			continue
		}
		child, ok := c.doc.Patches[node.PatchID]
		if !ok {
			return pd.Invariantf("node '%s' of patch '%s' references missing patch '%s'", localID, patch.ID, node.PatchID)
		}
		if err := c.collectPatches(child, patch.ID, localID, instanceRoot); err != nil {
			return err
		}
	}
	return nil
}

// graphNodeID names the graph node built from a patch object.
func graphNodeID(patchID, localID string) string {
	return fmt.Sprintf("n_%s_%s", patchID, localID)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, pd.CompareIDs)
	return keys
}
