package patchfile

import (
	"fmt"
	"io"

	"github.com/vk/patchc/internal/pd"
	"gopkg.in/yaml.v3"
)

// Encode writes doc as YAML. Decode reads the output back into an
// equivalent document.
func Encode(w io.Writer, doc *pd.Pd) error {
	raw := document{
		Root:    doc.RootPatchID,
		Patches: make(map[string]patchSpec, len(doc.Patches)),
	}
	for id, patch := range doc.Patches {
		raw.Patches[id] = encodePatch(patch)
	}
	if len(doc.Arrays) > 0 {
		raw.Arrays = make(map[string]arraySpec, len(doc.Arrays))
		for id, array := range doc.Arrays {
			raw.Arrays[id] = arraySpec{Args: array.Args, Data: array.Data}
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("failed to encode patch document: %w", err)
	}
	return enc.Close()
}

func encodePatch(patch *pd.Patch) patchSpec {
	spec := patchSpec{
		Root:    patch.IsRoot,
		Args:    patch.Args,
		Nodes:   make(map[string]nodeSpec, len(patch.Nodes)),
		Inlets:  patch.Inlets,
		Outlets: patch.Outlets,
	}
	if l := patch.Layout; l != nil {
		spec.Layout = &patchLayoutSpec{
			ViewportX:      l.ViewportX,
			ViewportY:      l.ViewportY,
			ViewportWidth:  l.ViewportWidth,
			ViewportHeight: l.ViewportHeight,
			GraphOnParent:  l.GraphOnParent,
		}
	}
	for id, node := range patch.Nodes {
		n := nodeSpec{
			Kind:  node.Kind.String(),
			Type:  node.Type,
			Args:  node.Args,
			Patch: node.PatchID,
			Array: node.ArrayID,
		}
		if l := node.Layout; l != nil {
			n.Layout = &nodeLayoutSpec{X: l.X, Y: l.Y, Label: l.Label}
		}
		spec.Nodes[id] = n
	}
	for _, c := range patch.Connections {
		spec.Connections = append(spec.Connections, connectionSpec{
			Source: endpointSpec{Node: c.Source.NodeID, Portlet: c.Source.PortletID},
			Sink:   endpointSpec{Node: c.Sink.NodeID, Portlet: c.Sink.PortletID},
		})
	}
	return spec
}
