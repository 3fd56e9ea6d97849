package patchfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/vk/patchc/internal/pd"
	"gopkg.in/yaml.v3"
)

// Load reads the document at path.
func Load(path string) (*pd.Pd, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open patch file: %w", err)
	}
	defer f.Close()

	doc, warnings, err := Decode(f)
	if err != nil {
		return nil, warnings, fmt.Errorf("%s: %w", path, err)
	}
	return doc, warnings, nil
}

// Decode reads one YAML document. Unknown fields are rejected. Connections
// to missing nodes are dropped and reported as warnings.
func Decode(r io.Reader) (*pd.Pd, []string, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw document
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("empty patch document")
		}
		return nil, nil, fmt.Errorf("failed to decode patch document: %w", err)
	}
	return convert(&raw)
}

func convert(raw *document) (*pd.Pd, []string, error) {
	var warnings []string
	doc := pd.New()
	doc.RootPatchID = raw.Root

	if len(raw.Patches) == 0 {
		return nil, nil, errors.New("document has no patches")
	}
	if raw.Root != "" {
		if _, ok := raw.Patches[raw.Root]; !ok {
			return nil, nil, fmt.Errorf("root patch '%s' not found", raw.Root)
		}
	}

	for _, id := range sortedKeys(raw.Patches) {
		patch, w, err := convertPatch(id, raw.Patches[id])
		if err != nil {
			return nil, warnings, err
		}
		warnings = append(warnings, w...)
		if id == raw.Root {
			patch.IsRoot = true
		}
		doc.Patches[id] = patch
	}

	for _, id := range sortedKeys(raw.Arrays) {
		spec := raw.Arrays[id]
		args, err := convertArgs(spec.Args)
		if err != nil {
			return nil, warnings, fmt.Errorf("array '%s': %w", id, err)
		}
		doc.Arrays[id] = &pd.Array{ID: id, Args: args, Data: spec.Data}
	}
	return doc, warnings, nil
}

func convertPatch(id string, spec patchSpec) (*pd.Patch, []string, error) {
	var warnings []string
	args, err := convertArgs(spec.Args)
	if err != nil {
		return nil, nil, fmt.Errorf("patch '%s': %w", id, err)
	}

	patch := &pd.Patch{
		ID:      id,
		IsRoot:  spec.Root,
		Args:    args,
		Nodes:   make(map[string]*pd.Node, len(spec.Nodes)),
		Inlets:  spec.Inlets,
		Outlets: spec.Outlets,
	}
	if l := spec.Layout; l != nil {
		patch.Layout = &pd.PatchLayout{
			ViewportX:      l.ViewportX,
			ViewportY:      l.ViewportY,
			ViewportWidth:  l.ViewportWidth,
			ViewportHeight: l.ViewportHeight,
			GraphOnParent:  l.GraphOnParent,
		}
	}

	for _, localID := range sortedKeys(spec.Nodes) {
		node, err := convertNode(localID, spec.Nodes[localID])
		if err != nil {
			return nil, nil, fmt.Errorf("patch '%s': %w", id, err)
		}
		patch.Nodes[localID] = node
	}

	if spec.Inlets == nil {
		patch.Inlets = proxiesInOrder(patch, pd.KindInlet)
	}
	if spec.Outlets == nil {
		patch.Outlets = proxiesInOrder(patch, pd.KindOutlet)
	}

	for _, c := range spec.Connections {
		_, sourceOK := patch.Nodes[c.Source.Node]
		_, sinkOK := patch.Nodes[c.Sink.Node]
		if !sourceOK || !sinkOK {
			warnings = append(warnings, fmt.Sprintf("patch '%s': connection %s:%d -> %s:%d references a missing node, dropped",
				id, c.Source.Node, c.Source.Portlet, c.Sink.Node, c.Sink.Portlet))
			continue
		}
		patch.Connections = append(patch.Connections, pd.Connection{
			Source: pd.Endpoint{NodeID: c.Source.Node, PortletID: c.Source.Portlet},
			Sink:   pd.Endpoint{NodeID: c.Sink.Node, PortletID: c.Sink.Portlet},
		})
	}
	return patch, warnings, nil
}

func convertNode(id string, spec nodeSpec) (*pd.Node, error) {
	args, err := convertArgs(spec.Args)
	if err != nil {
		return nil, fmt.Errorf("node '%s': %w", id, err)
	}

	kind, err := inferKind(spec)
	if err != nil {
		return nil, fmt.Errorf("node '%s': %w", id, err)
	}

	node := &pd.Node{
		ID:      id,
		Kind:    kind,
		Type:    spec.Type,
		Args:    args,
		PatchID: spec.Patch,
		ArrayID: spec.Array,
	}
	switch kind {
	case pd.KindSubpatch:
		if node.PatchID == "" {
			return nil, fmt.Errorf("node '%s': subpatch without a patch reference", id)
		}
		if node.Type == "" {
			node.Type = pd.TypeSubpatch
		}
	case pd.KindArray:
		if node.ArrayID == "" {
			return nil, fmt.Errorf("node '%s': array without an array reference", id)
		}
		if node.Type == "" {
			node.Type = "array"
		}
	case pd.KindText:
		if node.Type == "" {
			node.Type = "text"
		}
	default:
		if node.Type == "" {
			return nil, fmt.Errorf("node '%s': missing type", id)
		}
	}

	if l := spec.Layout; l != nil {
		node.Layout = &pd.NodeLayout{X: l.X, Y: l.Y, Label: l.Label}
	}
	return node, nil
}

// inferKind honours an explicit kind and otherwise guesses it from the
// node's type and references.
func inferKind(spec nodeSpec) (pd.Kind, error) {
	if spec.Kind != "" {
		return pd.ParseKind(spec.Kind)
	}
	switch {
	case spec.Patch != "":
		return pd.KindSubpatch, nil
	case spec.Array != "":
		return pd.KindArray, nil
	}
	switch spec.Type {
	case pd.TypeSubpatch:
		return pd.KindSubpatch, nil
	case pd.TypeInlet, pd.TypeSignalInlet:
		return pd.KindInlet, nil
	case pd.TypeOutlet, pd.TypeSignalOutlet:
		return pd.KindOutlet, nil
	case "text":
		return pd.KindText, nil
	}
	return pd.KindGeneric, nil
}

// proxiesInOrder orders the inlet or outlet proxies of a patch left to right.
func proxiesInOrder(patch *pd.Patch, kind pd.Kind) []string {
	var ids []string
	for _, id := range patch.SortedNodeIDs() {
		if patch.Nodes[id].Kind == kind {
			ids = append(ids, id)
		}
	}
	slices.SortStableFunc(ids, func(a, b string) int {
		return compareX(patch.Nodes[a], patch.Nodes[b])
	})
	return ids
}

func compareX(a, b *pd.Node) int {
	var ax, bx float64
	if a.Layout != nil {
		ax = a.Layout.X
	}
	if b.Layout != nil {
		bx = b.Layout.X
	}
	switch {
	case ax < bx:
		return -1
	case ax > bx:
		return 1
	}
	return 0
}

// convertArgs accepts strings and finite numbers only.
func convertArgs(raw []any) ([]any, error) {
	if raw == nil {
		return nil, nil
	}
	args := make([]any, len(raw))
	for i, v := range raw {
		switch a := v.(type) {
		case string:
			args[i] = a
		case int:
			args[i] = float64(a)
		case int64:
			args[i] = float64(a)
		case uint64:
			args[i] = float64(a)
		case float64:
			if math.IsNaN(a) || math.IsInf(a, 0) {
				return nil, fmt.Errorf("arg %d must be a finite number, got %v", i, a)
			}
			args[i] = a
		default:
			return nil, fmt.Errorf("arg %d must be a string or a number, got %T", i, v)
		}
	}
	return args, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, pd.CompareIDs)
	return keys
}
