package testutil

import "github.com/vk/patchc/internal/pd"

// PdBuilder assembles a pd.Pd document for tests.
type PdBuilder struct {
	doc *pd.Pd
}

// NewPd starts an empty document.
func NewPd() *PdBuilder {
	return &PdBuilder{doc: pd.New()}
}

// Root adds a patch flagged as the document root.
func (b *PdBuilder) Root(id string, fn func(p *PatchBuilder)) *PdBuilder {
	b.doc.RootPatchID = id
	p := b.patch(id, fn)
	p.IsRoot = true
	return b
}

// Patch adds a nested patch.
func (b *PdBuilder) Patch(id string, fn func(p *PatchBuilder)) *PdBuilder {
	b.patch(id, fn)
	return b
}

func (b *PdBuilder) patch(id string, fn func(p *PatchBuilder)) *pd.Patch {
	patch := &pd.Patch{ID: id, Nodes: make(map[string]*pd.Node)}
	if fn != nil {
		fn(&PatchBuilder{patch: patch})
	}
	b.doc.Patches[id] = patch
	return patch
}

// Array declares an array. data may be nil.
func (b *PdBuilder) Array(id string, args []any, data []float64) *PdBuilder {
	b.doc.Arrays[id] = &pd.Array{ID: id, Args: args, Data: data}
	return b
}

// Build returns the document.
func (b *PdBuilder) Build() *pd.Pd {
	return b.doc
}

// PatchBuilder fills one patch.
type PatchBuilder struct {
	patch *pd.Patch
}

// Args sets the patch creation arguments.
func (p *PatchBuilder) Args(args ...any) *PatchBuilder {
	p.patch.Args = args
	return p
}

// Node adds a generic object.
func (p *PatchBuilder) Node(id, nodeType string, args ...any) *PatchBuilder {
	p.patch.Nodes[id] = &pd.Node{ID: id, Kind: pd.KindGeneric, Type: nodeType, Args: args}
	return p
}

// Control adds a GUI object.
func (p *PatchBuilder) Control(id, nodeType string, args ...any) *PatchBuilder {
	p.patch.Nodes[id] = &pd.Node{ID: id, Kind: pd.KindControl, Type: nodeType, Args: args, Layout: &pd.NodeLayout{}}
	return p
}

// Subpatch adds a node embedding patchID.
func (p *PatchBuilder) Subpatch(id, patchID string) *PatchBuilder {
	p.patch.Nodes[id] = &pd.Node{ID: id, Kind: pd.KindSubpatch, Type: pd.TypeSubpatch, PatchID: patchID}
	return p
}

// ArrayNode adds a node referencing arrayID.
func (p *PatchBuilder) ArrayNode(id, arrayID string) *PatchBuilder {
	p.patch.Nodes[id] = &pd.Node{ID: id, Kind: pd.KindArray, Type: "array", ArrayID: arrayID}
	return p
}

// Text adds a comment.
func (p *PatchBuilder) Text(id, text string) *PatchBuilder {
	p.patch.Nodes[id] = &pd.Node{ID: id, Kind: pd.KindText, Type: "text", Args: []any{text}}
	return p
}

// Inlet adds an inlet proxy at the next inlet position.
func (p *PatchBuilder) Inlet(id string, signal bool) *PatchBuilder {
	t := pd.TypeInlet
	if signal {
		t = pd.TypeSignalInlet
	}
	p.patch.Nodes[id] = &pd.Node{ID: id, Kind: pd.KindInlet, Type: t}
	p.patch.Inlets = append(p.patch.Inlets, id)
	return p
}

// Outlet adds an outlet proxy at the next outlet position.
func (p *PatchBuilder) Outlet(id string, signal bool) *PatchBuilder {
	t := pd.TypeOutlet
	if signal {
		t = pd.TypeSignalOutlet
	}
	p.patch.Nodes[id] = &pd.Node{ID: id, Kind: pd.KindOutlet, Type: t}
	p.patch.Outlets = append(p.patch.Outlets, id)
	return p
}

// Connect links source:outlet to sink:inlet.
func (p *PatchBuilder) Connect(source string, outlet int, sink string, inlet int) *PatchBuilder {
	p.patch.Connections = append(p.patch.Connections, pd.Connection{
		Source: pd.Endpoint{NodeID: source, PortletID: outlet},
		Sink:   pd.Endpoint{NodeID: sink, PortletID: inlet},
	})
	return p
}
