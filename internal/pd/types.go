package pd

import "fmt"

// Kind is the closed set of node variants a patch may contain.
type Kind int

const (
	// KindGeneric is an ordinary object box, e.g. `osc~ 440`.
	KindGeneric Kind = iota
	// KindControl is a GUI-backed object carrying layout metadata.
	KindControl
	// KindSubpatch references a nested Patch by id.
	KindSubpatch
	// KindArray references an Array by id.
	KindArray
	// KindInlet is the proxy standing for one inlet of the enclosing patch.
	KindInlet
	// KindOutlet is the proxy standing for one outlet of the enclosing patch.
	KindOutlet
	// KindText is a comment.
	KindText
)

var kindNames = map[Kind]string{
	KindGeneric:  "generic",
	KindControl:  "control",
	KindSubpatch: "subpatch",
	KindArray:    "array",
	KindInlet:    "inlet",
	KindOutlet:   "outlet",
	KindText:     "text",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindGeneric, fmt.Errorf("unknown node kind %q", s)
}

// Type names given to structural nodes.
const (
	TypeSubpatch     = "pd"
	TypeInlet        = "inlet"
	TypeSignalInlet  = "inlet~"
	TypeOutlet       = "outlet"
	TypeSignalOutlet = "outlet~"
)

// Node is one object of a patch.
type Node struct {
	ID   string
	Kind Kind
	Type string
	Args []any

	// PatchID is set for KindSubpatch nodes.
	PatchID string
	// ArrayID is set for KindArray nodes.
	ArrayID string

	Layout *NodeLayout
}

// NodeLayout is the GUI geometry of a node. The compiler ignores it.
type NodeLayout struct {
	X     float64
	Y     float64
	Label string
}

// IsStructural reports whether the node only exists to shape the tree.
func (n *Node) IsStructural() bool {
	switch n.Kind {
	case KindSubpatch, KindInlet, KindOutlet:
		return true
	}
	return false
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	c.Args = CloneArgs(n.Args)
	if n.Layout != nil {
		l := *n.Layout
		c.Layout = &l
	}
	return &c
}

// Endpoint addresses one portlet of a node inside a single patch.
type Endpoint struct {
	NodeID    string
	PortletID int
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.NodeID, e.PortletID)
}

// Connection links an outlet to an inlet within one patch.
type Connection struct {
	Source Endpoint
	Sink   Endpoint
}

// PatchLayout is the viewport geometry of a patch. The compiler ignores it.
type PatchLayout struct {
	ViewportX      float64
	ViewportY      float64
	ViewportWidth  float64
	ViewportHeight float64
	GraphOnParent  bool
}

// Patch is a collection of nodes and connections, possibly nested.
type Patch struct {
	ID string
	// IsRoot marks the top-level patch of a standalone document.
	IsRoot      bool
	Args        []any
	Nodes       map[string]*Node
	Connections []Connection
	// Inlets and Outlets map portlet position to the local id of the proxy
	// node that represents it.
	Inlets  []string
	Outlets []string
	Layout  *PatchLayout
}

// Clone returns a deep copy of the patch.
func (p *Patch) Clone() *Patch {
	c := &Patch{
		ID:          p.ID,
		IsRoot:      p.IsRoot,
		Args:        CloneArgs(p.Args),
		Nodes:       make(map[string]*Node, len(p.Nodes)),
		Connections: append([]Connection(nil), p.Connections...),
		Inlets:      append([]string(nil), p.Inlets...),
		Outlets:     append([]string(nil), p.Outlets...),
	}
	for id, n := range p.Nodes {
		c.Nodes[id] = n.Clone()
	}
	if p.Layout != nil {
		l := *p.Layout
		c.Layout = &l
	}
	return c
}

// SortedNodeIDs returns the local node ids in numeric-aware order.
func (p *Patch) SortedNodeIDs() []string {
	ids := make([]string, 0, len(p.Nodes))
	for id := range p.Nodes {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}

// Array is a named numeric table declared in a patch.
type Array struct {
	ID string
	// Args holds [name, size, saveContents].
	Args []any
	// Data holds literal sample values, nil when the contents are not saved.
	Data []float64
	// RootPatchID is the root patch of the abstraction instance the array
	// belongs to. Dollar args in Args resolve against it.
	RootPatchID string
}

// Clone returns a deep copy of the array.
func (a *Array) Clone() *Array {
	c := *a
	c.Args = CloneArgs(a.Args)
	if a.Data != nil {
		c.Data = append([]float64(nil), a.Data...)
	}
	return &c
}

// Pd is a whole document.
type Pd struct {
	RootPatchID string
	Patches     map[string]*Patch
	Arrays      map[string]*Array
}

// New returns an empty document.
func New() *Pd {
	return &Pd{
		Patches: make(map[string]*Patch),
		Arrays:  make(map[string]*Array),
	}
}

// RootPatch returns the patch designated by RootPatchID.
func (p *Pd) RootPatch() (*Patch, bool) {
	patch, ok := p.Patches[p.RootPatchID]
	return patch, ok
}
