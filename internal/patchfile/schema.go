package patchfile

type document struct {
	Root    string               `yaml:"root,omitempty"`
	Patches map[string]patchSpec `yaml:"patches"`
	Arrays  map[string]arraySpec `yaml:"arrays,omitempty"`
}

type patchSpec struct {
	Root        bool                `yaml:"root,omitempty"`
	Args        []any               `yaml:"args,omitempty"`
	Nodes       map[string]nodeSpec `yaml:"nodes,omitempty"`
	Connections []connectionSpec    `yaml:"connections,omitempty"`
	Inlets      []string            `yaml:"inlets,omitempty"`
	Outlets     []string            `yaml:"outlets,omitempty"`
	Layout      *patchLayoutSpec    `yaml:"layout,omitempty"`
}

type nodeSpec struct {
	Kind   string          `yaml:"kind,omitempty"`
	Type   string          `yaml:"type,omitempty"`
	Args   []any           `yaml:"args,omitempty"`
	Patch  string          `yaml:"patch,omitempty"`
	Array  string          `yaml:"array,omitempty"`
	Layout *nodeLayoutSpec `yaml:"layout,omitempty"`
}

type nodeLayoutSpec struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Label string  `yaml:"label,omitempty"`
}

type patchLayoutSpec struct {
	ViewportX      float64 `yaml:"viewportX"`
	ViewportY      float64 `yaml:"viewportY"`
	ViewportWidth  float64 `yaml:"viewportWidth"`
	ViewportHeight float64 `yaml:"viewportHeight"`
	GraphOnParent  bool    `yaml:"graphOnParent,omitempty"`
}

type endpointSpec struct {
	Node    string `yaml:"node"`
	Portlet int    `yaml:"portlet"`
}

type connectionSpec struct {
	Source endpointSpec `yaml:"source"`
	Sink   endpointSpec `yaml:"sink"`
}

type arraySpec struct {
	Args []any     `yaml:"args,omitempty"`
	Data []float64 `yaml:"data,omitempty"`
}
