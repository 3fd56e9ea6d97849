package registry

import (
	"github.com/vk/patchc/internal/dspgraph"
	"github.com/vk/patchc/internal/pd"
)

// MessageToSignal configures how a signal inlet without signal sources is fed.
type MessageToSignal struct {
	// InitialSignalValue is the constant the inlet carries until a message
	// sets a new value.
	InitialSignalValue float64
	// ReroutedMessageInletID, when set, names an alternate message inlet on
	// the same node that receives non-numeric messages.
	ReroutedMessageInletID string
}

// Builder is the capability record of one node type. Every hook is optional.
type Builder struct {
	// TranslateArgs turns a node's (dollar-resolved) positional args into
	// named args.
	TranslateArgs func(node *pd.Node) (map[string]any, error)
	// Build declares the node's inlets and outlets from its translated args.
	Build func(args map[string]any) (dspgraph.Ports, error)
	// IsNoop drops the node from the compiled graph entirely.
	IsNoop bool
	// SkipDollarArgsResolution passes literal args to TranslateArgs untouched.
	SkipDollarArgsResolution bool
	// RerouteMessageConnection maps an inlet receiving message connections
	// to a different inlet id.
	RerouteMessageConnection func(inletID string) (string, bool)
	// ConfigureMessageToSignalConnection reports whether a signal inlet gets
	// an implicit constant source when it has no signal connection.
	ConfigureMessageToSignalConnection func(inletID string, args map[string]any) (*MessageToSignal, bool)
}

// Translate runs TranslateArgs, defaulting to no args.
func (b *Builder) Translate(node *pd.Node) (map[string]any, error) {
	if b.TranslateArgs == nil {
		return map[string]any{}, nil
	}
	return b.TranslateArgs(node)
}

// Ports runs Build, defaulting to no portlets.
func (b *Builder) Ports(args map[string]any) (dspgraph.Ports, error) {
	if b.Build == nil {
		return dspgraph.Ports{}, nil
	}
	return b.Build(args)
}

// Reroute runs RerouteMessageConnection.
func (b *Builder) Reroute(inletID string) (string, bool) {
	if b.RerouteMessageConnection == nil {
		return "", false
	}
	return b.RerouteMessageConnection(inletID)
}

// MessageToSignal runs ConfigureMessageToSignalConnection.
func (b *Builder) MessageToSignal(inletID string, args map[string]any) (*MessageToSignal, bool) {
	if b.ConfigureMessageToSignalConnection == nil {
		return nil, false
	}
	return b.ConfigureMessageToSignalConnection(inletID, args)
}
