package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/patchc/internal/dspgraph"
	"github.com/vk/patchc/internal/pd"
	"github.com/vk/patchc/internal/registry"
)

func sig(id string) dspgraph.Portlet { return dspgraph.Portlet{ID: id, Type: dspgraph.Signal} }
func msg(id string) dspgraph.Portlet { return dspgraph.Portlet{ID: id, Type: dspgraph.Message} }

// rawArgs exposes the positional args untouched under "args".
func rawArgs(node *pd.Node) (map[string]any, error) {
	return map[string]any{"args": pd.CloneArgs(node.Args)}, nil
}

func fixed(ports dspgraph.Ports) func(map[string]any) (dspgraph.Ports, error) {
	return func(map[string]any) (dspgraph.Ports, error) { return ports, nil }
}

// Entries returns a small, hand-written vocabulary:
//
//	osc~      signal in 0 (constant when unconnected), message in 1, signal out 0
//	+~        signal in 0 and 1 (1 constant when unconnected), signal out 0
//	dac~      signal in 0 and 1
//	tabread~  signal in 0, messages rerouted to 0_message, signal out 0
//	lop~      signal in 0, signal in 1 with rerouted message inlet 1_message
//	float     message in 0 and 1, message out 0 (alias f)
//	msg       message box, skips dollar args
//	print     message in 0
//	comment~  no-op
func Entries() registry.Entries {
	e := registry.Entries{}

	e.Add("osc~", &registry.Builder{
		TranslateArgs: rawArgs,
		Build:         fixed(dspgraph.Ports{Inlets: []dspgraph.Portlet{sig("0"), msg("1")}, Outlets: []dspgraph.Portlet{sig("0")}}),
		ConfigureMessageToSignalConnection: func(inletID string, args map[string]any) (*registry.MessageToSignal, bool) {
			if inletID != "0" {
				return nil, false
			}
			value := 0.0
			if list, _ := args["args"].([]any); len(list) > 0 {
				value, _ = pd.ParseNumber(list[0])
			}
			return &registry.MessageToSignal{InitialSignalValue: value}, true
		},
	})
	e.Add("+~", &registry.Builder{
		TranslateArgs: rawArgs,
		Build:         fixed(dspgraph.Ports{Inlets: []dspgraph.Portlet{sig("0"), sig("1")}, Outlets: []dspgraph.Portlet{sig("0")}}),
		ConfigureMessageToSignalConnection: func(inletID string, _ map[string]any) (*registry.MessageToSignal, bool) {
			if inletID != "1" {
				return nil, false
			}
			return &registry.MessageToSignal{}, true
		},
	})
	e.Add("dac~", &registry.Builder{
		TranslateArgs: rawArgs,
		Build:         fixed(dspgraph.Ports{Inlets: []dspgraph.Portlet{sig("0"), sig("1")}}),
	})
	e.Add("tabread~", &registry.Builder{
		TranslateArgs: rawArgs,
		Build:         fixed(dspgraph.Ports{Inlets: []dspgraph.Portlet{sig("0"), msg("0_message")}, Outlets: []dspgraph.Portlet{sig("0")}}),
		RerouteMessageConnection: func(inletID string) (string, bool) {
			if inletID == "0" {
				return "0_message", true
			}
			return "", false
		},
	})
	e.Add("lop~", &registry.Builder{
		TranslateArgs: rawArgs,
		Build:         fixed(dspgraph.Ports{Inlets: []dspgraph.Portlet{sig("0"), sig("1"), msg("1_message")}, Outlets: []dspgraph.Portlet{sig("0")}}),
		ConfigureMessageToSignalConnection: func(inletID string, _ map[string]any) (*registry.MessageToSignal, bool) {
			if inletID != "1" {
				return nil, false
			}
			return &registry.MessageToSignal{InitialSignalValue: 500, ReroutedMessageInletID: "1_message"}, true
		},
	})
	e.Add("float", &registry.Builder{
		TranslateArgs: rawArgs,
		Build:         fixed(dspgraph.Ports{Inlets: []dspgraph.Portlet{msg("0"), msg("1")}, Outlets: []dspgraph.Portlet{msg("0")}}),
	})
	e.Alias("f", "float")
	e.Add("msg", &registry.Builder{
		TranslateArgs:            rawArgs,
		Build:                    fixed(dspgraph.Ports{Inlets: []dspgraph.Portlet{msg("0")}, Outlets: []dspgraph.Portlet{msg("0")}}),
		SkipDollarArgsResolution: true,
	})
	e.Add("print", &registry.Builder{
		TranslateArgs: rawArgs,
		Build:         fixed(dspgraph.Ports{Inlets: []dspgraph.Portlet{msg("0")}}),
	})
	e.Add("comment~", &registry.Builder{IsNoop: true})
	return e
}

// Registry flattens Entries.
func Registry(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.New(Entries())
	require.NoError(t, err)
	return r
}
