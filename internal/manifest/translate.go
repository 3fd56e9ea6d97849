// This file translates decoded HCL blocks into node type definitions and
// exposes each definition as a registry.Builder.

package manifest

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/vk/patchc/internal/ctxlog"
	"github.com/vk/patchc/internal/dspgraph"
	"github.com/vk/patchc/internal/pd"
	"github.com/vk/patchc/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

type argDef struct {
	name     string
	typ      cty.Type
	def      *cty.Value
	variadic bool
}

type perArgDef struct {
	arg    string
	typ    dspgraph.PortletType
	min    int
	offset int
}

type messageToSignalDef struct {
	initialValue    float64
	initialValueArg string
	reroutedInlet   string
}

// definition is the format-agnostic form of a node_type block.
type definition struct {
	nodeType      string
	noop          bool
	skipDollar    bool
	args          []argDef
	inlets        []dspgraph.Portlet
	outlets       []dspgraph.Portlet
	inletsPerArg  *perArgDef
	outletsPerArg *perArgDef
	reroutes      map[string]string
	toSignal      map[string]messageToSignalDef
}

// translateNodeType validates a node_type block and converts it.
func translateNodeType(ctx context.Context, b *nodeTypeBlock) (*definition, error) {
	logger := ctxlog.FromContext(ctx).With("node_type", b.Type)
	logger.Debug("Translating node type definition.")

	d := &definition{
		nodeType:   b.Type,
		noop:       b.Noop,
		skipDollar: b.SkipDollarArgs,
		reroutes:   make(map[string]string),
		toSignal:   make(map[string]messageToSignalDef),
	}
	var errs []string

	for i, a := range b.Args {
		typ, err := typeExprToCtyType(ctx, a.Type)
		if err != nil {
			errs = append(errs, fmt.Sprintf("arg '%s': %v", a.Name, err))
			continue
		}
		def := argDef{name: a.Name, typ: typ, variadic: a.Variadic}
		if a.Variadic && i != len(b.Args)-1 {
			errs = append(errs, fmt.Sprintf("arg '%s': only the last arg may be variadic", a.Name))
		}
		if isExprDefined(a.Default) {
			val, diags := a.Default.Value(nil)
			if diags.HasErrors() {
				errs = append(errs, fmt.Sprintf("arg '%s': invalid default: %s", a.Name, diags.Error()))
				continue
			}
			converted, err := convert.Convert(val, typ)
			if err != nil {
				errs = append(errs, fmt.Sprintf("arg '%s': default does not match type %s: %v", a.Name, typ.FriendlyName(), err))
				continue
			}
			def.def = &converted
		}
		d.args = append(d.args, def)
	}

	var err error
	if d.inlets, err = translatePortlets(b.Inlets); err != nil {
		errs = append(errs, "inlets: "+err.Error())
	}
	if d.outlets, err = translatePortlets(b.Outlets); err != nil {
		errs = append(errs, "outlets: "+err.Error())
	}
	if d.inletsPerArg, err = d.translatePerArg(b.InletsPerArg); err != nil {
		errs = append(errs, "inlets_per_arg: "+err.Error())
	}
	if d.outletsPerArg, err = d.translatePerArg(b.OutletsPerArg); err != nil {
		errs = append(errs, "outlets_per_arg: "+err.Error())
	}

	for _, r := range b.Reroutes {
		if _, ok := d.fixedInlet(r.To); !ok {
			errs = append(errs, fmt.Sprintf("reroute_message '%s': target inlet '%s' is not declared", r.Inlet, r.To))
			continue
		}
		d.reroutes[r.Inlet] = r.To
	}

	for _, m := range b.MessageToSignal {
		if p, ok := d.fixedInlet(m.Inlet); !ok || p.Type != dspgraph.Signal {
			errs = append(errs, fmt.Sprintf("message_to_signal '%s': not a declared signal inlet", m.Inlet))
			continue
		}
		if m.InitialValue != nil && m.InitialValueArg != nil {
			errs = append(errs, fmt.Sprintf("message_to_signal '%s': initial_value and initial_value_arg are exclusive", m.Inlet))
			continue
		}
		conf := messageToSignalDef{}
		if m.InitialValue != nil {
			conf.initialValue = *m.InitialValue
		}
		if m.InitialValueArg != nil {
			if !d.hasArg(*m.InitialValueArg, cty.Number) {
				errs = append(errs, fmt.Sprintf("message_to_signal '%s': initial_value_arg '%s' is not a number arg", m.Inlet, *m.InitialValueArg))
				continue
			}
			conf.initialValueArg = *m.InitialValueArg
		}
		if m.ReroutedInlet != nil {
			if p, ok := d.fixedInlet(*m.ReroutedInlet); !ok || p.Type != dspgraph.Message {
				errs = append(errs, fmt.Sprintf("message_to_signal '%s': rerouted_inlet '%s' is not a declared message inlet", m.Inlet, *m.ReroutedInlet))
				continue
			}
			conf.reroutedInlet = *m.ReroutedInlet
		}
		d.toSignal[m.Inlet] = conf
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("node type '%s':\n- %s", b.Type, strings.Join(errs, "\n- "))
	}
	return d, nil
}

func translatePortletType(s string) (dspgraph.PortletType, error) {
	switch dspgraph.PortletType(s) {
	case dspgraph.Signal, dspgraph.Message:
		return dspgraph.PortletType(s), nil
	}
	return "", fmt.Errorf("unknown portlet type %q, expected 'signal' or 'message'", s)
}

func translatePortlets(blocks []*portletBlock) ([]dspgraph.Portlet, error) {
	var out []dspgraph.Portlet
	seen := make(map[string]bool)
	for _, b := range blocks {
		if seen[b.ID] {
			return nil, fmt.Errorf("duplicate portlet '%s'", b.ID)
		}
		seen[b.ID] = true
		typ, err := translatePortletType(b.Type)
		if err != nil {
			return nil, fmt.Errorf("portlet '%s': %w", b.ID, err)
		}
		out = append(out, dspgraph.Portlet{ID: b.ID, Type: typ})
	}
	return out, nil
}

func (d *definition) translatePerArg(b *perArgBlock) (*perArgDef, error) {
	if b == nil {
		return nil, nil
	}
	typ, err := translatePortletType(b.Type)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(d.args, func(a argDef) bool { return a.name == b.Arg })
	if idx < 0 || !d.args[idx].variadic {
		return nil, fmt.Errorf("arg '%s' must name a variadic arg", b.Arg)
	}
	return &perArgDef{arg: b.Arg, typ: typ, min: b.Min, offset: b.Offset}, nil
}

func (d *definition) fixedInlet(id string) (dspgraph.Portlet, bool) {
	for _, p := range d.inlets {
		if p.ID == id {
			return p, true
		}
	}
	return dspgraph.Portlet{}, false
}

func (d *definition) hasArg(name string, typ cty.Type) bool {
	for _, a := range d.args {
		if a.name == name && !a.variadic && a.typ.Equals(typ) {
			return true
		}
	}
	return false
}

// builder exposes the definition as a registry capability record.
func (d *definition) builder() *registry.Builder {
	b := &registry.Builder{
		TranslateArgs:            d.translateArgs,
		Build:                    d.build,
		IsNoop:                   d.noop,
		SkipDollarArgsResolution: d.skipDollar,
	}
	if len(d.reroutes) > 0 {
		b.RerouteMessageConnection = func(inletID string) (string, bool) {
			to, ok := d.reroutes[inletID]
			return to, ok
		}
	}
	if len(d.toSignal) > 0 {
		b.ConfigureMessageToSignalConnection = d.messageToSignal
	}
	return b
}

func (d *definition) translateArgs(node *pd.Node) (map[string]any, error) {
	out := make(map[string]any, len(d.args))
	for i, a := range d.args {
		if a.variadic {
			rest := []any{}
			if i < len(node.Args) {
				for j, raw := range node.Args[i:] {
					v, err := a.convert(raw)
					if err != nil {
						return nil, fmt.Errorf("node type '%s', arg '%s'[%d]: %w", d.nodeType, a.name, j, err)
					}
					rest = append(rest, v)
				}
			}
			out[a.name] = rest
			break
		}

		var raw any
		if i < len(node.Args) {
			raw = node.Args[i]
		}
		v, err := a.convert(raw)
		if err != nil {
			return nil, fmt.Errorf("node type '%s', arg '%s': %w", d.nodeType, a.name, err)
		}
		out[a.name] = v
	}
	return out, nil
}

// convert turns a literal node argument into the Go value of the arg's type.
func (a argDef) convert(raw any) (any, error) {
	var val cty.Value
	switch {
	case raw != nil:
		if f, ok := pd.ArgNumber(raw); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return nil, fmt.Errorf("%v is not a finite number", raw)
		}
		impliedType, err := gocty.ImpliedType(raw)
		if err != nil {
			return nil, err
		}
		if val, err = gocty.ToCtyValue(raw, impliedType); err != nil {
			return nil, err
		}
	case a.def != nil:
		val = *a.def
	default:
		return zeroFor(a.typ), nil
	}

	converted, err := convert.Convert(val, a.typ)
	if err != nil {
		return nil, err
	}
	return ctyToGo(converted)
}

func zeroFor(typ cty.Type) any {
	switch {
	case typ.Equals(cty.Number):
		return 0.0
	case typ.Equals(cty.String):
		return ""
	case typ.Equals(cty.Bool):
		return false
	}
	return nil
}

func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch {
	case v.Type().Equals(cty.String):
		return v.AsString(), nil
	case v.Type().Equals(cty.Number):
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil
	case v.Type().Equals(cty.Bool):
		return v.True(), nil
	}
	return nil, fmt.Errorf("unsupported value type %s", v.Type().FriendlyName())
}

func (d *definition) build(args map[string]any) (dspgraph.Ports, error) {
	ports := dspgraph.Ports{
		Inlets:  append([]dspgraph.Portlet(nil), d.inlets...),
		Outlets: append([]dspgraph.Portlet(nil), d.outlets...),
	}
	ports.Inlets = append(ports.Inlets, d.inletsPerArg.expand(args)...)
	ports.Outlets = append(ports.Outlets, d.outletsPerArg.expand(args)...)
	return ports, nil
}

// expand declares one portlet per element of the variadic arg, at least min.
func (p *perArgDef) expand(args map[string]any) []dspgraph.Portlet {
	if p == nil {
		return nil
	}
	count := 0
	if list, ok := args[p.arg].([]any); ok {
		count = len(list)
	}
	count = max(count, p.min)
	out := make([]dspgraph.Portlet, count)
	for i := range out {
		out[i] = dspgraph.Portlet{ID: strconv.Itoa(p.offset + i), Type: p.typ}
	}
	return out
}

func (d *definition) messageToSignal(inletID string, args map[string]any) (*registry.MessageToSignal, bool) {
	conf, ok := d.toSignal[inletID]
	if !ok {
		return nil, false
	}
	value := conf.initialValue
	if conf.initialValueArg != "" {
		if f, ok := pd.ArgNumber(args[conf.initialValueArg]); ok {
			value = f
		}
	}
	return &registry.MessageToSignal{
		InitialSignalValue:     value,
		ReroutedMessageInletID: conf.reroutedInlet,
	}, true
}
