package manifest

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all top-level blocks of a manifest file.
type fileRoot struct {
	NodeTypes []*nodeTypeBlock `hcl:"node_type,block"`
	Aliases   []*aliasBlock    `hcl:"alias,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type nodeTypeBlock struct {
	Type            string                  `hcl:"type,label"`
	Description     string                  `hcl:"description,optional"`
	Noop            bool                    `hcl:"noop,optional"`
	SkipDollarArgs  bool                    `hcl:"skip_dollar_args,optional"`
	Args            []*argBlock             `hcl:"arg,block"`
	Inlets          []*portletBlock         `hcl:"inlet,block"`
	Outlets         []*portletBlock         `hcl:"outlet,block"`
	InletsPerArg    *perArgBlock            `hcl:"inlets_per_arg,block"`
	OutletsPerArg   *perArgBlock            `hcl:"outlets_per_arg,block"`
	Reroutes        []*rerouteBlock         `hcl:"reroute_message,block"`
	MessageToSignal []*messageToSignalBlock `hcl:"message_to_signal,block"`
}

type argBlock struct {
	Name     string         `hcl:"name,label"`
	Type     hcl.Expression `hcl:"type,optional"`
	Default  hcl.Expression `hcl:"default,optional"`
	Variadic bool           `hcl:"variadic,optional"`
}

type portletBlock struct {
	ID   string `hcl:"id,label"`
	Type string `hcl:"type"`
}

type perArgBlock struct {
	Arg    string `hcl:"arg"`
	Type   string `hcl:"type"`
	Min    int    `hcl:"min,optional"`
	Offset int    `hcl:"offset,optional"`
}

type rerouteBlock struct {
	Inlet string `hcl:"inlet,label"`
	To    string `hcl:"to"`
}

type messageToSignalBlock struct {
	Inlet           string   `hcl:"inlet,label"`
	InitialValue    *float64 `hcl:"initial_value,optional"`
	InitialValueArg *string  `hcl:"initial_value_arg,optional"`
	ReroutedInlet   *string  `hcl:"rerouted_inlet,optional"`
}

type aliasBlock struct {
	Name string `hcl:"name,label"`
	To   string `hcl:"to"`
}
