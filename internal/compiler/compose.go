package compiler

import (
	"strconv"

	"github.com/vk/patchc/internal/dspgraph"
	"github.com/vk/patchc/internal/pd"
	"github.com/vk/patchc/internal/registry"
)

// Types of the nodes the compiler synthesizes.
const (
	TypeMixer    = "_mixer~"
	TypeConstant = "sig~"
	TypeRouter   = "_routemsg"
)

func mixerID(sink dspgraph.Endpoint) string {
	return "m_" + sink.NodeID + "_" + sink.PortletID + "__mixer"
}

func constantID(sink dspgraph.Endpoint) string {
	return "m_" + sink.NodeID + "_" + sink.PortletID + "_sig"
}

func routerID(sink dspgraph.Endpoint) string {
	return "m_" + sink.NodeID + "_" + sink.PortletID + "__routemsg"
}

func toGraph(e endpoint) dspgraph.Endpoint {
	return dspgraph.Endpoint{NodeID: e.nodeID, PortletID: strconv.Itoa(e.portlet)}
}

// compose turns resolved links into graph edges, one sink inlet at a time.
func (c *compiler) compose(links []link) error {
	var sinks []endpoint
	groups := make(map[endpoint][]endpoint)
	for _, l := range links {
		if _, ok := groups[l.sink]; !ok {
			sinks = append(sinks, l.sink)
		}
		groups[l.sink] = append(groups[l.sink], l.source)
	}

	for _, sink := range sinks {
		if err := c.composeSink(toGraph(sink), groups[sink]); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) composeSink(sink dspgraph.Endpoint, sources []endpoint) error {
	sinkNode, _ := c.graph.Node(sink.NodeID)
	inlet, ok := sinkNode.Inlets[sink.PortletID]
	if !ok {
		return pd.Invariantf("node '%s' (%s) has no inlet %s", sink.NodeID, sinkNode.Type, sink.PortletID)
	}

	var signals, messages []dspgraph.Endpoint
	for _, s := range sources {
		source := toGraph(s)
		sourceNode, _ := c.graph.Node(source.NodeID)
		outlet, ok := sourceNode.Outlets[source.PortletID]
		if !ok {
			return pd.Invariantf("node '%s' (%s) has no outlet %s", source.NodeID, sourceNode.Type, source.PortletID)
		}
		if outlet.Type == dspgraph.Signal {
			signals = append(signals, source)
		} else {
			messages = append(messages, source)
		}
	}

	switch len(signals) {
	case 0:
	case 1:
		if err := c.connect(signals[0], sink); err != nil {
			return err
		}
	default:
		if err := c.addMixer(signals, sink); err != nil {
			return err
		}
	}

	if len(messages) == 0 {
		return nil
	}

	builder := c.builders[sink.NodeID]
	var m2s *registry.MessageToSignal
	if inlet.Type == dspgraph.Signal && len(signals) == 0 {
		if conf, ok := builder.MessageToSignal(sink.PortletID, sinkNode.Args); ok {
			m2s = orDefault(conf)
		}
	}

	var router *dspgraph.Endpoint
	for _, source := range messages {
		if to, ok := builder.Reroute(sink.PortletID); ok {
			if err := c.connect(source, dspgraph.Endpoint{NodeID: sink.NodeID, PortletID: to}); err != nil {
				return err
			}
			continue
		}
		if m2s == nil {
			if err := c.connect(source, sink); err != nil {
				return err
			}
			continue
		}
		if router == nil {
			r, err := c.addRouter(sink, m2s)
			if err != nil {
				return err
			}
			router = &r
		}
		if err := c.connect(source, *router); err != nil {
			return err
		}
	}
	return nil
}

// addMixer sums several signal sources into sink.
func (c *compiler) addMixer(sources []dspgraph.Endpoint, sink dspgraph.Endpoint) error {
	ports := dspgraph.Ports{Outlets: []dspgraph.Portlet{{ID: "0", Type: dspgraph.Signal}}}
	for i := range sources {
		ports.Inlets = append(ports.Inlets, dspgraph.Portlet{ID: strconv.Itoa(i), Type: dspgraph.Signal})
	}
	mixer := dspgraph.NewNode(mixerID(sink), TypeMixer, map[string]any{"channelCount": len(sources)}, ports)
	if err := c.graph.AddNode(mixer); err != nil {
		return pd.Invariantf("%v", err)
	}

	for i, source := range sources {
		if err := c.connect(source, dspgraph.Endpoint{NodeID: mixer.ID, PortletID: strconv.Itoa(i)}); err != nil {
			return err
		}
	}
	return c.connect(dspgraph.Endpoint{NodeID: mixer.ID, PortletID: "0"}, sink)
}

// addConstant feeds sink from a constant signal node and returns the
// node's message inlet.
func (c *compiler) addConstant(sink dspgraph.Endpoint, value float64) (dspgraph.Endpoint, error) {
	ports := dspgraph.Ports{
		Inlets:  []dspgraph.Portlet{{ID: "0", Type: dspgraph.Message}},
		Outlets: []dspgraph.Portlet{{ID: "0", Type: dspgraph.Signal}},
	}
	node := dspgraph.NewNode(constantID(sink), TypeConstant, map[string]any{"initValue": value}, ports)
	if err := c.graph.AddNode(node); err != nil {
		return dspgraph.Endpoint{}, pd.Invariantf("%v", err)
	}
	if err := c.connect(dspgraph.Endpoint{NodeID: node.ID, PortletID: "0"}, sink); err != nil {
		return dspgraph.Endpoint{}, err
	}
	return dspgraph.Endpoint{NodeID: node.ID, PortletID: "0"}, nil
}

// addRouter splits the messages bound for a signal inlet: numbers set the
// constant signal, anything else goes to the rerouted message inlet if the
// sink declares one. It returns the router's inlet.
func (c *compiler) addRouter(sink dspgraph.Endpoint, m2s *registry.MessageToSignal) (dspgraph.Endpoint, error) {
	constant, err := c.addConstant(sink, m2s.InitialSignalValue)
	if err != nil {
		return dspgraph.Endpoint{}, err
	}

	ports := dspgraph.Ports{
		Inlets: []dspgraph.Portlet{{ID: "0", Type: dspgraph.Message}},
		Outlets: []dspgraph.Portlet{
			{ID: "0", Type: dspgraph.Message},
			{ID: "1", Type: dspgraph.Message},
		},
	}
	router := dspgraph.NewNode(routerID(sink), TypeRouter, nil, ports)
	if err := c.graph.AddNode(router); err != nil {
		return dspgraph.Endpoint{}, pd.Invariantf("%v", err)
	}

	if err := c.connect(dspgraph.Endpoint{NodeID: router.ID, PortletID: "0"}, constant); err != nil {
		return dspgraph.Endpoint{}, err
	}
	if m2s.ReroutedMessageInletID != "" {
		rerouted := dspgraph.Endpoint{NodeID: sink.NodeID, PortletID: m2s.ReroutedMessageInletID}
		if err := c.connect(dspgraph.Endpoint{NodeID: router.ID, PortletID: "1"}, rerouted); err != nil {
			return dspgraph.Endpoint{}, err
		}
	}
	return dspgraph.Endpoint{NodeID: router.ID, PortletID: "0"}, nil
}

// addDefaultSignals gives every unconnected signal inlet that accepts
// messages its constant source.
func (c *compiler) addDefaultSignals() error {
	for _, id := range sortedKeys(c.builders) {
		node, _ := c.graph.Node(id)
		builder := c.builders[id]
		for _, inletID := range node.SignalInlets() {
			if len(node.Sources[inletID]) > 0 {
				continue
			}
			conf, ok := builder.MessageToSignal(inletID, node.Args)
			if !ok {
				continue
			}
			sink := dspgraph.Endpoint{NodeID: id, PortletID: inletID}
			if _, err := c.addConstant(sink, orDefault(conf).InitialSignalValue); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *compiler) connect(source, sink dspgraph.Endpoint) error {
	if err := c.graph.Connect(source, sink); err != nil {
		return pd.Invariantf("connecting %s to %s: %v", source, sink, err)
	}
	return nil
}

func orDefault(conf *registry.MessageToSignal) *registry.MessageToSignal {
	if conf == nil {
		return &registry.MessageToSignal{}
	}
	return conf
}
