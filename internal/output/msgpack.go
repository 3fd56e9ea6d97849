package output

import (
	"slices"

	"github.com/vk/patchc/internal/dspgraph"
	"github.com/vmihailenco/msgpack/v5"
)

// msgpack only sorts keys of map[string]string, map[string]bool and
// map[string]any, so typed maps are written by hand.

func writeMsgpack(enc *msgpack.Encoder, doc *Document) error {
	if err := enc.EncodeMapLen(2); err != nil {
		return err
	}
	if err := enc.EncodeString("graph"); err != nil {
		return err
	}
	nodes := make(map[string]sortedNode, len(doc.Graph))
	for id, n := range doc.Graph {
		nodes[id] = sortedNode{n}
	}
	if err := encodeSorted(enc, nodes); err != nil {
		return err
	}
	if err := enc.EncodeString("arrays"); err != nil {
		return err
	}
	return encodeSorted(enc, doc.Arrays)
}

func encodeSorted[V any](enc *msgpack.Encoder, m map[string]V) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	if err := enc.EncodeMapLen(len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		if err := enc.EncodeString(k); err != nil {
			return err
		}
		if err := enc.Encode(m[k]); err != nil {
			return err
		}
	}
	return nil
}

type sortedNode struct {
	*dspgraph.Node
}

var _ msgpack.CustomEncoder = sortedNode{}

// EncodeMsgpack writes the node with the same keys as its struct tags.
func (n sortedNode) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(7); err != nil {
		return err
	}
	fields := []struct {
		key    string
		encode func() error
	}{
		{"id", func() error { return enc.EncodeString(n.ID) }},
		{"type", func() error { return enc.EncodeString(n.Type) }},
		{"args", func() error { return enc.Encode(n.Args) }},
		{"inlets", func() error { return encodeSorted(enc, n.Inlets) }},
		{"outlets", func() error { return encodeSorted(enc, n.Outlets) }},
		{"sources", func() error { return encodeSorted(enc, n.Sources) }},
		{"sinks", func() error { return encodeSorted(enc, n.Sinks) }},
	}
	for _, f := range fields {
		if err := enc.EncodeString(f.key); err != nil {
			return err
		}
		if err := f.encode(); err != nil {
			return err
		}
	}
	return nil
}
