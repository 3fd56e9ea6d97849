// Package output serializes a compiled graph for a code generation backend.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vk/patchc/internal/compiler"
	"github.com/vk/patchc/internal/dspgraph"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding.
type Format string

const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	MsgPack Format = "msgpack"
)

// Formats lists the supported encodings.
var Formats = []Format{JSON, YAML, MsgPack}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format '%s'", s)
}

// Document is the serialized form of a compilation.
type Document struct {
	Graph  map[string]*dspgraph.Node `json:"graph" yaml:"graph" msgpack:"graph"`
	Arrays map[string][]float64      `json:"arrays" yaml:"arrays" msgpack:"arrays"`
}

// NewDocument wraps a compilation. Nil maps become empty ones.
func NewDocument(c *compiler.Compilation) *Document {
	doc := &Document{Graph: c.Graph.Nodes, Arrays: c.Arrays}
	if doc.Graph == nil {
		doc.Graph = map[string]*dspgraph.Node{}
	}
	if doc.Arrays == nil {
		doc.Arrays = map[string][]float64{}
	}
	return doc
}

// Write encodes c to w. Map keys are always written in sorted order, so the
// same compilation yields the same bytes.
func Write(w io.Writer, c *compiler.Compilation, format Format) error {
	doc := NewDocument(c)

	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to write json: %w", err)
		}
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
		return enc.Close()
	case MsgPack:
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		if err := writeMsgpack(enc, doc); err != nil {
			return fmt.Errorf("failed to write msgpack: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format '%s'", format)
	}
	return nil
}
