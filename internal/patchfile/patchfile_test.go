package patchfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/patchc/internal/abstraction"
	"github.com/vk/patchc/internal/pd"
	"github.com/vk/patchc/internal/testutil"
)

const sample = `
root: main
patches:
  main:
    args: [440, hello]
    nodes:
      "0": {type: osc~, args: [$1]}
      "1": {type: pd, patch: sub}
      "2": {type: dac~}
      "3": {kind: control, type: hsl, layout: {x: 10, y: 20, label: vol}}
      "4": {type: text, args: [a comment]}
      "5": {type: array, array: tbl}
    connections:
      - {source: {node: "0", portlet: 0}, sink: {node: "1", portlet: 0}}
      - {source: {node: "1", portlet: 0}, sink: {node: "2", portlet: 0}}
      - {source: {node: "9", portlet: 0}, sink: {node: "2", portlet: 1}}
  sub:
    nodes:
      b: {type: inlet~, layout: {x: 50, y: 0}}
      a: {type: inlet, layout: {x: 10, y: 0}}
      o: {type: outlet~}
    connections:
      - {source: {node: b, portlet: 0}, sink: {node: o, portlet: 0}}
arrays:
  tbl: {args: [$0-tbl, 3], data: [1, 2.5, 3]}
`

func TestDecode(t *testing.T) {
	doc, warnings, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "9:0 -> 2:1")

	assert.Equal(t, "main", doc.RootPatchID)
	main := doc.Patches["main"]
	require.NotNil(t, main)
	assert.True(t, main.IsRoot)
	assert.Equal(t, []any{440.0, "hello"}, main.Args)
	assert.Len(t, main.Connections, 2)

	testCases := []struct {
		id      string
		kind    pd.Kind
		typ     string
		patchID string
		arrayID string
	}{
		{id: "0", kind: pd.KindGeneric, typ: "osc~"},
		{id: "1", kind: pd.KindSubpatch, typ: pd.TypeSubpatch, patchID: "sub"},
		{id: "3", kind: pd.KindControl, typ: "hsl"},
		{id: "4", kind: pd.KindText, typ: "text"},
		{id: "5", kind: pd.KindArray, typ: "array", arrayID: "tbl"},
	}
	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			node := main.Nodes[tc.id]
			require.NotNil(t, node)
			assert.Equal(t, tc.kind, node.Kind)
			assert.Equal(t, tc.typ, node.Type)
			assert.Equal(t, tc.patchID, node.PatchID)
			assert.Equal(t, tc.arrayID, node.ArrayID)
		})
	}
	assert.Equal(t, &pd.NodeLayout{X: 10, Y: 20, Label: "vol"}, main.Nodes["3"].Layout)
	assert.Equal(t, []any{"$1"}, main.Nodes["0"].Args)

	sub := doc.Patches["sub"]
	assert.False(t, sub.IsRoot)
	assert.Equal(t, []string{"a", "b"}, sub.Inlets)
	assert.Equal(t, []string{"o"}, sub.Outlets)
	assert.Equal(t, pd.KindInlet, sub.Nodes["b"].Kind)

	assert.Equal(t, &pd.Array{ID: "tbl", Args: []any{"$0-tbl", 3.0}, Data: []float64{1, 2.5, 3}}, doc.Arrays["tbl"])
}

func TestDecode_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty", input: "", wantErr: "empty patch document"},
		{name: "no patches", input: "patches: {}", wantErr: "no patches"},
		{name: "unknown field", input: "patches: {p: {nodez: {}}}", wantErr: "nodez"},
		{name: "missing root", input: "root: x\npatches: {p: {}}", wantErr: "root patch 'x' not found"},
		{name: "bad kind", input: "patches: {p: {nodes: {'0': {kind: blob, type: x}}}}", wantErr: "unknown node kind"},
		{name: "map arg", input: "patches: {p: {nodes: {'0': {type: x, args: [{a: 1}]}}}}", wantErr: "must be a string or a number"},
		{name: "nan arg", input: "patches: {p: {nodes: {'0': {type: osc~, args: [.nan]}}}}", wantErr: "must be a finite number"},
		{name: "infinite array size", input: "patches: {p: {}}\narrays: {a: {args: [buf, .inf]}}", wantErr: "must be a finite number"},
		{name: "subpatch without patch", input: "patches: {p: {nodes: {'0': {kind: subpatch}}}}", wantErr: "without a patch reference"},
		{name: "missing type", input: "patches: {p: {nodes: {'0': {args: [1]}}}}", wantErr: "missing type"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, _, err := Decode(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	doc, _, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))

	again, warnings, err := Decode(&buf)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	if diff := cmp.Diff(doc, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDirLoader(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(first, "voice.yaml"), "root: a\npatches: {a: {nodes: {'0': {type: osc~}}}}\n")
	writeFile(t, filepath.Join(second, "voice.yaml"), "root: b\npatches: {b: {}}\n")
	writeFile(t, filepath.Join(second, "nested", "echo.yml"),
		"root: e\npatches: {e: {connections: [{source: {node: x, portlet: 0}, sink: {node: y, portlet: 0}}]}}\n")
	writeFile(t, filepath.Join(second, "broken.yaml"), "patches: [\n")
	writeFile(t, filepath.Join(second, "notes.txt"), "ignored")

	ctx, _ := testutil.Context()
	loader, err := NewDirLoader(ctx, first, second, filepath.Join(first, "does-not-exist"))
	require.NoError(t, err)

	t.Run("first path wins", func(t *testing.T) {
		loaded, err := loader.Load(ctx, "voice")
		require.NoError(t, err)
		assert.Equal(t, "a", loaded.Pd.RootPatchID)
	})

	t.Run("nested files and warnings", func(t *testing.T) {
		loaded, err := loader.Load(ctx, "echo")
		require.NoError(t, err)
		assert.Len(t, loaded.Warnings, 1)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := loader.Load(ctx, "notes")
		assert.True(t, errors.Is(err, abstraction.ErrUnknownNodeType))
	})

	t.Run("parse error", func(t *testing.T) {
		_, err := loader.Load(ctx, "broken")
		var parseErr *abstraction.ParseError
		require.True(t, errors.As(err, &parseErr))
		require.Len(t, parseErr.Errors, 1)
		assert.Contains(t, parseErr.Errors[0], "broken.yaml")
	})
}

func TestDirLoader_FeedsInstantiate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "voice.yaml"), `
root: r
patches:
  r:
    nodes:
      in: {type: inlet~}
      osc: {type: osc~, args: [$1]}
      out: {type: outlet~}
    connections:
      - {source: {node: in, portlet: 0}, sink: {node: osc, portlet: 0}}
      - {source: {node: osc, portlet: 0}, sink: {node: out, portlet: 0}}
`)
	ctx, _ := testutil.Context()
	loader, err := NewDirLoader(ctx, dir)
	require.NoError(t, err)

	doc := testutil.NewPd().
		Root("0", func(p *testutil.PatchBuilder) {
			p.Node("0", "voice", 220).Node("1", "dac~").Connect("0", 0, "1", 0)
		}).
		Build()

	res, err := abstraction.Instantiate(ctx, doc, testutil.Registry(t), loader)
	require.NoError(t, err)
	require.True(t, res.OK(), res.Err())

	instance := res.Pd.Patches[res.RootPatch.Nodes["0"].PatchID]
	assert.Equal(t, []string{"in"}, instance.Inlets)
	assert.Equal(t, []string{"out"}, instance.Outlets)
	assert.Equal(t, []any{220}, instance.Args)
}
