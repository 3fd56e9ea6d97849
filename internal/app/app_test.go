package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/patchc/internal/output"
	"github.com/vk/patchc/internal/patchfile"
	"github.com/vk/patchc/internal/testutil"
)

const voiceAbstraction = `
root: r
patches:
  r:
    nodes:
      osc: {type: osc~, args: [$1]}
      out: {type: outlet~}
    connections:
      - {source: {node: osc, portlet: 0}, sink: {node: out, portlet: 0}}
`

const chordPatch = `
root: main
patches:
  main:
    nodes:
      "0": {type: voice, args: [220]}
      "1": {type: voice, args: [330]}
      "2": {type: dac~}
    connections:
      - {source: {node: "0", portlet: 0}, sink: {node: "2", portlet: 0}}
      - {source: {node: "1", portlet: 0}, sink: {node: "2", portlet: 0}}
`

const loopPatch = `
root: main
patches:
  main:
    nodes:
      a: {type: +~}
      b: {type: +~}
    connections:
      - {source: {node: a, portlet: 0}, sink: {node: b, portlet: 0}}
      - {source: {node: b, portlet: 0}, sink: {node: a, portlet: 0}}
`

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestApp(t *testing.T, cfg Config) (*App, *bytes.Buffer, *testutil.SafeBuffer) {
	t.Helper()
	config, err := NewConfig(cfg)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logs := &testutil.SafeBuffer{}
	a, err := NewApp(context.Background(), out, logs, config)
	require.NoError(t, err)
	return a, out, logs
}

func TestRun_CompilesPatchWithAbstractions(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	abstractions := filepath.Join(dir, "lib")
	writeFile(t, filepath.Join(abstractions, "voice.yaml"), voiceAbstraction)
	patch := writeFile(t, filepath.Join(dir, "chord.yaml"), chordPatch)
	resolved := filepath.Join(dir, "resolved.yaml")

	a, out, logs := newTestApp(t, Config{
		PatchPath:        patch,
		AbstractionPaths: []string{abstractions},
		EmitResolvedPath: resolved,
		LogLevel:         "debug",
		LogFormat:        "text",
		Validate:         true,
	})
	require.NoError(t, a.Run(context.Background()))

	var doc output.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))

	require.Contains(t, doc.Graph, "m_n_0_2_0__mixer")
	assert.Equal(t, "_mixer~", doc.Graph["m_n_0_2_0__mixer"].Type)
	require.Contains(t, doc.Graph, "n_1_osc")
	require.Contains(t, doc.Graph, "n_2_osc")
	assert.Equal(t, 220.0, doc.Graph["n_1_osc"].Args["frequency"])
	assert.Equal(t, 330.0, doc.Graph["n_2_osc"].Args["frequency"])
	assert.Equal(t, 220.0, doc.Graph["m_n_1_osc_0_sig"].Args["initValue"])
	assert.NotContains(t, doc.Graph, "n_0_0")

	emitted, _, err := patchfile.Load(resolved)
	require.NoError(t, err)
	assert.Len(t, emitted.Patches, 3)

	assert.Contains(t, logs.String(), "run_id=")
	assert.Contains(t, logs.String(), "Compilation finished.")
}

func TestRun_WritesOutputFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	patch := writeFile(t, filepath.Join(dir, "tone.yaml"), `
root: "0"
patches:
  "0":
    nodes:
      "0": {type: osc~, args: [440]}
      "1": {type: dac~}
    connections:
      - {source: {node: "0", portlet: 0}, sink: {node: "1", portlet: 0}}
      - {source: {node: "0", portlet: 0}, sink: {node: "1", portlet: 1}}
`)
	target := filepath.Join(dir, "out.yaml")

	a, out, _ := newTestApp(t, Config{PatchPath: patch, OutputPath: target, OutputFormat: "yaml"})
	require.NoError(t, a.Run(context.Background()))
	assert.Empty(t, out.String())

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "n_1_0:", "root \"0\" is renumbered past the highest id")
	assert.Contains(t, string(data), "osc~")
}

func TestRun_Failures(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		patch    string
		validate bool
		wantErr  string
	}{
		{
			name:    "unknown type",
			patch:   "root: m\npatches: {m: {nodes: {'0': {type: nope}, '1': {type: nope}}}}\n",
			wantErr: "unknown node type 'nope'",
		},
		{
			name:     "signal loop",
			patch:    loopPatch,
			validate: true,
			wantErr:  "signal loop detected",
		},
		{
			name:    "malformed document",
			patch:   "patches: [\n",
			wantErr: "failed to decode patch document",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			patch := writeFile(t, filepath.Join(t.TempDir(), "p.yaml"), tc.patch)
			a, _, _ := newTestApp(t, Config{PatchPath: patch, Validate: tc.validate})
			err := a.Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRun_LoopAllowedWithoutValidation(t *testing.T) {
	t.Parallel()
	patch := writeFile(t, filepath.Join(t.TempDir(), "p.yaml"), loopPatch)
	a, _, _ := newTestApp(t, Config{PatchPath: patch})
	assert.NoError(t, a.Run(context.Background()))
}

func TestNewConfig(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "missing patch", cfg: Config{}, wantErr: "PatchPath is a required"},
		{name: "bad format", cfg: Config{PatchPath: "p", OutputFormat: "xml"}, wantErr: "unknown output format"},
		{name: "bad level", cfg: Config{PatchPath: "p", LogLevel: "loud"}, wantErr: "invalid log level"},
		{name: "bad log format", cfg: Config{PatchPath: "p", LogFormat: "xml"}, wantErr: "invalid log format"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	cfg, err := NewConfig(Config{PatchPath: "p"})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.LogFormat)
}

func TestNewLogger_AutoFallsBackToJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	newLogger("info", "auto", &buf).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
