package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}
	err := run(out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_BadManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := filepath.Join(dir, "types.hcl")
	require.NoError(t, os.WriteFile(manifest, []byte(`node_type "x" {`), 0o600))
	patch := filepath.Join(dir, "p.yaml")
	require.NoError(t, os.WriteFile(patch, []byte("patches: {p: {}}"), 0o600))

	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"-manifest", manifest, patch})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load node types")
}

func TestRun_CompilesToStdout(t *testing.T) {
	t.Parallel()

	patch := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(patch, []byte(`
root: "0"
patches:
  "0":
    nodes:
      "0": {type: loadbang}
      "1": {type: print}
    connections:
      - {source: {node: "0", portlet: 0}, sink: {node: "1", portlet: 0}}
`), 0o600))

	out := &bytes.Buffer{}
	err := run(out, &bytes.Buffer{}, []string{"-log-format", "text", patch})

	require.NoError(t, err)
	require.Contains(t, out.String(), `"n_1_0"`)
	require.Contains(t, out.String(), `"type": "loadbang"`)
}
