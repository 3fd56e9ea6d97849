package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/patchc/internal/pd"
)

func TestNew_FlattensAliasChains(t *testing.T) {
	osc := &Builder{}
	entries := Entries{}
	entries.Add("osc~", osc)
	entries.Alias("osc", "osc~")
	entries.Alias("sine", "osc")

	r, err := New(entries)
	require.NoError(t, err)

	for _, name := range []string{"osc~", "osc", "sine"} {
		t.Run(name, func(t *testing.T) {
			resolved, ok := r.Resolve(name)
			require.True(t, ok)
			assert.Equal(t, "osc~", resolved.Type)
			assert.Same(t, osc, resolved.Builder)
		})
	}

	_, ok := r.Resolve("phasor~")
	assert.False(t, ok)
	assert.Equal(t, []string{"osc", "osc~", "sine"}, r.Types())
}

func TestNew_RejectsBadAliases(t *testing.T) {
	testCases := []struct {
		name    string
		entries Entries
		wantErr string
	}{
		{
			name:    "self alias",
			entries: Entries{"a": {AliasTo: "a"}},
			wantErr: "alias cycle detected: a -> a",
		},
		{
			name:    "longer cycle",
			entries: Entries{"a": {AliasTo: "b"}, "b": {AliasTo: "c"}, "c": {AliasTo: "a"}},
			wantErr: "alias cycle detected",
		},
		{
			name:    "dangling alias",
			entries: Entries{"a": {AliasTo: "missing"}},
			wantErr: "alias 'a' points to unknown type 'missing'",
		},
		{
			name:    "empty entry",
			entries: Entries{"a": {}},
			wantErr: "neither builder nor alias",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.entries)
			require.Error(t, err)
			assert.ErrorContains(t, err, "registry validation failed")
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestEntries_DuplicatePanics(t *testing.T) {
	entries := Entries{}
	entries.Add("a", &Builder{})
	assert.Panics(t, func() { entries.Add("a", &Builder{}) })
	assert.Panics(t, func() { entries.Alias("a", "b") })
}

func TestBuilder_DefaultHooks(t *testing.T) {
	b := &Builder{}

	args, err := b.Translate(&pd.Node{Type: "x"})
	require.NoError(t, err)
	assert.Empty(t, args)

	ports, err := b.Ports(args)
	require.NoError(t, err)
	assert.Empty(t, ports.Inlets)

	_, ok := b.Reroute("0")
	assert.False(t, ok)
	_, ok = b.MessageToSignal("0", args)
	assert.False(t, ok)
}
