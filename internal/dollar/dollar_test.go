package dollar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/patchc/internal/pd"
)

func TestResolve(t *testing.T) {
	withArgs := &pd.Patch{ID: "0", Args: []any{"hihi", "haha", 123}}

	testCases := []struct {
		name   string
		token  string
		patch  *pd.Patch
		want   any
		wantOK bool
	}{
		{name: "patch id in string", token: "$0-BLA", patch: &pd.Patch{ID: "111"}, want: "111-BLA", wantOK: true},
		{name: "bare patch id is numeric", token: "$0", patch: &pd.Patch{ID: "111"}, want: 111, wantOK: true},
		{name: "several refs in string", token: "BLA-$1$3", patch: withArgs, want: "BLA-hihi123", wantOK: true},
		{name: "bare ref keeps raw value", token: "$3", patch: withArgs, want: 123, wantOK: true},
		{name: "bare ref string value", token: "$2", patch: withArgs, want: "haha", wantOK: true},
		{name: "bare ref out of range", token: "$10", patch: withArgs, want: nil, wantOK: false},
		{name: "embedded ref out of range stays literal", token: "BLA-$1-$10", patch: withArgs, want: "BLA-hihi-$10", wantOK: true},
		{name: "unset arg stays literal in string", token: "x-$1", patch: &pd.Patch{ID: "0", Args: []any{nil}}, want: "x-$1", wantOK: true},
		{name: "bare unset arg", token: "$1", patch: &pd.Patch{ID: "0", Args: []any{nil}}, want: nil, wantOK: false},
		{name: "no refs", token: "osc~", patch: withArgs, want: "osc~", wantOK: true},
		{name: "non numeric patch id", token: "$0", patch: &pd.Patch{ID: "main"}, want: "main", wantOK: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Resolve(tc.token, tc.patch)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveArgs(t *testing.T) {
	patch := &pd.Patch{ID: "7", Args: []any{440.0, "sine"}}

	got := ResolveArgs([]any{"$1", 2.0, "$0-table", "$5", "$2"}, patch)

	assert.Equal(t, []any{440.0, 2.0, "7-table", nil, "sine"}, got)
	assert.Nil(t, ResolveArgs(nil, patch))
}
