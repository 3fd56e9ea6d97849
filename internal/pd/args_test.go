package pd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatArg(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want string
	}{
		{name: "string", in: "hello", want: "hello"},
		{name: "integral float", in: 123.0, want: "123"},
		{name: "int", in: 7, want: "7"},
		{name: "fraction", in: 0.25, want: "0.25"},
		{name: "negative", in: -3.5, want: "-3.5"},
		{name: "nil", in: nil, want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatArg(tc.in))
		})
	}
}

func TestParseNumber(t *testing.T) {
	f, ok := ParseNumber("440")
	assert.True(t, ok)
	assert.Equal(t, 440.0, f)

	f, ok = ParseNumber(int64(3))
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	_, ok = ParseNumber("abc")
	assert.False(t, ok)
}

func TestSortIDs(t *testing.T) {
	ids := []string{"10", "b", "2", "a", "0"}
	SortIDs(ids)
	assert.Equal(t, []string{"0", "2", "10", "a", "b"}, ids)
}

func TestPatchClone_IsDeep(t *testing.T) {
	p := &Patch{
		ID:    "0",
		Args:  []any{"x"},
		Nodes: map[string]*Node{"0": {ID: "0", Type: "osc~", Args: []any{440.0}}},
	}
	c := p.Clone()
	c.Args[0] = "y"
	c.Nodes["0"].Args[0] = 220.0

	assert.Equal(t, "x", p.Args[0])
	assert.Equal(t, 440.0, p.Nodes["0"].Args[0])
}

func TestKind_RoundTrip(t *testing.T) {
	for _, k := range []Kind{KindGeneric, KindControl, KindSubpatch, KindArray, KindInlet, KindOutlet, KindText} {
		parsed, err := ParseKind(k.String())
		assert.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("widget")
	assert.Error(t, err)
}
