package trace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	src := `# comment
1000
3

4
1
a 0 16
r 0 40
f 0
a 2 0
`
	tr, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 1000, tr.SuggestedHeap)
	assert.Equal(t, 3, tr.NumIDs)
	assert.Equal(t, 1, tr.Weight)
	require.Equal(t, []Op{
		{Kind: OpAlloc, ID: 0, Size: 16, Line: 7},
		{Kind: OpRealloc, ID: 0, Size: 40, Line: 8},
		{Kind: OpFree, ID: 0, Line: 9},
		{Kind: OpAlloc, ID: 2, Size: 0, Line: 10},
	}, tr.Ops)
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"bad header", "x\n1\n1\n1\na 0 1\n", "line 1: header field 1"},
		{"truncated header", "10\n1\n", "truncated header"},
		{"unknown op", "10\n1\n1\n1\nm 0 1\n", `line 5: unknown op "m"`},
		{"missing size", "10\n1\n1\n1\na 0\n", "alloc takes 2 fields"},
		{"extra field on free", "10\n1\n1\n1\nf 0 8\n", "free takes 1 fields"},
		{"id out of range", "10\n2\n1\n1\na 2 8\n", `id "2" out of range [0,2)`},
		{"negative size", "10\n1\n1\n1\na 0 -4\n", `size "-4"`},
		{"op count", "10\n1\n2\n1\na 0 8\n", "header declares 2 ops, found 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.src))
			require.ErrorIs(t, err, ErrSyntax)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseFile(t *testing.T) {
	tr, err := ParseFile("testdata/short1.rep")
	require.NoError(t, err)
	require.Equal(t, "short1", tr.Name)
	require.Len(t, tr.Ops, 12)

	_, err = ParseFile("testdata/missing.rep")
	require.Error(t, err)
}

func TestOpKind_String(t *testing.T) {
	assert.Equal(t, "alloc", OpAlloc.String())
	assert.Equal(t, "realloc", OpRealloc.String())
	assert.Equal(t, "free", OpFree.String())
	assert.Equal(t, `OpKind('x')`, OpKind('x').String())
}
