package adapters

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreypopp/configure/internal/types"
)

func parse(t *testing.T, text string) *types.Node {
	t.Helper()
	node, err := NewYAMLDocumentAdapter().Parse("test.yaml", []byte(text))
	require.NoError(t, err)
	return node
}

func TestParseMarkerTags(t *testing.T) {
	root := parse(t, `
shared: !include:shared.yaml
uri: !ref:db.uri
sibling: !ref:.uri
conn: !factory:app.connect
  uri: x
args: !factory:app.pair [1, 2]
noargs: !factory:app.make
clock: !obj:time.now
`)
	tests := []struct {
		key    string
		marker *types.Marker
		kind   types.NodeKind
	}{
		{"shared", types.Include("shared.yaml"), types.ScalarNode},
		{"uri", types.Reference("db.uri"), types.ScalarNode},
		{"sibling", types.Reference(".uri"), types.ScalarNode},
		{"conn", types.Construct("app.connect", true), types.MappingNode},
		{"args", types.Construct("app.pair", true), types.SequenceNode},
		{"noargs", types.Construct("app.make", true), types.ScalarNode},
		{"clock", types.Construct("time.now", false), types.ScalarNode},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			node, ok := root.Get(tt.key)
			require.True(t, ok)
			assert.True(t, tt.marker.Equal(node.Marker), "got marker %v", node.Marker)
			assert.Equal(t, tt.kind, node.Kind)
		})
	}
}

func TestParseConvenienceTags(t *testing.T) {
	root := parse(t, `
timeout: !timedelta 5m
pattern: !re '^a+$'
size: !bytesize 10k
`)
	timeout, _ := root.Get("timeout")
	require.NotNil(t, timeout.Marker)
	assert.Equal(t, types.Construct(BuiltinTimedelta, true), timeout.Marker)
	require.Len(t, timeout.Items, 1)
	assert.Equal(t, "5m", timeout.Items[0].Value)

	pattern, _ := root.Get("pattern")
	assert.Equal(t, BuiltinRegexp, pattern.Marker.Target)
	assert.Equal(t, "^a+$", pattern.Items[0].Value)

	size, _ := root.Get("size")
	assert.Equal(t, BuiltinBytesize, size.Marker.Target)
	assert.Equal(t, "10k", size.Items[0].Value)
}

func TestParsePlainScalarsAreTyped(t *testing.T) {
	root := parse(t, `
int: 3
float: 1.5
bool: true
null:
str: "3"
std: !!str 4
`)
	cases := map[string]any{
		"int":   3,
		"float": 1.5,
		"bool":  true,
		"null":  nil,
		"str":   "3",
		"std":   "4",
	}
	for key, want := range cases {
		node, ok := root.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, want, node.Value, key)
		assert.Nil(t, node.Marker, key)
	}
}

func TestParseExtendsOnRoot(t *testing.T) {
	root := parse(t, `!extends:base.yaml
a: 1
`)
	assert.Equal(t, types.Extends("base.yaml"), root.Marker)
	assert.Equal(t, types.MappingNode, root.Kind)
	assert.Equal(t, []string{"a"}, root.Keys())

	empty := parse(t, `!extends:base.yaml`)
	assert.Equal(t, types.MappingNode, empty.Kind)
	assert.Empty(t, empty.Fields)
}

func TestParseEmptyDocument(t *testing.T) {
	root := parse(t, "")
	assert.Equal(t, types.MappingNode, root.Kind)
	assert.Empty(t, root.Fields)
}

func TestParseMergeKey(t *testing.T) {
	root := parse(t, `
defaults: &defaults
  a: 1
  b: 2
item:
  <<: *defaults
  b: 3
`)
	item, _ := root.Get("item")
	assert.Equal(t, []string{"a", "b"}, item.Keys())
	b, _ := item.Get("b")
	assert.Equal(t, 3, b.Value)
}

func TestParseJSONC(t *testing.T) {
	node, err := NewYAMLDocumentAdapter().Parse("conf.jsonc", []byte(`{
  // comment
  "a": 1,
  "b": [1, 2,],
}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, node.Keys())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		msg  string
	}{
		{"unknown tag", "a: !bogus:x 1", "unknown tag"},
		{"tag without argument", "a: !ref 1", "requires an argument"},
		{"extends off root", "a: !extends:base.yaml\n  b: 1", "only allowed on the document root"},
		{"ref with content", "a: !ref:b 1", "takes no content"},
		{"obj with content", "a: !obj:x {b: 1}", "takes no content"},
		{"factory scalar args", "a: !factory:x 1", "mapping or a sequence"},
		{"duplicate key", "a: 1\na: 2", "duplicate mapping key"},
		{"convenience tag with argument", "a: !timedelta:x 5m", "takes no argument"},
		{"empty convenience tag", "a: !re", "requires a non-empty scalar"},
		{"malformed", "a: [1, 2", "malformed document"},
		{"self-referencing alias", "a: &x\n  b: *x\n", "recursive alias"},
		{"alias inside own sequence", "a: &x\n  - 1\n  - *x\n", "recursive alias"},
		{"merge key on own anchor", "a: &x\n  b: 1\n  <<: *x\n", "recursive alias"},
		{"alias expansion limit", nestedAliases(5), "too many alias expansions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYAMLDocumentAdapter().Parse("test.yaml", []byte(tt.text))
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrSyntax)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

// nestedAliases builds a document where each level repeats the previous
// level's anchor ten times.
func nestedAliases(levels int) string {
	var b strings.Builder
	b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i <= levels; i++ {
		fmt.Fprintf(&b, "l%d: &l%d [", i, i)
		for j := 0; j < 10; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "*l%d", i-1)
		}
		b.WriteString("]\n")
	}
	return b.String()
}

func TestParseRepeatedAliases(t *testing.T) {
	node, err := NewYAMLDocumentAdapter().Parse("test.yaml", []byte("base: &b\n  x: 1\none: *b\ntwo: *b\n"))
	require.NoError(t, err)
	one, ok := node.Get("one")
	require.True(t, ok)
	two, ok := node.Get("two")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, one.Keys())
	assert.Equal(t, []string{"x"}, two.Keys())
}
