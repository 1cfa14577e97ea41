package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Node {
	ref := NewScalar(nil)
	ref.Marker = Reference("a")
	return NewMapping(
		Field{Key: "a", Value: NewScalar(1)},
		Field{Key: "list", Value: NewSequence(NewScalar("x"), NewScalar("y"))},
		Field{Key: "b", Value: ref},
	)
}

func TestNodeChild(t *testing.T) {
	tree := sampleTree()

	item, ok := tree.Child("list")
	require.True(t, ok)
	second, ok := item.Child("1")
	require.True(t, ok)
	assert.Equal(t, "y", second.Value)

	_, ok = item.Child("2")
	assert.False(t, ok)
	_, ok = item.Child("x")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "list", "b"}, tree.Keys())
}

func TestNodeCloneIsDeep(t *testing.T) {
	tree := sampleTree()
	clone := tree.Clone()
	require.True(t, tree.Equal(clone))

	clone.Fields[1].Value.Items[0].Value = "changed"
	clone.Fields[2].Value.Marker.Target = "other"

	list, _ := tree.Get("list")
	assert.Equal(t, "x", list.Items[0].Value)
	b, _ := tree.Get("b")
	assert.Equal(t, "a", b.Marker.Target)
	assert.False(t, tree.Equal(clone))
}

func TestNodeEqualIgnoresOrigin(t *testing.T) {
	left := NewScalar("v")
	left.Origin = Origin{File: "a.yaml", Line: 1}
	right := NewScalar("v")
	right.Origin = Origin{File: "b.yaml", Line: 7}
	assert.True(t, left.Equal(right))
}

func TestNodeHasMarker(t *testing.T) {
	tree := sampleTree()
	assert.True(t, tree.HasMarker(MarkerReference))
	assert.False(t, tree.HasMarker(MarkerInclude, MarkerExtends))
}

func TestNodeFromValueSortsMapKeys(t *testing.T) {
	node, err := NodeFromValue(map[string]any{
		"b": []any{1, "two"},
		"a": map[string]any{"x": true},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, node.Keys())

	b, _ := node.Get("b")
	assert.Equal(t, SequenceNode, b.Kind)
	assert.Equal(t, 2, len(b.Items))
}

func TestNodeFromValueKeepsMappingOrder(t *testing.T) {
	m := NewMappingValue()
	m.Set("z", 1)
	m.Set("a", 2)
	node, err := NodeFromValue(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a"}, node.Keys())
}

func TestMappingSetKeepsPosition(t *testing.T) {
	m := NewMappingValue()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 3)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	value, _ := m.Get("a")
	assert.Equal(t, 3, value)
	assert.Equal(t, map[string]any{"a": 3, "b": 2}, m.Plain())
}

func TestErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(KindConstruction, "!factory:db failed").WithPath("db").WithCause(cause)
	wrapped := fmt.Errorf("activate: %w", err)

	assert.True(t, errors.Is(wrapped, ErrConstruction))
	assert.False(t, errors.Is(wrapped, ErrImport))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, KindConstruction, KindOf(wrapped))
	assert.Equal(t, "construction error: !factory:db failed (at db): boom", err.Error())
}

func TestErrorCycleMessage(t *testing.T) {
	err := NewError(KindCircularReference, "value depends on itself").WithCycle([]string{"a", "b", "a"})
	assert.Contains(t, err.Error(), "a -> b -> a")
}

func TestErrorBuilderCode(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		code errbuilder.ErrCode
	}{
		{KindNotFound, errbuilder.CodeNotFound},
		{KindSyntax, errbuilder.CodeInvalidArgument},
		{KindCompositionCycle, errbuilder.CodeFailedPrecondition},
		{KindCircularReference, errbuilder.CodeFailedPrecondition},
		{KindUnresolvedPath, errbuilder.CodeNotFound},
		{KindImport, errbuilder.CodeNotFound},
		{KindConstruction, errbuilder.CodeInternal},
		{KindState, errbuilder.CodeFailedPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := NewError(tt.kind, "x")
			assert.Equal(t, tt.code, errbuilder.CodeOf(err.Builder()))
		})
	}
}
