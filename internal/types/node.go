package types

import (
	"fmt"
	"reflect"
	"strconv"
)

type NodeKind int

const (
	ScalarNode NodeKind = iota
	SequenceNode
	MappingNode
)

func (k NodeKind) String() string {
	switch k {
	case ScalarNode:
		return "scalar"
	case SequenceNode:
		return "sequence"
	case MappingNode:
		return "mapping"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Origin records where a node was read from.
type Origin struct {
	File   string
	Line   int
	Column int
}

func (o Origin) String() string {
	if o.File == "" {
		return fmt.Sprintf("line %d, column %d", o.Line, o.Column)
	}
	return fmt.Sprintf("%s:%d:%d", o.File, o.Line, o.Column)
}

// Node is one element of a parsed document tree. Exactly one of Value,
// Items or Fields is meaningful, selected by Kind.
type Node struct {
	Kind   NodeKind
	Value  any
	Items  []*Node
	Fields []Field
	Marker *Marker
	Origin Origin
}

// Field is one key/value pair of a mapping node.
type Field struct {
	Key   string
	Value *Node
}

func NewScalar(value any) *Node {
	return &Node{Kind: ScalarNode, Value: value}
}

func NewSequence(items ...*Node) *Node {
	return &Node{Kind: SequenceNode, Items: items}
}

func NewMapping(fields ...Field) *Node {
	return &Node{Kind: MappingNode, Fields: fields}
}

// IsEmpty reports whether the node carries no content: a null scalar, an
// empty string, or an empty collection.
func (n *Node) IsEmpty() bool {
	switch n.Kind {
	case ScalarNode:
		if n.Value == nil {
			return true
		}
		s, ok := n.Value.(string)
		return ok && s == ""
	case SequenceNode:
		return len(n.Items) == 0
	default:
		return len(n.Fields) == 0
	}
}

// Get returns the value stored under key in a mapping node.
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind != MappingNode {
		return nil, false
	}
	for _, field := range n.Fields {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// Index returns the i-th element of a sequence node.
func (n *Node) Index(i int) (*Node, bool) {
	if n.Kind != SequenceNode || i < 0 || i >= len(n.Items) {
		return nil, false
	}
	return n.Items[i], true
}

// Child looks up one path segment: a key for mappings, a decimal index
// for sequences.
func (n *Node) Child(segment string) (*Node, bool) {
	switch n.Kind {
	case MappingNode:
		return n.Get(segment)
	case SequenceNode:
		i, err := strconv.Atoi(segment)
		if err != nil {
			return nil, false
		}
		return n.Index(i)
	default:
		return nil, false
	}
}

// Keys returns mapping keys in insertion order.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.Fields))
	for _, field := range n.Fields {
		keys = append(keys, field.Key)
	}
	return keys
}

// Clone returns a deep copy. Scalar values are shared; they are immutable.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Kind: n.Kind, Value: n.Value, Origin: n.Origin}
	if n.Marker != nil {
		marker := *n.Marker
		out.Marker = &marker
	}
	if n.Items != nil {
		out.Items = make([]*Node, len(n.Items))
		for i, item := range n.Items {
			out.Items[i] = item.Clone()
		}
	}
	if n.Fields != nil {
		out.Fields = make([]Field, len(n.Fields))
		for i, field := range n.Fields {
			out.Fields[i] = Field{Key: field.Key, Value: field.Value.Clone()}
		}
	}
	return out
}

// WithoutMarker returns a shallow copy of n with the marker removed.
func (n *Node) WithoutMarker() *Node {
	out := *n
	out.Marker = nil
	return &out
}

// Equal compares two trees structurally, ignoring origins.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind || !n.Marker.Equal(other.Marker) {
		return false
	}
	switch n.Kind {
	case ScalarNode:
		return reflect.DeepEqual(n.Value, other.Value)
	case SequenceNode:
		if len(n.Items) != len(other.Items) {
			return false
		}
		for i := range n.Items {
			if !n.Items[i].Equal(other.Items[i]) {
				return false
			}
		}
		return true
	default:
		if len(n.Fields) != len(other.Fields) {
			return false
		}
		for i := range n.Fields {
			if n.Fields[i].Key != other.Fields[i].Key || !n.Fields[i].Value.Equal(other.Fields[i].Value) {
				return false
			}
		}
		return true
	}
}

// HasMarker reports whether any node in the tree carries a marker of
// one of the given kinds.
func (n *Node) HasMarker(kinds ...MarkerKind) bool {
	if n == nil {
		return false
	}
	if n.Marker != nil {
		for _, kind := range kinds {
			if n.Marker.Kind == kind {
				return true
			}
		}
	}
	for _, item := range n.Items {
		if item.HasMarker(kinds...) {
			return true
		}
	}
	for _, field := range n.Fields {
		if field.Value.HasMarker(kinds...) {
			return true
		}
	}
	return false
}
