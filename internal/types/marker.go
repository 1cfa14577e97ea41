package types

import "fmt"

type MarkerKind int

const (
	MarkerInclude MarkerKind = iota + 1
	MarkerExtends
	MarkerReference
	MarkerConstruct
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerInclude:
		return "include"
	case MarkerExtends:
		return "extends"
	case MarkerReference:
		return "ref"
	case MarkerConstruct:
		return "factory"
	default:
		return fmt.Sprintf("MarkerKind(%d)", int(k))
	}
}

// Marker requests composition, inheritance, reference or construction
// behaviour for the node that carries it.
//
// Target is a document path for include/extends, a tree path for ref and
// a registered dotted name for construct. For construct, Call selects
// between invoking the target with the node's content as arguments and
// returning the target itself.
type Marker struct {
	Kind   MarkerKind
	Target string
	Call   bool
}

func Include(path string) *Marker {
	return &Marker{Kind: MarkerInclude, Target: path}
}

func Extends(path string) *Marker {
	return &Marker{Kind: MarkerExtends, Target: path}
}

func Reference(path string) *Marker {
	return &Marker{Kind: MarkerReference, Target: path}
}

func Construct(target string, call bool) *Marker {
	return &Marker{Kind: MarkerConstruct, Target: target, Call: call}
}

func (m *Marker) Equal(other *Marker) bool {
	if m == nil || other == nil {
		return m == other
	}
	return *m == *other
}

func (m *Marker) String() string {
	if m == nil {
		return ""
	}
	if m.Kind == MarkerConstruct && !m.Call {
		return "!obj:" + m.Target
	}
	return "!" + m.Kind.String() + ":" + m.Target
}
