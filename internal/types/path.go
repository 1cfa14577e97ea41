package types

import (
	"fmt"
	"strings"
)

// Path addresses a location in a tree as a sequence of mapping keys and
// sequence indices. The empty path is the root.
type Path []string

// ParsePath splits a dot-delimited path. The empty string is the root.
func ParsePath(value string) (Path, error) {
	if value == "" {
		return Path{}, nil
	}
	segments := strings.Split(value, ".")
	for _, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("empty segment in path %q", value)
		}
	}
	return Path(segments), nil
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Child returns a new path extended by segment; p is left untouched.
func (p Path) Child(segment string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, segment)
}

// Parent returns the containing path. The root is its own parent.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1:len(p)-1]
}

// Display renders the path for messages, naming the root explicitly.
func (p Path) Display() string {
	if p.IsRoot() {
		return "<root>"
	}
	return p.String()
}

// ResolveReference turns a reference target into an absolute path.
// Targets without a leading dot are rooted at the tree root. A single
// leading dot addresses a sibling of the referencing node at from; every
// further dot climbs one more level.
func ResolveReference(from Path, target string) (Path, error) {
	dots := 0
	for dots < len(target) && target[dots] == '.' {
		dots++
	}
	rest, err := ParsePath(target[dots:])
	if err != nil {
		return nil, err
	}
	if dots == 0 {
		return rest, nil
	}
	base := from.Parent()
	for i := 1; i < dots; i++ {
		if base.IsRoot() {
			return nil, fmt.Errorf("reference %q climbs above the root from %s", target, from.Display())
		}
		base = base.Parent()
	}
	out := make(Path, 0, len(base)+len(rest))
	out = append(out, base...)
	return append(out, rest...), nil
}
