package app

import "github.com/andreypopp/configure/internal/types"

// LoadRequest names one source: a file Path, in-memory Text, or an
// already built Value. Dir anchors relative paths for Text and Value.
type LoadRequest struct {
	Path      string
	Text      string
	Name      string
	Value     any
	Dir       string
	Variables map[string]string
	Overrides []string
}

type LoadResult struct {
	Tree    *types.Node
	Sources []types.Source
}

type ResolveRequest struct {
	Tree *types.Node
}

type ResolveResult struct {
	Values      *types.Mapping
	Constructed int
}

type ValidateRequest struct {
	Load      LoadRequest
	MergeOnly bool
}

type ValidateResult struct {
	Sources     int
	Resolved    bool
	Constructed int
}

type InspectRequest struct {
	Load LoadRequest
}

// InspectMarkerSummary counts the occurrences of one marker in a merged
// tree.
type InspectMarkerSummary struct {
	Marker string
	Kind   string
	Target string
	Count  int
}

type InspectResult struct {
	Sources []types.Source
	Markers []InspectMarkerSummary
}
