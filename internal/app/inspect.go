package app

import (
	"context"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/andreypopp/configure/internal/types"
)

// Inspect loads a document without resolving it and reports what it was
// built from and which markers resolution would evaluate.
func (s Service) Inspect(ctx context.Context, req InspectRequest) (InspectResult, error) {
	if strings.TrimSpace(req.Load.Path) == "" && req.Load.Text == "" && req.Load.Value == nil {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("a document path, text or value is required")
	}
	loaded, err := s.Load(ctx, req.Load)
	if err != nil {
		return InspectResult{}, err
	}
	counts := map[string]*InspectMarkerSummary{}
	collectMarkers(loaded.Tree, counts)

	var markers []InspectMarkerSummary
	for _, key := range sortedKeys(counts) {
		markers = append(markers, *counts[key])
	}
	return InspectResult{Sources: loaded.Sources, Markers: markers}, nil
}

func collectMarkers(node *types.Node, counts map[string]*InspectMarkerSummary) {
	if node.Marker != nil {
		key := node.Marker.String()
		summary, ok := counts[key]
		if !ok {
			summary = &InspectMarkerSummary{Marker: key, Kind: markerKind(node.Marker), Target: node.Marker.Target}
			counts[key] = summary
		}
		summary.Count++
	}
	for _, item := range node.Items {
		collectMarkers(item, counts)
	}
	for _, field := range node.Fields {
		collectMarkers(field.Value, counts)
	}
}

func markerKind(marker *types.Marker) string {
	if marker.Kind == types.MarkerConstruct && !marker.Call {
		return "obj"
	}
	return marker.Kind.String()
}

func sortedKeys[T any](values map[string]T) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
