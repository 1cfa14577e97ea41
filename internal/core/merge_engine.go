package core

import (
	"context"
	"path/filepath"
	"slices"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"

	"github.com/andreypopp/configure/internal/ports"
	"github.com/andreypopp/configure/internal/types"
)

// MergeEngine expands !include and !extends markers across documents,
// producing a tree that carries only !ref and !factory/!obj markers.
type MergeEngine struct {
	Loader ports.DocumentLoaderPort
}

func NewMergeEngine(loader ports.DocumentLoaderPort) MergeEngine {
	return MergeEngine{Loader: loader}
}

// Merge expands doc. Cached document trees are never modified; the
// result is a fresh tree.
func (e MergeEngine) Merge(ctx context.Context, doc *types.Document) (*types.Node, error) {
	assert.NotEmpty(ctx, doc.Dir, "document directory must be set")
	var stack []string
	if filepath.IsAbs(doc.Path) {
		stack = append(stack, doc.Path)
	}
	merged, err := e.expand(ctx, doc.Root, doc.Dir, stack)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().Str("document", doc.Path).Msg("document merged")
	return merged, nil
}

// expand works post-order: children first, then the node's own marker.
// stack holds the documents currently being expanded, outermost first.
func (e MergeEngine) expand(ctx context.Context, node *types.Node, dir string, stack []string) (*types.Node, error) {
	if node.Marker != nil {
		switch node.Marker.Kind {
		case types.MarkerInclude:
			return e.expandDocument(ctx, node, dir, stack)
		case types.MarkerExtends:
			base, err := e.expandDocument(ctx, node, dir, stack)
			if err != nil {
				return nil, err
			}
			override, err := e.expandChildren(ctx, node.WithoutMarker(), dir, stack)
			if err != nil {
				return nil, err
			}
			return DeepMerge(base, override), nil
		}
	}
	return e.expandChildren(ctx, node, dir, stack)
}

func (e MergeEngine) expandChildren(ctx context.Context, node *types.Node, dir string, stack []string) (*types.Node, error) {
	out := &types.Node{Kind: node.Kind, Value: node.Value, Origin: node.Origin}
	if node.Marker != nil {
		marker := *node.Marker
		out.Marker = &marker
	}
	switch node.Kind {
	case types.SequenceNode:
		out.Items = make([]*types.Node, 0, len(node.Items))
		for _, item := range node.Items {
			child, err := e.expand(ctx, item, dir, stack)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, child)
		}
	case types.MappingNode:
		out.Fields = make([]types.Field, 0, len(node.Fields))
		for _, field := range node.Fields {
			child, err := e.expand(ctx, field.Value, dir, stack)
			if err != nil {
				return nil, err
			}
			out.Fields = append(out.Fields, types.Field{Key: field.Key, Value: child})
		}
	}
	return out, nil
}

// expandDocument loads the document named by node's marker relative to
// dir and expands it in its own directory.
func (e MergeEngine) expandDocument(ctx context.Context, node *types.Node, dir string, stack []string) (*types.Node, error) {
	target := node.Marker.Target
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	target = filepath.Clean(target)

	if i := slices.Index(stack, target); i >= 0 {
		cycle := append(slices.Clone(stack[i:]), target)
		return nil, types.NewError(types.KindCompositionCycle, "document expands into itself").
			WithPath(node.Origin.String()).
			WithCycle(cycle)
	}
	doc, err := e.Loader.Load(ctx, target)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().
		Str("marker", node.Marker.Kind.String()).
		Str("document", doc.Path).
		Int("depth", len(stack)).
		Msg("expanding document")
	return e.expand(ctx, doc.Root, doc.Dir, append(slices.Clone(stack), doc.Path))
}

// DeepMerge layers override on top of base. Mappings merge key by key,
// keeping base order and appending override-only keys in override order.
// Anything else, including sequences, mismatched kinds and marked nodes,
// is replaced by override. Neither input is modified.
func DeepMerge(base *types.Node, override *types.Node) *types.Node {
	if base == nil {
		return override.Clone()
	}
	if override == nil {
		return base.Clone()
	}
	if base.Kind != types.MappingNode || override.Kind != types.MappingNode ||
		base.Marker != nil || override.Marker != nil {
		return override.Clone()
	}
	out := &types.Node{
		Kind:   types.MappingNode,
		Origin: override.Origin,
		Fields: make([]types.Field, 0, len(base.Fields)+len(override.Fields)),
	}
	for _, field := range base.Fields {
		if layer, ok := override.Get(field.Key); ok {
			out.Fields = append(out.Fields, types.Field{Key: field.Key, Value: DeepMerge(field.Value, layer)})
			continue
		}
		out.Fields = append(out.Fields, types.Field{Key: field.Key, Value: field.Value.Clone()})
	}
	for _, field := range override.Fields {
		if _, ok := base.Get(field.Key); ok {
			continue
		}
		out.Fields = append(out.Fields, types.Field{Key: field.Key, Value: field.Value.Clone()})
	}
	return out
}
