package app

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andreypopp/configure/internal/core"
	"github.com/andreypopp/configure/internal/types"
)

const defaultDocumentName = "<string>"

// Load reads one source with a fresh document cache and expands its
// !include and !extends markers. Overrides are layered on top.
func (s Service) Load(ctx context.Context, req LoadRequest) (LoadResult, error) {
	loader := s.NewLoader(s.Parser, req.Variables)

	var doc *types.Document
	var err error
	switch {
	case strings.TrimSpace(req.Path) != "":
		doc, err = loader.Load(ctx, req.Path)
	case req.Value != nil:
		doc, err = s.documentFromValue(req)
	default:
		name := req.Name
		if name == "" {
			name = defaultDocumentName
		}
		doc, err = loader.Parse(ctx, name, s.originDir(req.Dir), []byte(req.Text))
	}
	if err != nil {
		return LoadResult{}, err
	}

	tree, err := core.NewMergeEngine(loader).Merge(ctx, doc)
	if err != nil {
		return LoadResult{}, err
	}
	if len(req.Overrides) > 0 {
		tree, err = s.ApplyOverrides(tree, req.Overrides)
		if err != nil {
			return LoadResult{}, err
		}
	}
	if err := checkRoot(tree); err != nil {
		return LoadResult{}, err
	}
	sources := loader.Sources()
	log.Ctx(ctx).Debug().
		Str("document", doc.Path).
		Int("sources", len(sources)).
		Msg("configuration loaded")
	return LoadResult{Tree: tree, Sources: sources}, nil
}

func (s Service) documentFromValue(req LoadRequest) (*types.Document, error) {
	root, err := types.NodeFromValue(req.Value)
	if err != nil {
		return nil, types.NewError(types.KindSyntax, "cannot build configuration from value").WithCause(err)
	}
	name := req.Name
	if name == "" {
		name = "<value>"
	}
	return &types.Document{Path: name, Dir: s.originDir(req.Dir), Root: root}, nil
}

func (s Service) originDir(dir string) string {
	if dir != "" {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func checkRoot(tree *types.Node) error {
	if tree.Kind != types.MappingNode || tree.Marker != nil {
		return types.NewError(types.KindSyntax, "configuration root must be a plain mapping, got "+tree.Kind.String())
	}
	return nil
}
