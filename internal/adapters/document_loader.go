package adapters

import (
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"

	"github.com/andreypopp/configure/internal/ports"
	"github.com/andreypopp/configure/internal/types"
)

// FileDocumentLoader reads documents from the filesystem and caches them
// by absolute path. A loader lives for one load/merge run; it is not
// safe for concurrent use.
type FileDocumentLoader struct {
	Parser    ports.DocumentParserPort
	Variables map[string]string

	cache   map[string]*types.Document
	sources []types.Source
}

func NewFileDocumentLoader(parser ports.DocumentParserPort, variables map[string]string) *FileDocumentLoader {
	return &FileDocumentLoader{
		Parser:    parser,
		Variables: variables,
		cache:     map[string]*types.Document{},
	}
}

func (l *FileDocumentLoader) Load(ctx context.Context, path string) (*types.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, types.NewError(types.KindNotFound, "cannot resolve document path").
			WithPath(path).
			WithCause(err)
	}
	if doc, ok := l.cache[abs]; ok {
		log.Ctx(ctx).Debug().Str("path", abs).Msg("document served from cache")
		return doc, nil
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, types.NewError(types.KindNotFound, "cannot read document").
			WithPath(abs).
			WithCause(err)
	}
	doc, err := l.parse(ctx, abs, filepath.Dir(abs), data)
	if err != nil {
		return nil, err
	}
	l.cache[abs] = doc
	return doc, nil
}

// Parse registers an in-memory document. In-memory documents are not
// cached since they have no path to be reached by again.
func (l *FileDocumentLoader) Parse(ctx context.Context, name string, dir string, data []byte) (*types.Document, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, types.NewError(types.KindNotFound, "cannot resolve origin directory").
			WithPath(dir).
			WithCause(err)
	}
	return l.parse(ctx, name, abs, data)
}

// Sources lists every parsed document in load order.
func (l *FileDocumentLoader) Sources() []types.Source {
	return append([]types.Source(nil), l.sources...)
}

func (l *FileDocumentLoader) parse(ctx context.Context, name string, dir string, data []byte) (*types.Document, error) {
	vars := make(map[string]string, len(l.Variables)+1)
	for key, value := range l.Variables {
		vars[key] = value
	}
	vars["pwd"] = dir

	text, err := Interpolate(string(data), vars)
	if err != nil {
		var typed *types.Error
		if errors.As(err, &typed) {
			typed.Path = name
		}
		return nil, err
	}
	root, err := l.Parser.Parse(name, []byte(text))
	if err != nil {
		return nil, err
	}

	sum := blake3.Sum256(data)
	doc := &types.Document{
		Path:   name,
		Dir:    dir,
		Root:   root,
		Digest: hex.EncodeToString(sum[:]),
	}
	l.sources = append(l.sources, types.Source{Path: name, Digest: doc.Digest})
	log.Ctx(ctx).Debug().
		Str("path", name).
		Str("digest", doc.Digest[:16]).
		Msg("document loaded")
	return doc, nil
}

var _ ports.DocumentLoaderPort = (*FileDocumentLoader)(nil)
