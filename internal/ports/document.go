package ports

import (
	"context"

	"github.com/andreypopp/configure/internal/types"
)

// DocumentParserPort turns raw document bytes into a node tree.
type DocumentParserPort interface {
	// Parse decodes data read from file (used only for diagnostics).
	// Unknown marker tags and malformed content are syntax errors.
	Parse(file string, data []byte) (*types.Node, error)
}

// DocumentLoaderPort loads documents by filesystem path. Implementations
// parse each absolute path at most once and return the cached tree on
// repeat loads.
type DocumentLoaderPort interface {
	Load(ctx context.Context, path string) (*types.Document, error)
	// Parse registers an in-memory document rooted at dir.
	Parse(ctx context.Context, name string, dir string, data []byte) (*types.Document, error)
	Sources() []types.Source
}
