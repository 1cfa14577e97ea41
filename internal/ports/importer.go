package ports

import "github.com/andreypopp/configure/internal/types"

// ImporterPort resolves dotted names to registered objects.
type ImporterPort interface {
	// Import returns the object itself, as used by !obj.
	Import(name string) (any, error)
	// ImportCallable returns an invocable form of the object, as used by
	// !factory.
	ImportCallable(name string) (types.Callable, error)
}
