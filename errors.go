package configure

import "github.com/andreypopp/configure/internal/types"

// Error is the error type returned by every stage. Use errors.Is with
// the sentinels below, or errors.As to read Kind, Path and Cycle.
type Error = types.Error

type ErrorKind = types.ErrorKind

const (
	KindNotFound          = types.KindNotFound
	KindSyntax            = types.KindSyntax
	KindCompositionCycle  = types.KindCompositionCycle
	KindCircularReference = types.KindCircularReference
	KindUnresolvedPath    = types.KindUnresolvedPath
	KindImport            = types.KindImport
	KindConstruction      = types.KindConstruction
	KindState             = types.KindState
)

var (
	ErrNotFound          = types.ErrNotFound
	ErrSyntax            = types.ErrSyntax
	ErrCompositionCycle  = types.ErrCompositionCycle
	ErrCircularReference = types.ErrCircularReference
	ErrUnresolvedPath    = types.ErrUnresolvedPath
	ErrImport            = types.ErrImport
	ErrConstruction      = types.ErrConstruction
	ErrState             = types.ErrState
)

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) ErrorKind {
	return types.KindOf(err)
}

func stateError(msg string) error {
	return types.NewError(types.KindState, msg)
}
