package types

import (
	"errors"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindSyntax
	KindCompositionCycle
	KindCircularReference
	KindUnresolvedPath
	KindImport
	KindConstruction
	KindState
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its kind.
var (
	ErrNotFound          = errors.New("document not found")
	ErrSyntax            = errors.New("syntax error")
	ErrCompositionCycle  = errors.New("composition cycle")
	ErrCircularReference = errors.New("circular reference")
	ErrUnresolvedPath    = errors.New("unresolved path")
	ErrImport            = errors.New("import error")
	ErrConstruction      = errors.New("construction error")
	ErrState             = errors.New("state error")
)

var kindSentinels = map[ErrorKind]error{
	KindNotFound:          ErrNotFound,
	KindSyntax:            ErrSyntax,
	KindCompositionCycle:  ErrCompositionCycle,
	KindCircularReference: ErrCircularReference,
	KindUnresolvedPath:    ErrUnresolvedPath,
	KindImport:            ErrImport,
	KindConstruction:      ErrConstruction,
	KindState:             ErrState,
}

var kindCodes = map[ErrorKind]errbuilder.ErrCode{
	KindNotFound:          errbuilder.CodeNotFound,
	KindSyntax:            errbuilder.CodeInvalidArgument,
	KindCompositionCycle:  errbuilder.CodeFailedPrecondition,
	KindCircularReference: errbuilder.CodeFailedPrecondition,
	KindUnresolvedPath:    errbuilder.CodeNotFound,
	KindImport:            errbuilder.CodeNotFound,
	KindConstruction:      errbuilder.CodeInternal,
	KindState:             errbuilder.CodeFailedPrecondition,
}

func (k ErrorKind) String() string {
	if sentinel, ok := kindSentinels[k]; ok {
		return sentinel.Error()
	}
	return "unknown error"
}

// Code returns the errbuilder code used when the error leaves the
// library, e.g. for CLI exit codes.
func (k ErrorKind) Code() errbuilder.ErrCode {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return errbuilder.CodeInternal
}

// Error is returned by every stage of loading, merging and resolving.
// Path is a document path for loader and merge errors and a tree path
// for resolver errors.
type Error struct {
	Kind  ErrorKind
	Msg   string
	Path  string
	Cycle []string
	Cause error
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

func (e *Error) WithCycle(cycle []string) *Error {
	e.Cycle = append([]string(nil), cycle...)
	return e
}

func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Path != "" {
		b.WriteString(" (at ")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if len(e.Cycle) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Cycle, " -> "))
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Builder renders the error in errbuilder form so callers that switch on
// errbuilder codes see a consistent code per kind.
func (e *Error) Builder() *errbuilder.ErrBuilder {
	builder := errbuilder.New().
		WithCode(e.Kind.Code()).
		WithMsg(e.Error())
	if e.Cause != nil {
		builder = builder.WithCause(e.Cause)
	}
	return builder
}

func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) ErrorKind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return 0
}
