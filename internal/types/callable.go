package types

import "context"

// Arguments are the resolved arguments of a factory call. A sequence
// argument node produces Positional, a mapping node produces Keyword;
// the two are never combined.
type Arguments struct {
	Positional []any
	Keyword    *Mapping
}

func (a Arguments) Len() int {
	return len(a.Positional) + a.Keyword.Len()
}

// Callable is a registered object that can be invoked by a factory
// marker.
type Callable interface {
	Call(ctx context.Context, args Arguments) (any, error)
}

// CallableFunc adapts a plain function to Callable.
type CallableFunc func(ctx context.Context, args Arguments) (any, error)

func (f CallableFunc) Call(ctx context.Context, args Arguments) (any, error) {
	return f(ctx, args)
}
