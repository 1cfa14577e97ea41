package adapters

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/andreypopp/configure/internal/shared"
	"github.com/andreypopp/configure/internal/types"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

type funcParam struct {
	name     string
	optional bool
}

// funcBinding calls a Go function with factory arguments. Sequence
// arguments bind by position. Mapping arguments bind by parameter name,
// or, for an unnamed function taking a single struct, by struct field.
type funcBinding struct {
	fn      reflect.Value
	inputs  []reflect.Type
	params  []funcParam
	withCtx bool
	binder  shared.Binder
}

// BindFunc adapts fn to types.Callable. fn may take a leading
// context.Context and must return (T), (T, error), (error) or nothing.
// Variadic functions are rejected.
func BindFunc(fn any, params ...string) (types.Callable, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%T is not a function", fn)
	}
	t := rv.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("variadic function %s cannot be bound", t)
	}
	b := &funcBinding{fn: rv, binder: shared.Binder{ErrorUnused: true}}
	start := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		b.withCtx = true
		start = 1
	}
	for i := start; i < t.NumIn(); i++ {
		b.inputs = append(b.inputs, t.In(i))
	}
	switch {
	case t.NumOut() <= 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return nil, fmt.Errorf("function %s must return (T), (T, error) or (error)", t)
	}

	if len(params) == 0 {
		return b, nil
	}
	if len(params) != len(b.inputs) {
		return nil, fmt.Errorf("%d parameter names given for %d parameters of %s", len(params), len(b.inputs), t)
	}
	seen := map[string]bool{}
	for _, raw := range params {
		name := strings.TrimSuffix(raw, "?")
		if name == "" || seen[name] {
			return nil, fmt.Errorf("invalid or duplicate parameter name %q", raw)
		}
		seen[name] = true
		b.params = append(b.params, funcParam{name: name, optional: name != raw})
	}
	return b, nil
}

func (b *funcBinding) Call(ctx context.Context, args types.Arguments) (any, error) {
	values, err := b.bind(args)
	if err != nil {
		return nil, err
	}
	in := make([]reflect.Value, 0, len(values)+1)
	if b.withCtx {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
	}
	in = append(in, values...)
	return b.results(b.fn.Call(in))
}

func (b *funcBinding) results(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if b.fn.Type().Out(0) == errorType {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	default:
		if err := asError(out[1]); err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

func (b *funcBinding) bind(args types.Arguments) ([]reflect.Value, error) {
	values := make([]reflect.Value, len(b.inputs))
	bound := make([]bool, len(b.inputs))

	switch {
	case args.Keyword != nil && args.Keyword.Len() > 0:
		if b.params == nil {
			if len(b.inputs) == 1 && isStructLike(b.inputs[0]) {
				value, err := b.binder.Assign(args.Keyword, b.inputs[0])
				if err != nil {
					return nil, err
				}
				return []reflect.Value{value}, nil
			}
			return nil, fmt.Errorf("keyword arguments need parameter names for %s", b.fn.Type())
		}
		var err error
		args.Keyword.Range(func(key string, arg any) bool {
			index := b.paramIndex(key)
			if index < 0 {
				err = fmt.Errorf("unexpected argument %q", key)
				return false
			}
			values[index], err = b.assign(key, arg, b.inputs[index])
			bound[index] = err == nil
			return err == nil
		})
		if err != nil {
			return nil, err
		}
	default:
		if len(args.Positional) > len(b.inputs) {
			return nil, fmt.Errorf("takes %d arguments, got %d", len(b.inputs), len(args.Positional))
		}
		for i, arg := range args.Positional {
			value, err := b.assign(fmt.Sprintf("argument %d", i), arg, b.inputs[i])
			if err != nil {
				return nil, err
			}
			values[i] = value
			bound[i] = true
		}
	}

	for i := range values {
		if bound[i] {
			continue
		}
		switch {
		case b.params != nil && b.params[i].optional:
		case b.params == nil && len(b.inputs) == 1 && isStructLike(b.inputs[0]) && args.Len() == 0:
		default:
			return nil, fmt.Errorf("missing argument %s", b.paramName(i))
		}
		values[i] = reflect.Zero(b.inputs[i])
	}
	return values, nil
}

func (b *funcBinding) assign(name string, arg any, target reflect.Type) (reflect.Value, error) {
	value, err := b.binder.Assign(arg, target)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

func (b *funcBinding) paramIndex(name string) int {
	for i, param := range b.params {
		if param.name == name {
			return i
		}
	}
	return -1
}

func (b *funcBinding) paramName(i int) string {
	if b.params != nil {
		return fmt.Sprintf("%q", b.params[i].name)
	}
	return fmt.Sprintf("%d", i)
}

func isStructLike(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}
