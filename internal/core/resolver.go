package core

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andreypopp/configure/internal/ports"
	"github.com/andreypopp/configure/internal/types"
)

// Resolver turns a merged tree into concrete values: references are
// followed and factories invoked, each tree path at most once.
type Resolver struct {
	Importer ports.ImporterPort
}

func NewResolver(importer ports.ImporterPort) Resolver {
	return Resolver{Importer: importer}
}

// Resolve resolves the whole tree eagerly and returns the root value.
func (r Resolver) Resolve(ctx context.Context, root *types.Node) (any, error) {
	run := r.Begin(ctx, root)
	value, err := run.resolvePath(types.Path{})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().
		Int("paths", len(run.memo)).
		Int("constructed", run.constructed).
		Msg("configuration resolved")
	return value, nil
}

// Begin starts a resolution over root. Values are memoized for the
// lifetime of the returned Resolution only.
func (r Resolver) Begin(ctx context.Context, root *types.Node) *Resolution {
	return &Resolution{
		ctx:      ctx,
		importer: r.Importer,
		root:     root,
		memo:     map[string]any{},
		active:   map[string]int{},
	}
}

// Resolution holds the memo and the in-progress stack of one resolver
// run. It is not safe for concurrent use.
type Resolution struct {
	ctx         context.Context
	importer    ports.ImporterPort
	root        *types.Node
	memo        map[string]any
	active      map[string]int
	stack       []string
	constructed int
}

// Resolve returns the value at a dot-delimited path.
func (r *Resolution) Resolve(path string) (any, error) {
	parsed, err := types.ParsePath(path)
	if err != nil {
		return nil, types.NewError(types.KindUnresolvedPath, "invalid path").
			WithPath(path).
			WithCause(err)
	}
	return r.resolvePath(parsed)
}

// Constructed reports how many factory and obj markers were evaluated.
func (r *Resolution) Constructed() int {
	return r.constructed
}

// memoKey joins segments with a separator that cannot occur in a
// reference, so keys containing dots never collide with nested paths.
func memoKey(path types.Path) string {
	return strings.Join(path, "\x1f")
}

func (r *Resolution) resolvePath(path types.Path) (any, error) {
	key := memoKey(path)
	if value, ok := r.memo[key]; ok {
		return value, nil
	}
	if start, ok := r.active[key]; ok {
		cycle := append(slices.Clone(r.stack[start:]), path.Display())
		return nil, types.NewError(types.KindCircularReference, "value depends on itself").
			WithPath(path.Display()).
			WithCycle(cycle)
	}
	node, consumed := r.locate(path)
	if node == nil {
		return nil, types.NewError(types.KindUnresolvedPath, "no such path").
			WithPath(path.Display())
	}

	r.active[key] = len(r.stack)
	r.stack = append(r.stack, path.Display())
	defer func() {
		delete(r.active, key)
		r.stack = r.stack[:len(r.stack)-1]
	}()

	var (
		value any
		err   error
	)
	if consumed < len(path) {
		var base any
		base, err = r.resolvePath(path[:consumed])
		if err != nil {
			return nil, err
		}
		value, err = Descend(base, path[consumed:])
		if err != nil {
			return nil, types.NewError(types.KindUnresolvedPath, "cannot descend into constructed value").
				WithPath(path.Display()).
				WithCause(err)
		}
	} else {
		value, err = r.resolveNode(node, path)
		if err != nil {
			return nil, err
		}
	}
	r.memo[key] = value
	return value, nil
}

// locate walks unmarked nodes along path. It stops early at a marked
// node, returning it with the number of segments consumed; the rest of
// the path then addresses the marked node's resolved value.
func (r *Resolution) locate(path types.Path) (*types.Node, int) {
	node := r.root
	for i, segment := range path {
		if node.Marker != nil {
			return node, i
		}
		child, ok := node.Child(segment)
		if !ok {
			return nil, i
		}
		node = child
	}
	return node, len(path)
}

func (r *Resolution) resolveNode(node *types.Node, path types.Path) (any, error) {
	if node.Marker == nil {
		return r.resolveContainer(node, path, r.resolvePath)
	}
	switch node.Marker.Kind {
	case types.MarkerReference:
		return r.reference(node.Marker, path, path)
	case types.MarkerConstruct:
		return r.construct(node, path)
	default:
		return nil, types.NewError(types.KindSyntax, fmt.Sprintf("unexpanded marker %s", node.Marker)).
			WithPath(path.Display())
	}
}

// reference resolves marker, a reference found at path at. Relative
// targets are taken from from.
func (r *Resolution) reference(marker *types.Marker, from types.Path, at types.Path) (any, error) {
	target, err := types.ResolveReference(from, marker.Target)
	if err != nil {
		return nil, types.NewError(types.KindUnresolvedPath, "invalid reference "+marker.String()).
			WithPath(at.Display()).
			WithCause(err)
	}
	if found, _ := r.locate(target); found == nil {
		return nil, types.NewError(types.KindUnresolvedPath,
			fmt.Sprintf("%s points at %s, which does not exist", marker, target.Display())).
			WithPath(at.Display())
	}
	return r.resolvePath(target)
}

// resolveContainer resolves an unmarked node, resolving children with
// child. Memoized tree walks pass resolvePath; factory arguments pass a
// walker that does not register paths.
func (r *Resolution) resolveContainer(node *types.Node, path types.Path, child func(types.Path) (any, error)) (any, error) {
	switch node.Kind {
	case types.ScalarNode:
		return node.Value, nil
	case types.SequenceNode:
		items := make([]any, 0, len(node.Items))
		for i := range node.Items {
			value, err := child(path.Child(strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	default:
		mapping := types.NewMappingValue()
		for _, field := range node.Fields {
			value, err := child(path.Child(field.Key))
			if err != nil {
				return nil, err
			}
			mapping.Set(field.Key, value)
		}
		return mapping, nil
	}
}

func (r *Resolution) construct(node *types.Node, path types.Path) (any, error) {
	marker := node.Marker
	if !marker.Call {
		value, err := r.importer.Import(marker.Target)
		if err != nil {
			return nil, r.importError(err, marker, path)
		}
		r.constructed++
		return value, nil
	}

	callable, err := r.importer.ImportCallable(marker.Target)
	if err != nil {
		return nil, r.importError(err, marker, path)
	}
	args, err := r.arguments(node, path)
	if err != nil {
		return nil, err
	}
	value, err := invoke(r.ctx, callable, args)
	if err != nil {
		return nil, types.NewError(types.KindConstruction, marker.String()+" failed").
			WithPath(path.Display()).
			WithCause(err)
	}
	r.constructed++
	log.Ctx(r.ctx).Debug().
		Str("path", path.Display()).
		Str("factory", marker.Target).
		Int("args", args.Len()).
		Msg("factory invoked")
	return value, nil
}

func (r *Resolution) importError(err error, marker *types.Marker, path types.Path) error {
	if types.KindOf(err) == types.KindImport {
		return types.NewError(types.KindImport, marker.String()).
			WithPath(path.Display()).
			WithCause(err)
	}
	return types.NewError(types.KindConstruction, marker.String()).
		WithPath(path.Display()).
		WithCause(err)
}

// arguments resolves a factory node's content: sequences bind by
// position, mappings by keyword, an empty node means no arguments.
// Relative references inside the arguments are taken from the factory
// node, so ".x" names a sibling of the factory.
func (r *Resolution) arguments(node *types.Node, path types.Path) (types.Arguments, error) {
	switch node.Kind {
	case types.SequenceNode:
		args := types.Arguments{Positional: make([]any, 0, len(node.Items))}
		for i, item := range node.Items {
			value, err := r.resolveArgument(item, path.Child(strconv.Itoa(i)), path)
			if err != nil {
				return types.Arguments{}, err
			}
			args.Positional = append(args.Positional, value)
		}
		return args, nil
	case types.MappingNode:
		args := types.Arguments{Keyword: types.NewMappingValue()}
		for _, field := range node.Fields {
			value, err := r.resolveArgument(field.Value, path.Child(field.Key), path)
			if err != nil {
				return types.Arguments{}, err
			}
			args.Keyword.Set(field.Key, value)
		}
		return args, nil
	default:
		if !node.IsEmpty() {
			return types.Arguments{}, types.NewError(types.KindSyntax, "factory arguments must be a mapping or a sequence").
				WithPath(path.Display())
		}
		return types.Arguments{}, nil
	}
}

// resolveArgument resolves a node inside factory arguments. Argument
// subtrees are evaluated once per factory call, which the factory's own
// memo entry already guarantees, so they are not memoized themselves.
func (r *Resolution) resolveArgument(node *types.Node, path types.Path, from types.Path) (any, error) {
	if node.Marker != nil {
		if node.Marker.Kind == types.MarkerReference {
			return r.reference(node.Marker, from, path)
		}
		return r.resolveNode(node, path)
	}
	lookup := func(child types.Path) (any, error) {
		next, ok := node.Child(child[len(child)-1])
		if !ok {
			return nil, types.NewError(types.KindUnresolvedPath, "no such path").WithPath(child.Display())
		}
		return r.resolveArgument(next, child, from)
	}
	return r.resolveContainer(node, path, lookup)
}

func invoke(ctx context.Context, callable types.Callable, args types.Arguments) (value any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	return callable.Call(ctx, args)
}
