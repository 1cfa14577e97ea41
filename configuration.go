package configure

import (
	"context"
	"sync"
	"time"

	"github.com/andreypopp/configure/internal/app"
	"github.com/andreypopp/configure/internal/core"
	"github.com/andreypopp/configure/internal/types"
)

// Source identifies one document read while loading, with the BLAKE3
// digest of its bytes.
type Source = types.Source

type state int

const (
	stateLoaded state = iota
	stateActive
	stateFailed
)

// Configuration is a loaded, merged tree. It becomes readable after a
// successful Activate.
type Configuration struct {
	mu      sync.Mutex
	opts    options
	tree    *types.Node
	sources []Source
	state   state
	root    *Section
}

// FromFile loads the document at path and everything it includes or
// extends.
func FromFile(path string, opts ...Option) (*Configuration, error) {
	return load(app.LoadRequest{Path: path}, opts)
}

// FromString loads a document from text. Relative !include and !extends
// paths resolve against originDir, the working directory when empty.
func FromString(text string, originDir string, opts ...Option) (*Configuration, error) {
	return load(app.LoadRequest{Text: text, Dir: originDir}, opts)
}

// FromValue builds a configuration from Go values: maps with string
// keys, slices, scalars, *Mapping values and marked trees.
func FromValue(value any, originDir string, opts ...Option) (*Configuration, error) {
	if value == nil {
		value = map[string]any{}
	}
	return load(app.LoadRequest{Value: value, Dir: originDir}, opts)
}

func load(req app.LoadRequest, opts []Option) (*Configuration, error) {
	o := newOptions(opts)
	req.Variables = o.variables
	req.Overrides = o.overrides
	result, err := o.service().Load(o.context(context.Background()), req)
	if err != nil {
		return nil, err
	}
	return &Configuration{opts: o, tree: result.Tree, sources: result.Sources}, nil
}

func (o options) service() app.Service {
	return app.NewService(o.registry.adapter)
}

func (o options) context(ctx context.Context) context.Context {
	if o.logger == nil {
		return ctx
	}
	return o.logger.WithContext(ctx)
}

// Activate resolves references and invokes factories. It must be called
// exactly once; on failure the configuration stays unreadable.
func (c *Configuration) Activate(ctx context.Context) (*Configuration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case stateActive:
		return c, stateError("configuration is already activated")
	case stateFailed:
		return c, stateError("configuration failed to activate before")
	}
	result, err := c.opts.service().Resolve(c.opts.context(ctx), app.ResolveRequest{Tree: c.tree})
	if err != nil {
		c.state = stateFailed
		return c, err
	}
	c.root = newRoot(result.Values)
	c.state = stateActive
	return c, nil
}

// Activated reports whether Activate succeeded.
func (c *Configuration) Activated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateActive
}

// Root returns the top-level section.
func (c *Configuration) Root() (*Section, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateActive {
		return nil, stateError("configuration is not activated")
	}
	return c.root, nil
}

// Merge returns a new unactivated configuration with other layered over
// c. Both must be unactivated.
func (c *Configuration) Merge(other *Configuration) (*Configuration, error) {
	if c == other {
		return nil, stateError("cannot merge a configuration with itself")
	}
	base, ok := c.loaded()
	if !ok {
		return nil, stateError("only unactivated configurations can be merged")
	}
	layer, ok := other.loaded()
	if !ok {
		return nil, stateError("only unactivated configurations can be merged")
	}
	return &Configuration{
		opts:    base.opts,
		tree:    core.DeepMerge(base.tree, layer.tree),
		sources: append(append([]Source(nil), base.sources...), layer.sources...),
	}, nil
}

type loadedState struct {
	opts    options
	tree    *types.Node
	sources []Source
}

// loaded copies out what Merge needs while holding only c's lock. The
// tree is never modified after loading.
func (c *Configuration) loaded() (loadedState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateLoaded {
		return loadedState{}, false
	}
	return loadedState{opts: c.opts, tree: c.tree, sources: c.sources}, true
}

// Sources lists the documents read, in load order.
func (c *Configuration) Sources() []Source {
	return append([]Source(nil), c.sources...)
}

// FormatTree renders the merged tree before resolution, markers
// included.
func (c *Configuration) FormatTree() (string, error) {
	out, err := core.FormatNode(c.tree)
	return string(out), err
}

func (c *Configuration) Get(key string) (any, error) {
	root, err := c.Root()
	if err != nil {
		return nil, err
	}
	return root.Get(key)
}

func (c *Configuration) Attr(name string) (any, error) {
	root, err := c.Root()
	if err != nil {
		return nil, err
	}
	return root.Attr(name)
}

func (c *Configuration) Lookup(path string) (any, error) {
	root, err := c.Root()
	if err != nil {
		return nil, err
	}
	return root.Lookup(path)
}

func (c *Configuration) Section(key string) (*Section, error) {
	root, err := c.Root()
	if err != nil {
		return nil, err
	}
	return root.Section(key)
}

func (c *Configuration) Keys() ([]string, error) {
	root, err := c.Root()
	if err != nil {
		return nil, err
	}
	return root.Keys(), nil
}

func (c *Configuration) Has(key string) (bool, error) {
	root, err := c.Root()
	if err != nil {
		return false, err
	}
	return root.Has(key), nil
}

func (c *Configuration) Len() (int, error) {
	root, err := c.Root()
	if err != nil {
		return 0, err
	}
	return root.Len(), nil
}

func (c *Configuration) Decode(out any) error {
	root, err := c.Root()
	if err != nil {
		return err
	}
	return root.Decode(out)
}

func (c *Configuration) Format() (string, error) {
	root, err := c.Root()
	if err != nil {
		return "", err
	}
	return root.Format()
}

func (c *Configuration) GetString(key string) (string, error) {
	return typed(c, key, (*Section).GetString)
}

func (c *Configuration) GetInt(key string) (int, error) {
	return typed(c, key, (*Section).GetInt)
}

func (c *Configuration) GetBool(key string) (bool, error) {
	return typed(c, key, (*Section).GetBool)
}

func (c *Configuration) GetFloat(key string) (float64, error) {
	return typed(c, key, (*Section).GetFloat)
}

func (c *Configuration) GetDuration(key string) (time.Duration, error) {
	return typed(c, key, (*Section).GetDuration)
}

func (c *Configuration) GetStringSlice(key string) ([]string, error) {
	return typed(c, key, (*Section).GetStringSlice)
}

func typed[T any](c *Configuration, key string, get func(*Section, string) (T, error)) (T, error) {
	root, err := c.Root()
	if err != nil {
		var zero T
		return zero, err
	}
	return get(root, key)
}
