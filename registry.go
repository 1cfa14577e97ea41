package configure

import (
	"sync"

	"github.com/andreypopp/configure/internal/adapters"
	"github.com/andreypopp/configure/internal/factories"
	"github.com/andreypopp/configure/internal/types"
)

// Registry maps dotted names to the objects !factory and !obj can
// reach. It is safe for concurrent use.
type Registry struct {
	adapter *adapters.RegistryAdapter
}

// Callable is implemented by registered objects that want to receive
// factory arguments unconverted.
type Callable = types.Callable

type Arguments = types.Arguments

// CallableFunc adapts a function to Callable.
type CallableFunc = types.CallableFunc

// Mapping is the ordered mapping resolved values are stored in.
type Mapping = types.Mapping

// NewRegistry returns a registry holding the built-in factories.
func NewRegistry() *Registry {
	r := &Registry{adapter: adapters.NewRegistryAdapter()}
	if err := factories.Register(r.adapter); err != nil {
		panic(err)
	}
	return r
}

// Register makes value reachable under name. Functions can be invoked
// with positional arguments, or with keyword arguments when they take a
// single struct.
func (r *Registry) Register(name string, value any) error {
	return r.adapter.Register(name, value)
}

// RegisterFunc registers fn with parameter names so it accepts keyword
// arguments. A name ending in '?' marks an optional parameter.
func (r *Registry) RegisterFunc(name string, fn any, params ...string) error {
	return r.adapter.RegisterFunc(name, fn, params...)
}

func (r *Registry) Names() []string {
	return r.adapter.Names()
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	return &Registry{adapter: r.adapter.Clone()}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry is used by configurations created without
// WithRegistry.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds value to the default registry.
func Register(name string, value any) error {
	return DefaultRegistry().Register(name, value)
}

// RegisterFunc adds fn to the default registry.
func RegisterFunc(name string, fn any, params ...string) error {
	return DefaultRegistry().RegisterFunc(name, fn, params...)
}
