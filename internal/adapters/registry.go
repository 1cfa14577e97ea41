package adapters

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/andreypopp/configure/internal/ports"
	"github.com/andreypopp/configure/internal/types"
)

type registryEntry struct {
	value    any
	callable types.Callable
}

// RegistryAdapter maps dotted names to objects that factory and obj
// markers can reach. It is the only process-wide state and is safe for
// concurrent use.
type RegistryAdapter struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
}

func NewRegistryAdapter() *RegistryAdapter {
	return &RegistryAdapter{entries: map[string]registryEntry{}}
}

// Register makes value reachable under name. Values implementing
// types.Callable and plain Go functions can be invoked by !factory.
func (r *RegistryAdapter) Register(name string, value any) error {
	entry := registryEntry{value: value}
	if callable, ok := value.(types.Callable); ok {
		entry.callable = callable
	}
	return r.store(name, entry)
}

// RegisterFunc registers fn with named parameters so it can be called
// with keyword arguments. A trailing '?' marks a parameter optional.
func (r *RegistryAdapter) RegisterFunc(name string, fn any, params ...string) error {
	callable, err := BindFunc(fn, params...)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("cannot register %s", name)).
			WithCause(err)
	}
	return r.store(name, registryEntry{value: fn, callable: callable})
}

func (r *RegistryAdapter) store(name string, entry registryEntry) error {
	name = normalizeImportName(name)
	if _, err := types.ParsePath(name); err != nil || name == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid registry name %q", name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return errbuilder.New().
			WithCode(errbuilder.CodeAlreadyExists).
			WithMsg(fmt.Sprintf("%s is already registered", name))
	}
	r.entries[name] = entry
	return nil
}

func (r *RegistryAdapter) Import(name string) (any, error) {
	entry, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return entry.value, nil
}

// ImportCallable returns the callable registered under name, adapting a
// plain Go function by reflection when needed.
func (r *RegistryAdapter) ImportCallable(name string) (types.Callable, error) {
	entry, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if entry.callable != nil {
		return entry.callable, nil
	}
	if entry.value != nil && reflect.TypeOf(entry.value).Kind() == reflect.Func {
		return BindFunc(entry.value)
	}
	return nil, fmt.Errorf("%s (%T) is not callable", name, entry.value)
}

// Names returns every registered name in sorted order.
func (r *RegistryAdapter) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy, used to extend a shared registry
// for one configuration.
func (r *RegistryAdapter) Clone() *RegistryAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := NewRegistryAdapter()
	for name, entry := range r.entries {
		out.entries[name] = entry
	}
	return out
}

func (r *RegistryAdapter) lookup(name string) (registryEntry, error) {
	normalized := normalizeImportName(name)
	r.mu.RLock()
	entry, ok := r.entries[normalized]
	r.mu.RUnlock()
	if ok {
		return entry, nil
	}
	msg := fmt.Sprintf("nothing registered as %q", name)
	if siblings := r.siblings(normalized); len(siblings) > 0 {
		msg += "; known in the same namespace: " + strings.Join(siblings, ", ")
	}
	return registryEntry{}, types.NewError(types.KindImport, msg)
}

// siblings lists names sharing the namespace of name, for diagnostics.
func (r *RegistryAdapter) siblings(name string) []string {
	prefix, _, found := cutLast(name, ".")
	if !found {
		return nil
	}
	var out []string
	for _, candidate := range r.Names() {
		if strings.HasPrefix(candidate, prefix+".") {
			out = append(out, candidate)
		}
	}
	return out
}

// normalizeImportName accepts "pkg:obj" as an alias of "pkg.obj".
func normalizeImportName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), ":", ".")
}

func cutLast(s string, sep string) (string, string, bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

var _ ports.ImporterPort = (*RegistryAdapter)(nil)
