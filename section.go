package configure

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cast"

	"github.com/andreypopp/configure/internal/core"
	"github.com/andreypopp/configure/internal/shared"
	"github.com/andreypopp/configure/internal/types"
)

// Section is a read-only view of a resolved mapping. Keys are read with
// Get; Attr also accepts Go-style names. Nested mappings are returned as
// *Section, the same one for every access through the same path. A
// mapping reached through a reference gets its own section with the
// reference's path.
type Section struct {
	path   types.Path
	values *types.Mapping
	cache  *sectionCache
}

type sectionCache struct {
	mu       sync.Mutex
	sections map[sectionKey]*Section
}

type sectionKey struct {
	path   string
	values *types.Mapping
}

func newRoot(values *types.Mapping) *Section {
	cache := &sectionCache{sections: map[sectionKey]*Section{}}
	return cache.section(types.Path{}, values)
}

func (c *sectionCache) section(path types.Path, values *types.Mapping) *Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := sectionKey{path: path.String(), values: values}
	if s, ok := c.sections[key]; ok {
		return s
	}
	s := &Section{path: path, values: values, cache: c}
	c.sections[key] = s
	return s
}

// Path is the dotted path of the section, empty for the root.
func (s *Section) Path() string {
	return s.path.String()
}

// Get returns the value stored under key.
func (s *Section) Get(key string) (any, error) {
	value, ok := s.values.Get(key)
	if !ok {
		return nil, s.missing(key)
	}
	return s.present(s.path.Child(key), value), nil
}

// Attr returns the value under name, matching the key exactly first and
// then ignoring case, '_' and '-', so "DatabaseURL" reads database_url.
func (s *Section) Attr(name string) (any, error) {
	if s.values.Has(name) {
		return s.Get(name)
	}
	want := shared.FoldName(name)
	for _, key := range s.values.Keys() {
		if shared.FoldName(key) == want {
			return s.Get(key)
		}
	}
	return nil, s.missing(name)
}

// Lookup follows a dotted path from this section, into constructed
// values as well.
func (s *Section) Lookup(path string) (any, error) {
	parsed, err := types.ParsePath(path)
	if err != nil {
		return nil, types.NewError(types.KindUnresolvedPath, "invalid path").WithPath(path).WithCause(err)
	}
	value, err := core.Descend(s.values, parsed)
	if err != nil {
		full := append(append(types.Path{}, s.path...), parsed...)
		return nil, types.NewError(types.KindUnresolvedPath, "no such path").
			WithPath(full.Display()).
			WithCause(err)
	}
	return s.present(append(append(types.Path{}, s.path...), parsed...), value), nil
}

// Section returns the nested mapping under key.
func (s *Section) Section(key string) (*Section, error) {
	value, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	section, ok := value.(*Section)
	if !ok {
		return nil, types.NewError(types.KindUnresolvedPath, fmt.Sprintf("value is %T, not a mapping", value)).
			WithPath(s.path.Child(key).Display())
	}
	return section, nil
}

func (s *Section) Keys() []string {
	return s.values.Keys()
}

func (s *Section) Has(key string) bool {
	return s.values.Has(key)
}

func (s *Section) Len() int {
	return s.values.Len()
}

// Mapping returns the resolved mapping behind the section.
func (s *Section) Mapping() *types.Mapping {
	return s.values
}

// Decode binds the section into out, a pointer to a struct or map.
// Struct fields match keys by `config` tag or by folded name;
// constructed values are assigned as they are.
func (s *Section) Decode(out any) error {
	if err := (shared.Binder{}).Decode(s.values, out); err != nil {
		return types.NewError(types.KindSyntax, "cannot decode configuration").
			WithPath(s.path.Display()).
			WithCause(err)
	}
	return nil
}

// Format renders the section as YAML with sorted keys.
func (s *Section) Format() (string, error) {
	out, err := core.FormatValue(s.values)
	return string(out), err
}

func (s *Section) GetString(key string) (string, error) {
	return get(s, key, cast.ToStringE)
}

func (s *Section) GetInt(key string) (int, error) {
	return get(s, key, cast.ToIntE)
}

func (s *Section) GetBool(key string) (bool, error) {
	return get(s, key, cast.ToBoolE)
}

func (s *Section) GetFloat(key string) (float64, error) {
	return get(s, key, cast.ToFloat64E)
}

func (s *Section) GetDuration(key string) (time.Duration, error) {
	return get(s, key, cast.ToDurationE)
}

func (s *Section) GetStringSlice(key string) ([]string, error) {
	return get(s, key, cast.ToStringSliceE)
}

func get[T any](s *Section, key string, convert func(any) (T, error)) (T, error) {
	var zero T
	value, ok := s.values.Get(key)
	if !ok {
		return zero, s.missing(key)
	}
	out, err := convert(value)
	if err != nil {
		return zero, types.NewError(types.KindSyntax, fmt.Sprintf("cannot read %T as %T", value, zero)).
			WithPath(s.path.Child(key).Display()).
			WithCause(err)
	}
	return out, nil
}

func (s *Section) missing(key string) error {
	return types.NewError(types.KindUnresolvedPath, "no such key").WithPath(s.path.Child(key).Display())
}

// present wraps mappings, including those inside sequences, as sections.
func (s *Section) present(path types.Path, value any) any {
	switch v := value.(type) {
	case *types.Mapping:
		return s.cache.section(path, v)
	case []any:
		var out []any
		for i, item := range v {
			if _, ok := item.(*types.Mapping); !ok {
				if _, nested := item.([]any); !nested {
					continue
				}
			}
			if out == nil {
				out = append([]any(nil), v...)
			}
			out[i] = s.present(path.Child(fmt.Sprint(i)), item)
		}
		if out == nil {
			return v
		}
		return out
	default:
		return value
	}
}
