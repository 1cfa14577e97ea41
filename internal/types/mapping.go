package types

// Mapping is a resolved mapping that remembers key insertion order.
type Mapping struct {
	keys   []string
	values map[string]any
}

func NewMappingValue() *Mapping {
	return &Mapping{values: map[string]any{}}
}

// Set stores value under key. Re-setting an existing key keeps its
// original position.
func (m *Mapping) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Mapping) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	value, ok := m.values[key]
	return value, ok
}

func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for each entry in order until fn returns false.
func (m *Mapping) Range(fn func(key string, value any) bool) {
	if m == nil {
		return
	}
	for _, key := range m.keys {
		if !fn(key, m.values[key]) {
			return
		}
	}
}

// Plain converts the mapping, recursively, into map[string]any and
// []any values. Constructed objects are left as they are.
func (m *Mapping) Plain() map[string]any {
	out := make(map[string]any, m.Len())
	m.Range(func(key string, value any) bool {
		out[key] = PlainValue(value)
		return true
	})
	return out
}

func PlainValue(value any) any {
	switch v := value.(type) {
	case *Mapping:
		return v.Plain()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = PlainValue(item)
		}
		return out
	default:
		return value
	}
}
