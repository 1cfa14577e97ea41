package shared

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/andreypopp/configure/internal/types"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Binder converts resolved configuration values into typed Go values.
// Values already assignable to the target are used as they are, so
// constructed objects keep their identity.
type Binder struct {
	// ErrorUnused rejects mapping keys that match no struct field.
	ErrorUnused bool
}

// Decode binds value into the value pointed to by out.
func (b Binder) Decode(value any, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", out)
	}
	bound, err := b.Assign(value, rv.Elem().Type())
	if err != nil {
		return err
	}
	rv.Elem().Set(bound)
	return nil
}

// Assign converts value to target.
func (b Binder) Assign(value any, target reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(target), nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(target) {
		return rv, nil
	}
	if target == durationType {
		d, err := cast.ToDurationE(value)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(d), nil
	}
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return convertNumber(rv, target)
	case reflect.String, reflect.Bool:
		if rv.Kind() == target.Kind() {
			return rv.Convert(target), nil
		}
	case reflect.Ptr:
		elem, err := b.Assign(value, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(target.Elem())
		out.Elem().Set(elem)
		return out, nil
	case reflect.Struct:
		if entries, ok := mappingEntries(value); ok {
			return b.assignStruct(entries, target)
		}
	case reflect.Map:
		if entries, ok := mappingEntries(value); ok && target.Key().Kind() == reflect.String {
			out := reflect.MakeMapWithSize(target, len(entries))
			for _, entry := range entries {
				elem, err := b.Assign(entry.value, target.Elem())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("%s: %w", entry.key, err)
				}
				out.SetMapIndex(reflect.ValueOf(entry.key).Convert(target.Key()), elem)
			}
			return out, nil
		}
	case reflect.Slice:
		if items, ok := value.([]any); ok {
			out := reflect.MakeSlice(target, len(items), len(items))
			for i, item := range items {
				elem, err := b.Assign(item, target.Elem())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
				}
				out.Index(i).Set(elem)
			}
			return out, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", value, target)
}

type entry struct {
	key   string
	value any
}

func mappingEntries(value any) ([]entry, bool) {
	switch v := value.(type) {
	case *types.Mapping:
		entries := make([]entry, 0, v.Len())
		v.Range(func(key string, item any) bool {
			entries = append(entries, entry{key: key, value: item})
			return true
		})
		return entries, true
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		entries := make([]entry, 0, len(v))
		for _, key := range keys {
			entries = append(entries, entry{key: key, value: v[key]})
		}
		return entries, true
	default:
		return nil, false
	}
}

func (b Binder) assignStruct(entries []entry, target reflect.Type) (reflect.Value, error) {
	out := reflect.New(target).Elem()
	fields := map[string]int{}
	for i := 0; i < target.NumField(); i++ {
		field := target.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("config"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		fields[FoldName(name)] = i
	}
	for _, entry := range entries {
		index, ok := fields[FoldName(entry.key)]
		if !ok {
			if b.ErrorUnused {
				return reflect.Value{}, fmt.Errorf("unexpected key %q for %s", entry.key, target)
			}
			continue
		}
		value, err := b.Assign(entry.value, target.Field(index).Type)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%s: %w", entry.key, err)
		}
		out.Field(index).Set(value)
	}
	return out, nil
}

func convertNumber(rv reflect.Value, target reflect.Type) (reflect.Value, error) {
	out := reflect.New(target).Elem()
	switch target.Kind() {
	case reflect.Float32, reflect.Float64:
		var f float64
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			f = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		default:
			return reflect.Value{}, fmt.Errorf("cannot use %s as %s", rv.Type(), target)
		}
		if out.OverflowFloat(f) {
			return reflect.Value{}, fmt.Errorf("%v overflows %s", f, target)
		}
		out.SetFloat(f)
		return out, nil
	}

	var i int64
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", u, target)
		}
		i = int64(u)
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
			return reflect.Value{}, fmt.Errorf("%v is not an integer", f)
		}
		i = int64(f)
	default:
		return reflect.Value{}, fmt.Errorf("cannot use %s as %s", rv.Type(), target)
	}
	switch target.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if i < 0 || out.OverflowUint(uint64(i)) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", i, target)
		}
		out.SetUint(uint64(i))
	default:
		if out.OverflowInt(i) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", i, target)
		}
		out.SetInt(i)
	}
	return out, nil
}
