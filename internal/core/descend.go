package core

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/andreypopp/configure/internal/shared"
	"github.com/andreypopp/configure/internal/types"
)

// Descend follows rest into a resolved value. Mappings are indexed by
// key, slices by position and structs by exported field. Methods are
// never called.
func Descend(value any, rest types.Path) (result any, err error) {
	var i int
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%s: cannot read value: %v", rest[:i+1], r)
		}
	}()
	for i = 0; i < len(rest); i++ {
		segment := rest[i]
		next, err := step(value, segment)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rest[:i+1], err)
		}
		value = next
	}
	return value, nil
}

func step(value any, segment string) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, fmt.Errorf("value is null")
	case *types.Mapping:
		if child, ok := v.Get(segment); ok {
			return child, nil
		}
		return nil, fmt.Errorf("no key %q", segment)
	case []any:
		return index(len(v), segment, func(i int) any { return v[i] })
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("value is nil")
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		child := rv.MapIndex(reflect.ValueOf(segment).Convert(rv.Type().Key()))
		if !child.IsValid() {
			return nil, fmt.Errorf("no key %q", segment)
		}
		return child.Interface(), nil
	case reflect.Slice, reflect.Array:
		return index(rv.Len(), segment, func(i int) any { return rv.Index(i).Interface() })
	case reflect.Struct:
		if field, ok := structField(rv, segment); ok {
			return field.Interface(), nil
		}
		return nil, fmt.Errorf("%s has no field %q", rv.Type(), segment)
	}
	return nil, fmt.Errorf("cannot look up %q in %T", segment, value)
}

func index(length int, segment string, at func(int) any) (any, error) {
	i, err := strconv.Atoi(segment)
	if err != nil || i < 0 || i >= length {
		return nil, fmt.Errorf("index %q out of range", segment)
	}
	return at(i), nil
}

func structField(rv reflect.Value, segment string) (reflect.Value, bool) {
	want := shared.FoldName(segment)
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag := field.Tag.Get("config"); tag != "" && tag != "-" {
			name = tag
		}
		if shared.FoldName(name) == want {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}
