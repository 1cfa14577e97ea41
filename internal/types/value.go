package types

import (
	"fmt"
	"reflect"
	"sort"
)

// NodeFromValue builds an unmarked tree from plain Go values: maps with
// string keys, slices and scalars. Map keys are sorted since Go maps carry
// no order; use a *Mapping to keep one.
func NodeFromValue(value any) (*Node, error) {
	switch v := value.(type) {
	case *Node:
		return v.Clone(), nil
	case *Mapping:
		node := NewMapping()
		var err error
		v.Range(func(key string, item any) bool {
			var child *Node
			child, err = NodeFromValue(item)
			if err != nil {
				return false
			}
			node.Fields = append(node.Fields, Field{Key: key, Value: child})
			return true
		})
		return node, err
	case nil:
		return NewScalar(nil), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map key type %s is not a string", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, key := range rv.MapKeys() {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		node := NewMapping()
		for _, key := range keys {
			child, err := NodeFromValue(rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			node.Fields = append(node.Fields, Field{Key: key, Value: child})
		}
		return node, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return NewScalar(string(rv.Bytes())), nil
		}
		node := NewSequence()
		for i := 0; i < rv.Len(); i++ {
			child, err := NodeFromValue(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			node.Items = append(node.Items, child)
		}
		return node, nil
	default:
		return NewScalar(value), nil
	}
}
