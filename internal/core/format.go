package core

import (
	"bytes"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/andreypopp/configure/internal/types"
)

// FormatValue renders a resolved value as YAML with sorted mapping keys.
// Values that are not plain data are rendered as tagged scalars naming
// their Go type.
func FormatValue(value any) ([]byte, error) {
	return encode(valueNode(value))
}

// FormatNode renders a merged tree as YAML in document order, writing
// the remaining markers back as tags.
func FormatNode(node *types.Node) ([]byte, error) {
	return encode(treeNode(node))
}

func encode(node *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func valueNode(value any) *yaml.Node {
	switch v := value.(type) {
	case *types.Mapping:
		keys := v.Keys()
		sort.Strings(keys)
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range keys {
			item, _ := v.Get(key)
			out.Content = append(out.Content, stringNode(key), valueNode(item))
		}
		return out
	case map[string]any:
		return valueNode(mappingOf(v))
	case []any:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v {
			out.Content = append(out.Content, valueNode(item))
		}
		return out
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case string:
		return stringNode(v)
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(v)}
	case float32, float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: fmt.Sprint(v)}
	case time.Duration:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!timedelta", Value: v.String()}
	case *regexp.Regexp:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!re", Value: v.String()}
	case time.Time:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: v.Format(time.RFC3339Nano)}
	case fmt.Stringer:
		return objectNode(value, v.String())
	default:
		return objectNode(value, "")
	}
}

func objectNode(value any, text string) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!" + reflect.TypeOf(value).String(),
		Value: text,
		Style: yaml.DoubleQuotedStyle,
	}
}

func stringNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func mappingOf(values map[string]any) *types.Mapping {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := types.NewMappingValue()
	for _, key := range keys {
		out.Set(key, values[key])
	}
	return out
}

func treeNode(node *types.Node) *yaml.Node {
	var out *yaml.Node
	switch node.Kind {
	case types.SequenceNode:
		out = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range node.Items {
			out.Content = append(out.Content, treeNode(item))
		}
	case types.MappingNode:
		out = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, field := range node.Fields {
			out.Content = append(out.Content, stringNode(field.Key), treeNode(field.Value))
		}
	default:
		if node.Marker != nil && node.IsEmpty() {
			out = &yaml.Node{Kind: yaml.ScalarNode}
		} else {
			out = valueNode(node.Value)
		}
	}
	if node.Marker != nil {
		out.Tag = node.Marker.String()
	}
	return out
}
