package adapters

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/andreypopp/configure/internal/ports"
	"github.com/andreypopp/configure/internal/types"
)

// Names under which the scalar convenience tags are registered.
const (
	BuiltinTimedelta = "configure.timedelta"
	BuiltinRegexp    = "configure.re"
	BuiltinBytesize  = "configure.bytesize"
	BuiltinDirectory = "configure.directory"
)

var convenienceTags = map[string]string{
	"timedelta": BuiltinTimedelta,
	"re":        BuiltinRegexp,
	"bytesize":  BuiltinBytesize,
	"directory": BuiltinDirectory,
}

// YAMLDocumentAdapter parses YAML (and JSON/JSONC) documents into node
// trees, turning marker tags into types.Marker values.
type YAMLDocumentAdapter struct{}

func NewYAMLDocumentAdapter() YAMLDocumentAdapter {
	return YAMLDocumentAdapter{}
}

func (a YAMLDocumentAdapter) Parse(file string, data []byte) (*types.Node, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, types.NewError(types.KindSyntax, "malformed document").
			WithPath(file).
			WithCause(err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return types.NewMapping(), nil
	}
	p := &documentParser{file: file, active: map[*yaml.Node]bool{}}
	return p.convert(doc.Content[0], true)
}

// maxAliasExpansions bounds how many times aliases may be expanded in one
// document, so nested aliases cannot blow up the tree exponentially.
const maxAliasExpansions = 10000

type documentParser struct {
	file string
	// active holds the collections being converted; reaching one again
	// through an alias means the alias refers to its own ancestor.
	active     map[*yaml.Node]bool
	expansions int
}

func (p *documentParser) origin(n *yaml.Node) types.Origin {
	return types.Origin{File: p.file, Line: n.Line, Column: n.Column}
}

func (p *documentParser) syntaxError(n *yaml.Node, format string, args ...any) error {
	return types.NewError(types.KindSyntax, fmt.Sprintf(format, args...)).
		WithPath(p.origin(n).String())
}

func (p *documentParser) convert(n *yaml.Node, root bool) (*types.Node, error) {
	if n.Kind == yaml.AliasNode {
		p.expansions++
		if p.expansions > maxAliasExpansions {
			return nil, p.syntaxError(n, "too many alias expansions (limit %d)", maxAliasExpansions)
		}
		return p.convert(n.Alias, false)
	}
	if p.active[n] {
		return nil, p.syntaxError(n, "recursive alias")
	}
	if n.Kind == yaml.SequenceNode || n.Kind == yaml.MappingNode {
		p.active[n] = true
		defer delete(p.active, n)
	}
	marker, builtin, err := p.parseTag(n)
	if err != nil {
		return nil, err
	}

	var node *types.Node
	switch n.Kind {
	case yaml.ScalarNode:
		node, err = p.scalar(n, marker != nil || builtin != "")
	case yaml.SequenceNode:
		node = &types.Node{Kind: types.SequenceNode, Items: make([]*types.Node, 0, len(n.Content))}
		for _, item := range n.Content {
			child, err := p.convert(item, false)
			if err != nil {
				return nil, err
			}
			node.Items = append(node.Items, child)
		}
	case yaml.MappingNode:
		node, err = p.mapping(n)
	default:
		return nil, p.syntaxError(n, "unsupported yaml node kind %d", n.Kind)
	}
	if err != nil {
		return nil, err
	}
	node.Origin = p.origin(n)

	if builtin != "" {
		if n.Kind != yaml.ScalarNode || node.IsEmpty() {
			return nil, p.syntaxError(n, "tag %s requires a non-empty scalar", n.Tag)
		}
		arg := types.NewScalar(n.Value)
		arg.Origin = node.Origin
		wrapped := types.NewSequence(arg)
		wrapped.Origin = node.Origin
		wrapped.Marker = types.Construct(builtin, true)
		return wrapped, nil
	}
	if marker == nil {
		return node, nil
	}
	if err := p.checkShape(n, node, marker, root); err != nil {
		return nil, err
	}
	if marker.Kind == types.MarkerExtends && node.Kind == types.ScalarNode {
		node = &types.Node{Kind: types.MappingNode, Origin: node.Origin}
	}
	node.Marker = marker
	return node, nil
}

// scalar decodes a plain scalar with the usual YAML typing. Tagged
// scalars keep their raw text since the tag, not YAML, gives it meaning.
func (p *documentParser) scalar(n *yaml.Node, tagged bool) (*types.Node, error) {
	if tagged {
		quoted := yaml.DoubleQuotedStyle | yaml.SingleQuotedStyle | yaml.LiteralStyle | yaml.FoldedStyle
		if n.Style&quoted == 0 && (n.Value == "" || n.Value == "~" || n.Value == "null") {
			return types.NewScalar(nil), nil
		}
		return types.NewScalar(n.Value), nil
	}
	var value any
	if err := n.Decode(&value); err != nil {
		return nil, types.NewError(types.KindSyntax, "invalid scalar").
			WithPath(p.origin(n).String()).
			WithCause(err)
	}
	return types.NewScalar(value), nil
}

func (p *documentParser) mapping(n *yaml.Node) (*types.Node, error) {
	node := &types.Node{Kind: types.MappingNode, Fields: make([]types.Field, 0, len(n.Content)/2)}
	explicit := map[string]bool{}
	index := map[string]int{}

	set := func(key string, value *types.Node, fromMerge bool) {
		if i, ok := index[key]; ok {
			if fromMerge {
				return
			}
			node.Fields[i].Value = value
			return
		}
		index[key] = len(node.Fields)
		node.Fields = append(node.Fields, types.Field{Key: key, Value: value})
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valueNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, p.syntaxError(keyNode, "mapping keys must be scalars")
		}
		if keyNode.Tag == "!!merge" {
			sources, err := p.mergeSources(valueNode)
			if err != nil {
				return nil, err
			}
			for _, source := range sources {
				for _, field := range source.Fields {
					set(field.Key, field.Value, true)
				}
			}
			continue
		}
		key := keyNode.Value
		if explicit[key] {
			return nil, p.syntaxError(keyNode, "duplicate mapping key %q", key)
		}
		explicit[key] = true
		value, err := p.convert(valueNode, false)
		if err != nil {
			return nil, err
		}
		set(key, value, false)
	}
	return node, nil
}

// mergeSources expands a YAML merge key value: one mapping or a sequence
// of mappings, earlier ones taking precedence.
func (p *documentParser) mergeSources(n *yaml.Node) ([]*types.Node, error) {
	target := n
	if target.Kind == yaml.AliasNode {
		p.expansions++
		if p.expansions > maxAliasExpansions {
			return nil, p.syntaxError(n, "too many alias expansions (limit %d)", maxAliasExpansions)
		}
		target = target.Alias
	}
	if p.active[target] {
		return nil, p.syntaxError(n, "recursive alias")
	}
	var nodes []*yaml.Node
	if target.Kind == yaml.SequenceNode {
		nodes = target.Content
	} else {
		nodes = []*yaml.Node{target}
	}
	sources := make([]*types.Node, 0, len(nodes))
	for _, item := range nodes {
		converted, err := p.convert(item, false)
		if err != nil {
			return nil, err
		}
		if converted.Kind != types.MappingNode || converted.Marker != nil {
			return nil, p.syntaxError(item, "merge key requires plain mappings")
		}
		sources = append(sources, converted)
	}
	return sources, nil
}

// parseTag maps a node tag onto a marker or a convenience constructor.
// Standard "!!" tags and untagged nodes produce neither.
func (p *documentParser) parseTag(n *yaml.Node) (*types.Marker, string, error) {
	tag := n.Tag
	if tag == "" || tag == "!" || strings.HasPrefix(tag, "!!") || !strings.HasPrefix(tag, "!") {
		return nil, "", nil
	}
	name, arg, hasArg := strings.Cut(tag[1:], ":")
	if builtin, ok := convenienceTags[name]; ok {
		if hasArg {
			return nil, "", p.syntaxError(n, "tag !%s takes no argument", name)
		}
		return nil, builtin, nil
	}
	if !hasArg || arg == "" {
		if _, known := markerTags[name]; known {
			return nil, "", p.syntaxError(n, "tag !%s requires an argument, as in !%s:<value>", name, name)
		}
		return nil, "", p.syntaxError(n, "unknown tag %s", tag)
	}
	build, ok := markerTags[name]
	if !ok {
		return nil, "", p.syntaxError(n, "unknown tag %s", tag)
	}
	return build(arg), "", nil
}

var markerTags = map[string]func(string) *types.Marker{
	"include": types.Include,
	"extends": types.Extends,
	"ref":     types.Reference,
	"factory": func(target string) *types.Marker { return types.Construct(target, true) },
	"obj":     func(target string) *types.Marker { return types.Construct(target, false) },
}

func (p *documentParser) checkShape(n *yaml.Node, node *types.Node, marker *types.Marker, root bool) error {
	switch marker.Kind {
	case types.MarkerExtends:
		if !root {
			return p.syntaxError(n, "!extends is only allowed on the document root")
		}
		if node.Kind == types.SequenceNode || (node.Kind == types.ScalarNode && !node.IsEmpty()) {
			return p.syntaxError(n, "!extends requires a mapping")
		}
	case types.MarkerReference:
		if !node.IsEmpty() {
			return p.syntaxError(n, "!ref takes no content")
		}
	case types.MarkerConstruct:
		if !marker.Call && !node.IsEmpty() {
			return p.syntaxError(n, "!obj takes no content")
		}
		if marker.Call && node.Kind == types.ScalarNode && !node.IsEmpty() {
			return p.syntaxError(n, "!factory arguments must be a mapping or a sequence")
		}
	}
	return nil
}

var _ ports.DocumentParserPort = YAMLDocumentAdapter{}
