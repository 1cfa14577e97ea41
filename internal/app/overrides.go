package app

import (
	"fmt"
	"strings"

	"github.com/andreypopp/configure/internal/core"
	"github.com/andreypopp/configure/internal/types"
)

// ApplyOverrides layers "dotted.path=value" assignments over tree, in
// order. Values are parsed as YAML, so tags such as !ref:x are allowed.
func (s Service) ApplyOverrides(tree *types.Node, sets []string) (*types.Node, error) {
	for _, set := range sets {
		key, raw, ok := strings.Cut(set, "=")
		if !ok {
			return nil, types.NewError(types.KindSyntax, fmt.Sprintf("override %q must look like path=value", set))
		}
		path, err := types.ParsePath(strings.TrimSpace(key))
		if err != nil || path.IsRoot() {
			return nil, types.NewError(types.KindSyntax, fmt.Sprintf("override %q has an invalid path", set)).WithCause(err)
		}
		value, err := s.overrideValue(raw)
		if err != nil {
			return nil, err
		}
		for i := len(path) - 1; i >= 0; i-- {
			value = types.NewMapping(types.Field{Key: path[i], Value: value})
		}
		tree = core.DeepMerge(tree, value)
	}
	return tree, nil
}

func (s Service) overrideValue(raw string) (*types.Node, error) {
	if strings.TrimSpace(raw) == "" {
		return types.NewScalar(""), nil
	}
	node, err := s.Parser.Parse("--set", []byte(raw))
	if err != nil {
		return nil, err
	}
	if node.HasMarker(types.MarkerInclude, types.MarkerExtends) {
		return nil, types.NewError(types.KindSyntax, "overrides cannot include or extend documents")
	}
	return node, nil
}
