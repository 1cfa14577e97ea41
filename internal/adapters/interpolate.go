package adapters

import (
	"regexp"
	"sort"
	"strings"

	"github.com/andreypopp/configure/internal/types"
)

var placeholderPattern = regexp.MustCompile(`\$\$\{|\$\{([A-Za-z_][A-Za-z0-9_.-]*)\}`)

// Interpolate replaces ${name} placeholders in text with values from
// vars. "$${" yields a literal "${". Undefined names are a syntax error
// listing every missing name.
func Interpolate(text string, vars map[string]string) (string, error) {
	missing := map[string]struct{}{}
	out := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		if match == "$${" {
			return "${"
		}
		name := match[2 : len(match)-1]
		value, ok := vars[name]
		if !ok {
			missing[name] = struct{}{}
			return match
		}
		return value
	})
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", types.NewError(types.KindSyntax, "undefined variables: "+strings.Join(names, ", "))
	}
	return out, nil
}
