// Package shared provides small helpers used by the adapters, the core
// resolver and the public facade.
package shared

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldName normalizes a key or Go identifier for loose matching: case is
// folded and '_' and '-' are dropped, so "DatabaseURL", "database_url"
// and "database-url" compare equal.
func FoldName(value string) string {
	replacer := strings.NewReplacer("_", "", "-", "")
	return cases.Fold().String(replacer.Replace(strings.TrimSpace(value)))
}
