package factories

import (
	"fmt"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// Timestamp reads a point in time, normalized to UTC. Strings are tried
// against a few common layouts; values the YAML parser already turned
// into a time pass through.
func Timestamp(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		trimmed := strings.TrimSpace(v)
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("value %q cannot be interpreted as a timestamp", v)
	default:
		return time.Time{}, fmt.Errorf("value of type %T cannot be interpreted as a timestamp", value)
	}
}
