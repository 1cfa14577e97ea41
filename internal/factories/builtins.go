// Package factories holds the callables registered under the
// "configure." namespace of the default registry.
package factories

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/andreypopp/configure/internal/adapters"
)

// Registrar is the part of a registry the factories need.
type Registrar interface {
	Register(name string, value any) error
	RegisterFunc(name string, fn any, params ...string) error
}

type builtin struct {
	name   string
	fn     any
	params []string
}

var builtins = []builtin{
	{adapters.BuiltinTimedelta, Timedelta, []string{"value"}},
	{adapters.BuiltinRegexp, Regexp, []string{"pattern"}},
	{adapters.BuiltinBytesize, Bytesize, []string{"value"}},
	{adapters.BuiltinDirectory, Directory, []string{"path"}},
	{"configure.env", Env, []string{"name", "default?"}},
	{"configure.timestamp", Timestamp, []string{"value"}},
	{"configure.logger", Logger, []string{"level?", "format?", "output?", "name?"}},
	{"configure.expr", Expr, []string{"expression", "env?"}},
	{"configure.nanoid", Nanoid, []string{"size?", "alphabet?"}},
	{"configure.sql.open", OpenSQL, []string{"dsn", "driver?", "max_open_conns?"}},
	{"configure.mqtt.client", MQTTClient, nil},
	{"configure.influxdb.client", InfluxDBClient, nil},
	{"configure.github.client", GitHubClient, nil},
	{"configure.gitlab.client", GitLabClient, nil},
}

// Register adds every built-in factory to r.
func Register(r Registrar) error {
	for _, b := range builtins {
		if err := r.RegisterFunc(b.name, b.fn, b.params...); err != nil {
			return err
		}
	}
	return nil
}

// Names lists the built-in factory names in registration order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for _, b := range builtins {
		names = append(names, b.name)
	}
	return names
}

var spanPattern = regexp.MustCompile(`^(\d+)([dhwmsDHWMS])$`)

// Timedelta parses "<n><unit>" with unit one of w, d, h, m or s. Go
// duration strings such as "1h30m" are accepted too.
func Timedelta(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if m := spanPattern.FindStringSubmatch(value); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q cannot be interpreted as a time span: %w", value, err)
		}
		unit := map[string]time.Duration{
			"w": 7 * 24 * time.Hour,
			"d": 24 * time.Hour,
			"h": time.Hour,
			"m": time.Minute,
			"s": time.Second,
		}[strings.ToLower(m[2])]
		if n > math.MaxInt64/int64(unit) {
			return 0, fmt.Errorf("value %q is out of range for a time span", value)
		}
		return time.Duration(n) * unit, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("value %q cannot be interpreted as a time span", value)
	}
	return d, nil
}

func Regexp(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty regular expression")
	}
	return regexp.Compile(pattern)
}

var sizePattern = regexp.MustCompile(`^(\d+)\s*([kmgtpKMGTP]?)[bB]?$`)

// Bytesize parses a byte count with an optional binary unit: 10k, 5MB,
// 2g or a bare number of bytes.
func Bytesize(value string) (int64, error) {
	m := sizePattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, fmt.Errorf("value %q cannot be interpreted as a byte size", value)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q cannot be interpreted as a byte size: %w", value, err)
	}
	shift := strings.Index("kmgtp", strings.ToLower(m[2])) + 1
	if m[2] == "" {
		shift = 0
	}
	if n > (1<<63-1)>>(10*shift) {
		return 0, fmt.Errorf("byte size %q overflows int64", value)
	}
	return n << (10 * shift), nil
}

// Directory returns path after making sure it is a directory, creating
// it when missing.
func Directory(path string) (string, error) {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return "", err
		}
		return path, nil
	case err != nil:
		return "", err
	case !info.IsDir():
		return "", fmt.Errorf("%s is not a directory", path)
	}
	return path, nil
}

// Env reads an environment variable. Without a fallback an unset
// variable is an error.
func Env(name string, fallback *string) (string, error) {
	if value, ok := os.LookupEnv(name); ok {
		return value, nil
	}
	if fallback == nil {
		return "", fmt.Errorf("environment variable %s is not set", name)
	}
	return *fallback, nil
}
