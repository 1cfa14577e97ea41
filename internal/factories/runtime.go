package factories

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/expr-lang/expr"
	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/andreypopp/configure/internal/types"
)

// Logger builds a zerolog logger. format is "json" (default) or
// "console"; output is "stderr" (default) or "stdout".
func Logger(level string, format string, output string, name string) (zerolog.Logger, error) {
	var w io.Writer
	switch strings.ToLower(output) {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log output %q", output)
	}
	switch strings.ToLower(format) {
	case "", "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}

	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), err
		}
		lvl = parsed
	}
	ctx := zerolog.New(w).Level(lvl).With().Timestamp()
	if name != "" {
		ctx = ctx.Str("logger", name)
	}
	return ctx.Logger(), nil
}

// Expr evaluates an expr-lang expression. env, when given, must be a
// mapping; its entries are visible as variables.
func Expr(expression string, env any) (any, error) {
	vars := map[string]any{}
	if env != nil {
		plain, ok := types.PlainValue(env).(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expression env must be a mapping, got %T", env)
		}
		vars = plain
	}
	program, err := expr.Compile(expression, expr.Env(vars))
	if err != nil {
		return nil, err
	}
	return expr.Run(program, vars)
}

// Nanoid returns a random identifier, 21 characters long by default.
func Nanoid(size int, alphabet string) (string, error) {
	if size < 0 {
		return "", fmt.Errorf("size must not be negative")
	}
	if alphabet != "" {
		if size == 0 {
			size = 21
		}
		return nanoid.Generate(alphabet, size)
	}
	if size == 0 {
		return nanoid.New()
	}
	return nanoid.New(size)
}
