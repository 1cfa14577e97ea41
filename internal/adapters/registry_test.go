package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreypopp/configure/internal/types"
)

type server struct {
	Host    string
	Port    int
	Timeout time.Duration
}

func keywords(pairs ...any) types.Arguments {
	m := types.NewMappingValue()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1])
	}
	return types.Arguments{Keyword: m}
}

func TestRegistryImport(t *testing.T) {
	registry := NewRegistryAdapter()
	value := &server{Host: "localhost"}
	require.NoError(t, registry.Register("app.server", value))

	got, err := registry.Import("app.server")
	require.NoError(t, err)
	assert.Same(t, value, got)

	got, err = registry.Import("app:server")
	require.NoError(t, err)
	assert.Same(t, value, got)
}

func TestRegistryUnknownName(t *testing.T) {
	registry := NewRegistryAdapter()
	require.NoError(t, registry.Register("app.server", 1))
	require.NoError(t, registry.Register("app.client", 2))

	_, err := registry.Import("app.missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrImport)
	assert.Contains(t, err.Error(), "app.client, app.server")
}

func TestRegistryRejectsDuplicatesAndBadNames(t *testing.T) {
	registry := NewRegistryAdapter()
	require.NoError(t, registry.Register("a.b", 1))

	err := registry.Register("a.b", 2)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeAlreadyExists, errbuilder.CodeOf(err))

	err = registry.Register("a..b", 2)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	err = registry.RegisterFunc("v", func(xs ...int) int { return len(xs) })
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestRegistryImportCallableAdaptsFunctions(t *testing.T) {
	registry := NewRegistryAdapter()
	require.NoError(t, registry.Register("math.add", func(a, b int) int { return a + b }))
	require.NoError(t, registry.Register("value", 42))

	callable, err := registry.ImportCallable("math.add")
	require.NoError(t, err)
	got, err := callable.Call(context.Background(), types.Arguments{Positional: []any{2, 3}})
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	_, err = registry.ImportCallable("value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not callable")
}

func TestRegistryCloneIsIndependent(t *testing.T) {
	registry := NewRegistryAdapter()
	require.NoError(t, registry.Register("a", 1))
	clone := registry.Clone()
	require.NoError(t, clone.Register("b", 2))

	assert.Equal(t, []string{"a"}, registry.Names())
	assert.Equal(t, []string{"a", "b"}, clone.Names())
}

func TestBindFuncKeywordArguments(t *testing.T) {
	callable, err := BindFunc(func(host string, port int) string {
		return host + ":" + time.Duration(port).String()
	}, "host", "port?")
	require.NoError(t, err)

	got, err := callable.Call(context.Background(), keywords("host", "db"))
	require.NoError(t, err)
	assert.Equal(t, "db:0s", got)

	_, err = callable.Call(context.Background(), keywords("port", 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing argument "host"`)

	_, err = callable.Call(context.Background(), keywords("host", "db", "user", "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unexpected argument "user"`)
}

func TestBindFuncStructParameter(t *testing.T) {
	callable, err := BindFunc(func(s server) (*server, error) { return &s, nil })
	require.NoError(t, err)

	got, err := callable.Call(context.Background(), keywords("host", "db", "port", 5432, "timeout", "3s"))
	require.NoError(t, err)
	assert.Equal(t, &server{Host: "db", Port: 5432, Timeout: 3 * time.Second}, got)

	_, err = callable.Call(context.Background(), keywords("hostname", "db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected key")
}

func TestBindFuncPositionalArguments(t *testing.T) {
	callable, err := BindFunc(func(ctx context.Context, a int, b float64) (float64, error) {
		if ctx == nil {
			return 0, errors.New("no context")
		}
		return float64(a) + b, nil
	})
	require.NoError(t, err)

	got, err := callable.Call(context.Background(), types.Arguments{Positional: []any{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	_, err = callable.Call(context.Background(), types.Arguments{Positional: []any{1, 2, 3}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "takes 2 arguments, got 3")

	_, err = callable.Call(context.Background(), types.Arguments{Positional: []any{1.5, 2}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an integer")
}

func TestBindFuncPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	callable, err := BindFunc(func() error { return boom })
	require.NoError(t, err)
	_, err = callable.Call(context.Background(), types.Arguments{})
	assert.ErrorIs(t, err, boom)
}
