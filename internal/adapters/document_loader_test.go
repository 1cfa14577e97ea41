package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreypopp/configure/internal/types"
)

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoaderCachesByAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.yaml", "a: 1\n")
	loader := NewFileDocumentLoader(NewYAMLDocumentAdapter(), nil)

	first, err := loader.Load(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, dir, first.Dir)
	assert.Len(t, first.Digest, 64)

	require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))
	second, err := loader.Load(t.Context(), filepath.Join(dir, ".", "app.yaml"))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Len(t, loader.Sources(), 1)

	fresh, err := NewFileDocumentLoader(NewYAMLDocumentAdapter(), nil).Load(t.Context(), path)
	require.NoError(t, err)
	a, _ := fresh.Root.Get("a")
	assert.Equal(t, 2, a.Value)
}

func TestLoaderMissingFile(t *testing.T) {
	loader := NewFileDocumentLoader(NewYAMLDocumentAdapter(), nil)
	_, err := loader.Load(t.Context(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestLoaderInterpolatesVariables(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.yaml", "name: ${name}\ndata: ${pwd}/data\nliteral: $${name}\n")
	loader := NewFileDocumentLoader(NewYAMLDocumentAdapter(), map[string]string{"name": "svc"})

	doc, err := loader.Load(t.Context(), path)
	require.NoError(t, err)
	name, _ := doc.Root.Get("name")
	assert.Equal(t, "svc", name.Value)
	data, _ := doc.Root.Get("data")
	assert.Equal(t, dir+"/data", data.Value)
	literal, _ := doc.Root.Get("literal")
	assert.Equal(t, "${name}", literal.Value)
}

func TestLoaderUndefinedVariable(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.yaml", "a: ${missing}\nb: ${other}\n")
	_, err := NewFileDocumentLoader(NewYAMLDocumentAdapter(), nil).Load(t.Context(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSyntax)
	assert.Contains(t, err.Error(), "missing, other")
	assert.Contains(t, err.Error(), path)
}

func TestLoaderParseInMemory(t *testing.T) {
	dir := t.TempDir()
	loader := NewFileDocumentLoader(NewYAMLDocumentAdapter(), nil)
	doc, err := loader.Parse(t.Context(), "<string>", dir, []byte("where: ${pwd}\n"))
	require.NoError(t, err)
	assert.Equal(t, "<string>", doc.Path)
	where, _ := doc.Root.Get("where")
	assert.Equal(t, dir, where.Value)
}

func TestInterpolate(t *testing.T) {
	out, err := Interpolate("${a}-${b.c}-$${a}", map[string]string{"a": "1", "b.c": "2"})
	require.NoError(t, err)
	assert.Equal(t, "1-2-${a}", out)

	out, err = Interpolate("no placeholders $HOME", nil)
	require.NoError(t, err)
	assert.Equal(t, "no placeholders $HOME", out)
}
