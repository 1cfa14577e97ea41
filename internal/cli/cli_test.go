package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreypopp/configure/internal/types"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeDocument(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	expected := []string{"resolve", "validate", "merged", "diff", "get", "sources"}
	for _, name := range expected {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
	for _, name := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing flag: %s", name)
	}
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		flags []string
	}{
		{newResolveCommand(), []string{"var", "set", "path"}},
		{newValidateCommand(), []string{"var", "set", "merge-only"}},
		{newMergedCommand(), []string{"var", "set"}},
		{newDiffCommand(), []string{"var", "set", "merged"}},
		{newGetCommand(), []string{"var", "set"}},
		{newSourcesCommand(), []string{"var", "set"}},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			for _, name := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(name), "missing flag: %s", name)
			}
		})
	}
}

// ---------- Command runs ----------

func TestResolveCommand(t *testing.T) {
	dir := t.TempDir()
	writeDocument(t, dir, "base.yaml", "base_port: 80\ndb:\n  host: a\n")
	path := writeDocument(t, dir, "app.yaml", "!extends:base.yaml\nname: ${who}\nport: !ref:base_port\n")

	out, err := runCommand(t, "resolve", path, "--var", "who=svc")
	require.NoError(t, err)
	assert.Equal(t, "base_port: 80\ndb:\n  host: a\nname: svc\nport: 80\n", out)

	out, err = runCommand(t, "resolve", path, "--var", "who=svc", "--path", "db")
	require.NoError(t, err)
	assert.Equal(t, "host: a\n", out)

	out, err = runCommand(t, "resolve", path, "--var", "who=svc", "--set", "db.host=b")
	require.NoError(t, err)
	assert.Contains(t, out, "  host: b\n")
}

func TestGetCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeDocument(t, dir, "app.yaml", `
name: svc
port: 80
timeout: !timedelta 5m
empty:
db:
  host: a
`)
	tests := []struct {
		path string
		want string
	}{
		{"name", "svc\n"},
		{"port", "80\n"},
		{"timeout", "5m0s\n"},
		{"empty", "null\n"},
		{"db", "host: a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			out, err := runCommand(t, "get", path, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	_, err := runCommand(t, "get", path, "missing")
	require.Error(t, err)
	assert.Equal(t, 4, exitCodeForError(err))
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeDocument(t, dir, "good.yaml", "a: 1\nb: !ref:a\n")
	bad := writeDocument(t, dir, "bad.yaml", "a: !ref:b\nb: !ref:a\n")

	out, err := runCommand(t, "validate", good)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("validated: %s (1 documents, 0 constructed)\n", good), out)

	out, err = runCommand(t, "validate", "--merge-only", good, bad)
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("merged: %s (1 documents)\n", bad))

	_, err = runCommand(t, "validate", good, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrCircularReference)
	assert.Equal(t, 3, exitCodeForError(err))
}

func TestMergedCommand(t *testing.T) {
	dir := t.TempDir()
	writeDocument(t, dir, "shared.yaml", "level: debug\n")
	path := writeDocument(t, dir, "app.yaml", "zeta: 1\nlogging: !include:shared.yaml\nalias: !ref:zeta\n")

	out, err := runCommand(t, "merged", path)
	require.NoError(t, err)
	assert.Equal(t, "zeta: 1\nlogging:\n  level: debug\nalias: !ref:zeta\n", out)
}

func TestDiffCommand(t *testing.T) {
	dir := t.TempDir()
	before := writeDocument(t, dir, "old.yaml", "a: 1\nb: 2\n")
	after := writeDocument(t, dir, "new.yaml", "a: 1\nb: 3\n")

	out, err := runCommand(t, "diff", before, after)
	require.NoError(t, err)
	assert.Equal(t, "  a: 1\n- b: 2\n+ b: 3\n", out)

	out, err = runCommand(t, "diff", before, before)
	require.NoError(t, err)
	assert.Equal(t, "  a: 1\n  b: 2\n", out)
}

func TestSourcesCommand(t *testing.T) {
	dir := t.TempDir()
	base := writeDocument(t, dir, "base.yaml", "a: 1\n")
	path := writeDocument(t, dir, "app.yaml", "!extends:base.yaml\nb: !ref:a\n")

	out, err := runCommand(t, "sources", path)
	require.NoError(t, err)
	assert.Contains(t, out, "  "+path+"\n")
	assert.Contains(t, out, "  "+base+"\n")
	assert.Contains(t, out, "   1  !ref:a\n")
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeDocument(t, dir, "app.yaml", "a: !factory:nope\n")

	_, err := runCommand(t, "resolve", path)
	require.Error(t, err)
	assert.Equal(t, 4, exitCodeForError(err))

	_, err = runCommand(t, "resolve", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, 5, exitCodeForError(err))

	_, err = runCommand(t, "resolve", path, "--var", "novalue")
	require.Error(t, err)
	assert.Equal(t, 2, exitCodeForError(err))
}

// ---------- Helper function tests ----------

func TestParseVariables(t *testing.T) {
	vars, err := parseVariables([]string{"a=1", "b=x=y", " c =", "d="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y", "c": "", "d": ""}, vars)

	for _, bad := range []string{"novalue", "=1"} {
		_, err := parseVariables([]string{bad})
		require.Error(t, err, bad)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	}
}

func TestResolveString(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		value    string
		expected string
	}{
		{
			name:     "nil cmd with value returns value",
			cmd:      nil,
			value:    "explicit",
			expected: "explicit",
		},
		{
			name:     "nil cmd empty value returns empty",
			cmd:      nil,
			value:    "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveString(tt.cmd, tt.value, "test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveStrings(t *testing.T) {
	got := resolveStrings(nil, []string{"a", "b"}, "test_key", "test-flag")
	assert.Equal(t, []string{"a", "b"}, got)

	got = resolveStrings(nil, nil, "test_key", "test-flag")
	assert.Empty(t, got)
}

func TestResolveBool(t *testing.T) {
	assert.True(t, resolveBool(nil, true, "test_key", "test-flag"))
	assert.False(t, resolveBool(nil, false, "test_key", "test-flag"))
}

func TestFlagChanged(t *testing.T) {
	assert.False(t, flagChanged(nil, "anything"), "nil cmd should return false")
	assert.False(t, flagChanged(nil, ""), "nil cmd with empty name")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	assert.False(t, flagChanged(cmd, "myflag"), "unchanged flag")
	assert.False(t, flagChanged(cmd, "nonexistent"), "nonexistent flag")

	require.NoError(t, cmd.Flags().Set("myflag", "val"))
	assert.True(t, flagChanged(cmd, "myflag"))
}

func TestConfigureLogging(t *testing.T) {
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Logger = zerolog.New(io.Discard)
	})

	var buf bytes.Buffer
	require.NoError(t, configureLogging(&buf, "debug", "json"))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	log.Debug().Str("path", "app.yaml").Msg("document loaded")
	assert.Contains(t, buf.String(), `"path":"app.yaml"`)

	require.NoError(t, configureLogging(io.Discard, "bogus", ""))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	err := configureLogging(io.Discard, "info", "xml")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"syntax", types.NewError(types.KindSyntax, "bad tag"), 2},
		{"composition cycle", types.NewError(types.KindCompositionCycle, "loop"), 3},
		{"circular reference", types.NewError(types.KindCircularReference, "loop"), 3},
		{"state", types.NewError(types.KindState, "not activated"), 3},
		{"unresolved path", types.NewError(types.KindUnresolvedPath, "no such path"), 4},
		{"import", types.NewError(types.KindImport, "nothing registered"), 4},
		{"wrapped import", fmt.Errorf("loading: %w", types.NewError(types.KindImport, "x")), 4},
		{"document not found", types.NewError(types.KindNotFound, "cannot read document"), 5},
		{"construction", types.NewError(types.KindConstruction, "!factory:x failed"), 6},
		{"import wrapping missing file", types.NewError(types.KindImport, "cannot load module").
			WithCause(types.NewError(types.KindNotFound, "cannot read document")), 4},
		{
			name: "not found named like unresolved path",
			err: errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(types.ErrUnresolvedPath.Error() + ": a"),
			expected: 5,
		},
		{
			name: "invalid argument",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("bad input"),
			expected: 2,
		},
		{
			name: "already exists",
			err: errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg("dup"),
			expected: 2,
		},
		{
			name: "permission denied",
			err: errbuilder.New().
				WithCode(errbuilder.CodePermissionDenied).
				WithMsg("nope"),
			expected: 3,
		},
		{
			name: "not found generic",
			err: errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("file missing"),
			expected: 5,
		},
		{
			name: "internal error",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("boom"),
			expected: 6,
		},
		{"unknown error", assert.AnError, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitCodeForError(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
