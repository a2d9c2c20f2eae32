package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "osk dev")
}

func TestSnippetsLifecycle(t *testing.T) {
	file := filepath.Join(t.TempDir(), "snippets.json")

	out, err := execute(t, "snippets", "list", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "no snippets")

	_, err = execute(t, "snippets", "set", "2", "greet", "Hello there", "--file", file)
	require.NoError(t, err)
	assert.FileExists(t, file)

	out, err = execute(t, "snippets", "list", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "greet")
	assert.Contains(t, out, `"Hello there"`)

	_, err = execute(t, "snippets", "delete", "2", "--file", file)
	require.NoError(t, err)
	out, err = execute(t, "snippets", "list", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "no snippets")

	_, err = execute(t, "snippets", "delete", "2", "--file", file)
	assert.Error(t, err)
	_, err = execute(t, "snippets", "set", "-1", "x", "y", "--file", file)
	assert.Error(t, err)
}

func TestSnippetsFileFromSettings(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "--config-dir", dir, "snippets", "set", "0", "a", "b")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "snippets.json"))
}

func TestLayoutCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
name: tiny
keys:
  - {id: a, char: a, rect: [0, 0, 5, 3]}
`), 0o644))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
keys:
  - {id: a, char: a, rect: [0, 0, 5, 3]}
  - {id: x, modifier: hyper, rect: [5, 0, 5, 3]}
`), 0o644))

	out, err := execute(t, "layout", "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "layout tiny: 1 keys, size 5x3")

	out, err = execute(t, "layout", "check", bad)
	assert.ErrorContains(t, err, "1 inert keys")
	assert.Contains(t, out, "warning:")

	_, err = execute(t, "layout", "check", filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
