package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/osk/internal/logging"
	"github.com/dshills/osk/internal/loop"
)

type fakeHost struct {
	typed []string
	keys  []string
}

func (h *fakeHost) TypeText(text string) { h.typed = append(h.typed, text) }
func (h *fakeHost) PressKeyName(name string) error {
	h.keys = append(h.keys, name)
	return nil
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "greet.lua", "")
	writeScript(t, dir, "plain", "")
	r := NewRunner(dir, loop.NewManual(time.Now()), &fakeHost{}, logging.Discard())

	p, err := r.Resolve("greet")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "greet.lua"), p)

	p, err = r.Resolve("greet.lua")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "greet.lua"), p)

	p, err = r.Resolve("plain")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plain"), p)

	_, err = r.Resolve("missing")
	assert.ErrorIs(t, err, ErrScriptNotFound)

	for _, bad := range []string{"", "..", "../etc/passwd", "a/b"} {
		_, err = r.Resolve(bad)
		assert.ErrorIs(t, err, ErrInvalidName, bad)
	}
}

func TestExecuteRecordsCommands(t *testing.T) {
	dir := t.TempDir()
	p := writeScript(t, dir, "s.lua", `
osk.type("hello")
osk.key("Return")
osk.log("sent", 2)
`)
	r := NewRunner(dir, loop.NewManual(time.Now()), &fakeHost{}, logging.Discard())

	cmds, err := r.Execute(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []Command{
		{Kind: CommandType, Text: "hello"},
		{Kind: CommandKey, Text: "Return"},
	}, cmds)
}

func TestSandboxRemovesLoaders(t *testing.T) {
	dir := t.TempDir()
	r := NewRunner(dir, loop.NewManual(time.Now()), &fakeHost{}, logging.Discard())

	for _, src := range []string{
		`dofile("/etc/passwd")`,
		`loadstring("return 1")()`,
		`require("os")`,
		`os.exit(1)`,
		`io.write("x")`,
	} {
		p := writeScript(t, dir, "bad.lua", src)
		_, err := r.Execute(context.Background(), p)
		assert.Error(t, err, src)
	}
}

func TestExecuteKeepsCommandsBeforeError(t *testing.T) {
	dir := t.TempDir()
	p := writeScript(t, dir, "s.lua", `osk.type("a") error("boom")`)
	r := NewRunner(dir, loop.NewManual(time.Now()), &fakeHost{}, logging.Discard())

	cmds, err := r.Execute(context.Background(), p)
	require.Error(t, err)
	assert.Len(t, cmds, 1)
}

func TestExecuteTimeout(t *testing.T) {
	dir := t.TempDir()
	p := writeScript(t, dir, "spin.lua", `while true do end`)
	r := NewRunner(dir, loop.NewManual(time.Now()), &fakeHost{}, logging.Discard(),
		WithTimeout(50*time.Millisecond))

	_, err := r.Execute(context.Background(), p)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestRunAppliesOnLoop(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "hi.lua", `osk.type("hi") osk.key("Tab")`)

	l := loop.New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	host := &fakeHost{}
	r := NewRunner(dir, l, host, logging.Discard())
	results := make(chan Result, 1)
	r.OnResult = func(res Result) { results <- res }
	r.Start(ctx)
	defer r.Close()

	id, err := r.Run("hi")
	require.NoError(t, err)

	select {
	case res := <-results:
		assert.Equal(t, id, res.ID)
		assert.NoError(t, res.Err)
		assert.Equal(t, []string{"hi"}, host.typed)
		assert.Equal(t, []string{"Tab"}, host.keys)
	case <-ctx.Done():
		t.Fatal("script result not delivered")
	}
}

func TestRunAfterClose(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "hi.lua", ``)
	r := NewRunner(dir, loop.NewManual(time.Now()), &fakeHost{}, logging.Discard())
	r.Close()
	r.Close()

	_, err := r.Run("hi")
	assert.ErrorIs(t, err, ErrRunnerClosed)
}

func TestRunQueueFull(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "hi.lua", ``)
	r := NewRunner(dir, loop.NewManual(time.Now()), &fakeHost{}, logging.Discard(), WithQueueSize(1))

	_, err := r.Run("hi")
	require.NoError(t, err)
	_, err = r.Run("hi")
	assert.ErrorIs(t, err, ErrQueueFull)
}
