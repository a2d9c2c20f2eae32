package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/osk/internal/config/notify"
	"github.com/dshills/osk/internal/logging"
)

func newTestConfig(t *testing.T, toml string) *Config {
	t.Helper()
	dir := t.TempDir()
	if toml != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFile), []byte(toml), 0o644))
	}
	c := New(
		WithConfigDir(dir),
		WithDataDir(dir),
		WithWatcher(false),
		WithEnv(false),
		WithLogger(logging.Discard()),
	)
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestDefaults(t *testing.T) {
	c := newTestConfig(t, "")
	s := c.Current()

	assert.Equal(t, 500*time.Millisecond, s.Keyboard.LongPressDelay)
	assert.Equal(t, time.Duration(0), s.Keyboard.StickyKeyReleaseDelay)
	assert.Equal(t, 4*time.Second, s.Dwell.Delay)
	assert.Equal(t, 50*time.Millisecond, s.Dwell.PollInterval)
	assert.Equal(t, 400*time.Millisecond, s.Keyboard.DoubleClickTime)
	assert.Equal(t, 1.0, s.Window.ActiveOpacity)
	assert.True(t, s.Window.Composited)
	assert.True(t, s.Prediction.AutoLearn)
	assert.Equal(t, 8, s.Prediction.MaxChoices)
	assert.Equal(t, filepath.Join(c.Dir(), "snippets.json"), s.Paths.Snippets)
	assert.Empty(t, c.Warnings())
}

func TestUserFileOverrides(t *testing.T) {
	c := newTestConfig(t, `
[keyboard]
long_press_delay = 0.8
sticky_key_release_delay = "90s"

[lockdown]
disable_locked_state = true

[window]
inactive_opacity = 3.0
`)
	s := c.Current()
	assert.Equal(t, 800*time.Millisecond, s.Keyboard.LongPressDelay)
	assert.Equal(t, 90*time.Second, s.Keyboard.StickyKeyReleaseDelay)
	assert.True(t, s.Lockdown.DisableLockedState)
	assert.Equal(t, 1.0, s.Window.InactiveOpacity)

	d, err := c.GetDuration("keyboard.long_press_delay")
	require.NoError(t, err)
	assert.Equal(t, 800*time.Millisecond, d)
}

func TestBadValueFallsBackToDefault(t *testing.T) {
	c := newTestConfig(t, `
[keyboard]
drag_protection = "sometimes"
long_press_delay = "soon"
`)
	s := c.Current()
	assert.True(t, s.Keyboard.DragProtection)
	assert.Equal(t, 500*time.Millisecond, s.Keyboard.LongPressDelay)

	warnings := c.Warnings()
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.ErrorIs(t, w, ErrTypeMismatch)
	}
}

func TestParseErrorIsReturned(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFile), []byte("[keyboard"), 0o644))
	c := New(WithConfigDir(dir), WithDataDir(dir), WithWatcher(false), WithEnv(false), WithLogger(logging.Discard()))

	err := c.Load(context.Background())
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "error = %v", err)
	assert.NotNil(t, c.Current())
}

func TestTypedGetters(t *testing.T) {
	c := newTestConfig(t, "")

	_, err := c.GetString("keyboard.nope")
	assert.ErrorIs(t, err, ErrSettingNotFound)

	_, err = c.GetBool("keyboard.long_press_delay")
	var te *TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "bool", te.Expected)

	n, err := c.GetInt("prediction.max_choices")
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	f, err := c.GetFloat("window.inactive_opacity")
	require.NoError(t, err)
	assert.Equal(t, 0.5, f)
}

func TestSetAndNotify(t *testing.T) {
	c := newTestConfig(t, "")
	var changes []notify.Change
	c.SubscribePath("prediction", func(ch notify.Change) { changes = append(changes, ch) })

	on, err := c.Toggle("prediction.stealth_mode")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, c.Current().Prediction.StealthMode)

	require.Len(t, changes, 1)
	assert.Equal(t, "prediction.stealth_mode", changes[0].Path)
	assert.Equal(t, false, changes[0].OldValue)
	assert.Equal(t, true, changes[0].NewValue)

	assert.ErrorIs(t, c.Set("prediction.bogus", true), ErrSettingNotFound)
	assert.ErrorIs(t, c.Set("prediction", true), ErrSettingNotFound)
	assert.ErrorIs(t, c.Set("prediction.stealth_mode", "yes"), ErrTypeMismatch)
	require.NoError(t, c.Set("dwell.delay", "2s"))
	assert.Equal(t, 2*time.Second, c.Current().Dwell.Delay)
}

func TestSavePersistsSession(t *testing.T) {
	c := newTestConfig(t, "[keyboard]\ndrag_threshold = 12.0\n")
	require.NoError(t, c.Set("keyboard.show_click_buttons", true))
	require.NoError(t, c.Save())

	c2 := newTestConfig(t, "")
	c2.configDir = c.Dir()
	require.NoError(t, c2.Reload())
	assert.True(t, c2.Current().Keyboard.ShowClickButtons)
	assert.Equal(t, 12.0, c2.Current().Keyboard.DragThreshold)
}

func TestReloadNotifies(t *testing.T) {
	c := newTestConfig(t, "")
	reloads := 0
	c.Subscribe(func(ch notify.Change) {
		if ch.Type == notify.ChangeReload {
			reloads++
		}
	})

	require.NoError(t, os.WriteFile(c.Path(), []byte("[dwell]\ndelay = 2.5\n"), 0o644))
	require.NoError(t, c.Reload())
	assert.Equal(t, 1, reloads)
	assert.Equal(t, 2500*time.Millisecond, c.Current().Dwell.Delay)
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	c := New(WithConfigDir(dir), WithDataDir(dir), WithEnv(false), WithLogger(logging.Discard()))
	require.NoError(t, c.Load(context.Background()))
	defer c.Close()

	done := make(chan struct{}, 1)
	c.Subscribe(func(notify.Change) {
		select {
		case done <- struct{}{}:
		default:
		}
	})
	require.NoError(t, os.WriteFile(c.Path(), []byte("[window]\ndocking = true\n"), 0o644))

	select {
	case <-done:
		assert.True(t, c.Current().Window.Docking)
	case <-time.After(5 * time.Second):
		t.Fatal("settings were not reloaded")
	}
}

func TestEnvLayer(t *testing.T) {
	t.Setenv("OSK_DWELL_DELAY", "1.5")
	dir := t.TempDir()
	c := New(WithConfigDir(dir), WithDataDir(dir), WithWatcher(false), WithLogger(logging.Discard()))
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, 1500*time.Millisecond, c.Current().Dwell.Delay)
}
