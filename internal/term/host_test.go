package term

import (
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/osk/internal/config"
	"github.com/dshills/osk/internal/geom"
	"github.com/dshills/osk/internal/inject"
	"github.com/dshills/osk/internal/input/pointer"
	"github.com/dshills/osk/internal/keyboard"
	"github.com/dshills/osk/internal/layout"
	"github.com/dshills/osk/internal/logging"
	"github.com/dshills/osk/internal/loop"
	"github.com/dshills/osk/internal/widget"
)

const twoKeys = `
keys:
  - {id: a, char: a, rect: [0, 0, 5, 3]}
  - {id: b, char: b, rect: [5, 0, 5, 3]}
`

type fixture struct {
	host   *Host
	screen tcell.SimulationScreen
	sched  *loop.Manual
	rec    *inject.Recorder
	w      *widget.Widget
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := config.New(
		config.WithConfigDir(dir),
		config.WithDataDir(dir),
		config.WithWatcher(false),
		config.WithEnv(false),
		config.WithLogger(logging.Discard()),
	)
	l, err := layout.Parse([]byte(twoKeys), logging.Discard())
	require.NoError(t, err)

	f := &fixture{
		screen: tcell.NewSimulationScreen("UTF-8"),
		sched:  loop.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		rec:    &inject.Recorder{},
	}
	f.screen.SetSize(80, 24)
	f.host, err = NewHost(f.screen, f.sched, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(f.host.Close)

	kb := keyboard.New(l, f.rec, f.sched, cfg, keyboard.WithLogger(logging.Discard()))
	f.w = widget.New(kb, f.host, f.sched, cfg, widget.WithLogger(logging.Discard()), widget.WithFrameWidth(1))
	f.host.Attach(f.w, pointer.DefaultConfig())
	return f
}

func (f *fixture) mouse(x, y int, buttons tcell.ButtonMask) {
	f.host.HandleEvent(tcell.NewEventMouse(x, y, buttons, tcell.ModNone))
	f.sched.Flush()
}

func (f *fixture) show() {
	f.w.SetVisible(true)
	f.sched.Advance(time.Second)
}

func (f *fixture) rune(x, y int) rune {
	r, _, _, _ := f.screen.GetContent(x, y) //nolint:staticcheck // simulation screen readback
	return r
}

func TestAttachPlacesWindowAtBottom(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, geom.Pt(35, 21), f.host.Position())
	w, h := f.host.Size()
	assert.Equal(t, 10.0, w)
	assert.Equal(t, 3.0, h)
}

func TestDrawsKeysOnlyWhenVisible(t *testing.T) {
	f := newFixture(t)
	f.host.Draw()
	assert.Equal(t, ' ', f.rune(36, 22))

	f.show()
	assert.True(t, f.host.IsVisible())
	assert.Equal(t, 'a', f.rune(36, 22))
	assert.Equal(t, 'b', f.rune(41, 22))
}

func TestMouseClickTypes(t *testing.T) {
	f := newFixture(t)
	f.show()

	f.mouse(36, 22, tcell.ButtonNone)
	assert.True(t, f.host.Inside())
	f.mouse(36, 22, tcell.Button1)
	assert.True(t, f.host.ButtonsDown())
	f.mouse(36, 22, tcell.ButtonNone)

	f.mouse(41, 22, tcell.Button1)
	f.mouse(41, 22, tcell.ButtonNone)
	assert.Equal(t, "ab", f.rec.Typed())
}

func TestPressOutsideWindowIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.show()

	f.mouse(5, 5, tcell.Button1)
	assert.False(t, f.host.Inside())
	assert.True(t, f.host.ButtonsDown())
	f.mouse(5, 5, tcell.ButtonNone)
	assert.False(t, f.host.ButtonsDown())
	assert.Empty(t, f.rec.Events)
}

func TestPointerCrossing(t *testing.T) {
	f := newFixture(t)
	f.show()

	f.mouse(36, 22, tcell.ButtonNone)
	assert.True(t, f.host.Inside())
	f.mouse(36, 10, tcell.ButtonNone)
	assert.False(t, f.host.Inside())
}

func TestSetBoundsScalesKeys(t *testing.T) {
	f := newFixture(t)
	a := f.host.Keyboard().FindKeys("a")[0]

	f.host.SetBounds(geom.R(0, 0, 20, 6))
	assert.Equal(t, geom.R(0, 0, 10, 6), a.Rect)

	f.host.Move(geom.Pt(3, 4))
	assert.Equal(t, geom.Pt(3, 4), f.host.Position())
	assert.Equal(t, geom.R(0, 0, 10, 6), a.Rect)
}

func TestQuitKey(t *testing.T) {
	f := newFixture(t)
	quit := false
	f.host.OnQuit = func() { quit = true }

	f.host.HandleEvent(tcell.NewEventKey(tcell.KeyCtrlQ, 0, tcell.ModCtrl))
	assert.True(t, quit)
}

func TestF2TogglesVisibility(t *testing.T) {
	f := newFixture(t)

	f.host.HandleEvent(tcell.NewEventKey(tcell.KeyF2, 0, tcell.ModNone))
	f.sched.Advance(time.Second)
	assert.True(t, f.host.IsVisible())

	f.host.HandleEvent(tcell.NewEventKey(tcell.KeyF2, 0, tcell.ModNone))
	f.sched.Advance(time.Second)
	assert.False(t, f.host.IsVisible())
}

func TestDimmedWhenTranslucent(t *testing.T) {
	f := newFixture(t)
	f.show()

	f.host.SetOpacity(0.5)
	f.sched.Flush()
	_, _, style, _ := f.screen.GetContent(36, 22) //nolint:staticcheck // simulation screen readback
	_, _, attrs := style.Decompose()
	assert.NotZero(t, attrs&tcell.AttrDim)
}

func TestSuspendRunsAndRepaints(t *testing.T) {
	f := newFixture(t)
	f.show()

	ran := false
	err := f.host.Suspend(func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	f.sched.Flush()
	assert.Equal(t, 'a', f.rune(36, 22))

	boom := errors.New("editor failed")
	assert.ErrorIs(t, f.host.Suspend(func() error { return boom }), boom)
}
