package transition

import (
	"math"
	"time"

	"github.com/dshills/osk/internal/geom"
	"github.com/dshills/osk/internal/logging"
	"github.com/dshills/osk/internal/loop"
)

// Durations used by the keyboard window.
const (
	TickInterval = 20 * time.Millisecond

	HideDuration     = 300 * time.Millisecond
	SlideDuration    = 250 * time.Millisecond
	MoveDuration     = 250 * time.Millisecond
	ActivateDuration = 150 * time.Millisecond
	InactiveDuration = 300 * time.Millisecond
)

// Window is the surface the engine animates.
type Window interface {
	SetOpacity(opacity float64)
	IsVisible() bool
	SetVisible(visible bool)
	Position() geom.Point
	Move(p geom.Point)
}

// DockingWindow is implemented by windows that can slide in and out of a
// screen edge.
type DockingWindow interface {
	Window
	// DockPositions returns the on-screen and off-screen positions.
	DockPositions() (shown, hidden geom.Point)
}

// Options are the settings the engine reads on every step.
type Options struct {
	ActiveOpacity   float64
	InactiveOpacity float64
	Composited      bool
	Docking         bool
}

// DefaultOptions returns fully opaque, composited, undocked options.
func DefaultOptions() Options {
	return Options{ActiveOpacity: 1.0, InactiveOpacity: 0.5, Composited: true}
}

// Engine drives State on the event loop and applies it to a Window.
type Engine struct {
	sched  loop.Scheduler
	win    Window
	log    *logging.Logger
	opts   Options
	state  State
	timer  loop.Timer
	placed bool

	// OnHidden runs after a step made the window invisible.
	OnHidden func()
}

// NewEngine creates an engine for win. The window starts out hidden and
// active.
func NewEngine(sched loop.Scheduler, win Window, log *logging.Logger, opts Options) *Engine {
	e := &Engine{
		sched: sched,
		win:   win,
		log:   logging.OrDefault(log).WithComponent("transition"),
		opts:  opts,
	}
	e.state.Active.Snap(1.0)
	e.state.Visible.Snap(0.0)
	e.state.X.Snap(0)
	e.state.Y.Snap(0)
	return e
}

// SetOptions replaces the options. The next step picks them up.
func (e *Engine) SetOptions(opts Options) {
	e.opts = opts
}

// State exposes the animated variables.
func (e *Engine) State() *State {
	return &e.state
}

// Running reports whether a multi-step transition is in progress.
func (e *Engine) Running() bool {
	return e.timer != nil && e.timer.Active()
}

// TransitionVisibleTo retargets visibility and reports whether anything
// changed. A negative duration selects the default for the direction: fade
// out on hide, appear at once on show, slide when docking.
func (e *Engine) TransitionVisibleTo(visible bool, opacityDuration, slideDuration time.Duration) bool {
	changed := false
	opacityVisible := visible

	if dw, ok := e.win.(DockingWindow); ok && e.opts.Docking {
		if slideDuration < 0 {
			slideDuration = SlideDuration
		}
		opacityDuration = 0
		opacityVisible = true

		shown, hidden := dw.DockPositions()
		begin, end := dw.Position(), hidden
		if visible {
			begin, end = hidden, shown
		}
		e.state.X.Value = begin.X
		e.state.Y.Value = begin.Y
		changed = e.positionTo(end, slideDuration)
	}

	if opacityDuration < 0 {
		opacityDuration = 0
		if !opacityVisible {
			opacityDuration = HideDuration
		}
	}
	if e.opacityTo(&e.state.Visible, opacityVisible, opacityDuration) {
		changed = true
	}
	e.state.TargetVisibility = visible
	return changed
}

// TransitionActiveTo retargets the active/inactive opacity blend. A
// negative duration selects ActivateDuration or InactiveDuration.
func (e *Engine) TransitionActiveTo(active bool, duration time.Duration) bool {
	if duration < 0 {
		duration = InactiveDuration
		if active {
			duration = ActivateDuration
		}
	}
	return e.opacityTo(&e.state.Active, active, duration)
}

// TransitionPositionTo moves the window to p over MoveDuration, starting
// from where the window currently is.
func (e *Engine) TransitionPositionTo(p geom.Point) bool {
	cur := e.win.Position()
	e.state.X.Value = cur.X
	e.state.Y.Value = cur.Y
	return e.positionTo(p, MoveDuration)
}

// SyncPosition settles the position variables at p without animating, for
// when the user moved the window.
func (e *Engine) SyncPosition(p geom.Point) {
	e.state.X.Snap(p.X)
	e.state.Y.Snap(p.Y)
	e.placed = true
}

func (e *Engine) positionTo(p geom.Point, d time.Duration) bool {
	now := e.sched.Now()
	e.placed = true
	x := e.state.X.StartTransition(p.X, d, now)
	y := e.state.Y.StartTransition(p.Y, d, now)
	return x || y
}

func (e *Engine) opacityTo(v *Variable, on bool, d time.Duration) bool {
	if !e.opts.Composited {
		d = 0
	}
	target := 0.0
	if on {
		target = 1.0
	}
	return v.StartTransition(target, d, e.sched.Now())
}

// Commit applies pending retargets. Zero-length transitions take effect in a
// single step; anything longer ticks every TickInterval until done.
func (e *Engine) Commit() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.state.MaxDuration() == 0 {
		e.step()
		return
	}
	if e.step() {
		e.timer = e.sched.Every(TickInterval, e.step)
	}
}

// step advances the animation once and reports whether it should continue.
func (e *Engine) step() bool {
	st := &e.state
	st.Update(e.sched.Now())
	done := st.Done()

	inactive := e.opts.InactiveOpacity
	opacity := inactive + st.Active.Value*(e.opts.ActiveOpacity-inactive)
	opacity *= st.Visible.Value
	e.win.SetOpacity(opacity)

	if e.placed {
		p := geom.Pt(math.Trunc(st.X.Value), math.Trunc(st.Y.Value))
		if p != e.win.Position() {
			e.win.Move(p)
		}
	}

	before := e.win.IsVisible()
	later := st.TargetVisibility
	visible := (before || later) && !done || later && done
	if visible != before {
		e.log.Debug("window visibility", "visible", visible)
		e.win.SetVisible(visible)
		if !visible && e.OnHidden != nil {
			e.OnHidden()
		}
	}
	return !done
}
