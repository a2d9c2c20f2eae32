// Package widget turns pointer and touch sequences into keyboard gestures.
//
// A Widget sits between a Host window and a keyboard.Keyboard. It
// classifies every contact as click, double click, long press, dwell or
// window drag, runs the timers those gestures need, and drives the
// window's visibility and opacity through a transition.Engine.
//
// Timers owned by the widget and the state each one may touch:
//
//	long press      the sequence it was armed for (EventType, CancelKeyAction)
//	dwell           dwellKey, lastDwelled and the dwelling key's countdown
//	outside click   the poll state, then the keyboard's latched keys
//	inactivity      the engine's active variable
//	handles         touch handle visibility
//
// All methods must be called on the event loop.
package widget

import (
	"github.com/dshills/osk/internal/config"
	"github.com/dshills/osk/internal/event"
	"github.com/dshills/osk/internal/geom"
	"github.com/dshills/osk/internal/input/pointer"
	"github.com/dshills/osk/internal/keyboard"
	"github.com/dshills/osk/internal/logging"
	"github.com/dshills/osk/internal/loop"
	"github.com/dshills/osk/internal/transition"
)

// Host is the window the keyboard is shown in.
type Host interface {
	transition.Window

	// Size returns the window size in canvas units.
	Size() (w, h float64)
	// SetBounds moves and resizes the window in one step.
	SetBounds(r geom.Rect)
	// Invalidate requests a repaint of keys, of everything when none are
	// given.
	Invalidate(keys ...*keyboard.Key)
	// ButtonsDown reports whether a pointer button is held anywhere.
	ButtonsDown() bool
}

// Settings gives access to the current configuration.
type Settings interface {
	Current() *config.Settings
}

const moveKeyID = "move"

// Widget tracks input sequences on the keyboard window.
type Widget struct {
	kb       *keyboard.Keyboard
	host     Host
	settings Settings
	sched    loop.Scheduler
	log      *logging.Logger
	bus      *event.Bus
	engine   *transition.Engine

	clicks *pointer.ClickTracker
	drag   *pointer.DragTracker
	manip  manipulation

	frameWidth float64
	lastRoot   geom.Point
	lastTouch  bool

	longPress loop.Timer

	dwellKey    *keyboard.Key
	lastDwelled *keyboard.Key
	dwellTimer  loop.Timer

	outside    outsidePoll
	inactivity loop.Timer
	handles    touchHandles
	popup      *Popup
}

// Option configures a Widget.
type Option func(*Widget)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Widget) {
		w.log = logging.OrDefault(l).WithComponent("widget")
	}
}

// WithBus publishes window visibility changes on b.
func WithBus(b *event.Bus) Option {
	return func(w *Widget) {
		w.bus = b
	}
}

// WithFrameWidth sets how far from the window edge a press resizes
// instead of moving.
func WithFrameWidth(px float64) Option {
	return func(w *Widget) {
		w.frameWidth = px
	}
}

// New creates a widget for kb shown in host and registers it as the
// keyboard's view.
func New(kb *keyboard.Keyboard, host Host, sched loop.Scheduler, settings Settings, opts ...Option) *Widget {
	w := &Widget{
		kb:         kb,
		host:       host,
		settings:   settings,
		sched:      sched,
		log:        logging.Default().WithComponent("widget"),
		clicks:     pointer.NewClickTracker(0),
		drag:       pointer.NewDragTracker(0),
		frameWidth: defaultFrameWidth,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.engine = transition.NewEngine(sched, host, w.log, transition.DefaultOptions())
	w.engine.OnHidden = w.onHidden
	w.ApplySettings()
	kb.SetView(w)
	return w
}

func (w *Widget) current() *config.Settings {
	return w.settings.Current()
}

// Keyboard returns the keyboard the widget drives.
func (w *Widget) Keyboard() *keyboard.Keyboard {
	return w.kb
}

// ApplySettings picks up changed configuration.
func (w *Widget) ApplySettings() {
	s := w.current()
	w.clicks.SetMaxTime(s.Keyboard.DoubleClickTime)
	w.drag.SetThreshold(s.Keyboard.DragThreshold)
	w.engine.SetOptions(transition.Options{
		ActiveOpacity:   s.Window.ActiveOpacity,
		InactiveOpacity: s.Window.InactiveOpacity,
		Composited:      s.Window.Composited,
		Docking:         s.Window.Docking,
	})
	if !w.inactivityEnabled() {
		w.stopInactivity()
		w.engine.TransitionActiveTo(true, 0)
	}
	w.engine.Commit()
}

// Close stops every timer the widget runs.
func (w *Widget) Close() {
	w.stopLongPress()
	w.CancelDwelling()
	w.stopOutsidePolling()
	w.stopInactivity()
	w.stopHandlesAutoHide()
	w.stopManip()
}

// Redraw forwards key invalidations to the host.
func (w *Widget) Redraw(keys ...*keyboard.Key) {
	w.host.Invalidate(keys...)
}

// IsVisible reports the visibility the window is headed for.
func (w *Widget) IsVisible() bool {
	return w.engine.State().TargetVisibility
}

// SetVisible shows or hides the window. Showing is immediate, hiding
// fades out first.
func (w *Widget) SetVisible(visible bool) {
	if !visible {
		w.closePopup()
	}
	w.engine.TransitionVisibleTo(visible, -1, -1)
	if visible && w.inactivityEnabled() {
		w.engine.TransitionActiveTo(true, 0)
		w.beginActivity(false)
	}
	w.engine.Commit()
	if visible {
		w.emit(event.TopicWindowVisibility, event.WindowVisibility{Visible: true})
	}
}

// ToggleVisible flips the window visibility.
func (w *Widget) ToggleVisible() {
	w.SetVisible(!w.IsVisible())
}

// TransitionActiveTo fades between active and inactive opacity.
func (w *Widget) TransitionActiveTo(active bool) {
	w.engine.TransitionActiveTo(active, -1)
	w.engine.Commit()
}

// TransitionPositionTo moves the window to p.
func (w *Widget) TransitionPositionTo(p geom.Point) {
	w.engine.TransitionPositionTo(p)
	w.engine.Commit()
}

func (w *Widget) onHidden() {
	w.emit(event.TopicWindowVisibility, event.WindowVisibility{Visible: false})
	if w.inactivityEnabled() {
		w.beginActivity(false)
	}
}

// Enter runs when the pointer enters the window.
func (w *Widget) Enter() {
	if w.inactivityEnabled() {
		w.beginActivity(true)
	}
	w.stopOutsidePolling()
}

// Leave runs when the pointer leaves the window.
func (w *Widget) Leave() {
	w.CancelDwelling()
	w.resetHandles()
	w.startOutsidePolling()
	if w.inactivityEnabled() && !w.lastTouch {
		w.beginActivity(false)
	}
}

func (w *Widget) emit(t event.Topic, payload any) {
	if w.bus != nil {
		w.bus.Emit(t, payload, "widget")
	}
}

var _ keyboard.View = (*Widget)(nil)
var _ pointer.Handler = (*Widget)(nil)
