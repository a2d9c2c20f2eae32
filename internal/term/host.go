// Package term shows the keyboard inside a terminal using tcell.
//
// The keyboard window is a rectangle of cells on the terminal screen.
// Canvas and screen units are both cells; key geometry from the layout is
// scaled to the window size whenever the window is resized. Terminal
// mouse events are turned into pointer events for the widget, so the
// keyboard can be driven with a mouse or a touch screen that the terminal
// emulator reports as a mouse.
package term

import (
	"context"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/osk/internal/geom"
	"github.com/dshills/osk/internal/input/pointer"
	"github.com/dshills/osk/internal/keyboard"
	"github.com/dshills/osk/internal/logging"
	"github.com/dshills/osk/internal/loop"
	"github.com/dshills/osk/internal/widget"
)

// Host is a tcell screen acting as the keyboard window. Apart from Run,
// all methods must be called on the event loop.
type Host struct {
	screen tcell.Screen
	sched  loop.Scheduler
	log    *logging.Logger

	kb     *keyboard.Keyboard
	w      *widget.Widget
	router *pointer.Router

	pos     geom.Point
	width   float64
	height  float64
	visible bool
	opacity float64
	placed  bool

	buttons tcell.ButtonMask
	inside  bool
	dirty   bool

	fitted keyboard.Layout
	base   map[*keyboard.Key]keyGeometry
	extent geom.Rect

	// OnQuit runs when the user asks to leave with Ctrl-C or Ctrl-Q.
	OnQuit func()
}

type keyGeometry struct {
	rect  geom.Rect
	shape geom.Polygon
}

// NewHost wraps an uninitialized screen. Pass nil to use the terminal.
func NewHost(screen tcell.Screen, sched loop.Scheduler, log *logging.Logger) (*Host, error) {
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, err
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()
	return &Host{
		screen:  screen,
		sched:   sched,
		log:     logging.OrDefault(log).WithComponent("term"),
		opacity: 1,
	}, nil
}

// Attach connects the host to the widget it delivers input to.
func (h *Host) Attach(w *widget.Widget, cfg pointer.Config) {
	h.w = w
	h.kb = w.Keyboard()
	h.router = pointer.NewRouter(w, cfg)
	h.Fit()
	h.place()
}

// Close restores the terminal.
func (h *Host) Close() {
	h.screen.Fini()
}

// Suspend hands the terminal back to the caller while fn runs, for
// prompts and external editors, and repaints afterwards.
func (h *Host) Suspend(fn func() error) error {
	if err := h.screen.Suspend(); err != nil {
		return err
	}
	err := fn()
	if rerr := h.screen.Resume(); rerr != nil && err == nil {
		err = rerr
	}
	h.screen.Sync()
	h.Invalidate()
	return err
}

// Run reads terminal events and posts them to the event loop until ctx is
// done or the screen is closed.
func (h *Host) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		h.screen.Fini()
	}()
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return
		}
		h.sched.Post(func() { h.HandleEvent(ev) })
	}
}

// HandleEvent processes one terminal event.
func (h *Host) HandleEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		h.screen.Sync()
		h.place()
		h.Invalidate()
	case *tcell.EventKey:
		h.handleKey(e)
	case *tcell.EventMouse:
		h.handleMouse(e)
	}
}

func (h *Host) handleKey(e *tcell.EventKey) {
	switch e.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlQ:
		if h.OnQuit != nil {
			h.OnQuit()
		}
	case tcell.KeyF2:
		if h.w != nil {
			h.w.ToggleVisible()
		}
	}
}

var mouseButtons = []struct {
	mask   tcell.ButtonMask
	button pointer.Button
}{
	{tcell.Button1, pointer.ButtonPrimary},
	{tcell.Button3, pointer.ButtonMiddle},
	{tcell.Button2, pointer.ButtonSecondary},
}

func (h *Host) handleMouse(e *tcell.EventMouse) {
	if h.w == nil {
		return
	}
	x, y := e.Position()
	root := geom.Pt(float64(x), float64(y))
	ev := pointer.Event{
		Point:     root.Sub(h.pos),
		RootPoint: root,
		Time:      h.sched.Now(),
	}

	prev := h.buttons
	now := e.Buttons() & (tcell.Button1 | tcell.Button2 | tcell.Button3)
	h.buttons = now

	// The pointer is grabbed while a sequence runs.
	if h.router.Active() == 0 {
		h.crossing(h.visible && h.bounds().Contains(root))
	}

	for _, b := range mouseButtons {
		if prev&b.mask != 0 && now&b.mask == 0 {
			ev.Action = pointer.ActionRelease
			ev.Button = b.button
			h.router.Handle(ev)
		}
	}
	for _, b := range mouseButtons {
		if prev&b.mask == 0 && now&b.mask != 0 && h.inside {
			ev.Action = pointer.ActionPress
			ev.Button = b.button
			h.router.Handle(ev)
		}
	}
	if prev == now && (h.inside || h.router.Active() > 0) {
		ev.Action = pointer.ActionMotion
		h.router.Handle(ev)
	}
}

func (h *Host) crossing(inside bool) {
	if inside == h.inside {
		return
	}
	h.inside = inside
	if inside {
		h.w.Enter()
	} else {
		h.w.Leave()
	}
}

// place puts a window that was never placed at the bottom center of the
// screen, sized to the layout.
func (h *Host) place() {
	if h.placed || h.kb == nil {
		return
	}
	sw, sh := h.screen.Size()
	if sw == 0 || sh == 0 {
		return
	}
	ew, eh := h.extentSize()
	w := math.Min(ew, float64(sw))
	ht := math.Min(eh, float64(sh))
	h.placed = true
	h.SetBounds(geom.R(math.Floor((float64(sw)-w)/2), float64(sh)-ht, w, ht))
}

func (h *Host) bounds() geom.Rect {
	return geom.R(h.pos.X, h.pos.Y, h.width, h.height)
}

// Fit records the geometry of a new keyboard layout and scales it to the
// window. Draw calls it, so a reloaded layout is picked up on the next
// repaint.
func (h *Host) Fit() {
	if h.kb == nil || h.kb.Layout() == nil || h.kb.Layout() == h.fitted {
		return
	}
	layout := h.kb.Layout()
	h.fitted = layout
	h.base = make(map[*keyboard.Key]keyGeometry)
	h.extent = geom.Rect{}
	for i, k := range layout.Keys() {
		h.base[k] = keyGeometry{rect: k.Rect, shape: append(geom.Polygon(nil), k.Shape...)}
		if i == 0 {
			h.extent = k.Bounds()
		} else {
			h.extent = h.extent.Union(k.Bounds())
		}
	}
	if h.width == 0 || h.height == 0 {
		h.width, h.height = h.extentSize()
	}
	h.scaleKeys()
}

// extentSize is the layout size measured from the canvas origin.
func (h *Host) extentSize() (w, ht float64) {
	return h.extent.X + h.extent.W, h.extent.Y + h.extent.H
}

func (h *Host) scaleKeys() {
	ew, eh := h.extentSize()
	if ew <= 0 || eh <= 0 {
		return
	}
	sx, sy := h.width/ew, h.height/eh
	scale := func(p geom.Point) geom.Point { return geom.Pt(p.X*sx, p.Y*sy) }
	for k, g := range h.base {
		k.Rect = geom.R(g.rect.X*sx, g.rect.Y*sy, g.rect.W*sx, g.rect.H*sy)
		if len(g.shape) > 0 {
			k.Shape = make(geom.Polygon, len(g.shape))
			for i, p := range g.shape {
				k.Shape[i] = scale(p)
			}
		}
	}
}

// SetOpacity sets the window opacity. Terminals cannot blend, so anything
// below fully opaque is drawn dimmed and zero is not drawn.
func (h *Host) SetOpacity(o float64) {
	if o == h.opacity {
		return
	}
	h.opacity = o
	h.Invalidate()
}

func (h *Host) IsVisible() bool { return h.visible }

func (h *Host) SetVisible(v bool) {
	if v == h.visible {
		return
	}
	h.visible = v
	if !v && h.w != nil {
		h.crossing(false)
	}
	h.Invalidate()
}

func (h *Host) Position() geom.Point  { return h.pos }
func (h *Host) Size() (w, ht float64) { return h.width, h.height }
func (h *Host) ButtonsDown() bool     { return h.buttons != 0 }
func (h *Host) Opacity() float64      { return h.opacity }
func (h *Host) Screen() tcell.Screen  { return h.screen }
func (h *Host) Inside() bool          { return h.inside }
func (h *Host) Move(p geom.Point)     { h.SetBounds(geom.R(p.X, p.Y, h.width, h.height)) }

// Keyboard returns the keyboard shown in the window.
func (h *Host) Keyboard() *keyboard.Keyboard {
	return h.kb
}

// SetBounds moves and resizes the window, rounded to whole cells.
func (h *Host) SetBounds(r geom.Rect) {
	h.pos = geom.Pt(math.Round(r.X), math.Round(r.Y))
	w, ht := math.Round(r.W), math.Round(r.H)
	resized := w != h.width || ht != h.height
	h.width, h.height = w, ht
	if resized {
		h.scaleKeys()
	}
	h.Invalidate()
}

// Invalidate schedules a repaint. The terminal is always redrawn whole,
// so the keys only matter for coalescing.
func (h *Host) Invalidate(...*keyboard.Key) {
	if h.dirty {
		return
	}
	h.dirty = true
	h.sched.Post(h.Draw)
}

var _ widget.Host = (*Host)(nil)
