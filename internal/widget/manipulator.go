package widget

import (
	"math"

	"github.com/dshills/osk/internal/geom"
	"github.com/dshills/osk/internal/loop"
)

// Handle is a part of the window that moves or resizes it when dragged.
type Handle uint8

const (
	HandleNone Handle = iota
	HandleMove
	HandleNorth
	HandleNorthEast
	HandleEast
	HandleSouthEast
	HandleSouth
	HandleSouthWest
	HandleWest
	HandleNorthWest
)

var handleNames = [...]string{
	"none", "move", "n", "ne", "e", "se", "s", "sw", "w", "nw",
}

// String returns a string representation of the handle.
func (h Handle) String() string {
	if int(h) < len(handleNames) {
		return handleNames[h]
	}
	return "unknown"
}

func (h Handle) north() bool { return h == HandleNorth || h == HandleNorthEast || h == HandleNorthWest }
func (h Handle) south() bool { return h == HandleSouth || h == HandleSouthEast || h == HandleSouthWest }
func (h Handle) east() bool  { return h == HandleEast || h == HandleNorthEast || h == HandleSouthEast }
func (h Handle) west() bool  { return h == HandleWest || h == HandleNorthWest || h == HandleSouthWest }

const (
	defaultFrameWidth = 10
	minWindowSize     = 40
	touchHandleShare  = 0.2
)

// manipulation is a window move or resize in progress.
type manipulation struct {
	handle Handle
	// start is the window in screen coordinates when the drag began.
	start geom.Rect
}

func (w *Widget) bounds() geom.Rect {
	p := w.host.Position()
	width, height := w.host.Size()
	return geom.R(p.X, p.Y, width, height)
}

func (w *Widget) manipulating() bool {
	return w.manip.handle != HandleNone
}

// Dragging reports whether the window is being moved or resized.
func (w *Widget) Dragging() bool {
	return w.manipulating() && w.drag.Active()
}

// StartMoveWindow starts moving the window with the pointer.
func (w *Widget) StartMoveWindow() {
	w.startManip(HandleMove, w.lastRoot)
}

// StopMoveWindow ends a window move.
func (w *Widget) StopMoveWindow() {
	w.stopManip()
}

func (w *Widget) startManip(h Handle, root geom.Point) {
	w.manip.handle = h
	w.manip.start = w.bounds()
	w.drag.Start(root)
	w.log.Debug("window drag", "handle", h)
}

// manipMotion follows the pointer once the drag threshold is crossed.
func (w *Widget) manipMotion(root geom.Point) {
	if !w.manipulating() || !w.drag.Update(root) {
		return
	}
	r := dragRect(w.manip.start, w.manip.handle, w.drag.Delta())
	if w.manip.handle == HandleMove {
		w.host.Move(geom.Pt(r.X, r.Y))
		return
	}
	w.host.SetBounds(r)
}

func (w *Widget) stopManip() {
	if !w.manipulating() {
		return
	}
	moved := w.drag.Active()
	w.drag.End()
	w.manip.handle = HandleNone
	if moved {
		w.engine.SyncPosition(w.host.Position())
	}
}

// dragRect applies a pointer offset to r for handle h. Resizing never
// shrinks below minWindowSize.
func dragRect(r geom.Rect, h Handle, d geom.Point) geom.Rect {
	if h == HandleMove {
		return geom.R(r.X+d.X, r.Y+d.Y, r.W, r.H)
	}
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.W, r.Y+r.H
	if h.west() {
		x0 = math.Min(x0+d.X, x1-minWindowSize)
	}
	if h.east() {
		x1 = math.Max(x1+d.X, x0+minWindowSize)
	}
	if h.north() {
		y0 = math.Min(y0+d.Y, y1-minWindowSize)
	}
	if h.south() {
		y1 = math.Max(y1+d.Y, y0+minWindowSize)
	}
	return geom.R(x0, y0, x1-x0, y1-y0)
}

// frameHandleAt maps a canvas point to the frame part under it. Anything
// inside the frame moves the window.
func (w *Widget) frameHandleAt(p geom.Point) Handle {
	width, height := w.host.Size()
	canvas := geom.R(0, 0, width, height)
	if !canvas.Contains(p) {
		return HandleNone
	}
	fw := w.frameWidth
	west, east := p.X < fw, p.X >= width-fw
	north, south := p.Y < fw, p.Y >= height-fw
	switch {
	case north && west:
		return HandleNorthWest
	case north && east:
		return HandleNorthEast
	case south && west:
		return HandleSouthWest
	case south && east:
		return HandleSouthEast
	case north:
		return HandleNorth
	case south:
		return HandleSouth
	case west:
		return HandleWest
	case east:
		return HandleEast
	}
	return HandleMove
}

// TouchHandle is one of the handles shown for touch screens.
type TouchHandle struct {
	Handle Handle
	Rect   geom.Rect
}

type touchHandles struct {
	active  bool
	pressed Handle
	timer   loop.Timer
}

// TouchHandles returns the visible touch handles, none while hidden.
func (w *Widget) TouchHandles() []TouchHandle {
	if !w.handles.active {
		return nil
	}
	width, height := w.host.Size()
	s := math.Max(math.Min(width, height)*touchHandleShare, w.frameWidth)
	x := [3]float64{0, (width - s) / 2, width - s}
	y := [3]float64{0, (height - s) / 2, height - s}
	at := func(h Handle, col, row int) TouchHandle {
		return TouchHandle{Handle: h, Rect: geom.R(x[col], y[row], s, s)}
	}
	return []TouchHandle{
		at(HandleMove, 1, 1),
		at(HandleNorthWest, 0, 0),
		at(HandleNorth, 1, 0),
		at(HandleNorthEast, 2, 0),
		at(HandleEast, 2, 1),
		at(HandleSouthEast, 2, 2),
		at(HandleSouth, 1, 2),
		at(HandleSouthWest, 0, 2),
		at(HandleWest, 0, 1),
	}
}

// PressedHandle returns the touch handle being dragged.
func (w *Widget) PressedHandle() Handle {
	return w.handles.pressed
}

func (w *Widget) touchHandleAt(p geom.Point) Handle {
	for _, th := range w.TouchHandles() {
		if th.Rect.Contains(p) {
			return th.Handle
		}
	}
	return HandleNone
}

// ShowTouchHandles shows or hides the touch handles. Shown handles hide
// again after the configured timeout.
func (w *Widget) ShowTouchHandles(show bool) {
	if show && w.current().Lockdown.DisableTouchHandles {
		return
	}
	changed := w.handles.active != show
	w.handles.active = show
	if show {
		w.startHandlesAutoHide()
	} else {
		w.stopHandlesAutoHide()
		w.handles.pressed = HandleNone
	}
	if changed {
		w.host.Invalidate()
	}
}

func (w *Widget) resetHandles() {
	if w.handles.pressed != HandleNone {
		w.handles.pressed = HandleNone
		w.host.Invalidate()
	}
}

func (w *Widget) startHandlesAutoHide() {
	w.stopHandlesAutoHide()
	timeout := w.current().Keyboard.TouchHandlesTimeout
	if timeout <= 0 {
		return
	}
	w.handles.timer = w.sched.After(timeout, func() {
		w.handles.timer = nil
		w.ShowTouchHandles(false)
	})
}

func (w *Widget) stopHandlesAutoHide() {
	if w.handles.timer != nil {
		w.handles.timer.Stop()
		w.handles.timer = nil
	}
}
