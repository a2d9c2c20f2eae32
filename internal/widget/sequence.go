package widget

import (
	"time"

	"github.com/dshills/osk/internal/input/pointer"
	"github.com/dshills/osk/internal/keyboard"
)

const (
	// moveKeyLongPressExtra delays the long press of the move key so a
	// slow start of a drag doesn't reveal the touch handles.
	moveKeyLongPressExtra = 300 * time.Millisecond

	// dragResistance inflates the initial key by this share of its
	// shorter side while drag-selecting.
	dragResistance = 0.4
)

// BeginSequence starts a contact: touch handles are hit first, then keys.
// A press on no key of an undecorated window moves or resizes it.
func (w *Widget) BeginSequence(seq *pointer.Sequence) {
	w.lastRoot = seq.RootPoint
	w.lastTouch = seq.Touch
	w.stopOutsidePolling()
	w.StopDwelling()

	if w.popup != nil {
		if w.popup.ItemAt(seq.Point) >= 0 {
			return
		}
		w.closePopup()
	}

	if seq.Touch && w.inactivityEnabled() {
		w.beginActivity(true)
	}

	handle := HandleNone
	if w.handles.active {
		handle = w.touchHandleAt(seq.Point)
		if handle != HandleNone {
			w.handles.pressed = handle
			w.stopHandlesAutoHide()
			w.host.Invalidate()
		} else {
			w.ShowTouchHandles(false)
		}
	}

	var k *keyboard.Key
	if handle == HandleNone {
		k = w.kb.KeyAt(seq.Point)
	}

	s := w.current()
	switch {
	case handle != HandleNone:
		w.drag.EnableProtection(false)
	case k != nil && k.ID == moveKeyID:
		w.drag.EnableProtection(true)
	default:
		w.drag.EnableProtection(s.Keyboard.DragProtection)
	}

	if handle != HandleNone {
		if seq.Primary {
			w.startManip(handle, seq.RootPoint)
		}
		return
	}
	if k == nil {
		if seq.Primary && !s.Window.Decorated {
			if h := w.frameHandleAt(seq.Point); h != HandleNone {
				w.startManip(h, seq.RootPoint)
			}
		}
		return
	}

	seq.ActiveKey = k.Ref
	seq.InitialActiveKey = k.Ref
	seq.EventType = w.clicks.Record(k.Ref, seq.Time)
	w.kb.KeyDown(k, seq, true)
	if seq.EventType == pointer.Click {
		w.startLongPress(seq, k)
	}
}

// UpdateSequence handles motion. Only the primary contact drags the
// window or changes the active key.
func (w *Widget) UpdateSequence(seq *pointer.Sequence) {
	w.lastRoot = seq.RootPoint
	if !seq.Primary {
		return
	}

	var hit *keyboard.Key
	handle := HandleNone
	if w.handles.active {
		handle = w.touchHandleAt(seq.Point)
	}
	if handle == HandleNone {
		hit = w.kb.KeyAt(seq.Point)
	}

	if seq.Held {
		if w.popup != nil {
			w.hoverPopup(seq.Point)
			return
		}
		if w.manipulating() {
			w.manipMotion(seq.RootPoint)
			if w.drag.Active() {
				w.stopLongPress()
			}
		}

		active := w.kb.Key(seq.ActiveKey)
		if !w.drag.Initiated() && active != hit {
			w.stopLongPress()
			if w.resistanceOvercome(seq) && (active == nil || !active.Activated) {
				seq.ActiveKey = refOf(hit)
				w.keyDownUpdate(seq, active, hit)
			}
		}
	} else {
		if handle != HandleNone {
			w.startHandlesAutoHide()
		}
		if w.canStartDwelling(hit) {
			w.StartDwelling(hit)
		}
	}

	if (w.dwellKey != nil && w.dwellKey != hit) ||
		(w.lastDwelled != nil && w.lastDwelled != hit) {
		w.CancelDwelling()
	}
}

// EndSequence releases the active key and ends drags, long presses and
// dwelling.
func (w *Widget) EndSequence(seq *pointer.Sequence) {
	w.lastRoot = seq.RootPoint
	if k := w.kb.Key(seq.ActiveKey); k != nil {
		w.kb.KeyUp(k, seq, !seq.CancelKeyAction)
	}
	if seq.Primary {
		w.stopManip()
	}
	w.stopLongPress()
	w.StopDwelling()

	if w.popup != nil {
		if i := w.popup.ItemAt(seq.Point); i >= 0 {
			w.selectAlternative(i)
		}
	}

	w.resetHandles()
	if w.handles.active {
		w.startHandlesAutoHide()
	}
	if seq.Touch && w.inactivityEnabled() {
		w.beginActivity(false)
	}
}

// TapGesture reveals the touch handles on a three finger tap.
func (w *Widget) TapGesture(numTouches int) bool {
	if numTouches != 3 {
		return false
	}
	w.ShowTouchHandles(true)
	return true
}

// DragGestureBegin moves the window with a multi-touch drag.
func (w *Widget) DragGestureBegin(int) {
	w.stopLongPress()
	if !w.manipulating() {
		w.ShowTouchHandles(true)
		w.drag.EnableProtection(false)
		w.startManip(HandleMove, w.lastRoot)
	}
}

// DragGestureEnd ends a multi-touch drag.
func (w *Widget) DragGestureEnd(int) {
	w.stopManip()
}

func (w *Widget) startLongPress(seq *pointer.Sequence, k *keyboard.Key) {
	w.stopLongPress()
	delay := w.current().Keyboard.LongPressDelay
	if k.ID == moveKeyID {
		delay += moveKeyLongPressExtra
	}
	ref := k.Ref
	w.longPress = w.sched.After(delay, func() {
		w.longPress = nil
		// The key may have changed or the layout been replaced since.
		if seq.ActiveKey != ref || w.kb.Key(ref) != k {
			return
		}
		w.log.Debug("long press", "key", k.ID)
		seq.EventType = pointer.LongPress
		seq.CancelKeyAction = w.kb.KeyLongPress(k, seq.Button)
	})
}

func (w *Widget) stopLongPress() {
	if w.longPress != nil {
		w.longPress.Stop()
		w.longPress = nil
	}
}

// resistanceOvercome reports whether the pointer left the inflated
// rectangle of the sequence's initial key.
func (w *Widget) resistanceOvercome(seq *pointer.Sequence) bool {
	initial := w.kb.Key(seq.InitialActiveKey)
	if initial == nil || seq.ActiveKey != seq.InitialActiveKey {
		return true
	}
	r := initial.Bounds()
	return !r.Inflate(r.MinSide() * dragResistance).Contains(seq.Point)
}

// keyDownUpdate moves the pressed state from one key to the next while
// drag-selecting. Neither key runs its action yet.
func (w *Widget) keyDownUpdate(seq *pointer.Sequence, old, next *keyboard.Key) {
	if old != nil {
		w.kb.KeyUp(old, seq, false)
	}
	if next != nil {
		w.kb.KeyDown(next, seq, false)
	}
}

func refOf(k *keyboard.Key) pointer.KeyRef {
	if k == nil {
		return pointer.NoKey
	}
	return k.Ref
}
