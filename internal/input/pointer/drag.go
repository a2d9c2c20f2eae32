package pointer

import "github.com/dshills/osk/internal/geom"

// DragTracker follows a held contact that may turn into a window move or
// resize. The drag is initiated on press and only becomes active once the
// contact travelled further than the threshold, unless protection is off.
type DragTracker struct {
	threshold  float64
	protection bool

	initiated bool
	active    bool
	startPos  geom.Point
	current   geom.Point
}

// NewDragTracker creates a tracker with the given threshold in pixels.
func NewDragTracker(threshold float64) *DragTracker {
	return &DragTracker{threshold: threshold, protection: true}
}

// SetThreshold changes the drag threshold.
func (t *DragTracker) SetThreshold(px float64) {
	t.threshold = px
}

// EnableProtection switches the threshold on or off. Without protection a
// drag is active as soon as it is initiated.
func (t *DragTracker) EnableProtection(on bool) {
	t.protection = on
}

// Protected reports whether the threshold applies.
func (t *DragTracker) Protected() bool {
	return t.protection
}

// Start initiates a drag at p.
func (t *DragTracker) Start(p geom.Point) {
	t.initiated = true
	t.active = !t.protection
	t.startPos = p
	t.current = p
}

// Update moves the drag to p and reports whether it is active.
func (t *DragTracker) Update(p geom.Point) bool {
	if !t.initiated {
		return false
	}
	t.current = p
	if !t.active && p.Dist(t.startPos) > t.threshold {
		t.active = true
	}
	return t.active
}

// ResetProtection makes an active drag wait for the threshold again,
// measured from the current position.
func (t *DragTracker) ResetProtection() {
	if t.protection {
		t.active = false
		t.startPos = t.current
	}
}

// End stops the drag.
func (t *DragTracker) End() {
	t.initiated = false
	t.active = false
	t.startPos = geom.Point{}
	t.current = geom.Point{}
}

// Initiated reports whether a drag was started and not yet ended.
func (t *DragTracker) Initiated() bool {
	return t.initiated
}

// Active reports whether the threshold has been overcome.
func (t *DragTracker) Active() bool {
	return t.active
}

// StartPos returns where the drag started.
func (t *DragTracker) StartPos() geom.Point {
	return t.startPos
}

// Delta returns the distance dragged from the start.
func (t *DragTracker) Delta() geom.Point {
	return t.current.Sub(t.startPos)
}
