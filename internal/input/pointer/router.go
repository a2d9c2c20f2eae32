package pointer

import (
	"time"

	"github.com/dshills/osk/internal/geom"
)

// Action is the kind of raw contact event.
type Action uint8

const (
	ActionNone Action = iota
	ActionPress
	ActionMotion
	ActionRelease
	// ActionCancel ends a contact without it being released, for example
	// when the host grabs the pointer away.
	ActionCancel
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionMotion:
		return "motion"
	case ActionRelease:
		return "release"
	case ActionCancel:
		return "cancel"
	default:
		return "none"
	}
}

// Event is a raw contact event from the host.
type Event struct {
	Action Action
	// Contact identifies a touch point. The mouse pointer is contact 0.
	Contact   int
	Touch     bool
	Button    Button
	Point     geom.Point
	RootPoint geom.Point
	Time      time.Time
}

// Handler consumes input sequences.
type Handler interface {
	BeginSequence(seq *Sequence)
	UpdateSequence(seq *Sequence)
	EndSequence(seq *Sequence)

	// TapGesture reports a quick multi-contact tap and returns whether it
	// was used.
	TapGesture(numTouches int) bool
	DragGestureBegin(numTouches int)
	DragGestureEnd(numTouches int)
}

// Config holds the gesture thresholds.
type Config struct {
	// TapTimeout is the longest a tap gesture may take from the first
	// touch to the last release.
	TapTimeout time.Duration
	// MoveThreshold is how far a touch may travel and still be part of a
	// tap. Travelling further with two or more touches starts a drag
	// gesture.
	MoveThreshold float64
}

// DefaultConfig returns the default gesture thresholds.
func DefaultConfig() Config {
	return Config{
		TapTimeout:    300 * time.Millisecond,
		MoveThreshold: 8,
	}
}

// gesture tracks the contacts of one touch interaction, from the first
// touch down until the last one lifted.
type gesture struct {
	start       time.Time
	maxContacts int
	moved       bool
	dragging    bool
}

// Router routes raw events to sequences, one per contact.
type Router struct {
	handler Handler
	config  Config
	active  map[int]*Sequence
	gesture *gesture
}

// NewRouter creates a router delivering to h.
func NewRouter(h Handler, config Config) *Router {
	return &Router{
		handler: h,
		config:  config,
		active:  make(map[int]*Sequence),
	}
}

// SetConfig replaces the gesture thresholds.
func (r *Router) SetConfig(config Config) {
	r.config = config
}

// Active returns the number of contacts currently down.
func (r *Router) Active() int {
	return len(r.active)
}

// Handle processes a raw event.
func (r *Router) Handle(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	if ev.RootPoint == (geom.Point{}) {
		ev.RootPoint = ev.Point
	}

	switch ev.Action {
	case ActionPress:
		r.press(ev)
	case ActionMotion:
		r.motion(ev)
	case ActionRelease, ActionCancel:
		r.release(ev)
	}
}

func (r *Router) press(ev Event) {
	if old, ok := r.active[ev.Contact]; ok {
		// Press without release for the same contact: finish the old one.
		r.end(old, ev)
	}

	seq := NewSequence(ev.Button, ev.Point, ev.Time)
	seq.RootPoint = ev.RootPoint
	seq.Contact = ev.Contact
	seq.Touch = ev.Touch
	seq.Held = true
	seq.Primary = len(r.active) == 0
	r.active[ev.Contact] = seq

	if ev.Touch {
		if r.gesture == nil {
			r.gesture = &gesture{start: ev.Time}
		}
		if n := len(r.active); n > r.gesture.maxContacts {
			r.gesture.maxContacts = n
		}
	}

	r.handler.BeginSequence(seq)
}

func (r *Router) motion(ev Event) {
	seq, ok := r.active[ev.Contact]
	if !ok {
		// Hovering pointer.
		hover := NewSequence(ButtonNone, ev.Point, ev.Time)
		hover.RootPoint = ev.RootPoint
		hover.Contact = ev.Contact
		hover.Primary = len(r.active) == 0
		r.handler.UpdateSequence(hover)
		return
	}

	seq.Point = ev.Point
	seq.RootPoint = ev.RootPoint
	seq.UpdateTime = ev.Time

	if g := r.gesture; g != nil && seq.Touch {
		if ev.Point.Dist(seq.Origin) > r.config.MoveThreshold {
			g.moved = true
		}
		if g.moved && !g.dragging && len(r.active) >= 2 {
			g.dragging = true
			r.handler.DragGestureBegin(len(r.active))
		}
	}

	r.handler.UpdateSequence(seq)
}

func (r *Router) release(ev Event) {
	seq, ok := r.active[ev.Contact]
	if !ok {
		return
	}
	r.end(seq, ev)
}

func (r *Router) end(seq *Sequence, ev Event) {
	delete(r.active, seq.Contact)
	seq.Point = ev.Point
	seq.RootPoint = ev.RootPoint
	seq.UpdateTime = ev.Time
	seq.Held = false
	r.handler.EndSequence(seq)

	g := r.gesture
	if g == nil || len(r.active) > 0 {
		return
	}
	r.gesture = nil
	if g.dragging {
		r.handler.DragGestureEnd(g.maxContacts)
		return
	}
	if !g.moved && g.maxContacts > 1 && ev.Time.Sub(g.start) <= r.config.TapTimeout {
		r.handler.TapGesture(g.maxContacts)
	}
}
