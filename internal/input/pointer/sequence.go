package pointer

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/osk/internal/geom"
)

// Button is a pointer button number. Dwell-generated sequences use
// ButtonNone.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonMiddle
	ButtonSecondary
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonMiddle:
		return "middle"
	case ButtonSecondary:
		return "secondary"
	default:
		return "none"
	}
}

// EventType classifies how a sequence activated its key.
type EventType uint8

const (
	Click EventType = iota
	DoubleClick
	Dwell
	LongPress
)

// String returns a string representation of the event type.
func (t EventType) String() string {
	switch t {
	case Click:
		return "click"
	case DoubleClick:
		return "double-click"
	case Dwell:
		return "dwell"
	case LongPress:
		return "long-press"
	default:
		return "unknown"
	}
}

// KeyRef is a non-owning handle to a key: its index in the layout's key
// table. NoKey means no key.
type KeyRef int

// NoKey is the zero reference.
const NoKey KeyRef = -1

// Valid reports whether r refers to a key.
func (r KeyRef) Valid() bool {
	return r >= 0
}

// Sequence is one pointer or touch contact.
type Sequence struct {
	ID      uuid.UUID
	Contact int
	Touch   bool

	// Point is in canvas coordinates, RootPoint in screen coordinates.
	// Origin is where the contact began.
	Point     geom.Point
	RootPoint geom.Point
	Origin    geom.Point
	Button    Button

	// Held is true while a button or finger is down. Hover updates have
	// Held false.
	Held bool

	// Time is when the sequence began, UpdateTime when it last moved.
	Time       time.Time
	UpdateTime time.Time

	Primary bool

	EventType        EventType
	ActiveKey        KeyRef
	InitialActiveKey KeyRef

	// CancelKeyAction suppresses the key's action on release, set when a
	// long press already handled the key.
	CancelKeyAction bool
}

// NewSequence returns a sequence without active key.
func NewSequence(button Button, p geom.Point, t time.Time) *Sequence {
	return &Sequence{
		ID:               uuid.New(),
		Point:            p,
		RootPoint:        p,
		Origin:           p,
		Button:           button,
		Time:             t,
		UpdateTime:       t,
		ActiveKey:        NoKey,
		InitialActiveKey: NoKey,
	}
}

// Duration returns how long the sequence has been running at now.
func (s *Sequence) Duration(now time.Time) time.Duration {
	return now.Sub(s.Time)
}
