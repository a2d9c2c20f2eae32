// Package inject synthesizes OS-level keyboard input.
//
// The keyboard talks to a Sink. Locking wraps any Sink with the nested
// modifier lock counts the keyboard relies on, Recorder captures events for
// tests and dry runs, and UInput writes events to /dev/uinput on Linux.
package inject

import (
	"errors"
	"fmt"

	"github.com/dshills/osk/internal/input/key"
)

var (
	// ErrUnmappable is returned when a character or keysym has no key on the
	// target device.
	ErrUnmappable = errors.New("no key produces this input")

	// ErrUnsupported is returned where a sink cannot be opened on this
	// platform.
	ErrUnsupported = errors.New("input injection not supported on this platform")
)

// Sink receives synthesized input.
type Sink interface {
	PressUnicode(r rune) error
	ReleaseUnicode(r rune) error
	PressKeysym(ks key.Keysym) error
	ReleaseKeysym(ks key.Keysym) error
	// PressKeycode and ReleaseKeycode take X11 keycodes (evdev + 8).
	PressKeycode(code int) error
	ReleaseKeycode(code int) error
	LockMod(m key.Modifier) error
	UnlockMod(m key.Modifier) error
}

// Closer is implemented by sinks holding OS resources.
type Closer interface {
	Close() error
}

// Kind names a recorded event.
type Kind uint8

const (
	PressUnicode Kind = iota + 1
	ReleaseUnicode
	PressKeysym
	ReleaseKeysym
	PressKeycode
	ReleaseKeycode
	LockMod
	UnlockMod
)

var kindNames = map[Kind]string{
	PressUnicode:   "press_unicode",
	ReleaseUnicode: "release_unicode",
	PressKeysym:    "press_keysym",
	ReleaseKeysym:  "release_keysym",
	PressKeycode:   "press_keycode",
	ReleaseKeycode: "release_keycode",
	LockMod:        "lock_mod",
	UnlockMod:      "unlock_mod",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Event is one injected primitive.
type Event struct {
	Kind  Kind
	Value uint32
}

func (e Event) String() string {
	switch e.Kind {
	case PressUnicode, ReleaseUnicode:
		return fmt.Sprintf("%s(%q)", e.Kind, rune(e.Value))
	case PressKeysym, ReleaseKeysym:
		return fmt.Sprintf("%s(%s)", e.Kind, key.Keysym(e.Value).Name())
	case LockMod, UnlockMod:
		return fmt.Sprintf("%s(%s)", e.Kind, key.Modifier(e.Value))
	default:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Value)
	}
}
