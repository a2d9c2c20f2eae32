package key

import (
	"errors"
	"fmt"
	"strings"
)

// Modifier is a single modifier bit, or a set of them.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	ModShift   Modifier = 1 << 0
	ModCaps    Modifier = 1 << 1
	ModCtrl    Modifier = 1 << 2
	ModAlt     Modifier = 1 << 3
	ModNumLock Modifier = 1 << 4
	ModMod3    Modifier = 1 << 5
	ModSuper   Modifier = 1 << 6
	ModAltGr   Modifier = 1 << 7
)

// AllModifiers lists every single-bit modifier in ascending bit order.
var AllModifiers = []Modifier{
	ModShift, ModCaps, ModCtrl, ModAlt, ModNumLock, ModMod3, ModSuper, ModAltGr,
}

// ErrUnknownModifier is returned for modifier names that map to no bit.
var ErrUnknownModifier = errors.New("unknown modifier")

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// Single reports whether exactly one bit is set.
func (m Modifier) Single() bool {
	return m != 0 && m&(m-1) == 0
}

var modifierNames = map[Modifier]string{
	ModShift:   "Shift",
	ModCaps:    "Caps",
	ModCtrl:    "Ctrl",
	ModAlt:     "Alt",
	ModNumLock: "NumLock",
	ModMod3:    "Mod3",
	ModSuper:   "Super",
	ModAltGr:   "AltGr",
}

// String returns a human-readable representation like "Ctrl+Alt".
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}
	var parts []string
	for _, mod := range AllModifiers {
		if m.Has(mod) {
			parts = append(parts, modifierNames[mod])
		}
	}
	return strings.Join(parts, "+")
}

// modifierNameMap maps layout modifier names (lowercase) to bits. Both the
// symbolic names and the key ids of the usual modifier keys are accepted.
var modifierNameMap = map[string]Modifier{
	"shift":    ModShift,
	"lfsh":     ModShift,
	"rtsh":     ModShift,
	"caps":     ModCaps,
	"capslock": ModCaps,
	"lock":     ModCaps,
	"control":  ModCtrl,
	"ctrl":     ModCtrl,
	"lctl":     ModCtrl,
	"rctl":     ModCtrl,
	"alt":      ModAlt,
	"mod1":     ModAlt,
	"lalt":     ModAlt,
	"mod2":     ModNumLock,
	"numlock":  ModNumLock,
	"nmlk":     ModNumLock,
	"mod3":     ModMod3,
	"mod4":     ModSuper,
	"super":    ModSuper,
	"win":      ModSuper,
	"lwin":     ModSuper,
	"rwin":     ModSuper,
	"mod5":     ModAltGr,
	"altgr":    ModAltGr,
	"ralt":     ModAltGr,
}

// ParseModifier resolves a single modifier name (case-insensitive).
func ParseModifier(name string) (Modifier, error) {
	if m, ok := modifierNameMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m, nil
	}
	return ModNone, fmt.Errorf("%w: %q", ErrUnknownModifier, name)
}

// ParseModifiers parses a combination like "ctrl+alt". Any unknown part
// fails the whole parse.
func ParseModifiers(s string) (Modifier, error) {
	var result Modifier
	for _, part := range strings.Split(s, "+") {
		mod, err := ParseModifier(part)
		if err != nil {
			return ModNone, err
		}
		result = result.With(mod)
	}
	return result, nil
}
