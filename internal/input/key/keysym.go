package key

import (
	"errors"
	"fmt"
	"strings"
)

// Keysym is an X11 key symbol value.
type Keysym uint32

// Frequently used keysyms.
const (
	KeysymBackSpace Keysym = 0xff08
	KeysymTab       Keysym = 0xff09
	KeysymReturn    Keysym = 0xff0d
	KeysymEscape    Keysym = 0xff1b
	KeysymHome      Keysym = 0xff50
	KeysymLeft      Keysym = 0xff51
	KeysymUp        Keysym = 0xff52
	KeysymRight     Keysym = 0xff53
	KeysymDown      Keysym = 0xff54
	KeysymPageUp    Keysym = 0xff55
	KeysymPageDown  Keysym = 0xff56
	KeysymEnd       Keysym = 0xff57
	KeysymPrint     Keysym = 0xff61
	KeysymInsert    Keysym = 0xff63
	KeysymMenu      Keysym = 0xff67
	KeysymF1        Keysym = 0xffbe
	KeysymDelete    Keysym = 0xffff
	KeysymSpace     Keysym = 0x0020
)

// ErrUnknownKeysym is returned for key names without a keysym.
var ErrUnknownKeysym = errors.New("unknown keysym name")

var keysymNames = map[string]Keysym{
	"backspace": KeysymBackSpace,
	"tab":       KeysymTab,
	"return":    KeysymReturn,
	"enter":     KeysymReturn,
	"escape":    KeysymEscape,
	"esc":       KeysymEscape,
	"home":      KeysymHome,
	"left":      KeysymLeft,
	"up":        KeysymUp,
	"right":     KeysymRight,
	"down":      KeysymDown,
	"prior":     KeysymPageUp,
	"page_up":   KeysymPageUp,
	"next":      KeysymPageDown,
	"page_down": KeysymPageDown,
	"end":       KeysymEnd,
	"print":     KeysymPrint,
	"insert":    KeysymInsert,
	"menu":      KeysymMenu,
	"delete":    KeysymDelete,
	"space":     KeysymSpace,
}

func init() {
	for i := 0; i < 12; i++ {
		keysymNames[fmt.Sprintf("f%d", i+1)] = KeysymF1 + Keysym(i)
	}
}

// KeysymFromName resolves a key name such as "return" or "F5".
// Single characters resolve to their unicode keysym.
func KeysymFromName(name string) (Keysym, error) {
	if ks, ok := keysymNames[strings.ToLower(name)]; ok {
		return ks, nil
	}
	if r := []rune(name); len(r) == 1 {
		return KeysymFromRune(r[0]), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKeysym, name)
}

// KeysymFromRune maps a character to its keysym. Latin-1 characters map to
// themselves, everything else uses the 0x01000000 unicode range.
func KeysymFromRune(r rune) Keysym {
	if r >= 0x20 && r <= 0xff {
		return Keysym(r)
	}
	return Keysym(0x01000000 | uint32(r))
}

// Name returns the canonical name of a known keysym, or its hex value.
func (k Keysym) Name() string {
	for name, ks := range canonicalNames {
		if ks == k {
			return name
		}
	}
	if k >= 0x20 && k <= 0xff {
		return string(rune(k))
	}
	return fmt.Sprintf("0x%x", uint32(k))
}

var canonicalNames = map[string]Keysym{
	"BackSpace": KeysymBackSpace,
	"Tab":       KeysymTab,
	"Return":    KeysymReturn,
	"Escape":    KeysymEscape,
	"Home":      KeysymHome,
	"Left":      KeysymLeft,
	"Up":        KeysymUp,
	"Right":     KeysymRight,
	"Down":      KeysymDown,
	"Prior":     KeysymPageUp,
	"Next":      KeysymPageDown,
	"End":       KeysymEnd,
	"Print":     KeysymPrint,
	"Insert":    KeysymInsert,
	"Menu":      KeysymMenu,
	"Delete":    KeysymDelete,
	"space":     KeysymSpace,
}
