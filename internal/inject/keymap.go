package inject

import "github.com/dshills/osk/internal/input/key"

// Linux input event codes for a US layout.
const (
	keyEsc        = 1
	keyBackspace  = 14
	keyTab        = 15
	keyEnter      = 28
	keyLeftCtrl   = 29
	keyLeftShift  = 42
	keyLeftAlt    = 56
	keySpace      = 57
	keyCapsLock   = 58
	keyF1         = 59
	keyNumLock    = 69
	keyF11        = 87
	keyF12        = 88
	keyRightAlt   = 100
	keyHome       = 102
	keyUp         = 103
	keyPageUp     = 104
	keyLeft       = 105
	keyRight      = 106
	keyEnd        = 107
	keyDown       = 108
	keyPageDown   = 109
	keyInsert     = 110
	keyDelete     = 111
	keyLeftMeta   = 125
	keyCompose    = 127
	keySysRq      = 99
	keycodeOffset = 8
)

type stroke struct {
	code  uint16
	shift bool
}

var letterCodes = [26]uint16{
	30, 48, 46, 32, 18, 33, 34, 35, 23, 36,
	37, 38, 50, 49, 24, 25, 16, 19, 31, 20,
	22, 47, 17, 45, 21, 44,
}

var digitCodes = [10]uint16{11, 2, 3, 4, 5, 6, 7, 8, 9, 10}

var punctStrokes = map[rune]stroke{
	' ': {keySpace, false}, '\t': {keyTab, false}, '\n': {keyEnter, false},
	'.': {52, false}, ',': {51, false}, '/': {53, false},
	';': {39, false}, '\'': {40, false}, '[': {26, false},
	']': {27, false}, '-': {12, false}, '=': {13, false},
	'\\': {43, false}, '`': {41, false},
	'!': {2, true}, '@': {3, true}, '#': {4, true},
	'$': {5, true}, '%': {6, true}, '^': {7, true},
	'&': {8, true}, '*': {9, true}, '(': {10, true},
	')': {11, true}, '_': {12, true}, '+': {13, true},
	'{': {26, true}, '}': {27, true}, '|': {43, true},
	':': {39, true}, '"': {40, true}, '<': {51, true},
	'>': {52, true}, '?': {53, true}, '~': {41, true},
}

var keysymStrokes = map[key.Keysym]uint16{
	key.KeysymBackSpace: keyBackspace,
	key.KeysymTab:       keyTab,
	key.KeysymReturn:    keyEnter,
	key.KeysymEscape:    keyEsc,
	key.KeysymHome:      keyHome,
	key.KeysymLeft:      keyLeft,
	key.KeysymUp:        keyUp,
	key.KeysymRight:     keyRight,
	key.KeysymDown:      keyDown,
	key.KeysymPageUp:    keyPageUp,
	key.KeysymPageDown:  keyPageDown,
	key.KeysymEnd:       keyEnd,
	key.KeysymPrint:     keySysRq,
	key.KeysymInsert:    keyInsert,
	key.KeysymMenu:      keyCompose,
	key.KeysymDelete:    keyDelete,
}

// modifierCodes maps modifier bits to the key that produces them. Mod3 has
// no key on common layouts.
var modifierCodes = map[key.Modifier]uint16{
	key.ModShift:   keyLeftShift,
	key.ModCaps:    keyCapsLock,
	key.ModCtrl:    keyLeftCtrl,
	key.ModAlt:     keyLeftAlt,
	key.ModNumLock: keyNumLock,
	key.ModSuper:   keyLeftMeta,
	key.ModAltGr:   keyRightAlt,
}

// toggles are modifiers whose key flips state on each tap rather than being
// held.
func toggles(m key.Modifier) bool {
	return m == key.ModCaps || m == key.ModNumLock
}

func strokeForRune(r rune) (stroke, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return stroke{letterCodes[r-'a'], false}, true
	case r >= 'A' && r <= 'Z':
		return stroke{letterCodes[r-'A'], true}, true
	case r >= '0' && r <= '9':
		return stroke{digitCodes[r-'0'], false}, true
	}
	s, ok := punctStrokes[r]
	return s, ok
}

func strokeForKeysym(ks key.Keysym) (stroke, bool) {
	if code, ok := keysymStrokes[ks]; ok {
		return stroke{code: code}, true
	}
	if ks >= key.KeysymF1 && ks < key.KeysymF1+12 {
		n := uint16(ks - key.KeysymF1)
		if n < 10 {
			return stroke{code: keyF1 + n}, true
		}
		return stroke{code: keyF11 + n - 10}, true
	}
	switch {
	case ks >= 0x20 && ks <= 0x7e:
		return strokeForRune(rune(ks))
	case ks&0xff000000 == 0x01000000:
		return strokeForRune(rune(ks & 0x00ffffff))
	}
	return stroke{}, false
}
