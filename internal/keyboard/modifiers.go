package keyboard

import (
	"math/bits"

	"github.com/dshills/osk/internal/input/key"
)

// modAlt is counted but never locked while an alt key is held.
const modAlt = key.ModAlt

// Modifiers counts the keys currently holding each modifier bit. A count
// never drops below zero.
type Modifiers [8]int

func bitIndex(bit key.Modifier) int {
	return bits.TrailingZeros8(uint8(bit))
}

// Count returns the press count of a single modifier bit.
func (m Modifiers) Count(bit key.Modifier) int {
	if bit == 0 {
		return 0
	}
	return m[bitIndex(bit)]
}

// Active reports whether any bit of mask is held.
func (m Modifiers) Active(mask key.Modifier) bool {
	for _, bit := range key.AllModifiers {
		if mask.Has(bit) && m.Count(bit) > 0 {
			return true
		}
	}
	return false
}

// Mask returns the held modifiers.
func (m Modifiers) Mask() key.Modifier {
	var mask key.Modifier
	for _, bit := range key.AllModifiers {
		if m.Count(bit) > 0 {
			mask = mask.With(bit)
		}
	}
	return mask
}

func (m *Modifiers) inc(mask key.Modifier) {
	for _, bit := range key.AllModifiers {
		if mask.Has(bit) {
			m[bitIndex(bit)]++
		}
	}
}

func (m *Modifiers) dec(mask key.Modifier) {
	for _, bit := range key.AllModifiers {
		if mask.Has(bit) && m[bitIndex(bit)] > 0 {
			m[bitIndex(bit)]--
		}
	}
}
