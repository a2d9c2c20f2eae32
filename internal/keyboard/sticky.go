package keyboard

import (
	"slices"

	"github.com/dshills/osk/internal/input/key"
	"github.com/dshills/osk/internal/input/pointer"
)

// capsID is the key that skips the latched state.
const capsID = "CAPS"

// KeyDown starts a key activation from a pointer sequence. Keys that can
// be long pressed for alternatives defer their action to KeyUp. A nil
// sequence is a primary click.
func (k *Keyboard) KeyDown(key *Key, seq *pointer.Sequence, action bool) {
	if key == nil {
		return
	}
	button := sequenceButton(seq)
	k.StartAutoRelease()
	if !key.Sensitive {
		return
	}
	key.Pressed = true
	k.redraw(key)

	if action && !k.defersActivation(key) {
		k.PressKey(key, button)
		key.Activated = true
	}
}

// KeyUp ends a key activation. An activated key is always released. A key
// whose action was deferred runs its full press and release now, unless
// action is false.
func (k *Keyboard) KeyUp(key *Key, seq *pointer.Sequence, action bool) {
	if key == nil {
		return
	}
	button := sequenceButton(seq)
	if !key.Sensitive {
		key.Pressed = false
		k.redraw(key)
		return
	}

	switch {
	case key.Activated:
		key.Activated = false
		k.ReleaseKey(key, button)
	case action:
		k.PressKey(key, button)
		k.ReleaseKey(key, button)
	default:
		k.unpressKey(key)
	}
}

// KeyLongPress handles a long press and reports whether it consumed the
// key, in which case the key's own action must not run.
func (k *Keyboard) KeyLongPress(key *Key, button pointer.Button) bool {
	if key == nil || !key.Sensitive {
		return false
	}
	if key.Action == ActionButton {
		if c := k.controllers[key]; c != nil {
			return c.LongPress(button)
		}
		return false
	}
	if !k.defersActivation(key) {
		return false
	}
	alternatives := k.alternativesFor(key)
	if len(alternatives) == 0 {
		return false
	}
	k.view.ShowAlternatives(key, alternatives)
	return true
}

func (k *Keyboard) defersActivation(key *Key) bool {
	if key.Action != ActionChar && key.Action != ActionKeycode {
		return false
	}
	return len(k.alternativesFor(key)) > 0
}

func sequenceButton(seq *pointer.Sequence) pointer.Button {
	if seq == nil {
		return pointer.ButtonPrimary
	}
	return seq.Button
}

// PressKey runs the press half of a key.
func (k *Keyboard) PressKey(key *Key, button pointer.Button) {
	if !key.Sensitive {
		return
	}
	key.Pressed = true

	// Lock alt for the duration of the keystroke; alt itself is never
	// locked while held so window managers don't start alt-drag.
	if !key.Latched && k.mods.Count(modAlt) > 0 {
		k.altLocked = true
		k.warn("lock alt", k.vk.LockMod(modAlt))
	}

	if !key.Sticky || !key.Latched {
		k.sendPunctuationPrefix(key)
		k.sendPress(key, button)

		if k.trackInput(key) {
			k.CommitInputLine()
		}
		if key.Action == ActionModifier {
			k.redraw()
		}
	}
	k.redraw(key)
}

// ReleaseKey runs the release half of a key: the sticky cycle for sticky
// keys, the release action and its follow-ups for all others.
func (k *Keyboard) ReleaseKey(key *Key, button pointer.Button) {
	if !key.Sensitive {
		return
	}

	if key.Sticky {
		k.stepSticky(key)
	} else {
		k.releaseNonSticky(key, button)
	}

	k.UpdateUI()
	k.unpressKey(key)
}

// stepSticky advances unlatched -> latched -> locked -> unlatched. CAPS
// locks on its first release. With locked state disabled the cycle is
// unlatched -> latched -> unlatched.
func (k *Keyboard) stepSticky(key *Key) {
	disableLocked := k.current().Lockdown.DisableLockedState

	switch {
	case !key.Latched && (key.ID != capsID || disableLocked):
		key.Latched = true
		k.latched = append(k.latched, key)

	case !key.Locked && !disableLocked:
		k.latched = remove(k.latched, key)
		k.locked = append(k.locked, key)
		key.Latched = true
		key.Locked = true

	default:
		k.latched = remove(k.latched, key)
		k.locked = remove(k.locked, key)
		k.sendRelease(key, pointer.ButtonPrimary)
		key.Latched = false
		key.Locked = false
		if key.Action == ActionModifier {
			k.redraw()
		}
	}
}

func (k *Keyboard) releaseNonSticky(key *Key, button pointer.Button) {
	k.sendRelease(key, button)

	capitalize := false
	if k.current().Prediction.AutoPunctuation {
		if k.PressKeyString(k.punctuator.BuildSuffix()) {
			k.capitalizeNext()
			capitalize = true
		}
	}

	k.FindWordChoices()

	// Click buttons keep the modifiers for the mapped click.
	if !key.IsLayerButton() &&
		!(key.Action == ActionButton && (key.ID == "middleclick" || key.ID == "secondaryclick")) {
		if capitalize {
			k.ReleaseLatchedStickyKeys(k.capsKeys...)
		} else {
			k.ReleaseLatchedStickyKeys()
			k.releaseCapsShift()
		}
	}

	if !key.IsLayerButton() &&
		key.ID != "move" && key.ID != "showclick" &&
		!k.editingSnippet {
		if k.activeLayer != 0 && !k.layerLocked {
			k.activeLayer = 0
			k.redraw()
		}
	}
}

// capitalizeNext turns off the left shift and latches the right one so
// that the next letter comes out capitalized. Without a right shift key
// shift is held until the next key release.
func (k *Keyboard) capitalizeNext() {
	for _, sk := range k.FindKeys("LFSH") {
		if sk.Latched || sk.Locked {
			k.sendRelease(sk, pointer.ButtonPrimary)
			sk.Latched = false
			sk.Locked = false
			k.latched = remove(k.latched, sk)
			k.locked = remove(k.locked, sk)
		}
	}

	k.capsKeys = k.FindKeys("RTSH")
	for _, sk := range k.capsKeys {
		if sk.Latched || sk.Locked {
			continue
		}
		k.sendPress(sk, pointer.ButtonPrimary)
		sk.Latched = true
		k.latched = append(k.latched, sk)
	}
	if len(k.capsKeys) == 0 && !k.capsShift {
		k.capsShift = true
		k.warn("lock shift", k.vk.LockMod(key.ModShift))
		k.mods.inc(key.ModShift)
		k.onModsChanged()
	}
	k.redraw()
}

// releaseCapsShift drops the shift held for capitalization.
func (k *Keyboard) releaseCapsShift() {
	k.capsKeys = nil
	if !k.capsShift {
		return
	}
	k.capsShift = false
	k.warn("unlock shift", k.vk.UnlockMod(key.ModShift))
	k.mods.dec(key.ModShift)
	k.onModsChanged()
}

// ReleaseLatchedStickyKeys releases all latched, not locked, sticky keys
// except the given ones.
func (k *Keyboard) ReleaseLatchedStickyKeys(except ...*Key) {
	if len(k.latched) == 0 {
		return
	}
	for _, key := range slices.Clone(k.latched) {
		if slices.Contains(except, key) {
			continue
		}
		k.sendRelease(key, pointer.ButtonPrimary)
		k.latched = remove(k.latched, key)
		key.Latched = false
	}
	k.redraw()
}

// ReleaseLockedStickyKeys releases all locked sticky keys.
func (k *Keyboard) ReleaseLockedStickyKeys() {
	if len(k.locked) == 0 {
		return
	}
	for _, key := range slices.Clone(k.locked) {
		k.sendRelease(key, pointer.ButtonPrimary)
		k.locked = remove(k.locked, key)
		key.Latched = false
		key.Locked = false
		key.Pressed = false
	}
	k.redraw()
}

// unpressKey clears the pressed state on the next loop turn so the
// pressed frame is drawn first.
func (k *Keyboard) unpressKey(key *Key) {
	k.sched.Post(func() {
		key.Pressed = false
		k.redraw(key)
	})
}

func remove(keys []*Key, key *Key) []*Key {
	if i := slices.Index(keys, key); i >= 0 {
		return slices.Delete(keys, i, i+1)
	}
	return keys
}
