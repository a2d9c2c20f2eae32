package keyboard

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/osk/internal/event"
	"github.com/dshills/osk/internal/input/key"
	"github.com/dshills/osk/internal/input/pointer"
	"github.com/dshills/osk/internal/punctuate"
)

// charOf returns the character a char key types: its action text, or the
// current label when the layout gave none.
func charOf(k *Key) (rune, bool) {
	s := k.Char
	if s == "" {
		s = k.Label()
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, false
	}
	return r, true
}

func (k *Keyboard) sendPress(sk *Key, button pointer.Button) {
	switch sk.Action {
	case ActionChar:
		if r, ok := charOf(sk); ok {
			k.warn("press unicode", k.vk.PressUnicode(r))
		}

	case ActionKeysym, ActionKeypressName:
		k.warn("press keysym", k.vk.PressKeysym(sk.Keysym))

	case ActionKeycode:
		k.warn("press keycode", k.vk.PressKeycode(sk.Keycode))

	case ActionModifier:
		if sk.Modifier != modAlt {
			k.warn("lock modifier", k.vk.LockMod(sk.Modifier))
		}
		k.mods.inc(sk.Modifier)
		k.onModsChanged()

	case ActionMacro:
		k.pressSnippet(sk.Snippet)

	case ActionScript:
		k.runScript(sk.Script)

	case ActionWord:
		remainder, err := k.MatchRemainder(sk.Word)
		if err != nil {
			k.log.Debug("word key", "key", sk.ID, "error", err)
			return
		}
		if k.current().Prediction.AutoPunctuation && button != pointer.ButtonSecondary {
			k.punctuator.SetEndOfWord()
		}
		k.PressKeyString(remainder)

	case ActionButton:
		if c := k.controllers[sk]; c != nil {
			c.Press(button)
		}
	}
}

func (k *Keyboard) sendRelease(sk *Key, button pointer.Button) {
	switch sk.Action {
	case ActionChar:
		if r, ok := charOf(sk); ok {
			k.warn("release unicode", k.vk.ReleaseUnicode(r))
		}

	case ActionKeysym, ActionKeypressName:
		k.warn("release keysym", k.vk.ReleaseKeysym(sk.Keysym))

	case ActionKeycode:
		k.warn("release keycode", k.vk.ReleaseKeycode(sk.Keycode))

	case ActionButton:
		if c := k.controllers[sk]; c != nil {
			c.Release(button)
		}

	case ActionModifier:
		if sk.Modifier != modAlt {
			k.warn("unlock modifier", k.vk.UnlockMod(sk.Modifier))
		}
		k.mods.dec(sk.Modifier)
		k.onModsChanged()
	}

	if k.altLocked {
		k.altLocked = false
		k.warn("unlock alt", k.vk.UnlockMod(modAlt))
	}
}

func (k *Keyboard) pressSnippet(id int) {
	if k.snippets != nil {
		if s, ok := k.snippets.Get(id); ok && s.Text != "" {
			k.PressKeyString(s.Text)
			return
		}
	}
	k.editingSnippet = true
	k.emit(event.TopicSnippetEdit, event.SnippetEdit{ID: id})
}

func (k *Keyboard) runScript(name string) {
	if name == "" {
		return
	}
	if k.scripts == nil {
		k.log.Warn("no script runner", "script", name)
		return
	}
	if _, err := k.scripts.Run(name); err != nil {
		k.log.Warn("run script", "script", name, "error", err)
	}
}

// PressKeyString types s and mirrors it in the input line. A backspace
// control deletes, a shift-out control requests capitalization of the next
// letter, and newlines (also the escaped form "\n") become Return. It
// reports whether capitalization was requested.
func (k *Keyboard) PressKeyString(s string) bool {
	capitalize := false
	stealth := k.current().Prediction.StealthMode

	s = strings.ReplaceAll(s, `\n`, "\n")
	for _, r := range s {
		switch string(r) {
		case punctuate.Backspace:
			k.tapKeysym(key.KeysymBackSpace)
			if !stealth {
				k.line.DeleteLeft(1)
			}

		case punctuate.Capitalize:
			capitalize = true

		case "\n":
			// Some applications mishandle an injected newline character.
			k.tapKeysym(key.KeysymReturn)

		default:
			k.warn("press unicode", k.vk.PressUnicode(r))
			k.warn("release unicode", k.vk.ReleaseUnicode(r))
			if !stealth {
				k.line.Insert(string(r))
			}
		}
	}
	return capitalize
}

func (k *Keyboard) tapKeysym(ks key.Keysym) {
	k.warn("press keysym", k.vk.PressKeysym(ks))
	k.warn("release keysym", k.vk.ReleaseKeysym(ks))
}

// TypeText types s for scripts.
func (k *Keyboard) TypeText(s string) {
	k.PressKeyString(s)
	k.FindWordChoices()
	k.UpdateUI()
}

// PressKeyName taps a named key for scripts.
func (k *Keyboard) PressKeyName(name string) error {
	ks, err := key.KeysymFromName(name)
	if err != nil {
		return err
	}
	k.tapKeysym(ks)
	return nil
}
