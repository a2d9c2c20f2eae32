package widget

import (
	"github.com/dshills/osk/internal/input/pointer"
	"github.com/dshills/osk/internal/keyboard"
)

func (w *Widget) canStartDwelling(k *keyboard.Key) bool {
	if k == nil || !k.Sensitive || w.IsDwelling() || w.lastDwelled == k {
		return false
	}
	if w.current().Lockdown.DisableDwellActivation {
		return false
	}
	c := w.kb.Controller(k)
	return c != nil && c.CanDwell()
}

// StartDwelling starts the dwell countdown on k. When it runs out, k is
// pressed and released once.
func (w *Widget) StartDwelling(k *keyboard.Key) {
	w.CancelDwelling()
	s := w.current().Dwell
	w.dwellKey = k
	w.lastDwelled = k
	k.StartDwelling(w.sched.Now(), s.Delay)
	w.dwellTimer = w.sched.Every(s.PollInterval, w.dwellTick)
	w.host.Invalidate(k)
}

func (w *Widget) dwellTick() bool {
	k := w.dwellKey
	if k == nil || w.kb.Key(k.Ref) != k {
		w.dwellTimer = nil
		w.StopDwelling()
		return false
	}
	w.host.Invalidate(k)
	now := w.sched.Now()
	if !k.DwellDone(now) {
		return true
	}

	w.dwellTimer = nil
	w.StopDwelling()

	seq := pointer.NewSequence(pointer.ButtonNone, k.Bounds().Center(), now)
	seq.EventType = pointer.Dwell
	seq.Primary = true
	seq.ActiveKey = k.Ref
	seq.InitialActiveKey = k.Ref
	w.log.Debug("dwell activation", "key", k.ID)
	w.kb.KeyDown(k, seq, true)
	w.kb.KeyUp(k, seq, true)
	return false
}

// StopDwelling ends the countdown without activating the key.
func (w *Widget) StopDwelling() {
	if w.dwellTimer != nil {
		w.dwellTimer.Stop()
		w.dwellTimer = nil
	}
	if k := w.dwellKey; k != nil {
		w.dwellKey = nil
		k.StopDwelling()
		w.host.Invalidate(k)
	}
}

// CancelDwelling stops dwelling and forgets the last dwelled key, so it
// can be dwelled on again.
func (w *Widget) CancelDwelling() {
	w.StopDwelling()
	w.lastDwelled = nil
}

// IsDwelling reports whether a dwell countdown runs.
func (w *Widget) IsDwelling() bool {
	return w.dwellKey != nil
}

// DwellKey returns the key being dwelled on.
func (w *Widget) DwellKey() *keyboard.Key {
	return w.dwellKey
}
