package widget

import (
	"time"

	"github.com/dshills/osk/internal/loop"
)

const (
	outsidePollInterval = 10 * time.Millisecond
	outsidePollTimeout  = 30 * time.Second
)

// outsidePoll watches the pointer buttons after the pointer left the
// window, to notice a click into another window.
type outsidePoll struct {
	timer    loop.Timer
	started  time.Time
	detected bool
}

// startOutsidePolling polls only while something waits for an outside
// click: latched keys, an open popup or an input line to commit.
func (w *Widget) startOutsidePolling() {
	if len(w.kb.LatchedKeys()) == 0 && w.popup == nil && !w.kb.WordPrediction() {
		return
	}
	w.stopOutsidePolling()
	w.outside.started = w.sched.Now()
	w.outside.detected = false
	w.outside.timer = w.sched.Every(outsidePollInterval, w.pollOutside)
}

func (w *Widget) stopOutsidePolling() {
	if w.outside.timer != nil {
		w.outside.timer.Stop()
		w.outside.timer = nil
	}
	w.outside.detected = false
}

// OutsidePolling reports whether outside clicks are being watched.
func (w *Widget) OutsidePolling() bool {
	return w.outside.timer != nil
}

func (w *Widget) pollOutside() bool {
	if w.sched.Now().Sub(w.outside.started) >= outsidePollTimeout {
		w.outside.timer = nil
		w.stopOutsidePolling()
		w.kb.OnCancelOutsideClick()
		return false
	}
	if w.host.ButtonsDown() {
		w.outside.detected = true
		return true
	}
	if !w.outside.detected {
		return true
	}

	w.outside.timer = nil
	w.stopOutsidePolling()
	w.closePopup()
	w.kb.OnOutsideClick()
	return false
}

func (w *Widget) inactivityEnabled() bool {
	s := w.current().Window
	return s.Composited && s.EnableInactiveTransparency
}

// beginActivity turns the window active at once, or inactive after the
// configured delay.
func (w *Widget) beginActivity(active bool) {
	w.stopInactivity()
	if active {
		w.engine.TransitionActiveTo(true, -1)
		w.engine.Commit()
		return
	}
	w.inactivity = w.sched.After(w.current().Window.InactiveTransparencyDelay, func() {
		w.inactivity = nil
		w.engine.TransitionActiveTo(false, -1)
		w.engine.Commit()
	})
}

func (w *Widget) stopInactivity() {
	if w.inactivity != nil {
		w.inactivity.Stop()
		w.inactivity = nil
	}
}
