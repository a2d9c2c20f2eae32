package inject

import (
	"strings"

	"github.com/dshills/osk/internal/input/key"
	"github.com/dshills/osk/internal/logging"
)

// Recorder is a Sink that keeps every event in memory. With a logger set it
// also logs each event at debug level, which is what dry-run mode uses.
type Recorder struct {
	Events []Event
	Log    *logging.Logger
}

func (r *Recorder) add(k Kind, v uint32) error {
	e := Event{Kind: k, Value: v}
	r.Events = append(r.Events, e)
	if r.Log != nil {
		r.Log.Debug("inject", "event", e.String())
	}
	return nil
}

func (r *Recorder) PressUnicode(c rune) error         { return r.add(PressUnicode, uint32(c)) }
func (r *Recorder) ReleaseUnicode(c rune) error       { return r.add(ReleaseUnicode, uint32(c)) }
func (r *Recorder) PressKeysym(ks key.Keysym) error   { return r.add(PressKeysym, uint32(ks)) }
func (r *Recorder) ReleaseKeysym(ks key.Keysym) error { return r.add(ReleaseKeysym, uint32(ks)) }
func (r *Recorder) PressKeycode(code int) error       { return r.add(PressKeycode, uint32(code)) }
func (r *Recorder) ReleaseKeycode(code int) error     { return r.add(ReleaseKeycode, uint32(code)) }
func (r *Recorder) LockMod(m key.Modifier) error      { return r.add(LockMod, uint32(m)) }
func (r *Recorder) UnlockMod(m key.Modifier) error    { return r.add(UnlockMod, uint32(m)) }

// Reset forgets recorded events.
func (r *Recorder) Reset() {
	r.Events = r.Events[:0]
}

// Count returns how many events of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Typed returns the characters sent with PressUnicode, in order.
func (r *Recorder) Typed() string {
	var b strings.Builder
	for _, e := range r.Events {
		if e.Kind == PressUnicode {
			b.WriteRune(rune(e.Value))
		}
	}
	return b.String()
}

// Strings renders the recorded events, handy in assertions.
func (r *Recorder) Strings() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.String()
	}
	return out
}
