package inject

import "github.com/dshills/osk/internal/input/key"

// Locking counts modifier locks per bit and only forwards the first lock and
// the last unlock to the wrapped sink. Unlocking a modifier that is not
// locked is a no-op.
type Locking struct {
	Sink
	counts map[key.Modifier]int
}

// NewLocking wraps s.
func NewLocking(s Sink) *Locking {
	return &Locking{Sink: s, counts: make(map[key.Modifier]int)}
}

// LockMod locks every bit of m.
func (l *Locking) LockMod(m key.Modifier) error {
	var firstErr error
	for _, bit := range key.AllModifiers {
		if !m.Has(bit) {
			continue
		}
		l.counts[bit]++
		if l.counts[bit] == 1 {
			if err := l.Sink.LockMod(bit); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// UnlockMod unlocks every bit of m.
func (l *Locking) UnlockMod(m key.Modifier) error {
	var firstErr error
	for _, bit := range key.AllModifiers {
		if !m.Has(bit) || l.counts[bit] == 0 {
			continue
		}
		l.counts[bit]--
		if l.counts[bit] == 0 {
			delete(l.counts, bit)
			if err := l.Sink.UnlockMod(bit); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Locked returns the modifiers currently held locked.
func (l *Locking) Locked() key.Modifier {
	var m key.Modifier
	for bit := range l.counts {
		m = m.With(bit)
	}
	return m
}

// ReleaseAll drops every lock, for teardown.
func (l *Locking) ReleaseAll() error {
	var firstErr error
	for bit := range l.counts {
		delete(l.counts, bit)
		if err := l.Sink.UnlockMod(bit); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
