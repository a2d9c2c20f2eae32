package loop

import (
	"time"

	"github.com/dshills/osk/internal/logging"
)

// Manual is a deterministic Scheduler for tests. Time only moves when
// Advance is called, and due timers fire in deadline order on the caller's
// goroutine.
type Manual struct {
	now    time.Time
	seq    uint64
	timers []*manualTimer
	posted []func()
	log    *logging.Logger
}

// NewManual creates a manual scheduler starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start, log: logging.Discard()}
}

// Now returns the simulated time.
func (m *Manual) Now() time.Time {
	return m.now
}

// Post queues fn. It runs on the next Advance or Flush.
func (m *Manual) Post(fn func()) {
	m.posted = append(m.posted, fn)
}

// After schedules fn once after d of simulated time.
func (m *Manual) After(d time.Duration, fn func()) Timer {
	return m.add(d, 0, func() bool {
		fn()
		return false
	})
}

// Every schedules fn every d of simulated time while it returns true.
func (m *Manual) Every(d time.Duration, fn func() bool) Timer {
	return m.add(d, d, fn)
}

func (m *Manual) add(d, interval time.Duration, fn func() bool) *manualTimer {
	m.seq++
	t := &manualTimer{due: m.now.Add(d), interval: interval, fn: fn, seq: m.seq}
	m.timers = append(m.timers, t)
	return t
}

// Flush runs all posted tasks, including tasks posted by those tasks.
func (m *Manual) Flush() {
	for len(m.posted) > 0 {
		fn := m.posted[0]
		m.posted = m.posted[1:]
		Guard(m.log, "task", fn)
	}
}

// Advance moves simulated time forward by d, firing every timer that becomes
// due on the way at its own deadline.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	m.Flush()
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		if t.due.After(m.now) {
			m.now = t.due
		}
		again := false
		Guard(m.log, "timer", func() {
			again = t.fn()
		})
		if again && t.interval > 0 && !t.stopped {
			m.seq++
			t.seq = m.seq
			t.due = m.now.Add(t.interval)
		} else {
			t.done = true
		}
		m.Flush()
	}
	m.now = target
	m.prune()
}

// Pending returns the number of active timers.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.timers {
		if t.Active() {
			n++
		}
	}
	return n
}

func (m *Manual) nextDue(limit time.Time) *manualTimer {
	var best *manualTimer
	for _, t := range m.timers {
		if !t.Active() || t.due.After(limit) {
			continue
		}
		if best == nil || t.due.Before(best.due) || (t.due.Equal(best.due) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (m *Manual) prune() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if t.Active() {
			live = append(live, t)
		}
	}
	m.timers = live
}

type manualTimer struct {
	due      time.Time
	interval time.Duration
	fn       func() bool
	seq      uint64
	stopped  bool
	done     bool
}

func (t *manualTimer) Stop() bool {
	was := t.Active()
	t.stopped = true
	return was
}

func (t *manualTimer) Active() bool {
	return !t.stopped && !t.done
}

var _ Scheduler = (*Manual)(nil)
