// Package loop provides the single cooperative event loop that serializes all
// interaction state changes.
//
// Every handler, timer callback and posted task runs on the loop goroutine
// and runs to completion. Other goroutines (terminal polling, file watching,
// D-Bus signals, script execution) hand work to the loop with Post. Shared
// state owned by the keyboard and widget therefore needs no locking.
package loop

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/osk/internal/logging"
)

// ErrStopped is returned by Run when the loop was stopped explicitly.
var ErrStopped = errors.New("event loop stopped")

// Timer is a cancelable scheduled callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the timer was still pending.
	Stop() bool
	// Active reports whether the timer will still fire.
	Active() bool
}

// Scheduler is the part of the loop consumed by components: a clock, one-shot
// and periodic timers and idle tasks. Callbacks always run on the loop.
type Scheduler interface {
	Now() time.Time
	After(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func() bool) Timer
	Post(fn func())
}

// Loop is the real-time Scheduler backed by a goroutine. Its task queue is
// unbounded, so Post never blocks, also when called from a task.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	stopCh  chan struct{}
	stopped atomic.Bool
	once    sync.Once
	log     *logging.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for recovered panics.
func WithLogger(l *logging.Logger) Option {
	return func(lp *Loop) {
		lp.log = l
	}
}

// WithQueueSize sets the initial capacity of the task queue.
func WithQueueSize(n int) Option {
	return func(lp *Loop) {
		if n > 0 {
			lp.pending = make([]func(), 0, n)
		}
	}
}

// New creates a loop. Call Run to start processing.
func New(opts ...Option) *Loop {
	l := &Loop{
		pending: make([]func(), 0, 256),
		wake:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = logging.OrDefault(l.log).WithComponent("loop")
	return l
}

// Run processes tasks until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.stopCh:
			return ErrStopped
		case <-l.wake:
			if err := l.drain(ctx); err != nil {
				return err
			}
		}
	}
}

// drain runs the tasks queued so far. Tasks they post run on the next wake.
func (l *Loop) drain(ctx context.Context) error {
	l.mu.Lock()
	tasks := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, fn := range tasks {
		if l.stopped.Load() {
			return ErrStopped
		}
		if err := ctx.Err(); err != nil {
			l.Stop()
			return err
		}
		Guard(l.log, "task", fn)
	}
	return nil
}

// Stop makes Run return. Pending tasks are dropped.
func (l *Loop) Stop() {
	l.once.Do(func() {
		l.stopped.Store(true)
		close(l.stopCh)
	})
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Post queues fn to run on the loop. Safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	if l.stopped.Load() {
		return
	}
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After schedules fn once after d.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	t := &realTimer{loop: l}
	t.arm(d, func() bool {
		fn()
		return false
	}, 0)
	return t
}

// Every schedules fn every d until fn returns false or the timer is stopped.
// The interval is measured from the end of the previous callback.
func (l *Loop) Every(d time.Duration, fn func() bool) Timer {
	t := &realTimer{loop: l}
	t.arm(d, fn, d)
	return t
}

type realTimer struct {
	loop    *Loop
	mu      sync.Mutex
	t       *time.Timer
	stopped bool
	done    bool
}

func (t *realTimer) arm(d time.Duration, fn func() bool, interval time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.t = time.AfterFunc(d, func() {
		t.loop.Post(func() {
			if !t.Active() {
				return
			}
			again := false
			Guard(t.loop.log, "timer", func() {
				again = fn()
			})
			if again && interval > 0 && t.Active() {
				t.arm(interval, fn, interval)
				return
			}
			t.mu.Lock()
			t.done = true
			t.mu.Unlock()
		})
	})
}

func (t *realTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasActive := !t.stopped && !t.done
	t.stopped = true
	if t.t != nil {
		t.t.Stop()
	}
	return wasActive
}

func (t *realTimer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped && !t.done
}

// Guard runs fn and turns a panic into an error log entry so that a fault in
// one callback never ends the session.
func Guard(log *logging.Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.OrDefault(log).Error("recovered panic in loop callback",
				"callback", name,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}

var _ Scheduler = (*Loop)(nil)
