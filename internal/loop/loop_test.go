package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualAfterFiresAtDeadline(t *testing.T) {
	m := NewManual(epoch)
	var firedAt time.Time
	m.After(500*time.Millisecond, func() { firedAt = m.Now() })

	m.Advance(499 * time.Millisecond)
	assert.True(t, firedAt.IsZero())

	m.Advance(time.Millisecond)
	assert.Equal(t, epoch.Add(500*time.Millisecond), firedAt)
	assert.Equal(t, 0, m.Pending())
}

func TestManualStopCancels(t *testing.T) {
	m := NewManual(epoch)
	fired := false
	tm := m.After(time.Second, func() { fired = true })

	assert.True(t, tm.Active())
	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())

	m.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestManualEveryStopsWhenCallbackReturnsFalse(t *testing.T) {
	m := NewManual(epoch)
	count := 0
	m.Every(50*time.Millisecond, func() bool {
		count++
		return count < 3
	})

	m.Advance(time.Second)
	assert.Equal(t, 3, count)
}

func TestManualOrdering(t *testing.T) {
	m := NewManual(epoch)
	var order []string
	m.After(20*time.Millisecond, func() { order = append(order, "b") })
	m.After(10*time.Millisecond, func() { order = append(order, "a") })
	m.After(20*time.Millisecond, func() { order = append(order, "c") })

	m.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestManualPanicIsContained(t *testing.T) {
	m := NewManual(epoch)
	after := false
	m.After(time.Millisecond, func() { panic("boom") })
	m.After(2*time.Millisecond, func() { after = true })

	require.NotPanics(t, func() { m.Advance(time.Second) })
	assert.True(t, after)
}

func TestManualPostRunsOnFlush(t *testing.T) {
	m := NewManual(epoch)
	ran := false
	m.Post(func() { ran = true })
	assert.False(t, ran)
	m.Flush()
	assert.True(t, ran)
}

func TestLoopRunsPostedTasksAndTimers(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	var ticks atomic.Int32
	done := make(chan struct{})
	l.Post(func() {
		l.Every(5*time.Millisecond, func() bool {
			if ticks.Add(1) == 3 {
				close(done)
				return false
			}
			return true
		})
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("periodic timer did not fire")
	}

	l.Stop()
	assert.ErrorIs(t, <-errCh, ErrStopped)
	assert.Equal(t, int32(3), ticks.Load())
}

func TestLoopStoppedTimerDoesNotRun(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = l.Run(ctx) }()
	defer cancel()

	var fired atomic.Bool
	tm := l.After(20*time.Millisecond, func() { fired.Store(true) })
	assert.True(t, tm.Stop())

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestLoopTaskCanPostMoreThanQueueSize(t *testing.T) {
	l := New(WithQueueSize(2))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	var ran atomic.Int32
	done := make(chan struct{})
	l.Post(func() {
		for i := 0; i < 10; i++ {
			l.Post(func() {
				if ran.Add(1) == 10 {
					close(done)
				}
			})
		}
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks posted from the loop did not run")
	}

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLoopRunsTasksInPostOrder(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	got := make(chan int, 100)
	for i := 0; i < 100; i++ {
		l.Post(func() { got <- i })
	}
	for i := 0; i < 100; i++ {
		select {
		case v := <-got:
			require.Equal(t, i, v)
		case <-time.After(2 * time.Second):
			t.Fatal("task did not run")
		}
	}
}
