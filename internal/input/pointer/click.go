package pointer

import "time"

// ClickTracker decides whether a press on a key is a single or a double
// click. A double click needs the same key within maxTime of the previous
// click; anything else starts a new click.
type ClickTracker struct {
	maxTime time.Duration

	lastKey  KeyRef
	lastTime time.Time
}

// NewClickTracker creates a tracker with the given double-click interval.
func NewClickTracker(maxTime time.Duration) *ClickTracker {
	return &ClickTracker{maxTime: maxTime, lastKey: NoKey}
}

// SetMaxTime changes the double-click interval.
func (t *ClickTracker) SetMaxTime(d time.Duration) {
	t.maxTime = d
}

// Record registers a press on k at timestamp and classifies it. A zero
// timestamp falls back to time.Now().
func (t *ClickTracker) Record(k KeyRef, timestamp time.Time) EventType {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	typ := Click
	if t.isDoubleClick(k, timestamp) {
		typ = DoubleClick
	}

	t.lastKey = k
	t.lastTime = timestamp
	return typ
}

func (t *ClickTracker) isDoubleClick(k KeyRef, timestamp time.Time) bool {
	if !t.lastKey.Valid() || t.lastKey != k || t.lastTime.IsZero() {
		return false
	}

	// Negative elapsed time is clock skew; treat as a new click.
	elapsed := timestamp.Sub(t.lastTime)
	return elapsed >= 0 && elapsed <= t.maxTime
}

// Reset forgets the last click.
func (t *ClickTracker) Reset() {
	t.lastKey = NoKey
	t.lastTime = time.Time{}
}
