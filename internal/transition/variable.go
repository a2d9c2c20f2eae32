// Package transition animates the keyboard window: opacity fades for
// show/hide and active/inactive, and slides or moves of its position.
//
// Every animated property is a Variable. Variables are long lived and only
// ever retargeted. The Engine ticks them on the event loop while any of them
// is still running and applies the result to a Window.
package transition

import (
	"math"
	"time"
)

// Variable is one animated scalar.
type Variable struct {
	Value     float64
	Start     float64
	Target    float64
	StartTime time.Time
	Duration  time.Duration
	Done      bool
}

// StartTransition begins interpolating from the current value towards
// target. It does nothing when target already is the current target, so
// repeated requests for the same end state don't restart the animation.
// It reports whether a transition was started.
func (v *Variable) StartTransition(target float64, duration time.Duration, now time.Time) bool {
	if v.Target == target {
		return false
	}
	v.restart(target, duration, now)
	return true
}

func (v *Variable) restart(target float64, duration time.Duration, now time.Time) {
	v.Start = v.Value
	v.Target = target
	v.StartTime = now
	v.Duration = duration
	v.Done = false
}

// Update recomputes Value for the given time.
func (v *Variable) Update(now time.Time) {
	span := v.Target - v.Start
	progress := 1.0
	if span != 0 && v.Duration > 0 {
		elapsed := now.Sub(v.StartTime)
		progress = math.Min(1.0, math.Max(0, float64(elapsed)/float64(v.Duration)))
	}
	v.Value = v.Start + Ease(progress)*span
	v.Done = progress >= 1.0
}

// Snap jumps to value and marks the variable as settled there.
func (v *Variable) Snap(value float64) {
	v.Value = value
	v.Start = value
	v.Target = value
	v.Duration = 0
	v.Done = true
}

// Ease maps linear progress in [0,1] onto a sine ease-in/ease-out curve.
func Ease(p float64) float64 {
	return (math.Sin(p*math.Pi-math.Pi/2) + 1) / 2
}

// State bundles the variables of the keyboard window.
type State struct {
	Visible Variable
	Active  Variable
	X       Variable
	Y       Variable

	// TargetVisibility is the visibility the window should end up in.
	TargetVisibility bool
}

func (s *State) vars() []*Variable {
	return []*Variable{&s.Visible, &s.Active, &s.X, &s.Y}
}

// Update advances all variables.
func (s *State) Update(now time.Time) {
	for _, v := range s.vars() {
		v.Update(now)
	}
}

// Done reports whether every variable has reached its target.
func (s *State) Done() bool {
	for _, v := range s.vars() {
		if !v.Done {
			return false
		}
	}
	return true
}

// MaxDuration returns the longest duration of the bundled variables.
func (s *State) MaxDuration() time.Duration {
	var d time.Duration
	for _, v := range s.vars() {
		if v.Duration > d {
			d = v.Duration
		}
	}
	return d
}
