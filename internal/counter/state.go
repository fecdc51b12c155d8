// Package counter extrapolates a live, monotonically increasing amount from
// a start instant and a per-second rate.
//
// State is an immutable value: every transition returns a new State and
// Sample is a pure function of the state and the current instant, so two
// counters driven by the same clock stay comparable without coordination.
package counter

import "time"

// State is the display state of one live counter.
type State struct {
	BaseValue     float64   `json:"baseValue"`
	StartInstant  time.Time `json:"startInstant"`
	RatePerSecond float64   `json:"ratePerSecond"`
	Running       bool      `json:"running"`
}

// Initialize starts a counter that has been accruing since createdAt.
// Clock skew can put createdAt after now; elapsed time is clamped to zero.
func Initialize(rate float64, createdAt, now time.Time) State {
	return State{
		BaseValue:     rate * seconds(now.Sub(createdAt)),
		StartInstant:  now,
		RatePerSecond: rate,
		Running:       true,
	}
}

// Sample returns the value to display at now. A paused counter returns its
// frozen value.
func Sample(s State, now time.Time) float64 {
	if !s.Running {
		return s.BaseValue
	}
	return s.BaseValue + s.RatePerSecond*seconds(now.Sub(s.StartInstant))
}

// Pause freezes the counter at its value at now.
func Pause(s State, now time.Time) State {
	if !s.Running {
		return s
	}
	s.BaseValue = Sample(s, now)
	s.Running = false
	return s
}

// Resume continues a paused counter from its frozen value.
func Resume(s State, now time.Time) State {
	if s.Running {
		return s
	}
	s.StartInstant = now
	s.Running = true
	return s
}

// Replay restarts the counter from zero at now, whatever its prior state.
func Replay(s State, now time.Time) State {
	s.BaseValue = 0
	s.StartInstant = now
	s.Running = true
	return s
}

func seconds(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return d.Seconds()
}
