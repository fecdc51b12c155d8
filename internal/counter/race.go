package counter

import (
	"time"

	"github.com/salaryrace/salaryrace-go/internal/domain"
)

// Race is the pair of counters shown for one comparison. Both sides are
// always transitioned with the same instant.
type Race struct {
	A State `json:"a"`
	B State `json:"b"`
}

// Values is one sampled frame of a Race.
type Values struct {
	A  float64   `json:"a"`
	B  float64   `json:"b"`
	At time.Time `json:"at"`
}

// NewRace initializes both counters from the comparison's creation time.
func NewRace(c domain.Comparison, now time.Time) Race {
	return Race{
		A: Initialize(c.PerSecA, c.CreatedAt, now),
		B: Initialize(c.PerSecB, c.CreatedAt, now),
	}
}

// Sample samples both counters at now.
func (r Race) Sample(now time.Time) Values {
	return Values{A: Sample(r.A, now), B: Sample(r.B, now), At: now}
}

// Running reports whether the race is animating.
func (r Race) Running() bool { return r.A.Running && r.B.Running }

// Pause freezes both counters at their values at now.
func (r Race) Pause(now time.Time) Race {
	return Race{A: Pause(r.A, now), B: Pause(r.B, now)}
}

// Resume restarts both counters from their frozen values.
func (r Race) Resume(now time.Time) Race {
	return Race{A: Resume(r.A, now), B: Resume(r.B, now)}
}

// Replay restarts both counters from zero at now.
func (r Race) Replay(now time.Time) Race {
	return Race{A: Replay(r.A, now), B: Replay(r.B, now)}
}

// Toggle pauses a running race and resumes a paused one.
func (r Race) Toggle(now time.Time) Race {
	if r.Running() {
		return r.Pause(now)
	}
	return r.Resume(now)
}
