// Package frametest provides a manually advanced frame.Clock.
package frametest

import (
	"sort"
	"sync"
	"time"

	"github.com/salaryrace/salaryrace-go/internal/frame"
)

// Clock is a frame.Clock whose time only moves on Advance.
type Clock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*waiter
	tickers []*ticker
	changed chan struct{}
}

type waiter struct {
	at time.Time
	ch chan time.Time
}

type ticker struct {
	clock    *Clock
	interval time.Duration
	next     time.Time
	ch       chan time.Time
	stopped  bool
}

// NewClock returns a Clock set to start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start, changed: make(chan struct{})}
}

var _ frame.Clock = (*Clock)(nil)

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := &waiter{at: c.now.Add(d), ch: make(chan time.Time, 1)}
	if d <= 0 {
		w.ch <- c.now
		return w.ch
	}
	c.waiters = append(c.waiters, w)
	c.notifyLocked()
	return w.ch
}

func (c *Clock) NewTicker(d time.Duration) frame.Ticker {
	if d <= 0 {
		panic("frametest: non-positive interval for NewTicker")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &ticker{clock: c, interval: d, next: c.now.Add(d), ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	c.notifyLocked()
	return t
}

// Advance moves time forward by d, firing due timers and tickers in
// order. Like time.Ticker, a ticker whose previous tick has not been
// received drops the new one.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	end := c.now.Add(d)
	for {
		at, ok := c.nextEventLocked(end)
		if !ok {
			break
		}
		c.now = at
		c.fireLocked()
	}
	c.now = end
}

// Waiters returns the number of pending After timers and live tickers.
func (c *Clock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.waiters)
	for _, t := range c.tickers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// BlockUntil waits until at least n timers or tickers are registered.
func (c *Clock) BlockUntil(n int) {
	for {
		c.mu.Lock()
		ch := c.changed
		c.mu.Unlock()
		if c.Waiters() >= n {
			return
		}
		<-ch
	}
}

func (c *Clock) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

func (c *Clock) nextEventLocked(end time.Time) (time.Time, bool) {
	var times []time.Time
	for _, w := range c.waiters {
		times = append(times, w.at)
	}
	for _, t := range c.tickers {
		if !t.stopped {
			times = append(times, t.next)
		}
	}
	if len(times) == 0 {
		return time.Time{}, false
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	if times[0].After(end) {
		return time.Time{}, false
	}
	return times[0], true
}

func (c *Clock) fireLocked() {
	pending := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.at.After(c.now) {
			w.ch <- c.now
			continue
		}
		pending = append(pending, w)
	}
	c.waiters = pending

	for _, t := range c.tickers {
		if t.stopped || t.next.After(c.now) {
			continue
		}
		select {
		case t.ch <- c.now:
		default:
		}
		t.next = t.next.Add(t.interval)
	}
}

func (t *ticker) C() <-chan time.Time { return t.ch }

func (t *ticker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
	t.clock.notifyLocked()
}
