package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrBudgetExceeded is returned when a client has used up its window.
var ErrBudgetExceeded = errors.New("ratelimit: budget exceeded")

// Budget tracks per-client action counts within fixed time windows.
type Budget struct {
	mu     sync.Mutex
	counts map[string]*windowCounter

	maxPerWindow int
	windowSize   time.Duration
	now          func() time.Time
}

type windowCounter struct {
	count     int
	windowEnd time.Time
}

// NewBudget creates a budget allowing maxPerWindow actions per
// (client, action) within windowSize. A non-positive maxPerWindow means
// unlimited.
func NewBudget(maxPerWindow int, windowSize time.Duration) *Budget {
	return &Budget{
		counts:       make(map[string]*windowCounter),
		maxPerWindow: maxPerWindow,
		windowSize:   windowSize,
		now:          time.Now,
	}
}

// NewCreationBudget limits comparison creation to perHour per client.
func NewCreationBudget(perHour int) *Budget {
	return NewBudget(perHour, time.Hour)
}

func budgetKey(client, action string) string {
	return client + "|" + action
}

// Check returns ErrBudgetExceeded if the client has used its budget for action.
func (b *Budget) Check(client, action string) error {
	if b == nil || b.maxPerWindow <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	wc, ok := b.counts[budgetKey(client, action)]
	if !ok || b.now().After(wc.windowEnd) {
		return nil
	}
	if wc.count >= b.maxPerWindow {
		return fmt.Errorf("%w: %s %s (%d/%d, resets in %s)", ErrBudgetExceeded,
			client, action, wc.count, b.maxPerWindow, wc.windowEnd.Sub(b.now()).Round(time.Second))
	}
	return nil
}

// Record counts one action for the client.
func (b *Budget) Record(client, action string) {
	if b == nil || b.maxPerWindow <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	key := budgetKey(client, action)
	wc, ok := b.counts[key]
	if !ok || b.now().After(wc.windowEnd) {
		b.counts[key] = &windowCounter{
			count:     1,
			windowEnd: b.now().Add(b.windowSize),
		}
		return
	}
	wc.count++
}

// Prune drops expired windows.
func (b *Budget) Prune() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	for k, wc := range b.counts {
		if now.After(wc.windowEnd) {
			delete(b.counts, k)
		}
	}
}
