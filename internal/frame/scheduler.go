package frame

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval approximates a 60Hz display refresh.
const DefaultInterval = 16 * time.Millisecond

// Scheduler starts repeating tasks on a Clock.
type Scheduler struct {
	clock Clock
}

// NewScheduler returns a Scheduler using clock, or the system clock if nil.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{clock: clock}
}

// Clock returns the scheduler's time source.
func (s *Scheduler) Clock() Clock { return s.clock }

// Task is a running repeating callback.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Every calls fn with the tick instant every interval until the task is
// cancelled or ctx is done. Callbacks run serially on a single goroutine,
// so fn is the only writer of whatever state it closes over.
func (s *Scheduler) Every(ctx context.Context, interval time.Duration, fn func(now time.Time)) *Task {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	ticker := s.clock.NewTicker(interval)

	go func() {
		defer close(t.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C():
				// A tick racing with cancellation must not run.
				if ctx.Err() != nil {
					return
				}
				fn(now)
			}
		}
	}()
	return t
}

// Cancel stops the task and waits until no callback is running.
// It is safe to call more than once, but not from inside the callback.
func (t *Task) Cancel() {
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the task has stopped.
func (t *Task) Done() <-chan struct{} { return t.done }
