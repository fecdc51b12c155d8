package adwatch_test

import (
	"context"
	"sync"

	"github.com/salaryrace/salaryrace-go/internal/adwatch"
	"github.com/salaryrace/salaryrace-go/internal/domain"
)

// fakeDoc is an in-memory adwatch.Document.
type fakeDoc struct {
	mu      sync.Mutex
	present map[string]bool
	boxes   map[string]adwatch.Box
	subs    map[chan struct{}]struct{}
}

func newFakeDoc() *fakeDoc {
	return &fakeDoc{
		present: map[string]bool{},
		boxes:   map[string]adwatch.Box{},
		subs:    map[chan struct{}]struct{}{},
	}
}

func (d *fakeDoc) set(selector string, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.present[selector] = ok
}

func (d *fakeDoc) setBox(selector string, b adwatch.Box) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.present[selector] = true
	d.boxes[selector] = b
}

func (d *fakeDoc) Has(_ context.Context, selector string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.present[selector], nil
}

func (d *fakeDoc) Box(_ context.Context, selector string) (adwatch.Box, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.present[selector] {
		return adwatch.Box{}, false, nil
	}
	return d.boxes[selector], true, nil
}

func (d *fakeDoc) Mutations(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	d.mu.Lock()
	d.subs[ch] = struct{}{}
	d.mu.Unlock()
	go func() {
		<-ctx.Done()
		d.mu.Lock()
		delete(d.subs, ch)
		d.mu.Unlock()
	}()
	return ch, nil
}

// mutate applies fn and notifies observers.
func (d *fakeDoc) mutate(fn func()) {
	d.mu.Lock()
	fn()
	subs := make([]chan struct{}, 0, len(d.subs))
	for ch := range d.subs {
		subs = append(subs, ch)
	}
	d.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

type reported struct {
	typ     domain.EventType
	payload map[string]any
}

type recordingReporter struct {
	mu     sync.Mutex
	events []reported
	err    error
}

func (r *recordingReporter) Report(_ context.Context, typ domain.EventType, payload map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, reported{typ: typ, payload: payload})
	return r.err
}

func (r *recordingReporter) all() []reported {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]reported(nil), r.events...)
}
