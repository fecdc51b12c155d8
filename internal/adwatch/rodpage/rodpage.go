// Package rodpage implements adwatch.Document on a live browser page.
package rodpage

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/salaryrace/salaryrace-go/internal/adwatch"
)

// Document wraps a rod page.
type Document struct {
	page *rod.Page
}

var _ adwatch.Document = (*Document)(nil)

// New returns a Document for page.
func New(page *rod.Page) *Document {
	return &Document{page: page}
}

func (d *Document) Has(ctx context.Context, selector string) (bool, error) {
	has, _, err := d.page.Context(ctx).Has(selector)
	if err != nil {
		return false, fmt.Errorf("rodpage: has %q: %w", selector, err)
	}
	return has, nil
}

// Box measures the first content quad of the element. An element that is
// present but not rendered (display:none) has no quads and yields an empty box.
func (d *Document) Box(ctx context.Context, selector string) (adwatch.Box, bool, error) {
	has, el, err := d.page.Context(ctx).Has(selector)
	if err != nil {
		return adwatch.Box{}, false, fmt.Errorf("rodpage: has %q: %w", selector, err)
	}
	if !has {
		return adwatch.Box{}, false, nil
	}
	shape, err := el.Shape()
	if err != nil || shape == nil || len(shape.Quads) == 0 {
		if ctx.Err() != nil {
			return adwatch.Box{}, true, ctx.Err()
		}
		return adwatch.Box{}, true, nil
	}
	quad := shape.Quads[0]
	if len(quad) < 8 {
		return adwatch.Box{}, true, nil
	}
	return adwatch.Box{Width: quad[2] - quad[0], Height: quad[5] - quad[1]}, true, nil
}

// Mutations enables the DOM domain and signals on node insertion, removal
// and attribute changes until ctx is done.
func (d *Document) Mutations(ctx context.Context) (<-chan struct{}, error) {
	p := d.page.Context(ctx)
	if err := (proto.DOMEnable{}).Call(p); err != nil {
		return nil, fmt.Errorf("rodpage: DOM.enable: %w", err)
	}
	// Chrome only sends mutation events for nodes the client has seen.
	depth := -1
	if _, err := (proto.DOMGetDocument{Depth: &depth, Pierce: true}).Call(p); err != nil {
		return nil, fmt.Errorf("rodpage: DOM.getDocument: %w", err)
	}

	ch := make(chan struct{}, 1)
	notify := func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	wait := p.EachEvent(
		func(*proto.DOMChildNodeInserted) { notify() },
		func(*proto.DOMChildNodeRemoved) { notify() },
		func(*proto.DOMAttributeModified) { notify() },
		func(*proto.DOMAttributeRemoved) { notify() },
		func(*proto.DOMDocumentUpdated) { notify() },
	)
	go func() {
		defer close(ch)
		wait()
	}()
	return ch, nil
}
