package cdp

import (
	"context"
	"sync"

	cdproto "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"

	"github.com/xkilldash9x/foxbridge/api/schemas"
)

// lifecycleEvent maps a load state to the Page.lifecycleEvent name that
// signals it. "init" fires when a new document commits.
func lifecycleEvent(state schemas.LoadState) string {
	switch state {
	case schemas.LoadStateDOMContentLoaded:
		return "DOMContentLoaded"
	case schemas.LoadStateNetworkIdle:
		return "networkIdle"
	case schemas.LoadStateCommit:
		return "init"
	}
	return "load"
}

type frameState struct {
	loader cdproto.LoaderID
	seen   map[string]bool
}

// lifecycleTracker records the lifecycle events of every frame's current
// document so waits can be satisfied by events that already happened.
type lifecycleTracker struct {
	mu      sync.Mutex
	frames  map[cdproto.FrameID]*frameState
	changed chan struct{}
}

func newLifecycleTracker() *lifecycleTracker {
	return &lifecycleTracker{
		frames:  make(map[cdproto.FrameID]*frameState),
		changed: make(chan struct{}),
	}
}

// listen is registered with chromedp.ListenTarget.
func (t *lifecycleTracker) listen(ev interface{}) {
	if e, ok := ev.(*page.EventLifecycleEvent); ok {
		t.observe(e.FrameID, e.LoaderID, e.Name)
	}
}

func (t *lifecycleTracker) observe(frame cdproto.FrameID, loader cdproto.LoaderID, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.frames[frame]
	if st == nil || st.loader != loader {
		st = &frameState{loader: loader, seen: make(map[string]bool)}
		t.frames[frame] = st
	}
	st.seen[name] = true

	close(t.changed)
	t.changed = make(chan struct{})
}

// loader returns the current document loader of frame.
func (t *lifecycleTracker) loader(frame cdproto.FrameID) cdproto.LoaderID {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st := t.frames[frame]; st != nil {
		return st.loader
	}
	return ""
}

// wait blocks until frame's document has fired name. A non-empty exclude
// skips the document with that loader, so a wait started before navigation
// is only satisfied by the new document.
func (t *lifecycleTracker) wait(ctx context.Context, frame cdproto.FrameID, exclude cdproto.LoaderID, name string) error {
	for {
		t.mu.Lock()
		st := t.frames[frame]
		done := st != nil && st.seen[name] && (exclude == "" || st.loader != exclude)
		changed := t.changed
		t.mu.Unlock()

		if done {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
