// internal/browser/cdp/context.go
package cdp

import (
	"context"
	"errors"
	"time"
)

// CombineContext returns a context that carries the values of tab (the
// chromedp target context) and is canceled when either tab or op is done.
// op's deadline is carried over so timeouts still surface as
// context.DeadlineExceeded.
func CombineContext(tab, op context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(tab)
	if deadline, ok := op.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		combined, cancelDeadline = context.WithDeadline(combined, deadline)
		inner := cancel
		cancel = func() {
			cancelDeadline()
			inner()
		}
	}

	stop := context.AfterFunc(op, func() {
		// An expired deadline is reported by the copied deadline itself.
		if !errors.Is(op.Err(), context.DeadlineExceeded) {
			cancel()
		}
	})
	return combined, func() {
		stop()
		cancel()
	}
}

// valueOnlyContext keeps the values of its parent (the CDP target and
// executor) but drops its deadline and cancellation.
type valueOnlyContext struct {
	context.Context
}

func (valueOnlyContext) Deadline() (deadline time.Time, ok bool) { return }
func (valueOnlyContext) Done() <-chan struct{}                   { return nil }
func (valueOnlyContext) Err() error                              { return nil }

// Detach returns a context with ctx's values that is never canceled. It is
// used for cleanup that must run after the operation context has expired.
func Detach(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}
