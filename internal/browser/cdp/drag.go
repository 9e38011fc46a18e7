package cdp

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/foxbridge/internal/humanoid"
)

// dragSteps is the number of intermediate moves between source and target.
const dragSteps = 10

// DragAndDrop drags the center of source onto the center of target. Native
// HTML5 drags are intercepted and replayed as drag events, since Chrome does
// not start them from synthesized mouse input.
func (p *Page) DragAndDrop(ctx context.Context, sourceSelector, targetSelector string) error {
	src, err := p.GetElementGeometry(ctx, sourceSelector)
	if err != nil {
		return fmt.Errorf("drag source: %w", err)
	}
	from := center(src)

	intercepted := make(chan *input.DragData, 1)
	listenCtx, stopListening := context.WithCancel(p.ctx)
	defer stopListening()
	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		if e, ok := ev.(*input.EventDragIntercepted); ok {
			select {
			case intercepted <- e.Data:
			default:
			}
		}
	})

	if err := p.run(ctx, input.SetInterceptDrags(true)); err != nil {
		return fmt.Errorf("failed to intercept drags: %w", err)
	}
	defer p.run(Detach(ctx), input.SetInterceptDrags(false))

	left := humanoid.ButtonLeft
	if err := p.mouse(ctx, humanoid.MouseMove, from.X, from.Y, humanoid.ButtonNone, 0); err != nil {
		return err
	}
	if err := p.mouse(ctx, humanoid.MousePress, from.X, from.Y, left, left.Bitfield()); err != nil {
		return err
	}
	// The button must come up whatever happens next.
	released := false
	release := func(at humanoid.Vector2D) error {
		released = true
		return p.mouse(Detach(ctx), humanoid.MouseRelease, at.X, at.Y, left, 0)
	}
	defer func() {
		if !released {
			_ = release(from)
		}
	}()

	dst, err := p.GetElementGeometry(ctx, targetSelector)
	if err != nil {
		return fmt.Errorf("drag target: %w", err)
	}
	to := center(dst)

	for i := 1; i <= dragSteps; i++ {
		t := float64(i) / dragSteps
		pt := from.Add(to.Sub(from).Mul(t))
		if err := p.mouse(ctx, humanoid.MouseMove, pt.X, pt.Y, left, left.Bitfield()); err != nil {
			return err
		}
	}

	var data *input.DragData
	select {
	case data = <-intercepted:
	case <-time.After(50 * time.Millisecond):
	}
	if data != nil {
		for _, typ := range []string{"dragEnter", "dragOver", "drop"} {
			if err := p.run(ctx, input.DispatchDragEvent(input.DispatchDragEventType(typ), to.X, to.Y, data)); err != nil {
				return fmt.Errorf("drag event %s failed: %w", typ, err)
			}
		}
	}

	if err := release(to); err != nil {
		return fmt.Errorf("mouse release failed: %w", err)
	}
	return nil
}

// center returns the centroid of the geometry's quad.
func center(g *humanoid.ElementGeometry) humanoid.Vector2D {
	var c humanoid.Vector2D
	for i := 0; i+1 < len(g.Vertices); i += 2 {
		c.X += g.Vertices[i]
		c.Y += g.Vertices[i+1]
	}
	n := float64(len(g.Vertices) / 2)
	if n == 0 {
		return c
	}
	return humanoid.Vector2D{X: c.X / n, Y: c.Y / n}
}
