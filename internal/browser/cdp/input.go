// internal/browser/cdp/input.go
package cdp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"github.com/xkilldash9x/foxbridge/internal/humanoid"
)

var _ humanoid.Executor = (*Page)(nil)

// inputTimeout bounds a single low-level input event.
const inputTimeout = 10 * time.Second

// Sleep pauses execution, respecting context cancellation.
func (p *Page) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DispatchMouseEvent dispatches a single mouse event via CDP.
func (p *Page) DispatchMouseEvent(ctx context.Context, data humanoid.MouseEventData) error {
	params := input.DispatchMouseEvent(input.MouseType(data.Type), data.X, data.Y).
		WithButton(input.MouseButton(data.Button)).
		WithButtons(data.Buttons).
		WithClickCount(int64(data.ClickCount))

	opCtx, cancel := context.WithTimeout(ctx, inputTimeout)
	defer cancel()

	err := p.run(opCtx, params)
	if err != nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		p.logger.Debug("DispatchMouseEvent timed out", zap.Duration("timeout", inputTimeout))
		return fmt.Errorf("mouse event timed out after %v: %w", inputTimeout, opCtx.Err())
	}
	return err
}

// SendKeys types keys into the focused element.
func (p *Page) SendKeys(ctx context.Context, keys string) error {
	opCtx, cancel := context.WithTimeout(ctx, inputTimeout)
	defer cancel()

	err := p.run(opCtx, chromedp.KeyEvent(keys))
	if err != nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("key events timed out after %v: %w", inputTimeout, opCtx.Err())
	}
	return err
}

// geometryScript returns the border box of the first match as viewport
// quad vertices, or an empty object when the element is missing or not
// rendered.
const geometryScript = `function(sel) {
	const node = document.querySelector(sel);
	if (!node) return {};
	node.scrollIntoView({ block: 'center', inline: 'center', behavior: 'instant' });
	const rect = node.getBoundingClientRect();
	const style = window.getComputedStyle(node);
	if (rect.width <= 0 || rect.height <= 0 || style.visibility === 'hidden' || style.display === 'none') {
		return {};
	}
	let vertices;
	if (typeof node.getBoxQuads === 'function') {
		const quads = node.getBoxQuads({ box: 'border' });
		if (quads && quads.length > 0) {
			const q = quads[0];
			vertices = [q.p1.x, q.p1.y, q.p2.x, q.p2.y, q.p3.x, q.p3.y, q.p4.x, q.p4.y];
		}
	}
	if (!vertices) {
		vertices = [rect.left, rect.top, rect.right, rect.top, rect.right, rect.bottom, rect.left, rect.bottom];
	}
	return { vertices: vertices, width: Math.round(rect.width), height: Math.round(rect.height) };
}`

type geometry struct {
	Vertices []float64 `json:"vertices"`
	Width    int64     `json:"width"`
	Height   int64     `json:"height"`
}

// GetElementGeometry waits for selector to be visible, scrolls it into view
// and returns its box in viewport coordinates.
func (p *Page) GetElementGeometry(ctx context.Context, selector string) (*humanoid.ElementGeometry, error) {
	opCtx, cancel := context.WithTimeout(ctx, inputTimeout)
	defer cancel()

	var g geometry
	err := p.run(opCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		callFunction(geometryScript, &g, nil, selector),
	)
	if err != nil {
		if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("timeout getting geometry for '%s': %w", selector, opCtx.Err())
		}
		return nil, fmt.Errorf("failed to get geometry for '%s': %w", selector, err)
	}

	if len(g.Vertices) != 8 || g.Width <= 0 || g.Height <= 0 {
		return nil, fmt.Errorf("element '%s' not found or not visible", selector)
	}
	return &humanoid.ElementGeometry{Vertices: g.Vertices, Width: g.Width, Height: g.Height}, nil
}

func (p *Page) mouse(ctx context.Context, typ humanoid.MouseEventType, x, y float64, button humanoid.MouseButton, buttons int64) error {
	clicks := 0
	if typ != humanoid.MouseMove {
		clicks = 1
	}
	return p.DispatchMouseEvent(ctx, humanoid.MouseEventData{
		Type:       typ,
		X:          x,
		Y:          y,
		Button:     button,
		ClickCount: clicks,
		Buttons:    buttons,
	})
}

// MouseClick moves to (x, y) and clicks button there.
func (p *Page) MouseClick(ctx context.Context, x, y float64, button schemas.MouseButton) error {
	b := humanoid.MouseButton(button)
	if !b.Valid() {
		b = humanoid.ButtonLeft
	}
	if err := p.mouse(ctx, humanoid.MouseMove, x, y, humanoid.ButtonNone, 0); err != nil {
		return fmt.Errorf("mouse move failed: %w", err)
	}
	if err := p.mouse(ctx, humanoid.MousePress, x, y, b, b.Bitfield()); err != nil {
		return fmt.Errorf("mouse press failed: %w", err)
	}
	if err := p.mouse(Detach(ctx), humanoid.MouseRelease, x, y, b, 0); err != nil {
		return fmt.Errorf("mouse release failed: %w", err)
	}
	return nil
}

func (p *Page) MouseMove(ctx context.Context, x, y float64) error {
	if err := p.mouse(ctx, humanoid.MouseMove, x, y, humanoid.ButtonNone, 0); err != nil {
		return fmt.Errorf("mouse move failed: %w", err)
	}
	return nil
}

// jsonEncode renders v as a JavaScript literal.
func jsonEncode(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `""`
	}
	return string(b)
}
