package pw

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/xkilldash9x/foxbridge/internal/humanoid"
)

var _ humanoid.Executor = (*Page)(nil)

// geometryTimeout bounds the wait for an element to become visible when no
// deadline is set on the context.
const geometryTimeout = 15 * time.Second

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

// DispatchMouseEvent maps a mouse event onto Playwright's Mouse. Playwright
// tracks held buttons itself, so data.Buttons is not forwarded.
func (p *Page) DispatchMouseEvent(ctx context.Context, data humanoid.MouseEventData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mouse := p.page.Mouse()
	button := playwright.MouseButton(data.Button)
	clicks := data.ClickCount
	if clicks < 1 {
		clicks = 1
	}

	switch data.Type {
	case humanoid.MouseMove:
		return mouse.Move(data.X, data.Y)
	case humanoid.MousePress:
		if err := mouse.Move(data.X, data.Y); err != nil {
			return err
		}
		return mouse.Down(playwright.MouseDownOptions{Button: &button, ClickCount: playwright.Int(clicks)})
	case humanoid.MouseRelease:
		if err := mouse.Move(data.X, data.Y); err != nil {
			return err
		}
		return mouse.Up(playwright.MouseUpOptions{Button: &button, ClickCount: playwright.Int(clicks)})
	}
	return fmt.Errorf("unsupported mouse event type: %s", data.Type)
}

// controlKeys are the single characters typed as named key presses.
var controlKeys = map[string]string{
	"\b":   "Backspace",
	"\r":   "Enter",
	"\n":   "Enter",
	"\t":   "Tab",
	"\x1b": "Escape",
}

func (p *Page) SendKeys(ctx context.Context, keys string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	keyboard := p.page.Keyboard()
	if name, ok := controlKeys[keys]; ok {
		return keyboard.Press(name)
	}
	return keyboard.InsertText(keys)
}

func (p *Page) GetElementGeometry(ctx context.Context, selector string) (*humanoid.ElementGeometry, error) {
	timeout := timeoutMs(ctx)
	if timeout == nil {
		timeout = playwright.Float(float64(geometryTimeout.Milliseconds()))
	}
	locator := p.first(selector)

	visible := playwright.WaitForSelectorStateVisible
	if err := locator.WaitFor(playwright.LocatorWaitForOptions{State: visible, Timeout: timeout}); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("element '%s' not found or not visible: %w", selector, err)
	}
	if err := locator.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{Timeout: timeout}); err != nil {
		return nil, check(ctx, err)
	}
	box, err := locator.BoundingBox(playwright.LocatorBoundingBoxOptions{Timeout: timeout})
	if err = check(ctx, err); err != nil {
		return nil, fmt.Errorf("failed to get bounding box for '%s': %w", selector, err)
	}
	if box == nil || box.Width <= 0 || box.Height <= 0 {
		return nil, fmt.Errorf("element '%s' not found or not visible", selector)
	}
	return humanoid.NewGeometry(box.X, box.Y, box.Width, box.Height), nil
}
