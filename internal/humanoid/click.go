package humanoid

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Click moves onto the element matched by selector and clicks it with the left button.
func (h *Humanoid) Click(ctx context.Context, selector string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.moveToSelector(ctx, selector); err != nil {
		return err
	}
	return h.clickHere(ctx, ButtonLeft)
}

// ClickAt moves to point and clicks it with button.
func (h *Humanoid) ClickAt(ctx context.Context, point Vector2D, button MouseButton) error {
	if !button.Valid() {
		return fmt.Errorf("humanoid: unsupported mouse button %q", button)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.moveTo(ctx, point); err != nil {
		return err
	}
	return h.clickHere(ctx, button)
}

// clickHere presses and releases button at the current position with a
// humanlike hold. Assumes h.mu is held.
func (h *Humanoid) clickHere(ctx context.Context, button MouseButton) error {
	if err := h.press(ctx, button); err != nil {
		return err
	}

	lo, hi := h.cfg.ClickHoldMinMs, h.cfg.ClickHoldMaxMs
	hold := lo
	if hi > lo {
		hold = lo + h.rng.Intn(hi-lo+1)
	}
	if err := h.pause(ctx, float64(hold), 0, 0); err != nil {
		h.release(context.Background())
		return err
	}
	return h.release(ctx)
}

// press pushes button down at the current position. Assumes h.mu is held.
func (h *Humanoid) press(ctx context.Context, button MouseButton) error {
	data := MouseEventData{
		Type:       MousePress,
		X:          h.currentPos.X,
		Y:          h.currentPos.Y,
		Button:     button,
		ClickCount: 1,
		Buttons:    button.Bitfield(),
	}
	if err := h.dispatch(ctx, data); err != nil {
		return err
	}
	h.buttonState = button
	return nil
}

// release lets go of whichever button is held. Assumes h.mu is held.
func (h *Humanoid) release(ctx context.Context) error {
	if h.buttonState == ButtonNone {
		return nil
	}

	data := MouseEventData{
		Type:       MouseRelease,
		X:          h.currentPos.X,
		Y:          h.currentPos.Y,
		Button:     h.buttonState,
		ClickCount: 1,
	}
	// Bypass the limiter so cleanup is never starved by a cancelled context.
	err := h.executor.DispatchMouseEvent(ctx, data)
	if err != nil {
		h.logger.Error("Failed to dispatch mouse release event, updating state anyway", zap.Error(err))
	}
	h.buttonState = ButtonNone
	return err
}
