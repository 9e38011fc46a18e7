package humanoid

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DragAndDrop grabs the element matched by sourceSelector and releases it over
// targetSelector.
func (h *Humanoid) DragAndDrop(ctx context.Context, sourceSelector, targetSelector string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Resolve the drop zone first so a bad selector fails before the button goes down.
	dropGeo, err := h.elementGeometry(ctx, targetSelector)
	if err != nil {
		return fmt.Errorf("dragdrop: could not get end position: %w", err)
	}

	if _, err := h.moveToSelector(ctx, sourceSelector); err != nil {
		h.logger.Debug("Drag source unreachable", zap.String("selector", sourceSelector), zap.Error(err))
		return fmt.Errorf("dragdrop: could not get start position: %w", err)
	}
	if err := h.pause(ctx, 80, 30, 20); err != nil {
		return err
	}
	if err := h.press(ctx, ButtonLeft); err != nil {
		return err
	}

	// From here on the button is down: every failure path must release it.
	if err := h.pause(ctx, 100, 40, 30); err != nil {
		h.release(context.Background())
		return err
	}

	center, _ := boxCenter(dropGeo)
	if err := h.moveTo(ctx, h.targetPoint(dropGeo, center)); err != nil {
		h.logger.Warn("Drag movement failed, releasing mouse", zap.Error(err))
		h.release(context.Background())
		return err
	}
	if err := h.pause(ctx, 70, 30, 20); err != nil {
		h.release(context.Background())
		return err
	}
	return h.release(ctx)
}
