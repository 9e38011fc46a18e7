package humanoid

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// MoveTo moves the cursor onto a point inside the element matched by selector.
func (h *Humanoid) MoveTo(ctx context.Context, selector string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.moveToSelector(ctx, selector)
	return err
}

// MoveToVector moves the cursor to an absolute viewport coordinate.
func (h *Humanoid) MoveToVector(ctx context.Context, target Vector2D) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.moveTo(ctx, target)
}

// moveToSelector resolves selector, picks a target point and moves there.
// Assumes h.mu is held.
func (h *Humanoid) moveToSelector(ctx context.Context, selector string) (Vector2D, error) {
	geo, err := h.elementGeometry(ctx, selector)
	if err != nil {
		return Vector2D{}, err
	}
	center, ok := boxCenter(geo)
	if !ok {
		return Vector2D{}, fmt.Errorf("humanoid: element '%s' has invalid geometry", selector)
	}

	target := h.targetPoint(geo, center)
	h.logger.Debug("Moving to element",
		zap.String("selector", selector),
		zap.Float64("x", target.X),
		zap.Float64("y", target.Y))
	return target, h.moveTo(ctx, target)
}

// elementGeometry fetches and sanity checks an element's box.
func (h *Humanoid) elementGeometry(ctx context.Context, selector string) (*ElementGeometry, error) {
	geo, err := h.executor.GetElementGeometry(ctx, selector)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("humanoid: geometry retrieval failed for '%s': %w", selector, err)
	}
	if geo == nil || len(geo.Vertices) < 8 {
		return nil, fmt.Errorf("humanoid: element '%s' returned invalid geometry", selector)
	}
	if geo.Width <= 0 || geo.Height <= 0 {
		return nil, fmt.Errorf("humanoid: element '%s' is not interactable (zero size)", selector)
	}
	return geo, nil
}

// boxCenter averages the four vertices of a content quad.
func boxCenter(geo *ElementGeometry) (Vector2D, bool) {
	if geo == nil || len(geo.Vertices) < 8 {
		return Vector2D{}, false
	}
	v := geo.Vertices
	return Vector2D{
		X: (v[0] + v[2] + v[4] + v[6]) / 4,
		Y: (v[1] + v[3] + v[5] + v[7]) / 4,
	}, true
}

// targetPoint picks a normally distributed point around center, clamped one
// pixel inside the element.
func (h *Humanoid) targetPoint(geo *ElementGeometry, center Vector2D) Vector2D {
	width, height := float64(geo.Width), float64(geo.Height)

	// Three sigma spans the inner 90% of the box.
	x := center.X + h.rng.NormFloat64()*width*0.9/6.0
	y := center.Y + h.rng.NormFloat64()*height*0.9/6.0

	halfW := math.Max(width/2.0-1.0, 0)
	halfH := math.Max(height/2.0-1.0, 0)
	return Vector2D{
		X: math.Max(center.X-halfW, math.Min(center.X+halfW, x)),
		Y: math.Max(center.Y-halfH, math.Min(center.Y+halfH, y)),
	}
}
