package humanoid

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

const (
	// fittsTargetWidth is the assumed target width, in pixels, for the index of difficulty.
	fittsTargetWidth = 30.0
	// stepsPerSecond controls trajectory resolution.
	stepsPerSecond = 100.0
	maxSteps       = 200
)

// easeInOutCubic gives the accelerate-then-decelerate profile of a reach.
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// fittsDuration estimates movement time with Fitts's law, jittered by up to
// 15 percent and capped at the configured maximum.
func (h *Humanoid) fittsDuration(distance float64) time.Duration {
	id := math.Log2(1.0 + distance/fittsTargetWidth)
	mt := h.cfg.FittsA + h.cfg.FittsB*id
	mt += mt * (h.rng.Float64()*0.3 - 0.15)
	if mt < 0 {
		mt = 0
	}

	d := time.Duration(mt * float64(time.Millisecond))
	if limit := h.cfg.MaxMovementDuration; limit > 0 && d > limit {
		d = limit
	}
	return d
}

// bezierPath samples a cubic Bezier from start to end whose control points
// bow sideways by a random fraction of the distance.
func (h *Humanoid) bezierPath(start, end Vector2D, numSteps int) []Vector2D {
	mainVec := end.Sub(start)
	dist := mainVec.Mag()
	if dist < 1.0 || numSteps < 2 {
		return []Vector2D{end}
	}

	dir := mainVec.Normalize()
	normal := dir.Perp()
	bow1 := (h.rng.Float64() - 0.5) * dist * 0.3
	bow2 := (h.rng.Float64() - 0.5) * dist * 0.3

	p0, p3 := start, end
	p1 := start.Add(dir.Mul(dist / 3.0)).Add(normal.Mul(bow1))
	p2 := start.Add(dir.Mul(dist * 2.0 / 3.0)).Add(normal.Mul(bow2))

	path := make([]Vector2D, numSteps)
	for i := 0; i < numSteps; i++ {
		t := float64(i) / float64(numSteps-1)
		omt := 1.0 - t
		path[i] = p0.Mul(omt * omt * omt).
			Add(p1.Mul(3 * omt * omt * t)).
			Add(p2.Mul(3 * omt * t * t)).
			Add(p3.Mul(t * t * t))
	}
	return path
}

// jitter perturbs an intermediate point with Gaussian noise.
func (h *Humanoid) jitter(p Vector2D) Vector2D {
	s := h.cfg.GaussianStrength
	if s <= 0 {
		return p
	}
	return Vector2D{X: p.X + h.rng.NormFloat64()*s, Y: p.Y + h.rng.NormFloat64()*s}
}

// moveTo walks the cursor to target along a humanlike path. The final event
// lands exactly on target. Assumes h.mu is held.
func (h *Humanoid) moveTo(ctx context.Context, target Vector2D) error {
	start := h.currentPos
	duration := h.fittsDuration(start.Dist(target))

	numSteps := int(duration.Seconds() * stepsPerSecond)
	if numSteps < 2 {
		numSteps = 2
	}
	if numSteps > maxSteps {
		numSteps = maxSteps
	}

	path := h.bezierPath(start, target, numSteps)
	buttons := h.buttonState.Bitfield()

	var elapsed time.Duration
	for i := range path {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Easing decides when each sample is reached, not where it is.
		var at time.Duration
		if len(path) > 1 {
			t := float64(i) / float64(len(path)-1)
			at = time.Duration(easeInOutCubic(t) * float64(duration))
		}
		if wait := at - elapsed; wait > 0 {
			if err := h.executor.Sleep(ctx, wait); err != nil {
				return err
			}
			elapsed = at
		}

		point := path[i]
		if i < len(path)-1 {
			point = h.jitter(point)
		}

		data := MouseEventData{
			Type:    MouseMove,
			X:       point.X,
			Y:       point.Y,
			Button:  ButtonNone,
			Buttons: buttons,
		}
		if err := h.dispatch(ctx, data); err != nil {
			if ctx.Err() == nil {
				h.logger.Warn("Failed to dispatch mouse move event", zap.Error(err))
			}
			return err
		}
		h.currentPos = point
	}
	return nil
}
