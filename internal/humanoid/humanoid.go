// internal/humanoid/humanoid.go
package humanoid

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/xkilldash9x/foxbridge/internal/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Humanoid simulates a person driving the mouse and keyboard of one page.
type Humanoid struct {
	// mu guards all mutable state. Public methods take it for the whole
	// gesture; lower-case helpers assume it is held.
	mu          sync.Mutex
	cfg         config.HumanoidConfig
	logger      *zap.Logger
	executor    Executor
	limiter     *rate.Limiter
	rng         *rand.Rand
	currentPos  Vector2D
	buttonState MouseButton
}

// Option customizes a Humanoid at construction.
type Option func(*Humanoid)

// WithMaxMovementDuration caps the duration of any single cursor movement.
// Non-positive values leave the configured cap in place.
func WithMaxMovementDuration(d time.Duration) Option {
	return func(h *Humanoid) {
		if d > 0 {
			h.cfg.MaxMovementDuration = d
		}
	}
}

// WithRand makes every random decision come from rng.
func WithRand(rng *rand.Rand) Option {
	return func(h *Humanoid) { h.rng = rng }
}

// WithStartPosition sets where the cursor is assumed to rest initially.
func WithStartPosition(p Vector2D) Option {
	return func(h *Humanoid) { h.currentPos = p }
}

// New creates a Humanoid bound to executor.
func New(cfg config.HumanoidConfig, logger *zap.Logger, executor Executor, opts ...Option) *Humanoid {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Humanoid{
		cfg:         cfg,
		logger:      logger.Named("humanoid"),
		executor:    executor,
		buttonState: ButtonNone,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.rng == nil {
		h.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	eps := h.cfg.EventsPerSecond
	if eps <= 0 {
		eps = config.DefaultHumanoidConfig().EventsPerSecond
	}
	h.limiter = rate.NewLimiter(rate.Limit(eps), 1)
	return h
}

// Position returns the last known cursor position.
func (h *Humanoid) Position() Vector2D {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentPos
}

// dispatch paces and sends one mouse event.
func (h *Humanoid) dispatch(ctx context.Context, data MouseEventData) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return err
	}
	return h.executor.DispatchMouseEvent(ctx, data)
}

// pause sleeps for a normally distributed duration, never less than floorMs.
func (h *Humanoid) pause(ctx context.Context, meanMs, stdDevMs, floorMs float64) error {
	ms := meanMs + h.rng.NormFloat64()*stdDevMs
	if ms < floorMs {
		ms = floorMs
	}
	if ms <= 0 {
		return nil
	}
	return h.executor.Sleep(ctx, time.Duration(ms*float64(time.Millisecond)))
}
