package browser

import (
	"context"
	"time"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"github.com/xkilldash9x/foxbridge/internal/config"
	"github.com/xkilldash9x/foxbridge/internal/humanoid"
	"go.uber.org/zap"
)

// humanizedPage routes pointer and keyboard actions through a humanoid while
// delegating everything else to the wrapped page.
type humanizedPage struct {
	Page
	h *humanoid.Humanoid
}

// Humanize wraps page so that clicks, cursor moves, drags and typing follow
// humanlike trajectories and cadence. maxMovement, when positive, caps each
// cursor movement.
func Humanize(page Page, cfg config.HumanoidConfig, maxMovement time.Duration, logger *zap.Logger, opts ...humanoid.Option) Page {
	opts = append([]humanoid.Option{humanoid.WithMaxMovementDuration(maxMovement)}, opts...)
	return &humanizedPage{
		Page: page,
		h:    humanoid.New(cfg, logger, page, opts...),
	}
}

func (p *humanizedPage) Click(ctx context.Context, selector string) error {
	return p.h.Click(ctx, selector)
}

func (p *humanizedPage) MouseClick(ctx context.Context, x, y float64, button schemas.MouseButton) error {
	return p.h.ClickAt(ctx, humanoid.Vector2D{X: x, Y: y}, humanoid.MouseButton(button))
}

func (p *humanizedPage) MouseMove(ctx context.Context, x, y float64) error {
	return p.h.MoveToVector(ctx, humanoid.Vector2D{X: x, Y: y})
}

func (p *humanizedPage) DragAndDrop(ctx context.Context, sourceSelector, targetSelector string) error {
	return p.h.DragAndDrop(ctx, sourceSelector, targetSelector)
}

func (p *humanizedPage) TypeText(ctx context.Context, text string) error {
	return p.h.Type(ctx, text)
}
