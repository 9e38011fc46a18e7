// internal/humanoid/interface.go
package humanoid

import (
	"context"
	"time"
)

// Executor is the low-level surface the humanoid drives. Both browser engines
// implement it on their Page type, so the movement and typing models never see
// a driver-specific API.
type Executor interface {
	// Sleep pauses execution, respecting context cancellation.
	Sleep(ctx context.Context, d time.Duration) error
	DispatchMouseEvent(ctx context.Context, data MouseEventData) error
	// SendKeys types text into the focused element without synthetic delays.
	SendKeys(ctx context.Context, keys string) error
	// GetElementGeometry waits for the first match of selector to be visible
	// and returns its content box in viewport coordinates.
	GetElementGeometry(ctx context.Context, selector string) (*ElementGeometry, error)
}

// MouseEventType mirrors the DOM/CDP mouse event names.
type MouseEventType string

const (
	MouseMove    MouseEventType = "mouseMoved"
	MousePress   MouseEventType = "mousePressed"
	MouseRelease MouseEventType = "mouseReleased"
)

// MouseButton names a mouse button.
type MouseButton string

const (
	ButtonNone   MouseButton = "none"
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

// Valid reports whether b is one of the pressable buttons.
func (b MouseButton) Valid() bool {
	switch b {
	case ButtonLeft, ButtonRight, ButtonMiddle:
		return true
	}
	return false
}

// Bitfield returns the DOM "buttons" mask for b held down.
func (b MouseButton) Bitfield() int64 {
	switch b {
	case ButtonLeft:
		return 1
	case ButtonRight:
		return 2
	case ButtonMiddle:
		return 4
	}
	return 0
}

// MouseEventData holds everything needed to dispatch one mouse event.
type MouseEventData struct {
	Type       MouseEventType
	X          float64
	Y          float64
	Button     MouseButton
	ClickCount int
	// Buttons is the bitfield of buttons currently held (1 left, 2 right, 4 middle).
	Buttons int64
}

// ElementGeometry is an element's content box.
type ElementGeometry struct {
	// Vertices of the content quad: [x0, y0, x1, y1, x2, y2, x3, y3].
	Vertices []float64
	Width    int64
	Height   int64
}

// NewGeometry builds the geometry of an axis-aligned box.
func NewGeometry(x, y, width, height float64) *ElementGeometry {
	return &ElementGeometry{
		Vertices: []float64{
			x, y,
			x + width, y,
			x + width, y + height,
			x, y + height,
		},
		Width:  int64(width),
		Height: int64(height),
	}
}
