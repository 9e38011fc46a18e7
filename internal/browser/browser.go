// internal/browser/browser.go
package browser

import (
	"context"
	"errors"
	"time"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"github.com/xkilldash9x/foxbridge/internal/humanoid"
)

// ErrUnsupported is returned by engines for operations they cannot perform.
var ErrUnsupported = errors.New("operation not supported by this engine")

// Launcher starts one browser session per task.
type Launcher interface {
	Launch(ctx context.Context, opts schemas.SessionOptions) (Session, error)
}

// Session owns a browser process. Close must be safe to call more than once.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single tab. Every action handler is expressed in terms of these
// primitives; the humanoid.Executor methods let humanized input drive the same tab.
type Page interface {
	humanoid.Executor

	Goto(ctx context.Context, url string, waitUntil schemas.LoadState) error
	WaitForLoadState(ctx context.Context, state schemas.LoadState) error
	URL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	Content(ctx context.Context) (string, error)

	Screenshot(ctx context.Context, path string, fullPage bool) error
	PDF(ctx context.Context, path string, opts schemas.PDFOptions) error

	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	Wait(ctx context.Context, d time.Duration) error
	PressKey(ctx context.Context, key string) error
	TypeText(ctx context.Context, text string) error
	MouseClick(ctx context.Context, x, y float64, button schemas.MouseButton) error
	MouseMove(ctx context.Context, x, y float64) error
	DragAndDrop(ctx context.Context, sourceSelector, targetSelector string) error
	SetInputFiles(ctx context.Context, selector string, files ...string) error

	// Evaluate runs script in the page. Without args script is evaluated as
	// an expression (a function expression is invoked); with args it must be
	// a function, and args are passed to it as bound arguments. The result is
	// the JSON-decoded return value.
	Evaluate(ctx context.Context, script string, args ...interface{}) (interface{}, error)

	Cookies(ctx context.Context) ([]schemas.Cookie, error)
	AddCookies(ctx context.Context, cookies []schemas.Cookie) error
	DeleteCookie(ctx context.Context, name string) error
	ClearCookies(ctx context.Context) error
	// SetGeolocation overrides the position and grants the geolocation permission.
	SetGeolocation(ctx context.Context, latitude, longitude, accuracy float64) error
}

// pageOpener is the shape of an engine's concrete session type.
type pageOpener[P Page] interface {
	NewPage(ctx context.Context) (P, error)
	Close() error
}

// session adapts an engine session with a concrete page type to Session.
type session[P Page] struct {
	inner pageOpener[P]
}

func (s session[P]) NewPage(ctx context.Context) (Page, error) {
	p, err := s.inner.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s session[P]) Close() error { return s.inner.Close() }

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context, opts schemas.SessionOptions) (Session, error)

func (f LauncherFunc) Launch(ctx context.Context, opts schemas.SessionOptions) (Session, error) {
	return f(ctx, opts)
}
