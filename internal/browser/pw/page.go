// internal/browser/pw/page.go
package pw

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/foxbridge/api/schemas"
)

// ErrPDFUnsupported is returned by PDF on browsers other than chromium.
var ErrPDFUnsupported = errors.New("generate_pdf is only supported on chromium")

// Page is a Playwright page. Playwright calls do not take a context, so
// deadlines are translated into Playwright timeouts and the context is
// checked around each call.
type Page struct {
	page   playwright.Page
	kind   string
	logger *zap.Logger
}

// timeoutMs converts the remaining time on ctx into a Playwright timeout.
// Nil leaves Playwright's default in place.
func timeoutMs(ctx context.Context) *float64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil
	}
	ms := math.Max(1, float64(time.Until(deadline).Milliseconds()))
	return playwright.Float(ms)
}

// check prefers the context error over whatever the driver reported.
func check(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (p *Page) Goto(ctx context.Context, url string, waitUntil schemas.LoadState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	state := playwright.WaitUntilState(waitUntil.OrDefault())
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: &state,
		Timeout:   timeoutMs(ctx),
	})
	if err = check(ctx, err); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	p.logger.Debug("Navigated", zap.String("url", url), zap.String("wait_until", string(state)))
	return nil
}

func (p *Page) WaitForLoadState(ctx context.Context, state schemas.LoadState) error {
	state = state.OrDefault()
	// Playwright only waits for load milestones; a commit has happened by
	// the time any action returns.
	if state == schemas.LoadStateCommit {
		return nil
	}
	ls := playwright.LoadState(state)
	err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   &ls,
		Timeout: timeoutMs(ctx),
	})
	if err = check(ctx, err); err != nil {
		return fmt.Errorf("waiting for load state %s: %w", state, err)
	}
	return nil
}

func (p *Page) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.URL(), nil
}

func (p *Page) Title(ctx context.Context) (string, error) {
	title, err := p.page.Title()
	if err = check(ctx, err); err != nil {
		return "", fmt.Errorf("failed to read page title: %w", err)
	}
	return title, nil
}

func (p *Page) Content(ctx context.Context) (string, error) {
	html, err := p.page.Content()
	if err = check(ctx, err); err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

func (p *Page) Screenshot(ctx context.Context, path string, fullPage bool) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(fullPage),
		Timeout:  timeoutMs(ctx),
	})
	if err = check(ctx, err); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return nil
}

// pdfOptions maps PDF options onto Playwright's, which accept the same
// CSS length strings.
func pdfOptions(path string, opts schemas.PDFOptions) playwright.PagePdfOptions {
	str := func(s string) *string {
		if s == "" {
			return nil
		}
		return playwright.String(s)
	}
	out := playwright.PagePdfOptions{
		Path:                playwright.String(path),
		Landscape:           playwright.Bool(opts.Landscape),
		PrintBackground:     playwright.Bool(opts.PrintBackground),
		DisplayHeaderFooter: playwright.Bool(opts.DisplayHeaderFooter),
		PreferCSSPageSize:   playwright.Bool(opts.PreferCSSPageSize),
		Format:              str(opts.Format),
		Width:               str(string(opts.Width)),
		Height:              str(string(opts.Height)),
		PageRanges:          str(opts.PageRanges),
		HeaderTemplate:      str(opts.HeaderTemplate),
		FooterTemplate:      str(opts.FooterTemplate),
	}
	if opts.Scale != 0 {
		out.Scale = playwright.Float(opts.Scale)
	}
	m := opts.Margin
	if m != (schemas.PDFMargin{}) {
		out.Margin = &playwright.Margin{
			Top:    str(string(m.Top)),
			Right:  str(string(m.Right)),
			Bottom: str(string(m.Bottom)),
			Left:   str(string(m.Left)),
		}
	}
	return out
}

func (p *Page) PDF(ctx context.Context, path string, opts schemas.PDFOptions) error {
	if p.kind != BrowserChromium {
		return ErrPDFUnsupported
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	_, err := p.page.PDF(pdfOptions(path, opts))
	if err = check(ctx, err); err != nil {
		return fmt.Errorf("failed to print PDF: %w", err)
	}
	return nil
}

// first resolves selector to its first match, like the page-level
// Playwright methods do.
func (p *Page) first(selector string) playwright.Locator {
	return p.page.Locator(selector).First()
}

func (p *Page) Click(ctx context.Context, selector string) error {
	err := p.first(selector).Click(playwright.LocatorClickOptions{Timeout: timeoutMs(ctx)})
	if err = check(ctx, err); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

func (p *Page) Fill(ctx context.Context, selector, value string) error {
	err := p.first(selector).Fill(value, playwright.LocatorFillOptions{Timeout: timeoutMs(ctx)})
	if err = check(ctx, err); err != nil {
		return fmt.Errorf("failed to fill %q: %w", selector, err)
	}
	return nil
}

func (p *Page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	state := playwright.WaitForSelectorState("visible")
	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   &state,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err = check(ctx, err); err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return fmt.Errorf("timeout %dms exceeded waiting for selector %q", timeout.Milliseconds(), selector)
		}
		return fmt.Errorf("waiting for selector %q: %w", selector, err)
	}
	return nil
}

func (p *Page) Wait(ctx context.Context, d time.Duration) error {
	return p.Sleep(ctx, d)
}

func (p *Page) PressKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.page.Keyboard().Press(key); err != nil {
		return fmt.Errorf("failed to press %q: %w", key, err)
	}
	return nil
}

func (p *Page) TypeText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.page.Keyboard().Type(text); err != nil {
		return fmt.Errorf("failed to type text: %w", err)
	}
	return nil
}

func (p *Page) MouseClick(ctx context.Context, x, y float64, button schemas.MouseButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if button == "" {
		button = schemas.MouseButtonLeft
	}
	b := playwright.MouseButton(button)
	if err := p.page.Mouse().Click(x, y, playwright.MouseClickOptions{Button: &b}); err != nil {
		return fmt.Errorf("mouse click failed: %w", err)
	}
	return nil
}

func (p *Page) MouseMove(ctx context.Context, x, y float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.page.Mouse().Move(x, y); err != nil {
		return fmt.Errorf("mouse move failed: %w", err)
	}
	return nil
}

func (p *Page) DragAndDrop(ctx context.Context, sourceSelector, targetSelector string) error {
	err := p.page.DragAndDrop(sourceSelector, targetSelector, playwright.PageDragAndDropOptions{
		Timeout: timeoutMs(ctx),
	})
	if err = check(ctx, err); err != nil {
		return fmt.Errorf("drag from %q to %q failed: %w", sourceSelector, targetSelector, err)
	}
	return nil
}

func (p *Page) SetInputFiles(ctx context.Context, selector string, files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("cannot upload %s: %w", f, err)
		}
	}
	err := p.first(selector).SetInputFiles(files, playwright.LocatorSetInputFilesOptions{
		Timeout: timeoutMs(ctx),
	})
	if err = check(ctx, err); err != nil {
		return fmt.Errorf("failed to set files on %q: %w", selector, err)
	}
	return nil
}

// Evaluate runs script in the page. Playwright passes a single argument,
// so bound arguments travel as an array and are spread into the function.
func (p *Page) Evaluate(ctx context.Context, script string, args ...interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		v   interface{}
		err error
	)
	if len(args) == 0 {
		v, err = p.page.Evaluate(script)
	} else {
		v, err = p.page.Evaluate(spreadArgs(script), args)
	}
	if err = check(ctx, err); err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}
	return v, nil
}

func spreadArgs(script string) string {
	return fmt.Sprintf("(args) => (%s)(...args)", script)
}
