// internal/browser/cdp/page.go
package cdp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cdproto "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/foxbridge/api/schemas"
)

// Page is a single Chrome tab driven over CDP.
type Page struct {
	ctx        context.Context // chromedp target context
	navTimeout time.Duration
	logger     *zap.Logger
	lifecycle  *lifecycleTracker
}

func newPage(tabCtx context.Context, navTimeout time.Duration, logger *zap.Logger) *Page {
	if navTimeout <= 0 {
		navTimeout = 90 * time.Second
	}
	return &Page{
		ctx:        tabCtx,
		navTimeout: navTimeout,
		logger:     logger,
		lifecycle:  newLifecycleTracker(),
	}
}

// run executes actions on the tab, bounded by the operation context.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(p.ctx, ctx)
	defer cancel()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// callFunction calls fn with this bound to the page's global object.
// Runtime.callFunctionOn refuses calls that name neither an object nor an
// execution context.
func callFunction(fn string, res interface{}, opt chromedp.CallOption, args ...interface{}) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		global, exp, err := runtime.Evaluate("globalThis").Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve global object: %w", err)
		}
		if exp != nil {
			return exp
		}
		defer func() { _ = runtime.ReleaseObject(global.ObjectID).Do(ctx) }()

		return chromedp.CallFunctionOn(fn, res, func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
			p = p.WithObjectID(global.ObjectID)
			if opt != nil {
				p = opt(p)
			}
			return p
		}, args...).Do(ctx)
	})
}

// mainFrame returns the ID of the tab's top-level frame.
func mainFrame(ctx context.Context) (cdproto.FrameID, error) {
	tree, err := page.GetFrameTree().Do(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get frame tree: %w", err)
	}
	return tree.Frame.ID, nil
}

// Goto navigates and waits for waitUntil on the new document.
func (p *Page) Goto(ctx context.Context, url string, waitUntil schemas.LoadState) error {
	event := lifecycleEvent(waitUntil.OrDefault())
	ctx, cancel := context.WithTimeout(ctx, p.navTimeout)
	defer cancel()

	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		frame, err := mainFrame(ctx)
		if err != nil {
			return err
		}
		before := p.lifecycle.loader(frame)

		navCtx, stopNav := context.WithCancel(ctx)
		defer stopNav()

		// chromedp.Navigate returns once the frame has loaded; earlier
		// milestones are observed through lifecycle events meanwhile.
		navigated := make(chan error, 1)
		go func() { navigated <- chromedp.Navigate(url).Do(navCtx) }()

		lifecycleDone := make(chan error, 1)
		go func() { lifecycleDone <- p.lifecycle.wait(navCtx, frame, before, event) }()

		select {
		case err := <-navigated:
			if err != nil {
				return err
			}
			if event == "load" || event == "DOMContentLoaded" || event == "init" {
				return nil
			}
			// Same-document navigations keep their loader; accept the
			// current document from here on.
			return p.lifecycle.wait(ctx, frame, "", event)
		case err := <-lifecycleDone:
			return err
		}
	}))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("navigation to %s timed out after %s waiting for %s", url, p.navTimeout, waitUntil.OrDefault())
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	p.logger.Debug("Navigated", zap.String("url", url), zap.String("wait_until", string(waitUntil.OrDefault())))
	return nil
}

// WaitForLoadState waits until the current document reached state.
func (p *Page) WaitForLoadState(ctx context.Context, state schemas.LoadState) error {
	state = state.OrDefault()
	if state == schemas.LoadStateCommit {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.navTimeout)
	defer cancel()

	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		frame, err := mainFrame(ctx)
		if err != nil {
			return err
		}
		return p.lifecycle.wait(ctx, frame, "", lifecycleEvent(state))
	}))
	if err != nil {
		return fmt.Errorf("waiting for load state %s: %w", state, err)
	}
	return nil
}

func (p *Page) URL(ctx context.Context) (string, error) {
	var u string
	if err := p.run(ctx, chromedp.Location(&u)); err != nil {
		return "", fmt.Errorf("failed to read page URL: %w", err)
	}
	return u, nil
}

func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	if err := p.run(ctx, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("failed to read page title: %w", err)
	}
	return title, nil
}

const contentScript = `(() => {
	let html = '';
	if (document.doctype) {
		html = new XMLSerializer().serializeToString(document.doctype);
	}
	if (document.documentElement) {
		html += document.documentElement.outerHTML;
	}
	return html;
})()`

// Content returns the serialized document including its doctype.
func (p *Page) Content(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.Evaluate(contentScript, &html)); err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

// Screenshot writes a PNG of the viewport, or of the whole page when
// fullPage is set.
func (p *Page) Screenshot(ctx context.Context, path string, fullPage bool) error {
	var buf []byte
	action := chromedp.CaptureScreenshot(&buf)
	if fullPage {
		action = chromedp.FullScreenshot(&buf, 100)
	}
	if err := p.run(ctx, action); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return writeFile(path, buf)
}

// PDF prints the page. Chrome only prints in headless mode.
func (p *Page) PDF(ctx context.Context, path string, opts schemas.PDFOptions) error {
	params, err := printParams(opts)
	if err != nil {
		return fmt.Errorf("invalid pdf_options: %w", err)
	}

	var buf []byte
	err = p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := params.Do(ctx)
		buf = data
		return err
	}))
	if err != nil {
		return fmt.Errorf("failed to print PDF: %w", err)
	}
	return writeFile(path, buf)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (p *Page) Click(ctx context.Context, selector string) error {
	err := p.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

const fillScript = `function(selector, value) {
	const el = document.querySelector(selector);
	if (!el) {
		throw new Error('no element matches ' + selector);
	}
	el.focus();
	if (el.isContentEditable) {
		el.textContent = value;
	} else if ('value' in el) {
		el.value = value;
	} else {
		throw new Error('element is not an input, textarea, select or contenteditable');
	}
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
}`

// Fill replaces the value of an input, textarea or contenteditable element
// and fires input and change events.
func (p *Page) Fill(ctx context.Context, selector, value string) error {
	var ok bool
	err := p.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		callFunction(fillScript, &ok, nil, selector, value),
	)
	if err != nil {
		return fmt.Errorf("failed to fill %q: %w", selector, err)
	}
	return nil
}

// withOptionalTimeout bounds ctx by timeout; zero leaves it unbounded.
func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// WaitForSelector waits for selector to match a visible element. A zero
// timeout waits until ctx is done.
func (p *Page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	ctx, cancel := withOptionalTimeout(ctx, timeout)
	defer cancel()

	if err := p.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("timeout %dms exceeded waiting for selector %q", timeout.Milliseconds(), selector)
		}
		return fmt.Errorf("waiting for selector %q: %w", selector, err)
	}
	return nil
}

func (p *Page) Wait(ctx context.Context, d time.Duration) error {
	return p.Sleep(ctx, d)
}

// PressKey presses a key or a combination such as "Control+A".
func (p *Page) PressKey(ctx context.Context, key string) error {
	keys, mods, err := parseKey(key)
	if err != nil {
		return err
	}
	if err := p.run(ctx, chromedp.KeyEvent(keys, chromedp.KeyModifiers(mods))); err != nil {
		return fmt.Errorf("failed to press %q: %w", key, err)
	}
	return nil
}

// TypeText types into the focused element.
func (p *Page) TypeText(ctx context.Context, text string) error {
	if err := p.SendKeys(ctx, text); err != nil {
		return fmt.Errorf("failed to type text: %w", err)
	}
	return nil
}

// SetInputFiles attaches local files to a file input.
func (p *Page) SetInputFiles(ctx context.Context, selector string, files ...string) error {
	abs := make([]string, 0, len(files))
	for _, f := range files {
		a, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("invalid file path %q: %w", f, err)
		}
		if _, err := os.Stat(a); err != nil {
			return fmt.Errorf("cannot upload %s: %w", f, err)
		}
		abs = append(abs, a)
	}

	err := p.run(ctx,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.SetUploadFiles(selector, abs, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to set files on %q: %w", selector, err)
	}
	return nil
}

// evaluateScript runs a script as a program in the page. Its completion
// value is returned; a function value is invoked first and promises are
// awaited. Results are wrapped so undefined survives the trip.
const evaluateScript = `(async (source) => {
	let v = (0, eval)(source);
	if (typeof v === 'function') {
		v = v();
	}
	v = await v;
	return v === undefined ? {} : { value: v };
})`

// evaluateFunction calls the function source with bound arguments.
const evaluateFunction = `async function(source, ...args) {
	const fn = (0, eval)('(' + source + ')');
	if (typeof fn !== 'function') {
		throw new Error('script must be a function when arguments are given');
	}
	const v = await fn.apply(this, args);
	return v === undefined ? {} : { value: v };
}`

type evalResult struct {
	Value interface{} `json:"value"`
}

// Evaluate runs script in the page; see browser.Page. The script travels
// as an argument, never spliced into the evaluated source.
func (p *Page) Evaluate(ctx context.Context, script string, args ...interface{}) (interface{}, error) {
	var res evalResult
	var action chromedp.Action
	if len(args) == 0 {
		action = chromedp.Evaluate(fmt.Sprintf("%s(%s)", evaluateScript, jsonEncode(script)), &res,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			})
	} else {
		action = callFunction(evaluateFunction, &res,
			func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
				return p.WithAwaitPromise(true)
			},
			append([]interface{}{script}, args...)...)
	}

	if err := p.run(ctx, action); err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}
	return res.Value, nil
}
