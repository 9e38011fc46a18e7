// internal/browser/cdp/session.go
package cdp

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	cdproto "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/foxbridge/internal/browser/stealth"
)

// Session is one Chrome process. Its first page reuses the initial tab.
type Session struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	persona    stealth.Persona
	headers    map[string]string
	navTimeout time.Duration
	proxyUser  *url.Userinfo
	logger     *zap.Logger

	mu        sync.Mutex
	firstUsed bool
	closeOnce sync.Once
}

// NewPage opens a tab and installs the persona on it.
func (s *Session) NewPage(ctx context.Context) (*Page, error) {
	s.mu.Lock()
	tabCtx, tabCancel := s.browserCtx, context.CancelFunc(func() {})
	if s.firstUsed {
		tabCtx, tabCancel = chromedp.NewContext(s.browserCtx)
	}
	s.firstUsed = true
	s.mu.Unlock()

	p := newPage(tabCtx, s.navTimeout, s.logger)

	setup := chromedp.Tasks{
		page.SetLifecycleEventsEnabled(true),
		// Evaluated scripts rely on eval, which a page CSP could forbid.
		page.SetBypassCSP(true),
		stealth.Apply(s.persona, s.headers, s.logger),
	}
	if s.proxyUser != nil {
		setup = append(setup, fetch.Enable().WithHandleAuthRequests(true))
	}

	// The first Run on a tab context creates the target and ties it to the
	// context given, so it runs on the bare tab context. Listeners need the
	// target and are registered afterwards.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	chromedp.ListenTarget(tabCtx, p.lifecycle.listen)
	if s.proxyUser != nil {
		chromedp.ListenTarget(tabCtx, s.proxyAuthListener(tabCtx))
	}

	if err := p.run(ctx, setup); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to prepare page: %w", err)
	}
	return p, nil
}

// proxyAuthListener answers proxy authentication challenges with the
// credentials from the proxy URL. Every paused request is resumed.
func (s *Session) proxyAuthListener(tabCtx context.Context) func(ev interface{}) {
	password, _ := s.proxyUser.Password()
	username := s.proxyUser.Username()

	return func(ev interface{}) {
		switch ev := ev.(type) {
		case *fetch.EventRequestPaused:
			go func() {
				execCtx := cdproto.WithExecutor(tabCtx, chromedp.FromContext(tabCtx).Target)
				if err := fetch.ContinueRequest(ev.RequestID).Do(execCtx); err != nil {
					s.logger.Debug("Failed to continue request", zap.Error(err))
				}
			}()
		case *fetch.EventAuthRequired:
			go func() {
				execCtx := cdproto.WithExecutor(tabCtx, chromedp.FromContext(tabCtx).Target)
				resp := &fetch.AuthChallengeResponse{
					Response: fetch.AuthChallengeResponseResponseProvideCredentials,
					Username: username,
					Password: password,
				}
				if err := fetch.ContinueWithAuth(ev.RequestID, resp).Do(execCtx); err != nil {
					s.logger.Debug("Failed to answer proxy auth", zap.Error(err))
				}
			}()
		}
	}
}

// Close shuts the browser down and removes its profile directory. It is
// safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		// Cancelling the browser context closes Chrome gracefully; the
		// allocator cancel then waits for the process and cleans up.
		s.browserCancel()
		s.allocCancel()
		s.logger.Debug("Browser session closed")
	})
	return nil
}
