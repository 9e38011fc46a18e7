package pw

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// Session owns the driver, the browser and its single context.
type Session struct {
	driver  *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext

	kind       string
	navTimeout time.Duration
	logger     *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewPage opens a tab in the session's context.
func (s *Session) NewPage(ctx context.Context) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := s.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if s.navTimeout > 0 {
		page.SetDefaultNavigationTimeout(float64(s.navTimeout.Milliseconds()))
	}
	return &Page{page: page, kind: s.kind, logger: s.logger}, nil
}

// Close tears down the context, the browser and the driver, in that order.
// Later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.context != nil {
			if err := s.context.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close context: %w", err))
			}
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close browser: %w", err))
			}
		}
		if s.driver != nil {
			if err := s.driver.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stop driver: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
		if s.closeErr != nil {
			s.logger.Warn("Browser session closed with errors", zap.Error(s.closeErr))
		} else {
			s.logger.Debug("Browser session closed")
		}
	})
	return s.closeErr
}
