// internal/browser/pw/launcher.go
package pw

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/url"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"github.com/xkilldash9x/foxbridge/internal/browser/stealth"
	"github.com/xkilldash9x/foxbridge/internal/config"
)

// Supported browser types.
const (
	BrowserFirefox  = "firefox"
	BrowserChromium = "chromium"
	BrowserWebKit   = "webkit"
)

const installTimeout = 5 * time.Minute

// Launcher starts a Playwright driver and browser per session.
type Launcher struct {
	browserCfg config.BrowserConfig
	networkCfg config.NetworkConfig
	logger     *zap.Logger
	rng        *rand.Rand
}

func NewLauncher(cfg config.Interface, logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{
		browserCfg: cfg.Browser(),
		networkCfg: cfg.Network(),
		logger:     logger.Named("playwright"),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// runOptions keeps the driver quiet: stdout belongs to the result envelope.
func (l *Launcher) runOptions() *playwright.RunOptions {
	return &playwright.RunOptions{
		Browsers: []string{l.browserName()},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
}

func (l *Launcher) browserName() string {
	if l.browserCfg.PWBrowser == "" {
		return BrowserFirefox
	}
	return l.browserCfg.PWBrowser
}

// family is the fingerprint family matching the browser type.
func family(browserName string) stealth.Family {
	switch browserName {
	case BrowserChromium:
		return stealth.FamilyChrome
	case BrowserWebKit:
		return stealth.FamilyWebKit
	}
	return stealth.FamilyFirefox
}

// Launch starts the driver, the browser and one context configured from
// the persona.
func (l *Launcher) Launch(ctx context.Context, opts schemas.SessionOptions) (*Session, error) {
	if l.browserCfg.Install {
		if err := l.ensureInstallation(ctx); err != nil {
			return nil, err
		}
	}

	name := l.browserName()
	persona, err := stealth.Resolve(opts, family(name), l.rng, l.logger)
	if err != nil {
		return nil, err
	}

	driver, err := playwright.Run(l.runOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright driver: %w", err)
	}
	s := &Session{
		driver:     driver,
		kind:       name,
		navTimeout: l.networkCfg.NavigationTimeout,
		logger:     l.logger,
	}

	browserType := map[string]playwright.BrowserType{
		BrowserFirefox:  driver.Firefox,
		BrowserChromium: driver.Chromium,
		BrowserWebKit:   driver.WebKit,
	}[name]
	if browserType == nil {
		s.Close()
		return nil, fmt.Errorf("unsupported playwright browser %q", name)
	}

	launchOpts, err := l.launchOptions(opts)
	if err != nil {
		s.Close()
		return nil, err
	}
	l.logger.Info("Launching browser",
		zap.String("browser", name),
		zap.Bool("headless", opts.IsHeadless(l.browserCfg.Headless)),
		zap.String("os", persona.OS))

	s.browser, err = browserType.Launch(launchOpts)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to launch %s: %w", name, err)
	}

	s.context, err = s.browser.NewContext(l.contextOptions(persona))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	script, err := stealth.Script(persona)
	if err == nil {
		err = s.context.AddInitScript(playwright.Script{Content: playwright.String(script)})
	}
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to install persona: %w", err)
	}

	if opts.BlockImages {
		if err := s.context.Route("**/*", blockImages); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to block images: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (l *Launcher) ensureInstallation(ctx context.Context) error {
	l.logger.Info("Verifying Playwright browser installation", zap.String("browser", l.browserName()))
	installCtx, cancel := context.WithTimeout(ctx, installTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- playwright.Install(l.runOptions()) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to install playwright browsers: %w", err)
		}
		return nil
	case <-installCtx.Done():
		return fmt.Errorf("timeout waiting for Playwright installation: %w", installCtx.Err())
	}
}

func (l *Launcher) launchOptions(opts schemas.SessionOptions) (playwright.BrowserTypeLaunchOptions, error) {
	cfg := l.browserCfg
	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.IsHeadless(cfg.Headless)),
		Timeout:  playwright.Float(float64(cfg.LaunchTimeout.Milliseconds())),
		Args:     append([]string{}, cfg.Args...),
	}

	if l.browserName() == BrowserChromium {
		launchOpts.Args = append([]string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
		}, launchOpts.Args...)
		if cfg.DisableGPU {
			launchOpts.Args = append(launchOpts.Args, "--disable-gpu")
		}
	}
	if cfg.ExecutablePath != "" {
		launchOpts.ExecutablePath = playwright.String(cfg.ExecutablePath)
	}

	if opts.Proxy != "" {
		proxy, err := proxyFromURL(opts.Proxy)
		if err != nil {
			return launchOpts, err
		}
		launchOpts.Proxy = proxy
	}
	return launchOpts, nil
}

func (l *Launcher) contextOptions(p stealth.Persona) playwright.BrowserNewContextOptions {
	opts := playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String(p.UserAgent),
		IgnoreHttpsErrors: playwright.Bool(l.browserCfg.IgnoreTLSErrors),
		Screen:            &playwright.Size{Width: p.Screen.Width, Height: p.Screen.Height},
	}
	if p.Locale != "" {
		opts.Locale = playwright.String(p.Locale)
	}
	if p.Timezone != "" {
		opts.TimezoneId = playwright.String(p.Timezone)
	}

	width, height := l.browserCfg.Viewport.Width, l.browserCfg.Viewport.Height
	if p.Viewport.Width > 0 {
		width, height = p.Viewport.Width, p.Viewport.Height
	}
	if width > 0 && height > 0 {
		opts.Viewport = &playwright.Size{Width: width, Height: height}
	}

	headers := map[string]string{}
	if al := stealth.AcceptLanguage(p.Languages); al != "" {
		headers["Accept-Language"] = al
	}
	for k, v := range l.networkCfg.Headers {
		headers[k] = v
	}
	opts.ExtraHttpHeaders = headers
	return opts
}

// proxyFromURL splits a proxy URL into server and credentials.
func proxyFromURL(raw string) (*playwright.Proxy, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid proxy %q", raw)
	}
	proxy := &playwright.Proxy{}
	if u.User != nil {
		proxy.Username = playwright.String(u.User.Username())
		if pw, ok := u.User.Password(); ok {
			proxy.Password = playwright.String(pw)
		}
		u.User = nil
	}
	proxy.Server = u.String()
	return proxy, nil
}

func blockImages(route playwright.Route) {
	if route.Request().ResourceType() == "image" {
		_ = route.Abort()
		return
	}
	_ = route.Continue()
}
