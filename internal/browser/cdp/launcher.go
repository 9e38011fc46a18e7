// internal/browser/cdp/launcher.go
package cdp

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"github.com/xkilldash9x/foxbridge/internal/browser/stealth"
	"github.com/xkilldash9x/foxbridge/internal/config"
)

// Launcher starts a fresh Chrome process per session through a chromedp
// ExecAllocator.
type Launcher struct {
	browserCfg config.BrowserConfig
	networkCfg config.NetworkConfig
	logger     *zap.Logger
	rng        *rand.Rand
}

// NewLauncher builds a Launcher from the browser and network configuration.
func NewLauncher(cfg config.Interface, logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{
		browserCfg: cfg.Browser(),
		networkCfg: cfg.Network(),
		logger:     logger.Named("cdp"),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Launch starts the browser and verifies it responds. The returned session
// owns the process; cancelling ctx also terminates it.
func (l *Launcher) Launch(ctx context.Context, opts schemas.SessionOptions) (*Session, error) {
	persona, err := stealth.Resolve(opts, stealth.FamilyChrome, l.rng, l.logger)
	if err != nil {
		return nil, err
	}

	allocOpts, proxyUser, err := l.allocatorOptions(opts, persona)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Launching browser",
		zap.Bool("headless", opts.IsHeadless(l.browserCfg.Headless)),
		zap.String("os", persona.OS))

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(l.logger.Sugar().Debugf),
		chromedp.WithErrorf(l.logger.Sugar().Debugf),
	)

	s := &Session{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		persona:       persona,
		headers:       l.networkCfg.Headers,
		navTimeout:    l.networkCfg.NavigationTimeout,
		proxyUser:     proxyUser,
		logger:        l.logger,
	}

	// The first Run allocates the browser and binds its lifetime to
	// browserCtx, so the launch deadline is enforced from outside.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(browserCtx) }()

	timer := time.NewTimer(l.browserCfg.LaunchTimeout)
	defer timer.Stop()
	select {
	case err = <-started:
	case <-timer.C:
		err = fmt.Errorf("timed out after %s", l.browserCfg.LaunchTimeout)
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	l.logger.Debug("Browser launched")
	return s, nil
}

// allocatorOptions assembles the Chrome command line. It returns the proxy
// credentials separately because Chrome ignores userinfo in --proxy-server.
func (l *Launcher) allocatorOptions(opts schemas.SessionOptions, persona stealth.Persona) ([]chromedp.ExecAllocatorOption, *url.Userinfo, error) {
	cfg := l.browserCfg
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	allocOpts = append(allocOpts,
		// A false boolean flag removes it from the command line.
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", cfg.IgnoreTLSErrors),
		chromedp.Flag("disable-gpu", cfg.DisableGPU),
		chromedp.UserAgent(persona.UserAgent),
	)

	if opts.IsHeadless(cfg.Headless) {
		allocOpts = append(allocOpts, chromedp.Headless)
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	if persona.Locale != "" {
		allocOpts = append(allocOpts, chromedp.Flag("lang", persona.Locale))
	}

	width, height := cfg.Viewport.Width, cfg.Viewport.Height
	if persona.Viewport.Width > 0 {
		width, height = persona.Viewport.Width, persona.Viewport.Height
	}
	if width > 0 && height > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(width, height))
	}

	if opts.BlockImages {
		allocOpts = append(allocOpts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}

	if cfg.ExecutablePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.ExecutablePath))
	}

	var proxyUser *url.Userinfo
	if opts.Proxy != "" {
		server, user, err := splitProxy(opts.Proxy)
		if err != nil {
			return nil, nil, err
		}
		proxyUser = user
		allocOpts = append(allocOpts, chromedp.ProxyServer(server))
	}

	for _, arg := range cfg.Args {
		name, value := parseFlag(arg)
		if name == "" {
			continue
		}
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}

	return allocOpts, proxyUser, nil
}

// parseFlag splits "--name=value" into a chromedp flag. A flag without a
// value is a boolean switch.
func parseFlag(arg string) (string, interface{}) {
	name, value, hasValue := strings.Cut(strings.TrimSpace(arg), "=")
	name = strings.TrimLeft(name, "-")
	if !hasValue {
		return name, true
	}
	return name, value
}

// splitProxy separates the credentials from a proxy URL.
func splitProxy(raw string) (string, *url.Userinfo, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", nil, fmt.Errorf("invalid proxy %q", raw)
	}
	user := u.User
	u.User = nil
	return u.String(), user, nil
}
