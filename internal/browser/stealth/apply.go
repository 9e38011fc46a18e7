package stealth

import (
	"context"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Apply returns the chromedp actions that install persona on the current
// target. extraHeaders are sent with every request alongside Accept-Language.
func Apply(p Persona, extraHeaders map[string]string, logger *zap.Logger) chromedp.Tasks {
	if logger == nil {
		logger = zap.NewNop()
	}
	acceptLanguage := AcceptLanguage(p.Languages)

	tasks := chromedp.Tasks{
		network.Enable(),
		emulation.SetUserAgentOverride(p.UserAgent).
			WithPlatform(p.Platform).
			WithAcceptLanguage(acceptLanguage),
		chromedp.ActionFunc(func(ctx context.Context) error {
			script, err := Script(p)
			if err != nil {
				return err
			}
			_, err = page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
			return err
		}),
	}

	if p.Locale != "" {
		tasks = append(tasks, emulation.SetLocaleOverride().WithLocale(p.Locale))
	}
	if p.Timezone != "" {
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			if err := emulation.SetTimezoneOverride(p.Timezone).Do(ctx); err != nil {
				// A rejected timezone leaves the host zone in place; not fatal.
				logger.Warn("Failed to set timezone override", zap.String("timezone", p.Timezone), zap.Error(err))
			}
			return nil
		}))
	}
	if p.Viewport.Width > 0 && p.Viewport.Height > 0 {
		tasks = append(tasks, emulation.SetDeviceMetricsOverride(int64(p.Viewport.Width), int64(p.Viewport.Height), 1, false).
			WithScreenWidth(int64(p.Screen.Width)).
			WithScreenHeight(int64(p.Screen.Height)))
	}

	headers := network.Headers{}
	if acceptLanguage != "" {
		headers["Accept-Language"] = acceptLanguage
	}
	for k, v := range extraHeaders {
		headers[k] = v
	}
	if len(headers) > 0 {
		tasks = append(tasks, network.SetExtraHTTPHeaders(headers))
	}

	logger.Debug("Applying stealth persona",
		zap.String("user_agent", p.UserAgent),
		zap.String("platform", p.Platform))
	return tasks
}
