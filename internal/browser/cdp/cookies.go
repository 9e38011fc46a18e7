package cdp

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/chromedp/cdproto/browser"
	cdproto "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/foxbridge/api/schemas"
)

// Cookies returns every cookie in the browser.
func (p *Page) Cookies(ctx context.Context) ([]schemas.Cookie, error) {
	var raw []*network.Cookie
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	cookies := make([]schemas.Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, fromNetworkCookie(c))
	}
	return cookies, nil
}

func fromNetworkCookie(c *network.Cookie) schemas.Cookie {
	expires := c.Expires
	if c.Session {
		expires = -1
	}
	return schemas.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  &expires,
		HTTPOnly: c.HTTPOnly,
		Secure:   c.Secure,
		SameSite: schemas.CookieSameSite(c.SameSite),
	}
}

// toCookieParam converts a wire cookie for Network.setCookies. A cookie
// scoped by domain defaults its path to "/".
func toCookieParam(c schemas.Cookie) *network.CookieParam {
	param := &network.CookieParam{
		Name:     c.Name,
		Value:    c.Value,
		URL:      c.URL,
		Domain:   c.Domain,
		Path:     c.Path,
		HTTPOnly: c.HTTPOnly,
		Secure:   c.Secure,
		SameSite: network.CookieSameSite(c.SameSite),
	}
	if param.Domain != "" && param.Path == "" {
		param.Path = "/"
	}
	if c.Expires != nil && *c.Expires >= 0 {
		sec, frac := math.Modf(*c.Expires)
		t := cdproto.TimeSinceEpoch(time.Unix(int64(sec), int64(frac*1e9)))
		param.Expires = &t
	}
	return param
}

func (p *Page) AddCookies(ctx context.Context, cookies []schemas.Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, toCookieParam(c))
	}
	if err := p.run(ctx, network.SetCookies(params)); err != nil {
		return fmt.Errorf("failed to set cookies: %w", err)
	}
	return nil
}

// DeleteCookie removes every cookie called name, whatever its domain.
func (p *Page) DeleteCookie(ctx context.Context, name string) error {
	cookies, err := p.Cookies(ctx)
	if err != nil {
		return err
	}
	for _, c := range cookies {
		if c.Name != name {
			continue
		}
		del := network.DeleteCookies(c.Name).WithDomain(c.Domain).WithPath(c.Path)
		if err := p.run(ctx, del); err != nil {
			return fmt.Errorf("failed to delete cookie %q: %w", name, err)
		}
	}
	return nil
}

func (p *Page) ClearCookies(ctx context.Context) error {
	if err := p.run(ctx, network.ClearBrowserCookies()); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}

// SetGeolocation overrides the reported position and grants the
// geolocation permission browser-wide.
func (p *Page) SetGeolocation(ctx context.Context, latitude, longitude, accuracy float64) error {
	grant := chromedp.ActionFunc(func(ctx context.Context) error {
		c := chromedp.FromContext(ctx)
		perms := []browser.PermissionType{browser.PermissionType("geolocation")}
		return browser.GrantPermissions(perms).Do(cdproto.WithExecutor(ctx, c.Browser))
	})
	override := emulation.SetGeolocationOverride().
		WithLatitude(latitude).
		WithLongitude(longitude).
		WithAccuracy(accuracy)

	if err := p.run(ctx, grant, override); err != nil {
		return fmt.Errorf("failed to set geolocation: %w", err)
	}
	return nil
}
