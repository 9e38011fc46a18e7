package pw

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/xkilldash9x/foxbridge/api/schemas"
)

func fromPlaywrightCookie(c playwright.Cookie) schemas.Cookie {
	expires := c.Expires
	out := schemas.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  &expires,
		HTTPOnly: c.HttpOnly,
		Secure:   c.Secure,
	}
	if c.SameSite != nil {
		out.SameSite = schemas.CookieSameSite(*c.SameSite)
	}
	return out
}

// toOptionalCookie converts a cookie to set. Playwright rejects a url
// together with a domain or path, so the url wins.
func toOptionalCookie(c schemas.Cookie) playwright.OptionalCookie {
	out := playwright.OptionalCookie{
		Name:     c.Name,
		Value:    c.Value,
		HttpOnly: playwright.Bool(c.HTTPOnly),
		Secure:   playwright.Bool(c.Secure),
		Expires:  c.Expires,
	}
	if c.URL != "" {
		out.URL = playwright.String(c.URL)
	} else {
		out.Domain = playwright.String(c.Domain)
		path := c.Path
		if path == "" {
			path = "/"
		}
		out.Path = playwright.String(path)
	}
	if c.SameSite != "" {
		ss := playwright.SameSiteAttribute(c.SameSite)
		out.SameSite = &ss
	}
	return out
}

func (p *Page) Cookies(ctx context.Context) ([]schemas.Cookie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cookies, err := p.page.Context().Cookies()
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	out := make([]schemas.Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, fromPlaywrightCookie(c))
	}
	return out, nil
}

func (p *Page) AddCookies(ctx context.Context, cookies []schemas.Cookie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, toOptionalCookie(c))
	}
	if err := p.page.Context().AddCookies(params); err != nil {
		return fmt.Errorf("failed to set cookies: %w", err)
	}
	return nil
}

// DeleteCookie removes every cookie called name, whatever its domain or path.
func (p *Page) DeleteCookie(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.page.Context().ClearCookies(playwright.BrowserContextClearCookiesOptions{Name: name})
	if err != nil {
		return fmt.Errorf("failed to delete cookie %q: %w", name, err)
	}
	return nil
}

func (p *Page) ClearCookies(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.page.Context().ClearCookies(); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}

func (p *Page) SetGeolocation(ctx context.Context, latitude, longitude, accuracy float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bc := p.page.Context()
	if err := bc.GrantPermissions([]string{"geolocation"}); err != nil {
		return fmt.Errorf("failed to grant geolocation: %w", err)
	}
	err := bc.SetGeolocation(&playwright.Geolocation{
		Latitude:  latitude,
		Longitude: longitude,
		Accuracy:  playwright.Float(accuracy),
	})
	if err != nil {
		return fmt.Errorf("failed to set geolocation: %w", err)
	}
	return nil
}
