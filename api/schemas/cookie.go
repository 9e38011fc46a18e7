package schemas

import "errors"

// CookieSameSite is the SameSite attribute of a cookie.
type CookieSameSite string

const (
	CookieSameSiteStrict CookieSameSite = "Strict"
	CookieSameSiteLax    CookieSameSite = "Lax"
	CookieSameSiteNone   CookieSameSite = "None"
)

// Cookie is the wire form of a browser cookie, used both as set_cookies input
// and as get_cookies output.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	// URL scopes a cookie being set; it is never reported back.
	URL    string `json:"url,omitempty"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
	// Expires is a Unix timestamp in seconds; -1 or absent means a session cookie.
	Expires  *float64       `json:"expires,omitempty"`
	HTTPOnly bool           `json:"httpOnly"`
	Secure   bool           `json:"secure"`
	SameSite CookieSameSite `json:"sameSite,omitempty"`
}

// Validate checks that a cookie can be set: it needs a name and either a url
// or a domain to scope it.
func (c Cookie) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.URL == "" && c.Domain == "" {
		return errors.New("either url or domain is required")
	}
	switch c.SameSite {
	case "", CookieSameSiteStrict, CookieSameSiteLax, CookieSameSiteNone:
		return nil
	}
	return errors.New("sameSite must be Strict, Lax or None")
}
