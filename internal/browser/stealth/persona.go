// internal/browser/stealth/persona.go
package stealth

import (
	"fmt"
	"math/rand"
	"net"
	"runtime"
	"strings"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"go.uber.org/zap"
)

// Family is the browser family a persona must be consistent with. A Chrome
// user agent on a Gecko engine is itself a fingerprint.
type Family string

const (
	FamilyChrome  Family = "chrome"
	FamilyFirefox Family = "firefox"
	FamilyWebKit  Family = "webkit"
)

// Screen is the reported display size.
type Screen struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Persona is the coherent set of fingerprint values applied to one session.
type Persona struct {
	OS        string   `json:"os"`
	UserAgent string   `json:"userAgent"`
	Platform  string   `json:"platform"`
	Languages []string `json:"languages"`
	Locale    string   `json:"locale,omitempty"`
	Timezone  string   `json:"timezone,omitempty"`
	Screen    Screen   `json:"screen"`
	// Viewport is the page area; zero means the engine default.
	Viewport Screen `json:"viewport"`
}

type osProfile struct {
	platform string
	screen   Screen
	agents   map[Family]string
}

var osProfiles = map[string]osProfile{
	schemas.OSWindows: {
		platform: "Win32",
		screen:   Screen{Width: 1920, Height: 1080},
		agents: map[Family]string{
			FamilyChrome:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
			FamilyFirefox: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
			FamilyWebKit:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.1 Safari/605.1.15",
		},
	},
	schemas.OSMacOS: {
		platform: "MacIntel",
		screen:   Screen{Width: 1440, Height: 900},
		agents: map[Family]string{
			FamilyChrome:  "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
			FamilyFirefox: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:133.0) Gecko/20100101 Firefox/133.0",
			FamilyWebKit:  "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.1 Safari/605.1.15",
		},
	},
	schemas.OSLinux: {
		platform: "Linux x86_64",
		screen:   Screen{Width: 1920, Height: 1080},
		agents: map[Family]string{
			FamilyChrome:  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
			FamilyFirefox: "Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0",
			FamilyWebKit:  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.1 Safari/605.1.15",
		},
	},
}

// HostOS maps the running platform onto one of the persona operating systems.
func HostOS() string {
	switch runtime.GOOS {
	case "windows":
		return schemas.OSWindows
	case "darwin":
		return schemas.OSMacOS
	}
	return schemas.OSLinux
}

// ForOS returns the persona of a typical en-US desktop on os for the given
// browser family. Unknown operating systems fall back to the host.
func ForOS(os string, family Family) Persona {
	profile, ok := osProfiles[os]
	if !ok {
		os = HostOS()
		profile = osProfiles[os]
	}
	ua, ok := profile.agents[family]
	if !ok {
		ua = profile.agents[FamilyChrome]
	}
	return Persona{
		OS:        os,
		UserAgent: ua,
		Platform:  profile.platform,
		Languages: []string{"en-US", "en"},
		Locale:    "en-US",
		Screen:    profile.screen,
	}
}

// Region is the locale and timezone typical of a country.
type Region struct {
	Locale   string
	Timezone string
}

var countryRegions = map[string]Region{
	"US": {"en-US", "America/New_York"},
	"CA": {"en-CA", "America/Toronto"},
	"MX": {"es-MX", "America/Mexico_City"},
	"BR": {"pt-BR", "America/Sao_Paulo"},
	"AR": {"es-AR", "America/Argentina/Buenos_Aires"},
	"GB": {"en-GB", "Europe/London"},
	"IE": {"en-IE", "Europe/Dublin"},
	"DE": {"de-DE", "Europe/Berlin"},
	"AT": {"de-AT", "Europe/Vienna"},
	"CH": {"de-CH", "Europe/Zurich"},
	"FR": {"fr-FR", "Europe/Paris"},
	"BE": {"nl-BE", "Europe/Brussels"},
	"NL": {"nl-NL", "Europe/Amsterdam"},
	"ES": {"es-ES", "Europe/Madrid"},
	"PT": {"pt-PT", "Europe/Lisbon"},
	"IT": {"it-IT", "Europe/Rome"},
	"PL": {"pl-PL", "Europe/Warsaw"},
	"SE": {"sv-SE", "Europe/Stockholm"},
	"NO": {"nb-NO", "Europe/Oslo"},
	"DK": {"da-DK", "Europe/Copenhagen"},
	"FI": {"fi-FI", "Europe/Helsinki"},
	"CZ": {"cs-CZ", "Europe/Prague"},
	"RO": {"ro-RO", "Europe/Bucharest"},
	"GR": {"el-GR", "Europe/Athens"},
	"TR": {"tr-TR", "Europe/Istanbul"},
	"UA": {"uk-UA", "Europe/Kiev"},
	"RU": {"ru-RU", "Europe/Moscow"},
	"IL": {"he-IL", "Asia/Jerusalem"},
	"AE": {"ar-AE", "Asia/Dubai"},
	"IN": {"en-IN", "Asia/Kolkata"},
	"SG": {"en-SG", "Asia/Singapore"},
	"JP": {"ja-JP", "Asia/Tokyo"},
	"KR": {"ko-KR", "Asia/Seoul"},
	"CN": {"zh-CN", "Asia/Shanghai"},
	"TW": {"zh-TW", "Asia/Taipei"},
	"HK": {"zh-HK", "Asia/Hong_Kong"},
	"ID": {"id-ID", "Asia/Jakarta"},
	"VN": {"vi-VN", "Asia/Ho_Chi_Minh"},
	"TH": {"th-TH", "Asia/Bangkok"},
	"AU": {"en-AU", "Australia/Sydney"},
	"NZ": {"en-NZ", "Pacific/Auckland"},
	"ZA": {"en-ZA", "Africa/Johannesburg"},
	"EG": {"ar-EG", "Africa/Cairo"},
	"NG": {"en-NG", "Africa/Lagos"},
}

// ForCountry looks up the region of an ISO 3166-1 alpha-2 country code.
func ForCountry(code string) (Region, bool) {
	r, ok := countryRegions[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// Languages derives navigator.languages from a list of locales: each locale
// followed by its base language, without duplicates.
func Languages(locales ...string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, l := range locales {
		l = strings.ReplaceAll(strings.TrimSpace(l), "_", "-")
		add(l)
		if base, _, ok := strings.Cut(l, "-"); ok {
			add(base)
		}
	}
	return out
}

// AcceptLanguage renders languages as an Accept-Language header value with
// descending quality factors.
func AcceptLanguage(languages []string) string {
	parts := make([]string, 0, len(languages))
	for i, l := range languages {
		if i == 0 {
			parts = append(parts, l)
			continue
		}
		q := 1.0 - 0.1*float64(i)
		if q < 0.1 {
			q = 0.1
		}
		parts = append(parts, fmt.Sprintf("%s;q=%.1f", l, q))
	}
	return strings.Join(parts, ",")
}

// Resolve composes the persona for a session: operating system first, then
// the geoip region, then explicit locale, timezone, user agent and viewport.
func Resolve(opts schemas.SessionOptions, family Family, rng *rand.Rand, logger *zap.Logger) (Persona, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	os := HostOS()
	if len(opts.OS) > 0 {
		os = opts.OS[rng.Intn(len(opts.OS))]
	}
	p := ForOS(os, family)

	if opts.GeoIP.Enabled {
		if region, ok := regionFor(opts.GeoIP, logger); ok {
			p.Locale = region.Locale
			p.Timezone = region.Timezone
			p.Languages = Languages(region.Locale, "en-US")
		}
	}

	if len(opts.Locale) > 0 {
		p.Locale = strings.ReplaceAll(opts.Locale[0], "_", "-")
		p.Languages = Languages(opts.Locale...)
	}
	if opts.Timezone != "" {
		p.Timezone = opts.Timezone
	}
	if opts.UserAgent != "" {
		p.UserAgent = opts.UserAgent
	}
	if opts.Viewport != "" {
		w, h, err := schemas.ParseViewport(opts.Viewport)
		if err != nil {
			return Persona{}, fmt.Errorf("stealth: %w", err)
		}
		p.Viewport = Screen{Width: w, Height: h}
		if w > p.Screen.Width || h > p.Screen.Height {
			p.Screen = Screen{Width: w, Height: h}
		}
	}

	logger.Debug("Resolved persona",
		zap.String("os", p.OS),
		zap.String("locale", p.Locale),
		zap.String("timezone", p.Timezone))
	return p, nil
}

// regionFor interprets a geoip value. Only country codes are resolved; IP
// lookups need a network round trip and are skipped.
func regionFor(g schemas.GeoIP, logger *zap.Logger) (Region, bool) {
	switch {
	case g.Value == "":
		logger.Info("geoip=true has no offline resolution, keeping persona locale")
		return Region{}, false
	case net.ParseIP(g.Value) != nil:
		logger.Warn("geoip IP lookup is not supported, ignoring", zap.String("geoip", g.Value))
		return Region{}, false
	}
	r, ok := ForCountry(g.Value)
	if !ok {
		logger.Warn("Unknown geoip country code, ignoring", zap.String("geoip", g.Value))
	}
	return r, ok
}
