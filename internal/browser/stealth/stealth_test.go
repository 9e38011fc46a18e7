package stealth

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	json "github.com/json-iterator/go"
	"github.com/xkilldash9x/foxbridge/api/schemas"
)

func TestForOS(t *testing.T) {
	p := ForOS(schemas.OSWindows, FamilyFirefox)
	assert.Equal(t, schemas.OSWindows, p.OS)
	assert.Equal(t, "Win32", p.Platform)
	assert.Contains(t, p.UserAgent, "Firefox/")
	assert.Contains(t, p.UserAgent, "Windows NT")

	p = ForOS(schemas.OSMacOS, FamilyChrome)
	assert.Equal(t, "MacIntel", p.Platform)
	assert.Contains(t, p.UserAgent, "Chrome/")

	p = ForOS("beos", FamilyChrome)
	assert.Equal(t, HostOS(), p.OS, "unknown OS falls back to the host")
}

func TestForCountry(t *testing.T) {
	r, ok := ForCountry(" de ")
	require.True(t, ok)
	assert.Equal(t, "de-DE", r.Locale)
	assert.Equal(t, "Europe/Berlin", r.Timezone)

	_, ok = ForCountry("XX")
	assert.False(t, ok)
}

func TestLanguages(t *testing.T) {
	assert.Equal(t, []string{"fr-FR", "fr", "en-US", "en"}, Languages("fr_FR", "en-US", "fr"))
	assert.Equal(t, []string{"de"}, Languages("de", ""))
	assert.Nil(t, Languages())
}

func TestAcceptLanguage(t *testing.T) {
	assert.Equal(t, "en-US,en;q=0.9", AcceptLanguage([]string{"en-US", "en"}))
	assert.Equal(t, "", AcceptLanguage(nil))

	many := make([]string, 12)
	for i := range many {
		many[i] = "x"
	}
	assert.True(t, strings.HasSuffix(AcceptLanguage(many), "x;q=0.1"))
}

func TestResolve(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("defaults", func(t *testing.T) {
		p, err := Resolve(schemas.SessionOptions{}, FamilyChrome, rng, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, HostOS(), p.OS)
		assert.Equal(t, "en-US", p.Locale)
		assert.Empty(t, p.Timezone)
	})

	t.Run("geoip country", func(t *testing.T) {
		opts := schemas.SessionOptions{GeoIP: schemas.GeoIP{Enabled: true, Value: "jp"}}
		p, err := Resolve(opts, FamilyFirefox, rng, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, "ja-JP", p.Locale)
		assert.Equal(t, "Asia/Tokyo", p.Timezone)
		assert.Equal(t, []string{"ja-JP", "ja", "en-US", "en"}, p.Languages)
	})

	t.Run("explicit settings win over geoip", func(t *testing.T) {
		opts := schemas.SessionOptions{
			OS:        schemas.StringList{schemas.OSLinux},
			GeoIP:     schemas.GeoIP{Enabled: true, Value: "JP"},
			Locale:    schemas.StringList{"pt_BR"},
			Timezone:  "America/Sao_Paulo",
			UserAgent: "custom-agent",
			Viewport:  "2560x1600",
		}
		p, err := Resolve(opts, FamilyChrome, rng, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, schemas.OSLinux, p.OS)
		assert.Equal(t, "pt-BR", p.Locale)
		assert.Equal(t, "America/Sao_Paulo", p.Timezone)
		assert.Equal(t, "custom-agent", p.UserAgent)
		assert.Equal(t, Screen{Width: 2560, Height: 1600}, p.Viewport)
		assert.Equal(t, Screen{Width: 2560, Height: 1600}, p.Screen, "screen grows to hold the viewport")
	})

	t.Run("os chosen from list", func(t *testing.T) {
		opts := schemas.SessionOptions{OS: schemas.StringList{schemas.OSWindows, schemas.OSMacOS}}
		for i := 0; i < 10; i++ {
			p, err := Resolve(opts, FamilyChrome, rng, nil)
			require.NoError(t, err)
			assert.Contains(t, []string{schemas.OSWindows, schemas.OSMacOS}, p.OS)
		}
	})

	t.Run("bad viewport", func(t *testing.T) {
		_, err := Resolve(schemas.SessionOptions{Viewport: "wide"}, FamilyChrome, rng, nil)
		assert.Error(t, err)
	})
}

func TestResolveLogsUnresolvableGeoIP(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	for _, v := range []string{"", "203.0.113.7", "ZZ"} {
		opts := schemas.SessionOptions{GeoIP: schemas.GeoIP{Enabled: true, Value: v}}
		p, err := Resolve(opts, FamilyChrome, nil, logger)
		require.NoError(t, err)
		assert.Equal(t, "en-US", p.Locale, "geoip %q must leave the locale alone", v)
	}
	assert.Equal(t, 1, logs.FilterMessageSnippet("no offline resolution").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("IP lookup").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("Unknown geoip").Len())
}

func TestScript(t *testing.T) {
	p := ForOS(schemas.OSLinux, FamilyChrome)
	script, err := Script(p)
	require.NoError(t, err)

	prefix, rest, ok := strings.Cut(script, ";\n")
	require.True(t, ok)
	require.True(t, strings.HasPrefix(prefix, "const FOXBRIDGE_PERSONA = "))
	assert.Contains(t, rest, "webdriver")

	var decoded Persona
	require.NoError(t, json.UnmarshalFromString(strings.TrimPrefix(prefix, "const FOXBRIDGE_PERSONA = "), &decoded))
	assert.Equal(t, p, decoded)
}

func TestApply(t *testing.T) {
	p := ForOS(schemas.OSLinux, FamilyChrome)
	tasks := Apply(p, nil, zaptest.NewLogger(t))
	// network, user agent, script, locale, headers
	assert.Len(t, tasks, 5)

	p.Timezone = "Europe/Paris"
	p.Viewport = Screen{Width: 800, Height: 600}
	tasks = Apply(p, map[string]string{"X-Test": "1"}, nil)
	assert.Len(t, tasks, 7)
}
