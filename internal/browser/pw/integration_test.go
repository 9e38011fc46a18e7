package pw

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"github.com/xkilldash9x/foxbridge/internal/config"
)

const fixture = `<!DOCTYPE html>
<html><head><title>Fixture</title></head>
<body><input id="name"><button id="go" onclick="document.title='clicked'">Go</button>
<div id="src" style="width:60px;height:60px" onmousedown="window.dragFrom = this.id"></div>
<div id="dst" style="width:60px;height:60px;margin-top:20px"
     onmouseup="document.body.dataset.dropped = (window.dragFrom || '') + '->' + this.id"></div>
</body></html>`

// Set FOXBRIDGE_BROWSER_TESTS=1 with Playwright browsers installed to run.
func TestPlaywrightPage(t *testing.T) {
	if os.Getenv("FOXBRIDGE_BROWSER_TESTS") != "1" {
		t.Skip("set FOXBRIDGE_BROWSER_TESTS=1 to run browser tests")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, fixture)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := config.NewDefaultConfig()
	cfg.BrowserCfg.Engine = config.EnginePlaywright
	session, err := NewLauncher(cfg, zaptest.NewLogger(t)).Launch(ctx, schemas.SessionOptions{Locale: schemas.StringList{"fr-FR"}})
	require.NoError(t, err)
	defer session.Close()

	page, err := session.NewPage(ctx)
	require.NoError(t, err)
	require.NoError(t, page.Goto(ctx, srv.URL, schemas.LoadStateLoad))

	v, err := page.Evaluate(ctx, "navigator.language")
	require.NoError(t, err)
	assert.Equal(t, "fr-FR", v)

	v, err = page.Evaluate(ctx, "(a, b) => a + b", "x", "y")
	require.NoError(t, err)
	assert.Equal(t, "xy", v)

	require.NoError(t, page.Fill(ctx, "#name", "bob"))
	require.NoError(t, page.Click(ctx, "#go"))
	title, err := page.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "clicked", title)

	require.NoError(t, page.AddCookies(ctx, []schemas.Cookie{
		{Name: "a", Value: "1", URL: srv.URL},
		{Name: "b", Value: "2", URL: srv.URL},
	}))
	require.NoError(t, page.DeleteCookie(ctx, "a"))
	cookies, err := page.Cookies(ctx)
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "b", cookies[0].Name)

	t.Run("clear then get cookies is empty", func(t *testing.T) {
		require.NoError(t, page.ClearCookies(ctx))
		cookies, err := page.Cookies(ctx)
		require.NoError(t, err)
		assert.Empty(t, cookies)
	})

	t.Run("storage with bound arguments", func(t *testing.T) {
		const key = `it's "quoted"`
		for _, area := range []string{"localStorage", "sessionStorage"} {
			_, err := page.Evaluate(ctx, `(area, key, value) => { window[area].setItem(key, value); }`, area, key, "v'1")
			require.NoError(t, err, area)

			v, err := page.Evaluate(ctx, `(area, key) => window[area].getItem(key)`, area, key)
			require.NoError(t, err, area)
			assert.Equal(t, "v'1", v, area)

			_, err = page.Evaluate(ctx, `(area, key) => { window[area].removeItem(key); }`, area, key)
			require.NoError(t, err, area)
			v, err = page.Evaluate(ctx, `(area, key) => window[area].getItem(key)`, area, key)
			require.NoError(t, err, area)
			assert.Nil(t, v, area)

			_, err = page.Evaluate(ctx, `(area) => { window[area].setItem('x', '1'); window[area].clear(); }`, area)
			require.NoError(t, err, area)
			n, err := page.Evaluate(ctx, `(area) => window[area].length`, area)
			require.NoError(t, err, area)
			assert.EqualValues(t, 0, n, area)
		}
	})

	t.Run("drag and drop", func(t *testing.T) {
		require.NoError(t, page.DragAndDrop(ctx, "#src", "#dst"))
		v, err := page.Evaluate(ctx, "document.body.dataset.dropped")
		require.NoError(t, err)
		assert.Equal(t, "src->dst", v)
	})

	err = page.WaitForSelector(ctx, "#missing", 200*time.Millisecond)
	assert.ErrorContains(t, err, "timeout 200ms exceeded")
}
