package browser_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"github.com/xkilldash9x/foxbridge/internal/browser"
	"github.com/xkilldash9x/foxbridge/internal/config"
	"github.com/xkilldash9x/foxbridge/internal/task"
)

const e2ePage = `<!DOCTYPE html>
<html><head><title>E2E</title></head><body>
<div id="src" style="width:60px;height:60px" onmousedown="window.dragFrom = this.id"></div>
<div id="dst" style="width:60px;height:60px;margin-top:20px"
     onmouseup="document.body.dataset.dropped = (window.dragFrom || '') + '->' + this.id"></div>
</body></html>`

// sharedLauncher hands every task the same page so state written by one
// task is visible to the next.
type sharedLauncher struct {
	inner browser.Launcher

	mu      sync.Mutex
	session browser.Session
	page    browser.Page
}

func (l *sharedLauncher) Launch(ctx context.Context, opts schemas.SessionOptions) (browser.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.session == nil {
		s, err := l.inner.Launch(ctx, opts)
		if err != nil {
			return nil, err
		}
		p, err := s.NewPage(ctx)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		l.session, l.page = s, p
	}
	return l, nil
}

func (l *sharedLauncher) NewPage(context.Context) (browser.Page, error) { return l.page, nil }

// Close is a no-op; the test closes the real session.
func (l *sharedLauncher) Close() error { return nil }

func (l *sharedLauncher) shutdown() {
	if l.session != nil {
		_ = l.session.Close()
	}
}

func TestExecutorAgainstEngines(t *testing.T) {
	if os.Getenv("FOXBRIDGE_BROWSER_TESTS") != "1" {
		t.Skip("set FOXBRIDGE_BROWSER_TESTS=1 to run browser tests")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, e2ePage)
	}))
	defer srv.Close()

	for _, engine := range []string{config.EngineCDP, config.EnginePlaywright} {
		t.Run(engine, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			cfg.SetBrowserEngine(engine)
			inner, err := browser.New(cfg, zaptest.NewLogger(t))
			require.NoError(t, err)
			launcher := &sharedLauncher{inner: inner}
			defer launcher.shutdown()
			exec := task.NewExecutor(launcher, cfg, zaptest.NewLogger(t))

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			run := func(action string, params map[string]interface{}) schemas.Envelope {
				t.Helper()
				raw, err := json.Marshal(map[string]interface{}{"action": action, "parameters": params})
				require.NoError(t, err)
				tk, err := task.Decode(raw)
				require.NoError(t, err)
				env := exec.Execute(ctx, tk)
				require.True(t, env.Success, "%s: %s", action, env.Error)
				return env
			}

			const key = `it's "quoted"`
			run("set_storage", map[string]interface{}{"url": srv.URL, "storage_key": key, "storage_value": "v'1"})
			assert.Equal(t, "v'1", run("get_storage", map[string]interface{}{"storage_key": key}).Result["value"])
			assert.Equal(t, map[string]interface{}{key: "v'1"}, run("get_storage", nil).Result["items"])

			run("delete_storage", map[string]interface{}{"storage_key": key})
			assert.Nil(t, run("get_storage", map[string]interface{}{"storage_key": key}).Result["value"])

			run("set_storage", map[string]interface{}{"storage_type": "sessionStorage", "storage_key": "k", "storage_value": 5})
			assert.Equal(t, "5", run("get_storage", map[string]interface{}{"storage_type": "sessionStorage", "storage_key": "k"}).Result["value"])
			run("clear_storage", map[string]interface{}{"storage_type": "sessionStorage"})
			assert.Equal(t, map[string]interface{}{}, run("get_storage", map[string]interface{}{"storage_type": "sessionStorage"}).Result["items"])

			run("set_cookies", map[string]interface{}{"cookies": []map[string]interface{}{{"name": "a", "value": "1", "url": srv.URL}}})
			run("clear_cookies", nil)
			assert.Equal(t, []schemas.Cookie{}, run("get_cookies", nil).Result["cookies"])

			run("drag_and_drop", map[string]interface{}{"source_selector": "#src", "target_selector": "#dst"})
			assert.Equal(t, "src->dst", run("evaluate", map[string]interface{}{"script": "document.body.dataset.dropped"}).Result["result"])
		})
	}
}
