// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"github.com/xkilldash9x/foxbridge/internal/browser"
	"github.com/xkilldash9x/foxbridge/internal/config"
	"github.com/xkilldash9x/foxbridge/internal/humanoid"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

var _ config.Interface = (*MockConfig)(nil)

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Browser() config.BrowserConfig {
	args := m.Called()
	return args.Get(0).(config.BrowserConfig)
}

func (m *MockConfig) Network() config.NetworkConfig {
	args := m.Called()
	return args.Get(0).(config.NetworkConfig)
}

func (m *MockConfig) Task() config.TaskConfig {
	args := m.Called()
	return args.Get(0).(config.TaskConfig)
}

func (m *MockConfig) SetBrowserEngine(engine string)   { m.Called(engine) }
func (m *MockConfig) SetBrowserHeadless(b bool)        { m.Called(b) }
func (m *MockConfig) SetBrowserHumanoidEnabled(b bool) { m.Called(b) }

// -- Browser Mocks --

// MockLauncher mocks browser.Launcher.
type MockLauncher struct {
	mock.Mock
}

var _ browser.Launcher = (*MockLauncher)(nil)

func (m *MockLauncher) Launch(ctx context.Context, opts schemas.SessionOptions) (browser.Session, error) {
	args := m.Called(ctx, opts)
	s, _ := args.Get(0).(browser.Session)
	return s, args.Error(1)
}

// MockSession mocks browser.Session.
type MockSession struct {
	mock.Mock
}

var _ browser.Session = (*MockSession)(nil)

func (m *MockSession) NewPage(ctx context.Context) (browser.Page, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(browser.Page)
	return p, args.Error(1)
}

func (m *MockSession) Close() error { return m.Called().Error(0) }

// MockPage mocks browser.Page. Tests set expectations only for the
// primitives the code under test touches.
type MockPage struct {
	mock.Mock
}

var _ browser.Page = (*MockPage)(nil)

func (m *MockPage) Goto(ctx context.Context, url string, waitUntil schemas.LoadState) error {
	return m.Called(ctx, url, waitUntil).Error(0)
}

func (m *MockPage) WaitForLoadState(ctx context.Context, state schemas.LoadState) error {
	return m.Called(ctx, state).Error(0)
}

func (m *MockPage) URL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPage) Title(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPage) Content(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPage) Screenshot(ctx context.Context, path string, fullPage bool) error {
	return m.Called(ctx, path, fullPage).Error(0)
}

func (m *MockPage) PDF(ctx context.Context, path string, opts schemas.PDFOptions) error {
	return m.Called(ctx, path, opts).Error(0)
}

func (m *MockPage) Click(ctx context.Context, selector string) error {
	return m.Called(ctx, selector).Error(0)
}

func (m *MockPage) Fill(ctx context.Context, selector, value string) error {
	return m.Called(ctx, selector, value).Error(0)
}

func (m *MockPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	return m.Called(ctx, selector, timeout).Error(0)
}

func (m *MockPage) Wait(ctx context.Context, d time.Duration) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockPage) PressKey(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockPage) TypeText(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

func (m *MockPage) MouseClick(ctx context.Context, x, y float64, button schemas.MouseButton) error {
	return m.Called(ctx, x, y, button).Error(0)
}

func (m *MockPage) MouseMove(ctx context.Context, x, y float64) error {
	return m.Called(ctx, x, y).Error(0)
}

func (m *MockPage) DragAndDrop(ctx context.Context, sourceSelector, targetSelector string) error {
	return m.Called(ctx, sourceSelector, targetSelector).Error(0)
}

func (m *MockPage) SetInputFiles(ctx context.Context, selector string, files ...string) error {
	return m.Called(ctx, selector, files).Error(0)
}

func (m *MockPage) Evaluate(ctx context.Context, script string, args ...interface{}) (interface{}, error) {
	ret := m.Called(ctx, script, args)
	return ret.Get(0), ret.Error(1)
}

func (m *MockPage) Cookies(ctx context.Context) ([]schemas.Cookie, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]schemas.Cookie)
	return c, args.Error(1)
}

func (m *MockPage) AddCookies(ctx context.Context, cookies []schemas.Cookie) error {
	return m.Called(ctx, cookies).Error(0)
}

func (m *MockPage) DeleteCookie(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockPage) ClearCookies(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPage) SetGeolocation(ctx context.Context, latitude, longitude, accuracy float64) error {
	return m.Called(ctx, latitude, longitude, accuracy).Error(0)
}

// --- humanoid.Executor ---

func (m *MockPage) Sleep(ctx context.Context, d time.Duration) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockPage) DispatchMouseEvent(ctx context.Context, data humanoid.MouseEventData) error {
	return m.Called(ctx, data).Error(0)
}

func (m *MockPage) SendKeys(ctx context.Context, keys string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *MockPage) GetElementGeometry(ctx context.Context, selector string) (*humanoid.ElementGeometry, error) {
	args := m.Called(ctx, selector)
	g, _ := args.Get(0).(*humanoid.ElementGeometry)
	return g, args.Error(1)
}
