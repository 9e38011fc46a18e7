package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"github.com/xkilldash9x/foxbridge/internal/browser"
	"github.com/xkilldash9x/foxbridge/internal/config"
	"github.com/xkilldash9x/foxbridge/internal/mocks"
	"github.com/xkilldash9x/foxbridge/internal/observability"
)

// stubLauncher swaps the engine for launcher and records the configuration
// it was built with.
func stubLauncher(t *testing.T, launcher browser.Launcher) *config.Interface {
	t.Helper()
	var seen config.Interface
	orig := newLauncher
	newLauncher = func(cfg config.Interface, _ *zap.Logger) (browser.Launcher, error) {
		seen = cfg
		return launcher, nil
	}
	t.Cleanup(func() { newLauncher = orig })
	return &seen
}

// runCLI executes a fresh command tree in an empty directory so no stray
// foxbridge.yaml is picked up.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeEnvelope(t *testing.T, out string) schemas.Envelope {
	t.Helper()
	var env schemas.Envelope
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &env), out)
	return env
}

func exitCodeOf(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if err != nil {
		return -1
	}
	return 0
}

func TestRoot_NoTask(t *testing.T) {
	out, err := runCLI(t)
	assert.Equal(t, 1, exitCodeOf(err))
	assert.JSONEq(t, `{"success":false,"error":"No task data provided"}`, out)
}

func TestRoot_InvalidJSON(t *testing.T) {
	out, err := runCLI(t, `{"action":`)
	assert.Equal(t, 1, exitCodeOf(err))
	env := decodeEnvelope(t, out)
	assert.False(t, env.Success)
	assert.True(t, strings.HasPrefix(env.Error, "Invalid JSON: "), env.Error)
}

func TestRoot_InTaskFailuresExitZero(t *testing.T) {
	launcher := new(mocks.MockLauncher)
	stubLauncher(t, launcher)

	tests := []struct {
		task    string
		message string
	}{
		{`["navigate"]`, "Unknown action: "},
		{`{"action":"teleport"}`, "Unknown action: teleport"},
		{`{"action":"navigate","parameters":{}}`, "URL is required for navigate action"},
		{`{"action":"mouse_move","parameters":{"x":1}}`, "x and y coordinates are required"},
	}
	for _, tt := range tests {
		out, err := runCLI(t, tt.task)
		require.NoError(t, err, tt.task)
		assert.JSONEq(t, `{"success":false,"error":"`+tt.message+`"}`, out)
	}
	// Invalid tasks never start a browser.
	launcher.AssertNotCalled(t, "Launch", mock.Anything, mock.Anything)
}

func TestRoot_RunsTask(t *testing.T) {
	launcher := new(mocks.MockLauncher)
	session := new(mocks.MockSession)
	page := new(mocks.MockPage)
	launcher.On("Launch", mock.Anything, mock.Anything).Return(session, nil)
	session.On("NewPage", mock.Anything).Return(page, nil)
	session.On("Close").Return(nil).Once()
	page.On("ClearCookies", mock.Anything).Return(nil)
	page.On("Cookies", mock.Anything).Return([]schemas.Cookie{}, nil)
	stubLauncher(t, launcher)

	out, err := runCLI(t, `{"action":"clear_cookies"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"result":{"success":true}}`, out)

	session.On("Close").Return(nil).Once()
	out, err = runCLI(t, `{"action":"get_cookies"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"result":{"cookies":[]}}`, out)

	session.AssertExpectations(t)
}

func TestRoot_RuntimeFailureExitsZero(t *testing.T) {
	launcher := new(mocks.MockLauncher)
	launcher.On("Launch", mock.Anything, mock.Anything).Return(nil, errors.New("failed to launch browser: exec: \"chrome\": not found"))
	stubLauncher(t, launcher)

	out, err := runCLI(t, `{"action":"clear_cookies"}`)
	require.NoError(t, err)
	env := decodeEnvelope(t, out)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "failed to launch browser")
}

func TestRoot_ConfigSources(t *testing.T) {
	launcher := new(mocks.MockLauncher)
	launcher.On("Launch", mock.Anything, mock.Anything).Return(nil, errors.New("stop"))
	seen := stubLauncher(t, launcher)

	t.Run("engine flag", func(t *testing.T) {
		_, err := runCLI(t, "--engine", "playwright", `{"action":"clear_cookies"}`)
		require.NoError(t, err)
		require.NotNil(t, *seen)
		assert.Equal(t, config.EnginePlaywright, (*seen).Browser().Engine)
	})

	t.Run("unknown engine", func(t *testing.T) {
		_, err := runCLI(t, "--engine", "servo", `{"action":"clear_cookies"}`)
		require.Error(t, err)
		assert.Equal(t, -1, exitCodeOf(err))
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("FOXBRIDGE_TASK_PDF_PATH", "/srv/out.pdf")
		_, err := runCLI(t, `{"action":"clear_cookies"}`)
		require.NoError(t, err)
		assert.Equal(t, "/srv/out.pdf", (*seen).Task().PDFPath)
	})

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fb.yaml")
		require.NoError(t, os.WriteFile(path, []byte("task:\n  screenshot_path: /srv/shot.png\nbrowser:\n  pw_browser: chromium\n"), 0o600))
		_, err := runCLI(t, "--config", path, `{"action":"clear_cookies"}`)
		require.NoError(t, err)
		assert.Equal(t, "/srv/shot.png", (*seen).Task().ScreenshotPath)
		assert.Equal(t, "chromium", (*seen).Browser().PWBrowser)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := runCLI(t, "--config", "/nonexistent/fb.yaml", `{"action":"clear_cookies"}`)
		assert.Error(t, err)
	})
}

func TestActionsCommand(t *testing.T) {
	out, err := runCLI(t, "actions")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 24)
	assert.Equal(t, "navigate", lines[0])
	assert.Equal(t, "upload_file", lines[23])
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "foxbridge "+Version+"\n", out)

	out, err = runCLI(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestRoot_TooManyArgs(t *testing.T) {
	_, err := runCLI(t, `{"action":"clear_cookies"}`, "extra")
	assert.Error(t, err)
}
