// File: internal/config/config_test.go
package config

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "warn", cfg.Logger().Level)
	assert.Equal(t, "foxbridge", cfg.Logger().ServiceName)
	assert.Empty(t, cfg.Logger().LogFile, "no log file by default")
	assert.Equal(t, EngineCDP, cfg.Browser().Engine)
	assert.Equal(t, "firefox", cfg.Browser().PWBrowser)
	assert.True(t, cfg.Browser().Headless)
	assert.Equal(t, 60*time.Second, cfg.Browser().LaunchTimeout)
	assert.Equal(t, ViewportConfig{Width: 1920, Height: 1080}, cfg.Browser().Viewport)
	assert.Equal(t, 90*time.Second, cfg.Network().NavigationTimeout)
	assert.Zero(t, cfg.Task().Timeout, "the task deadline is disabled by default")
	assert.Equal(t, "/tmp/screenshot.png", cfg.Task().ScreenshotPath)
	assert.Equal(t, "/tmp/output.pdf", cfg.Task().PDFPath)

	h := cfg.Browser().Humanoid
	assert.False(t, h.Enabled)
	assert.Equal(t, 1500*time.Millisecond, h.MaxMovementDuration)
	assert.Equal(t, 250.0, h.EventsPerSecond)
	require.NoError(t, cfg.Validate())
}

func TestSetters(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetBrowserEngine(EnginePlaywright)
	cfg.SetBrowserHeadless(false)
	cfg.SetBrowserHumanoidEnabled(true)

	assert.Equal(t, EnginePlaywright, cfg.Browser().Engine)
	assert.False(t, cfg.Browser().Headless)
	assert.True(t, cfg.Browser().Humanoid.Enabled)
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("Core Validation", func(t *testing.T) {
		cfg := NewDefaultConfig()
		assert.NoError(t, cfg.Validate(), "A valid config should not produce a validation error")

		badNav := *cfg
		badNav.NetworkCfg.NavigationTimeout = 0
		err := badNav.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "network.navigation_timeout must be a positive duration")

		badTask := *cfg
		badTask.TaskCfg.Timeout = -time.Second
		err = badTask.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "task.timeout must not be negative")
	})

	t.Run("Browser Validation", func(t *testing.T) {
		valid := NewDefaultConfig().BrowserCfg

		badEngine := valid
		badEngine.Engine = "selenium"
		err := badEngine.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `got "selenium"`)

		badPW := valid
		badPW.PWBrowser = "opera"
		err = badPW.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pw_browser must be firefox, chromium or webkit")

		badLaunch := valid
		badLaunch.LaunchTimeout = 0
		assert.Error(t, badLaunch.Validate())

		badViewport := valid
		badViewport.Viewport.Width = -1
		assert.Error(t, badViewport.Validate())
	})

	t.Run("Humanoid Validation", func(t *testing.T) {
		valid := DefaultHumanoidConfig()
		assert.NoError(t, valid.Validate())

		inverted := valid
		inverted.ClickHoldMinMs = 200
		inverted.ClickHoldMaxMs = 100
		err := inverted.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "click_hold_min_ms")

		noRate := valid
		noRate.EventsPerSecond = 0
		err = noRate.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "events_per_second must be positive")

		negativeFitts := valid
		negativeFitts.FittsB = -1
		assert.Error(t, negativeFitts.Validate())
	})
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
logger:
  level: debug
browser:
  engine: playwright
  pw_browser: chromium
  args: ["--lang=de-DE", "mute-audio"]
network:
  navigation_timeout: 15s
  headers:
    X-Trace: abc
task:
  timeout: 2m
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.Logger().Level)
		assert.Equal(t, EnginePlaywright, cfg.Browser().Engine)
		assert.Equal(t, "chromium", cfg.Browser().PWBrowser)
		assert.Equal(t, []string{"--lang=de-DE", "mute-audio"}, cfg.Browser().Args)
		assert.Equal(t, 15*time.Second, cfg.Network().NavigationTimeout)
		assert.Equal(t, "abc", cfg.Network().Headers["x-trace"], "viper lowercases map keys")
		assert.Equal(t, 2*time.Minute, cfg.Task().Timeout)
		// Defaults still apply for everything not in the file.
		assert.True(t, cfg.Browser().Headless)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("browser.engine", "bogus")

		cfg, err := NewConfigFromViper(v)
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "browser configuration invalid")
	})

	t.Run("Home Directory Expansion", func(t *testing.T) {
		home, err := homedir.Dir()
		if err != nil {
			t.Skipf("no home directory available: %v", err)
		}

		v := viper.New()
		SetDefaults(v)
		v.Set("task.screenshot_path", "~/shots/page.png")
		v.Set("logger.log_file", "~/foxbridge.log")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "shots", "page.png"), cfg.Task().ScreenshotPath)
		assert.Equal(t, filepath.Join(home, "foxbridge.log"), cfg.Logger().LogFile)
	})
}
