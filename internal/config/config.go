// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface is the read side of the configuration handed to the executor and
// the engines, plus the few overrides the CLI flags apply.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Network() NetworkConfig
	Task() TaskConfig

	SetBrowserEngine(engine string)
	SetBrowserHeadless(bool)
	SetBrowserHumanoidEnabled(bool)
}

// Supported browser engines.
const (
	EngineCDP        = "cdp"
	EnginePlaywright = "playwright"
)

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	BrowserCfg BrowserConfig `mapstructure:"browser" yaml:"browser"`
	NetworkCfg NetworkConfig `mapstructure:"network" yaml:"network"`
	TaskCfg    TaskConfig    `mapstructure:"task" yaml:"task"`
}

var _ Interface = (*Config)(nil)

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }
func (c *Config) Network() NetworkConfig { return c.NetworkCfg }
func (c *Config) Task() TaskConfig       { return c.TaskCfg }

func (c *Config) SetBrowserEngine(engine string)   { c.BrowserCfg.Engine = engine }
func (c *Config) SetBrowserHeadless(b bool)        { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserHumanoidEnabled(b bool) { c.BrowserCfg.Humanoid.Enabled = b }

// LoggerConfig configures the stderr console sink and the optional rotated log file.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the console color of each level (red, green, yellow, ...).
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ViewportConfig is the default window size for new pages.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// BrowserConfig holds settings for the browser launched per task.
type BrowserConfig struct {
	// Engine selects the driver: "cdp" (chromedp) or "playwright".
	Engine string `mapstructure:"engine" yaml:"engine"`
	// PWBrowser is the playwright browser type: firefox, chromium or webkit.
	PWBrowser       string         `mapstructure:"pw_browser" yaml:"pw_browser"`
	ExecutablePath  string         `mapstructure:"executable_path" yaml:"executable_path"`
	Install         bool           `mapstructure:"install" yaml:"install"`
	Headless        bool           `mapstructure:"headless" yaml:"headless"`
	DisableGPU      bool           `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	IgnoreTLSErrors bool           `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Args            []string       `mapstructure:"args" yaml:"args"`
	LaunchTimeout   time.Duration  `mapstructure:"launch_timeout" yaml:"launch_timeout"`
	Viewport        ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	Humanoid        HumanoidConfig `mapstructure:"humanoid" yaml:"humanoid"`
}

// NetworkConfig tunes page loading.
type NetworkConfig struct {
	NavigationTimeout time.Duration     `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	Headers           map[string]string `mapstructure:"headers" yaml:"headers"`
}

// TaskConfig holds per-invocation defaults.
type TaskConfig struct {
	// Timeout bounds a whole task. Zero disables the deadline.
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ScreenshotPath string        `mapstructure:"screenshot_path" yaml:"screenshot_path"`
	PDFPath        string        `mapstructure:"pdf_path" yaml:"pdf_path"`
}

// NewDefaultConfig returns the configuration used when no file or
// environment overrides exist. It panics if the defaults themselves are
// malformed.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("config: defaults rejected: %v", err))
	}
	return cfg
}

// SetDefaults registers every setting's default on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	// stdout carries the result envelope, so the console sink is kept quiet by default.
	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "foxbridge")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.engine", EngineCDP)
	v.SetDefault("browser.pw_browser", "firefox")
	v.SetDefault("browser.executable_path", "")
	v.SetDefault("browser.install", false)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.launch_timeout", "60s")
	v.SetDefault("browser.viewport.width", 1920)
	v.SetDefault("browser.viewport.height", 1080)
	setHumanoidDefaults(v)

	// -- Network --
	v.SetDefault("network.navigation_timeout", "90s")

	// -- Task --
	v.SetDefault("task.timeout", "0s")
	v.SetDefault("task.screenshot_path", "/tmp/screenshot.png")
	v.SetDefault("task.pdf_path", "/tmp/output.pdf")
}

// NewConfigFromViper decodes v, expands "~" in paths and validates the result.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// expandPaths resolves a leading "~" in every path-valued setting.
func (c *Config) expandPaths() error {
	paths := []*string{
		&c.LoggerCfg.LogFile,
		&c.BrowserCfg.ExecutablePath,
		&c.TaskCfg.ScreenshotPath,
		&c.TaskCfg.PDFPath,
	}
	for _, p := range paths {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	if err := c.BrowserCfg.Validate(); err != nil {
		return fmt.Errorf("browser configuration invalid: %w", err)
	}
	if c.NetworkCfg.NavigationTimeout <= 0 {
		return fmt.Errorf("network.navigation_timeout must be a positive duration")
	}
	if c.TaskCfg.Timeout < 0 {
		return fmt.Errorf("task.timeout must not be negative")
	}
	return nil
}

// Validate checks the BrowserConfig settings.
func (b *BrowserConfig) Validate() error {
	switch b.Engine {
	case EngineCDP, EnginePlaywright:
	default:
		return fmt.Errorf("engine must be %q or %q, got %q", EngineCDP, EnginePlaywright, b.Engine)
	}
	switch b.PWBrowser {
	case "firefox", "chromium", "webkit":
	default:
		return fmt.Errorf("pw_browser must be firefox, chromium or webkit, got %q", b.PWBrowser)
	}
	if b.LaunchTimeout <= 0 {
		return fmt.Errorf("launch_timeout must be a positive duration")
	}
	if b.Viewport.Width < 0 || b.Viewport.Height < 0 {
		return fmt.Errorf("viewport dimensions must not be negative")
	}
	if err := b.Humanoid.Validate(); err != nil {
		return fmt.Errorf("humanoid: %w", err)
	}
	return nil
}
