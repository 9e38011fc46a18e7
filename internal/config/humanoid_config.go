// File: internal/config/humanoid_config.go
// This file defines the HumanoidConfig struct, the tunable parameters for the
// humanoid interaction simulation: mouse movement physics, click hold times and
// typing cadence. Settings are loaded through viper like every other section.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// HumanoidConfig controls human-like input simulation.
type HumanoidConfig struct {
	// Enabled forces humanized input for every task, regardless of the task's
	// own "humanize" parameter.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Fitts's law coefficients (milliseconds): MT = A + B * log2(1 + D/W).
	FittsA float64 `mapstructure:"fitts_a" yaml:"fitts_a"`
	FittsB float64 `mapstructure:"fitts_b" yaml:"fitts_b"`

	// MaxMovementDuration caps a single cursor trajectory. Zero means uncapped.
	MaxMovementDuration time.Duration `mapstructure:"max_movement_duration" yaml:"max_movement_duration"`

	// GaussianStrength is the per-step cursor jitter in pixels.
	GaussianStrength float64 `mapstructure:"gaussian_strength" yaml:"gaussian_strength"`

	ClickHoldMinMs int `mapstructure:"click_hold_min_ms" yaml:"click_hold_min_ms"`
	ClickHoldMaxMs int `mapstructure:"click_hold_max_ms" yaml:"click_hold_max_ms"`

	KeyHoldMeanMs    float64 `mapstructure:"key_hold_mean_ms" yaml:"key_hold_mean_ms"`
	KeyHoldStdDevMs  float64 `mapstructure:"key_hold_std_dev_ms" yaml:"key_hold_std_dev_ms"`
	InterKeyMeanMs   float64 `mapstructure:"inter_key_mean_ms" yaml:"inter_key_mean_ms"`
	InterKeyStdDevMs float64 `mapstructure:"inter_key_std_dev_ms" yaml:"inter_key_std_dev_ms"`

	// EventsPerSecond bounds the rate at which input events reach the browser.
	EventsPerSecond float64 `mapstructure:"events_per_second" yaml:"events_per_second"`
}

// setHumanoidDefaults registers the humanoid defaults on a viper instance.
func setHumanoidDefaults(v *viper.Viper) {
	v.SetDefault("browser.humanoid.enabled", false)
	v.SetDefault("browser.humanoid.fitts_a", 80.0)
	v.SetDefault("browser.humanoid.fitts_b", 120.0)
	v.SetDefault("browser.humanoid.max_movement_duration", "1500ms")
	v.SetDefault("browser.humanoid.gaussian_strength", 0.6)
	v.SetDefault("browser.humanoid.click_hold_min_ms", 50)
	v.SetDefault("browser.humanoid.click_hold_max_ms", 140)
	v.SetDefault("browser.humanoid.key_hold_mean_ms", 70.0)
	v.SetDefault("browser.humanoid.key_hold_std_dev_ms", 20.0)
	v.SetDefault("browser.humanoid.inter_key_mean_ms", 110.0)
	v.SetDefault("browser.humanoid.inter_key_std_dev_ms", 40.0)
	v.SetDefault("browser.humanoid.events_per_second", 250.0)
}

// DefaultHumanoidConfig returns the humanoid settings registered by SetDefaults.
func DefaultHumanoidConfig() HumanoidConfig {
	return NewDefaultConfig().BrowserCfg.Humanoid
}

// Validate checks the humanoid settings.
func (h *HumanoidConfig) Validate() error {
	if h.FittsA < 0 || h.FittsB < 0 {
		return fmt.Errorf("fitts_a and fitts_b must not be negative")
	}
	if h.ClickHoldMinMs < 0 || h.ClickHoldMaxMs < h.ClickHoldMinMs {
		return fmt.Errorf("click_hold_min_ms must be >= 0 and <= click_hold_max_ms")
	}
	if h.KeyHoldMeanMs < 0 || h.InterKeyMeanMs < 0 {
		return fmt.Errorf("key timing means must not be negative")
	}
	if h.EventsPerSecond <= 0 {
		return fmt.Errorf("events_per_second must be positive")
	}
	if h.MaxMovementDuration < 0 {
		return fmt.Errorf("max_movement_duration must not be negative")
	}
	return nil
}
