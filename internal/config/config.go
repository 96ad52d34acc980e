package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/readsplit/internal/runtimepath"
)

// Config holds all readsplit settings.
type Config struct {
	// ReaderApp opens and shows documents. Empty asks the OS for the
	// document's default application.
	ReaderApp string `yaml:"reader_app"`
	// HostApp is the application arranged next to the reader. Empty uses
	// whichever application is frontmost when arrange starts.
	HostApp string `yaml:"host_app"`

	HelperURL     string        `yaml:"helper_url"`
	HelperTimeout time.Duration `yaml:"helper_timeout"`

	ScrollSpeed   int  `yaml:"scroll_speed"`
	ReverseScroll bool `yaml:"reverse_scroll"`
	// Global key sequences (xgbutil syntax, e.g. "Mod4-Shift-j") the daemon
	// grabs on X11 to scroll the reader. Empty disables.
	ScrollUpHotkey   string `yaml:"scroll_up_hotkey"`
	ScrollDownHotkey string `yaml:"scroll_down_hotkey"`

	LocateAttempts int           `yaml:"locate_attempts"`
	LocateInterval time.Duration `yaml:"locate_interval"`

	SplitPercent int    `yaml:"split_percent"`
	HostSide     string `yaml:"host_side"`
	RefocusHost  bool   `yaml:"refocus_host"`

	CaptureDir string `yaml:"capture_dir"`

	// ScaleFactorOverride is the scale reported for X11 displays, which have
	// no per-monitor scale of their own. Zero means 1.
	ScaleFactorOverride float64 `yaml:"scale_factor_override"`
	OsascriptPath       string  `yaml:"osascript_path"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		HelperURL:      "http://127.0.0.1:60316",
		HelperTimeout:  2 * time.Second,
		ScrollSpeed:    22,
		LocateAttempts: 3,
		LocateInterval: time.Second,
		SplitPercent:   50,
		HostSide:       "left",
		RefocusHost:    true,
		LogLevel:       "info",
	}
}

// GetCaptureDir returns the screenshot directory with defaults applied.
func (c *Config) GetCaptureDir() string {
	if c == nil || c.CaptureDir == "" {
		return runtimepath.CaptureDir()
	}
	if strings.HasPrefix(c.CaptureDir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, c.CaptureDir[2:])
		}
	}
	return c.CaptureDir
}

// GetScale returns the X11 display scale.
func (c *Config) GetScale() float64 {
	if c == nil || c.ScaleFactorOverride <= 0 {
		return 1
	}
	return c.ScaleFactorOverride
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	if c == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Save writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments
// from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	u, err := url.Parse(c.HelperURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("helper_url must be an http(s) URL, got %q", c.HelperURL)
	}
	if c.HelperTimeout <= 0 {
		return fmt.Errorf("helper_timeout must be positive, got %s", c.HelperTimeout)
	}
	if c.ScrollSpeed < 1 || c.ScrollSpeed > 500 {
		return fmt.Errorf("scroll_speed must be between 1 and 500, got %d", c.ScrollSpeed)
	}
	if c.LocateAttempts < 1 || c.LocateAttempts > 20 {
		return fmt.Errorf("locate_attempts must be between 1 and 20, got %d", c.LocateAttempts)
	}
	if c.LocateInterval <= 0 || c.LocateInterval > 10*time.Second {
		return fmt.Errorf("locate_interval must be in (0, 10s], got %s", c.LocateInterval)
	}
	if c.SplitPercent < 10 || c.SplitPercent > 90 {
		return fmt.Errorf("split_percent must be between 10 and 90, got %d", c.SplitPercent)
	}
	switch c.HostSide {
	case "left", "right":
	default:
		return fmt.Errorf("host_side must be \"left\" or \"right\", got %q", c.HostSide)
	}
	if c.ScaleFactorOverride != 0 && (c.ScaleFactorOverride < 0.5 || c.ScaleFactorOverride > 4) {
		return fmt.Errorf("scale_factor_override must be 0 or between 0.5 and 4, got %g", c.ScaleFactorOverride)
	}
	if c.ScrollUpHotkey != "" && c.ScrollUpHotkey == c.ScrollDownHotkey {
		return fmt.Errorf("scroll_down_hotkey must differ from scroll_up_hotkey, both are %q", c.ScrollUpHotkey)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}
