package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.ScrollSpeed != 22 || cfg.LocateAttempts != 3 || cfg.LocateInterval != time.Second || !cfg.RefocusHost {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" || res.Config.HelperURL != "http://127.0.0.1:60316" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.SplitPercent != 50 {
		t.Fatalf("expected split_percent 50, got %d", res.Config.SplitPercent)
	}
}

func TestLoadFromPath_OverridesOnlyGivenKeys(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"reader_app: Skim",
		"locate_interval: 500ms",
		"reverse_scroll: true",
		"refocus_host: false",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.ReaderApp != "Skim" || cfg.LocateInterval != 500*time.Millisecond || !cfg.ReverseScroll || cfg.RefocusHost {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ScrollSpeed != 22 {
		t.Fatalf("scroll_speed default lost: %d", cfg.ScrollSpeed)
	}
	if src := res.Sources["reader_app"]; src.Kind != SourceFile || src.Line != 1 {
		t.Fatalf("reader_app source = %+v", src)
	}
}

func TestLoadFromPath_UnknownKeyFails(t *testing.T) {
	path := writeConfig(t, "scrol_speed: 10\n")
	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatal("expected unknown key to fail")
	}
	if !strings.Contains(err.Error(), "config.yaml") {
		t.Fatalf("error should name the file: %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasPosition(t *testing.T) {
	path := writeConfig(t, "reader_app: Preview\nsplit_percent: 99\n")
	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), ":2:") || !strings.Contains(err.Error(), "split_percent") {
		t.Fatalf("error should point at line 2: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"helper url scheme", func(c *Config) { c.HelperURL = "ftp://x" }},
		{"helper url empty", func(c *Config) { c.HelperURL = "" }},
		{"scroll speed", func(c *Config) { c.ScrollSpeed = 0 }},
		{"attempts", func(c *Config) { c.LocateAttempts = 0 }},
		{"interval", func(c *Config) { c.LocateInterval = 0 }},
		{"host side", func(c *Config) { c.HostSide = "top" }},
		{"scale", func(c *Config) { c.ScaleFactorOverride = 9 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"same hotkeys", func(c *Config) { c.ScrollUpHotkey, c.ScrollDownHotkey = "Mod4-k", "Mod4-k" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Validate() accepted invalid config")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.ReaderApp = "Preview"
	cfg.LocateInterval = 750 * time.Millisecond
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.ReaderApp != "Preview" || res.Config.LocateInterval != 750*time.Millisecond {
		t.Fatalf("round trip lost values: %+v", res.Config)
	}
}

func TestExplain(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "scroll_speed: 40\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	v, src, err := Explain(res, "scroll_speed")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if v != 40 || src.Kind != SourceFile {
		t.Fatalf("scroll_speed = %v from %+v", v, src)
	}

	_, src, err = Explain(res, "host_side")
	if err != nil || src.Kind != SourceDefault {
		t.Fatalf("host_side source = %+v, %v", src, err)
	}

	if _, _, err := Explain(res, "nope"); err == nil {
		t.Fatal("Explain accepted unknown key")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	if len(keys) != 17 {
		t.Fatalf("Keys() = %v", keys)
	}
	if keys[0] != "capture_dir" {
		t.Fatalf("keys not sorted: %v", keys)
	}
}

func TestGetCaptureDir(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.GetCaptureDir() == "" {
		t.Fatal("default capture dir is empty")
	}
	cfg.CaptureDir = "/tmp/shots"
	if cfg.GetCaptureDir() != "/tmp/shots" {
		t.Fatalf("GetCaptureDir() = %q", cfg.GetCaptureDir())
	}
}
