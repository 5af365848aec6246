package config

import (
	"errors"
	"log/slog"
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
	if cfg.Hotkeys.Toggle != "Mod4-Mod1-r" || cfg.Renderer != RendererAuto || !cfg.WatchSettings {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	presets := cfg.PresetList()
	if len(presets) != 3 || presets[0].Name != "warm" || presets[2].Name != "cool" {
		t.Fatalf("PresetList() = %+v", presets)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" || res.Config.LogLevel != "info" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Renderer != RendererAuto {
		t.Fatalf("renderer = %q", res.Config.Renderer)
	}
}

func TestLoadFromPath_OverridesAndSources(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"log_level: debug",
		"renderer: software",
		"watch_settings: false",
		"hotkeys:",
		"  warm: Mod4-Mod1-w",
		"presets:",
		"  candle: 2500",
		"  daylight: 6000",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.SlogLevel() != slog.LevelDebug || !cfg.Software() || cfg.WatchSettings {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Hotkeys.Warm != "Mod4-Mod1-w" || cfg.Hotkeys.Toggle != "Mod4-Mod1-r" {
		t.Fatalf("hotkeys = %+v", cfg.Hotkeys)
	}
	if len(cfg.Presets) != 2 || cfg.Presets["candle"] != 2500 {
		t.Fatalf("presets = %+v", cfg.Presets)
	}

	src := res.Sources["hotkeys.warm"]
	if src.Kind != SourceFile || src.Line != 5 {
		t.Fatalf("hotkeys.warm source = %+v", src)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "renderr: auto\n"))
	if err == nil || !strings.Contains(err.Error(), "renderr") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, "log_level: info\nrenderer: opengl\n")
	_, err := LoadFromPath(path)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "renderer" || verr.Source.Line != 2 || verr.Source.Column != 11 {
		t.Fatalf("ValidationError = %+v", verr)
	}
	if !strings.Contains(err.Error(), ":2:11: renderer:") {
		t.Fatalf("error message lacks position: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "warning" }, path: "log_level"},
		{name: "renderer", mutate: func(c *Config) { c.Renderer = "" }, path: "renderer"},
		{name: "settings file", mutate: func(c *Config) { c.SettingsFile = " " }, path: "settings_file"},
		{name: "empty preset name", mutate: func(c *Config) { c.Presets[""] = 4000 }, path: "presets"},
		{name: "preset too cold", mutate: func(c *Config) { c.Presets["ice"] = 9000 }, path: "presets.ice"},
		{name: "duplicate hotkey", mutate: func(c *Config) { c.Hotkeys.Dimmer = "mod4-mod1-R" }, path: "hotkeys.dimmer"},
		{name: "negative resync", mutate: func(c *Config) { c.ResyncInterval = -time.Second }, path: "resync_interval"},
		{name: "menu backend", mutate: func(c *Config) { c.MenuBackend = "wofi" }, path: "menu_backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("Validate() = %v, want path %q", err, tt.path)
			}
		})
	}
}

func TestEmptyPresetsRejected(t *testing.T) {
	if _, err := LoadFromPath(writeConfig(t, "presets: {}\n")); err == nil {
		t.Fatalf("expected empty presets to fail")
	}
}

func TestExplain(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "presets:\n  studio: 5600\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	value, src, err := Explain(res, "presets.studio")
	if err != nil || value != 5600.0 || src.Kind != SourceFile {
		t.Fatalf("Explain(presets.studio) = %v, %+v, %v", value, src, err)
	}

	value, src, err = Explain(res, "hotkeys.toggle")
	if err != nil || value != "Mod4-Mod1-r" || src.Kind != SourceDefault {
		t.Fatalf("Explain(hotkeys.toggle) = %v, %+v, %v", value, src, err)
	}

	for _, bad := range []string{"", "renderer.x", "hotkeys.nope", "presets.warm", "colour"} {
		if _, _, err := Explain(res, bad); err == nil {
			t.Fatalf("Explain(%q) should fail", bad)
		}
	}
}

func TestSettingsPathExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := DefaultConfig().SettingsPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".config", "ringlight", "settings.yaml"); got != want {
		t.Fatalf("SettingsPath() = %q, want %q", got, want)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}
	if err := WriteDefault(path, false); err == nil {
		t.Fatalf("second WriteDefault() without force should fail")
	}
	if err := WriteDefault(path, true); err != nil {
		t.Fatalf("WriteDefault(force) error: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("written defaults do not load: %v", err)
	}
	if res.Config.Hotkeys.Toggle != "Mod4-Mod1-r" || len(res.Config.Presets) != 3 {
		t.Fatalf("round-tripped config = %+v", res.Config)
	}
}

func TestLoadFromPath_ResyncAndMenu(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "resync_interval: 1m30s\nmenu_backend: rofi\nhotkeys:\n  menu: Mod4-Mod1-m\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.ResyncInterval != 90*time.Second || cfg.MenuBackend != "rofi" || cfg.Hotkeys.Menu != "Mod4-Mod1-m" {
		t.Fatalf("config = %+v", cfg)
	}

	value, _, err := Explain(res, "resync_interval")
	if err != nil || value != "1m30s" {
		t.Fatalf("Explain(resync_interval) = %v, %v", value, err)
	}

	res, err = LoadFromPath(writeConfig(t, "resync_interval: 0s\n"))
	if err != nil || res.Config.ResyncInterval != 0 {
		t.Fatalf("zero resync should disable, got %v, %v", res, err)
	}
}
