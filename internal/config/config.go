package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/1broseidon/ringlight/internal/light"
	"gopkg.in/yaml.v3"
)

// Renderer selection values.
const (
	RendererAuto     = "auto"
	RendererSoftware = "software"
)

// DefaultResyncInterval is how often the daemon re-reads the display
// topology in case a change notification was missed.
const DefaultResyncInterval = 30 * time.Second

// MenuBackends lists the accepted menu_backend values.
var MenuBackends = []string{"auto", "rofi", "fuzzel", "dmenu"}

// Hotkeys are global key sequences in xgbutil keybind syntax. Empty
// sequences are not bound.
type Hotkeys struct {
	Toggle   string `yaml:"toggle"`
	Warm     string `yaml:"warm"`
	Neutral  string `yaml:"neutral"`
	Cool     string `yaml:"cool"`
	Brighter string `yaml:"brighter"`
	Dimmer   string `yaml:"dimmer"`
	// Menu opens the quick menu.
	Menu string `yaml:"menu"`
}

// Config is the daemon configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`
	// Renderer is "auto" (XRender when available) or "software".
	Renderer string `yaml:"renderer"`
	// Display overrides $DISPLAY when set.
	Display string `yaml:"display,omitempty"`
	// SettingsFile holds the persisted ring-light parameters.
	SettingsFile  string `yaml:"settings_file"`
	WatchSettings bool   `yaml:"watch_settings"`
	// ResyncInterval re-reads the display topology periodically. Zero
	// disables it.
	ResyncInterval time.Duration      `yaml:"resync_interval"`
	MenuBackend    string             `yaml:"menu_backend"`
	Hotkeys        Hotkeys            `yaml:"hotkeys"`
	Presets        map[string]float64 `yaml:"presets"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	presets := make(map[string]float64)
	for _, p := range light.DefaultPresets() {
		presets[p.Name] = p.Kelvin
	}
	return &Config{
		LogLevel:       "info",
		Renderer:       RendererAuto,
		SettingsFile:   "~/.config/ringlight/settings.yaml",
		WatchSettings:  true,
		ResyncInterval: DefaultResyncInterval,
		MenuBackend:    "auto",
		Hotkeys: Hotkeys{
			Toggle: "Mod4-Mod1-r",
		},
		Presets: presets,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	switch c.Renderer {
	case RendererAuto, RendererSoftware:
	default:
		return &ValidationError{Path: "renderer", Err: fmt.Errorf("renderer must be one of: auto, software")}
	}
	if strings.TrimSpace(c.SettingsFile) == "" {
		return &ValidationError{Path: "settings_file", Err: fmt.Errorf("settings_file is required")}
	}
	if c.ResyncInterval < 0 {
		return &ValidationError{Path: "resync_interval", Err: fmt.Errorf("resync_interval must not be negative")}
	}
	if !slices.Contains(MenuBackends, c.MenuBackend) {
		return &ValidationError{
			Path: "menu_backend",
			Err:  fmt.Errorf("menu_backend must be one of: %s", strings.Join(MenuBackends, ", ")),
		}
	}

	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "presets", Err: fmt.Errorf("presets contains an empty name")}
		}
		k := c.Presets[name]
		if k < light.TemperatureRange.Min || k > light.TemperatureRange.Max {
			return &ValidationError{
				Path: "presets." + name,
				Err:  fmt.Errorf("kelvin must be between %.0f and %.0f", light.TemperatureRange.Min, light.TemperatureRange.Max),
			}
		}
	}

	seen := make(map[string]string)
	for _, hk := range c.Hotkeys.list() {
		if hk.keys == "" {
			continue
		}
		key := strings.ToLower(hk.keys)
		if other, ok := seen[key]; ok {
			return &ValidationError{
				Path: "hotkeys." + hk.name,
				Err:  fmt.Errorf("%q is already bound to hotkeys.%s", hk.keys, other),
			}
		}
		seen[key] = hk.name
	}
	return nil
}

type namedHotkey struct {
	name string
	keys string
}

func (h Hotkeys) list() []namedHotkey {
	return []namedHotkey{
		{"toggle", h.Toggle},
		{"warm", h.Warm},
		{"neutral", h.Neutral},
		{"cool", h.Cool},
		{"brighter", h.Brighter},
		{"dimmer", h.Dimmer},
		{"menu", h.Menu},
	}
}

// SlogLevel returns the log level for slog handlers.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}
}

// PresetList returns the presets ordered warmest first.
func (c *Config) PresetList() []light.Preset {
	out := make([]light.Preset, 0, len(c.Presets))
	for name, k := range c.Presets {
		out = append(out, light.Preset{Name: name, Kelvin: k})
	}
	light.SortPresets(out)
	return out
}

// SettingsPath returns SettingsFile with a leading ~ expanded.
func (c *Config) SettingsPath() (string, error) {
	return expandHome(c.SettingsFile)
}

// Software reports whether hardware acceleration is disabled.
func (c *Config) Software() bool {
	return c.Renderer == RendererSoftware
}

// WriteDefault writes the default configuration to path. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if exists, err := pathExists(path); err != nil {
			return err
		} else if exists {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := "# ringlight daemon configuration\n# Ring light parameters live in settings_file and are edited with `ringlight set`.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
