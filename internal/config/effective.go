package config

import (
	"fmt"
)

// ValidationError points at the offending config path and, when known, the
// file position that set it.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig merges raw file values over the defaults. A presets
// map in the file replaces the built-in presets entirely.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	setString(&cfg.LogLevel, raw.LogLevel)
	setString(&cfg.Renderer, raw.Renderer)
	setString(&cfg.Display, raw.Display)
	setString(&cfg.SettingsFile, raw.SettingsFile)
	if raw.WatchSettings != nil {
		cfg.WatchSettings = *raw.WatchSettings
	}
	if raw.ResyncInterval != nil {
		cfg.ResyncInterval = *raw.ResyncInterval
	}
	setString(&cfg.MenuBackend, raw.MenuBackend)
	raw.Hotkeys.applyTo(&cfg.Hotkeys)

	if raw.Presets != nil {
		if len(raw.Presets) == 0 {
			return nil, &ValidationError{Path: "presets", Err: fmt.Errorf("presets must not be empty")}
		}
		cfg.Presets = make(map[string]float64, len(raw.Presets))
		for name, k := range raw.Presets {
			cfg.Presets[name] = k
		}
	}
	return cfg, nil
}
