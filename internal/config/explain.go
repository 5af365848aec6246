package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	log_level
//	renderer
//	display
//	settings_file
//	watch_settings
//	resync_interval
//	menu_backend
//	hotkeys
//	hotkeys.<toggle|warm|neutral|cool|brighter|dimmer|menu>
//	presets
//	presets.<name>
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	// A preset set by a file presets map comes from that map.
	if strings.HasPrefix(path, "presets.") {
		if src, ok := res.Sources["presets"]; ok {
			return value, src, nil
		}
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.SplitN(path, ".", 2)
	leaf := func() error {
		if len(parts) != 1 {
			return fmt.Errorf("%s has no fields", parts[0])
		}
		return nil
	}

	switch parts[0] {
	case "log_level":
		return cfg.LogLevel, leaf()
	case "renderer":
		return cfg.Renderer, leaf()
	case "display":
		return cfg.Display, leaf()
	case "settings_file":
		return cfg.SettingsFile, leaf()
	case "watch_settings":
		return cfg.WatchSettings, leaf()
	case "resync_interval":
		return cfg.ResyncInterval.String(), leaf()
	case "menu_backend":
		return cfg.MenuBackend, leaf()
	case "hotkeys":
		if len(parts) == 1 {
			return cfg.Hotkeys, nil
		}
		for _, hk := range cfg.Hotkeys.list() {
			if hk.name == parts[1] {
				return hk.keys, nil
			}
		}
		return nil, fmt.Errorf("unknown hotkey %q", parts[1])
	case "presets":
		if len(parts) == 1 {
			return cfg.Presets, nil
		}
		k, ok := cfg.Presets[parts[1]]
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", parts[1])
		}
		return k, nil
	default:
		return nil, fmt.Errorf("unknown config path %q", path)
	}
}
