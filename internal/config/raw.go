package config

import "time"

// RawHotkeys mirrors Hotkeys with presence tracking.
type RawHotkeys struct {
	Toggle   *string `yaml:"toggle"`
	Warm     *string `yaml:"warm"`
	Neutral  *string `yaml:"neutral"`
	Cool     *string `yaml:"cool"`
	Brighter *string `yaml:"brighter"`
	Dimmer   *string `yaml:"dimmer"`
	Menu     *string `yaml:"menu"`
}

// RawConfig is the file representation. Nil fields were not set.
type RawConfig struct {
	LogLevel       *string            `yaml:"log_level"`
	Renderer       *string            `yaml:"renderer"`
	Display        *string            `yaml:"display"`
	SettingsFile   *string            `yaml:"settings_file"`
	WatchSettings  *bool              `yaml:"watch_settings"`
	ResyncInterval *time.Duration     `yaml:"resync_interval"`
	MenuBackend    *string            `yaml:"menu_backend"`
	Hotkeys        *RawHotkeys        `yaml:"hotkeys"`
	Presets        map[string]float64 `yaml:"presets"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func (h *RawHotkeys) applyTo(dst *Hotkeys) {
	if h == nil {
		return
	}
	setString(&dst.Toggle, h.Toggle)
	setString(&dst.Warm, h.Warm)
	setString(&dst.Neutral, h.Neutral)
	setString(&dst.Cool, h.Cool)
	setString(&dst.Brighter, h.Brighter)
	setString(&dst.Dimmer, h.Dimmer)
	setString(&dst.Menu, h.Menu)
}
