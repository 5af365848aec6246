// Package controller turns user-facing ring-light parameters into engine
// state. It owns the enable flag, the display selection and the persisted
// settings.
package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/1broseidon/ringlight/internal/engine"
	"github.com/1broseidon/ringlight/internal/light"
	"github.com/1broseidon/ringlight/internal/platform"
	"github.com/1broseidon/ringlight/internal/settings"
)

// AllDisplaysName labels the "every display" selection.
const AllDisplaysName = "All Displays"

// IntensityStep is the brightness change of one hotkey press.
const IntensityStep = 0.05

// ErrUnknownPreset is returned for a preset name that is not configured.
var ErrUnknownPreset = errors.New("unknown preset")

// Driver is the engine entry point the controller drives.
type Driver interface {
	Update(enabled bool, cfg light.Configuration, selected platform.DisplayID) error
	Windows() []engine.WindowInfo
}

// ScreenLister enumerates displays.
type ScreenLister interface {
	ListScreens() ([]platform.ScreenDescriptor, error)
}

// Store persists settings values.
type Store interface {
	Values() settings.Values
	Save(settings.Values) error
	Reload() (settings.Values, error)
}

// Options configures a Controller.
type Options struct {
	Engine  Driver
	Screens ScreenLister
	Store   Store
	Presets []light.Preset
	Logger  *slog.Logger
}

// Controller applies parameter changes. Its methods must run on the UI loop
// that owns the engine.
type Controller struct {
	engine  Driver
	screens ScreenLister
	store   Store
	presets []light.Preset
	logger  *slog.Logger
	started time.Time

	values settings.Values
}

// New creates a controller holding the store's current values. Call Start to
// push them to the engine.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	presets := opts.Presets
	if len(presets) == 0 {
		presets = light.DefaultPresets()
	}
	presets = append([]light.Preset(nil), presets...)
	light.SortPresets(presets)

	return &Controller{
		engine:  opts.Engine,
		screens: opts.Screens,
		store:   opts.Store,
		presets: presets,
		logger:  logger,
		started: time.Now(),
		values:  opts.Store.Values(),
	}
}

// Start applies the loaded values to the engine.
func (c *Controller) Start() error {
	return c.push()
}

// Values returns the raw parameters.
func (c *Controller) Values() settings.Values {
	return c.values
}

// Configuration returns the clamped configuration.
func (c *Controller) Configuration() light.Configuration {
	return c.values.Configuration()
}

// Presets returns the configured presets ordered by temperature.
func (c *Controller) Presets() []light.Preset {
	return append([]light.Preset(nil), c.presets...)
}

// SetEnabled turns the ring light on or off.
func (c *Controller) SetEnabled(enabled bool) error {
	v := c.values
	v.Enabled = enabled
	return c.commit(v)
}

// Toggle flips the enable flag.
func (c *Controller) Toggle() error {
	return c.SetEnabled(!c.values.Enabled)
}

// Patch is a partial parameter update. Nil fields are left unchanged.
type Patch struct {
	Enabled      *bool    `json:"enabled,omitempty"`
	Width        *float64 `json:"width,omitempty"`
	Feather      *float64 `json:"feather,omitempty"`
	Intensity    *float64 `json:"intensity,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	CornerRadius *float64 `json:"corner_radius,omitempty"`
	EdgeInset    *float64 `json:"edge_inset,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Enabled == nil && p.Width == nil && p.Feather == nil && p.Intensity == nil &&
		p.Temperature == nil && p.CornerRadius == nil && p.EdgeInset == nil
}

func (p Patch) apply(v settings.Values) settings.Values {
	if p.Enabled != nil {
		v.Enabled = *p.Enabled
	}
	if p.Width != nil {
		v.Width = *p.Width
	}
	if p.Feather != nil {
		v.Feather = *p.Feather
	}
	if p.Intensity != nil {
		v.Intensity = *p.Intensity
	}
	if p.Temperature != nil {
		v.Temperature = *p.Temperature
	}
	if p.CornerRadius != nil {
		v.CornerRadius = *p.CornerRadius
	}
	if p.EdgeInset != nil {
		v.EdgeInset = *p.EdgeInset
	}
	return v
}

// Set applies a partial update.
func (c *Controller) Set(p Patch) error {
	return c.commit(p.apply(c.values))
}

// AdjustIntensity changes brightness by delta within its range.
func (c *Controller) AdjustIntensity(delta float64) error {
	v := c.values
	v.Intensity = light.IntensityRange.Clamp(c.Configuration().Intensity() + delta)
	return c.commit(v)
}

// ApplyPreset sets the temperature of the named preset.
func (c *Controller) ApplyPreset(name string) error {
	p, ok := light.FindPreset(c.presets, name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	v := c.values
	v.Temperature = p.Kelvin
	return c.commit(v)
}

// SelectedPreset returns the preset matching the current temperature.
func (c *Controller) SelectedPreset() (light.Preset, bool) {
	return light.MatchPreset(c.presets, c.Configuration().Temperature())
}

// SelectDisplay restricts the ring light to one display, or every display
// for platform.AllDisplays. Identifiers absent from the topology are kept.
func (c *Controller) SelectDisplay(id platform.DisplayID) error {
	v := c.values
	v.SelectedDisplay = id
	return c.commit(v)
}

// Apply adopts values changed outside the controller, such as an edited
// settings file. Nothing is persisted.
func (c *Controller) Apply(v settings.Values) error {
	c.values = v
	return c.push()
}

// Reload re-reads the settings file and applies it.
func (c *Controller) Reload() error {
	v, err := c.store.Reload()
	if err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}
	return c.Apply(v)
}

func (c *Controller) commit(v settings.Values) error {
	c.values = v
	var errs []error
	if err := c.store.Save(v); err != nil {
		c.logger.Warn("failed to save settings", "error", err)
		errs = append(errs, fmt.Errorf("save settings: %w", err))
	}
	if err := c.push(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Controller) push() error {
	v := c.values
	return c.engine.Update(v.Enabled, v.Configuration(), v.SelectedDisplay)
}

// Display is a selectable display.
type Display struct {
	ID       platform.DisplayID `json:"id"`
	Name     string             `json:"name"`
	Frame    platform.Rect      `json:"frame"`
	TopInset int                `json:"top_inset"`
	Selected bool               `json:"selected"`
}

// AvailableDisplays returns the "all displays" entry followed by every
// connected display.
func (c *Controller) AvailableDisplays() ([]Display, error) {
	screens, err := c.screens.ListScreens()
	if err != nil {
		return nil, fmt.Errorf("list screens: %w", err)
	}
	out := make([]Display, 0, len(screens)+1)
	out = append(out, Display{
		ID:       platform.AllDisplays,
		Name:     AllDisplaysName,
		Selected: c.values.SelectedDisplay == platform.AllDisplays,
	})
	for i, s := range screens {
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("Display %d", i+1)
		}
		out = append(out, Display{
			ID:       s.ID,
			Name:     name,
			Frame:    s.Frame,
			TopInset: s.TopInset,
			Selected: c.values.SelectedDisplay == s.ID,
		})
	}
	return out, nil
}

// ResolveDisplay maps a user query to a display ID. The query is "all", a
// numeric display ID, or a display name (case-insensitive).
func ResolveDisplay(displays []Display, query string) (platform.DisplayID, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return 0, fmt.Errorf("display is required")
	}
	if strings.EqualFold(q, "all") || strings.EqualFold(q, AllDisplaysName) {
		return platform.AllDisplays, nil
	}
	if n, err := strconv.ParseUint(q, 10, 32); err == nil {
		return platform.DisplayID(n), nil
	}
	for _, d := range displays {
		if strings.EqualFold(d.Name, q) {
			return d.ID, nil
		}
	}
	return 0, fmt.Errorf("unknown display %q", q)
}

// Status is a snapshot of the ring light.
type Status struct {
	Enabled         bool                `json:"enabled"`
	Params          light.Params        `json:"params"`
	Effective       light.Params        `json:"effective"`
	Color           string              `json:"color"`
	Preset          string              `json:"preset,omitempty"`
	SelectedDisplay platform.DisplayID  `json:"selected_display"`
	Windows         []engine.WindowInfo `json:"windows"`
	StartedAt       time.Time           `json:"started_at"`
}

// Status reports the current state.
func (c *Controller) Status() Status {
	cfg := c.Configuration()
	st := Status{
		Enabled:         c.values.Enabled,
		Params:          c.values.Params,
		Effective:       cfg.Params(),
		Color:           cfg.Color().Clamped().Hex(),
		SelectedDisplay: c.values.SelectedDisplay,
		Windows:         c.engine.Windows(),
		StartedAt:       c.started,
	}
	if p, ok := c.SelectedPreset(); ok {
		st.Preset = p.Name
	}
	return st
}
