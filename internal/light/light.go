// Package light holds the ring-light configuration model: the clamp table,
// the immutable Configuration value and the temperature to color mapping.
package light

import "math"

// Range is an inclusive numeric interval.
type Range struct {
	Min float64
	Max float64
}

// Clamp limits v to the range. NaN maps to Min.
func (r Range) Clamp(v float64) float64 {
	return Clamp(v, r.Min, r.Max)
}

// Clamp limits value to [lo, hi]. It is total: NaN maps to lo and
// infinities map to the nearest bound.
func Clamp(value, lo, hi float64) float64 {
	if math.IsNaN(value) || value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Clamp table.
var (
	WidthRange        = Range{Min: 20, Max: 400}
	FeatherRange      = Range{Min: 0, Max: 0.95}
	IntensityRange    = Range{Min: 0.05, Max: 1}
	TemperatureRange  = Range{Min: 2500, Max: 7500}
	CornerRadiusRange = Range{Min: 0, Max: 500}
	EdgeInsetRange    = Range{Min: 0, Max: 200}
)

// Defaults for a fresh install.
const (
	DefaultWidth        = 160
	DefaultFeather      = 0.4
	DefaultIntensity    = 0.85
	DefaultTemperature  = 5200
	DefaultCornerRadius = 0
	DefaultEdgeInset    = 0
)

// Params are raw, unvalidated user-facing inputs.
type Params struct {
	Width        float64 `json:"width" yaml:"width"`
	Feather      float64 `json:"feather" yaml:"feather"`
	Intensity    float64 `json:"intensity" yaml:"intensity"`
	Temperature  float64 `json:"temperature" yaml:"temperature"`
	CornerRadius float64 `json:"corner_radius" yaml:"corner_radius"`
	EdgeInset    float64 `json:"edge_inset" yaml:"edge_inset"`
}

// DefaultParams returns the raw default inputs.
func DefaultParams() Params {
	return Params{
		Width:        DefaultWidth,
		Feather:      DefaultFeather,
		Intensity:    DefaultIntensity,
		Temperature:  DefaultTemperature,
		CornerRadius: DefaultCornerRadius,
		EdgeInset:    DefaultEdgeInset,
	}
}

// Configuration is a clamped ring-light configuration. The zero value is not
// meaningful; obtain one from Build or Default. Fields are only reachable
// through accessors so every observed value is within range.
//
// Configuration is comparable with ==.
type Configuration struct {
	width        float64
	feather      float64
	intensity    float64
	temperature  float64
	cornerRadius float64
	edgeInset    float64
}

// Build applies the clamp table to arbitrary inputs. Out-of-range values are
// corrected, never rejected.
func Build(p Params) Configuration {
	return Configuration{
		width:        WidthRange.Clamp(p.Width),
		feather:      FeatherRange.Clamp(p.Feather),
		intensity:    IntensityRange.Clamp(p.Intensity),
		temperature:  TemperatureRange.Clamp(p.Temperature),
		cornerRadius: CornerRadiusRange.Clamp(p.CornerRadius),
		edgeInset:    EdgeInsetRange.Clamp(p.EdgeInset),
	}
}

// Default returns Build(DefaultParams()).
func Default() Configuration {
	return Build(DefaultParams())
}

func (c Configuration) Width() float64        { return c.width }
func (c Configuration) Feather() float64      { return c.feather }
func (c Configuration) Intensity() float64    { return c.intensity }
func (c Configuration) Temperature() float64  { return c.temperature }
func (c Configuration) CornerRadius() float64 { return c.cornerRadius }
func (c Configuration) EdgeInset() float64    { return c.edgeInset }

// Params returns the clamped values as raw inputs.
func (c Configuration) Params() Params {
	return Params{
		Width:        c.width,
		Feather:      c.feather,
		Intensity:    c.intensity,
		Temperature:  c.temperature,
		CornerRadius: c.cornerRadius,
		EdgeInset:    c.edgeInset,
	}
}

// WithWidth returns a copy with a new width, clamped.
func (c Configuration) WithWidth(v float64) Configuration {
	c.width = WidthRange.Clamp(v)
	return c
}

// WithFeather returns a copy with a new feather, clamped.
func (c Configuration) WithFeather(v float64) Configuration {
	c.feather = FeatherRange.Clamp(v)
	return c
}

// WithIntensity returns a copy with a new intensity, clamped.
func (c Configuration) WithIntensity(v float64) Configuration {
	c.intensity = IntensityRange.Clamp(v)
	return c
}

// WithTemperature returns a copy with a new temperature, clamped.
func (c Configuration) WithTemperature(v float64) Configuration {
	c.temperature = TemperatureRange.Clamp(v)
	return c
}
