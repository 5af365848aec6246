package light

import (
	"math"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// NeutralKelvin is the temperature rendered as pure white.
const NeutralKelvin = 5200

// ColorForTemperature maps a Kelvin value to an opaque color approximating
// blackbody radiation, white-balanced so NeutralKelvin is pure white. Input
// is clamped to TemperatureRange first. The blue/red ratio grows
// monotonically with temperature.
func ColorForTemperature(kelvin float64) colorful.Color {
	r, g, b := blackbody(TemperatureRange.Clamp(kelvin))
	nr, ng, nb := blackbody(NeutralKelvin)

	r, g, b = r/nr, g/ng, b/nb
	peak := math.Max(r, math.Max(g, b))
	return colorful.Color{R: r / peak, G: g / peak, B: b / peak}.Clamped()
}

// Color returns the configuration's render color.
func (c Configuration) Color() colorful.Color {
	return ColorForTemperature(c.temperature)
}

// blackbody returns 0-255 channel values for a temperature using the
// Tanner Helland curve fit.
func blackbody(kelvin float64) (r, g, b float64) {
	t := kelvin / 100

	if t <= 66 {
		r = 255
		g = 99.4708025861*math.Log(t) - 161.1195681661
	} else {
		r = 329.698727446 * math.Pow(t-60, -0.1332047592)
		g = 288.1221695283 * math.Pow(t-60, -0.0755148492)
	}

	switch {
	case t >= 66:
		b = 255
	case t <= 19:
		b = 0
	default:
		b = 138.5177312231*math.Log(t-10) - 305.0447927307
	}

	return clamp255(r), clamp255(g), clamp255(b)
}

func clamp255(v float64) float64 {
	// keep a tiny floor so white balancing never divides by zero
	return Clamp(v, 1, 255)
}

// Preset is a named color temperature.
type Preset struct {
	Name   string  `json:"name" yaml:"name"`
	Kelvin float64 `json:"kelvin" yaml:"kelvin"`
}

// PresetTolerance is how close the temperature must be for a preset to count
// as selected.
const PresetTolerance = 50

// DefaultPresets returns the built-in presets, warmest first.
func DefaultPresets() []Preset {
	return []Preset{
		{Name: "warm", Kelvin: 3400},
		{Name: "neutral", Kelvin: 5200},
		{Name: "cool", Kelvin: 6500},
	}
}

// SortPresets orders presets warmest first, then by name.
func SortPresets(presets []Preset) {
	sort.SliceStable(presets, func(i, j int) bool {
		if presets[i].Kelvin != presets[j].Kelvin {
			return presets[i].Kelvin < presets[j].Kelvin
		}
		return presets[i].Name < presets[j].Name
	})
}

// FindPreset looks a preset up by case-insensitive name.
func FindPreset(presets []Preset, name string) (Preset, bool) {
	name = strings.TrimSpace(name)
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// MatchPreset returns the preset within PresetTolerance of kelvin, if any.
func MatchPreset(presets []Preset, kelvin float64) (Preset, bool) {
	for _, p := range presets {
		if math.Abs(p.Kelvin-kelvin) < PresetTolerance {
			return p, true
		}
	}
	return Preset{}, false
}
