package tui

import (
	"fmt"

	"github.com/1broseidon/ringlight/internal/ipc"
	"github.com/1broseidon/ringlight/internal/light"
)

type row int

const (
	rowEnabled row = iota
	rowDisplay
	rowWidth
	rowFeather
	rowIntensity
	rowTemperature
	rowCornerRadius
	rowEdgeInset
	rowCount
)

// slider is a numeric row stepped with left/right.
type slider struct {
	label  string
	rng    light.Range
	step   float64
	format string
	get    func(light.Params) float64
	set    func(*ipc.SetPayload, float64)
}

var sliders = map[row]slider{
	rowWidth: {
		label: "Width", rng: light.WidthRange, step: 5, format: "%.0f px",
		get: func(p light.Params) float64 { return p.Width },
		set: func(s *ipc.SetPayload, v float64) { s.Width = &v },
	},
	rowFeather: {
		label: "Softness", rng: light.FeatherRange, step: 0.01, format: "%.2f",
		get: func(p light.Params) float64 { return p.Feather },
		set: func(s *ipc.SetPayload, v float64) { s.Feather = &v },
	},
	rowIntensity: {
		label: "Brightness", rng: light.IntensityRange, step: 0.01, format: "%.0f%%",
		get: func(p light.Params) float64 { return p.Intensity },
		set: func(s *ipc.SetPayload, v float64) { s.Intensity = &v },
	},
	rowTemperature: {
		label: "Temperature", rng: light.TemperatureRange, step: 50, format: "%.0f K",
		get: func(p light.Params) float64 { return p.Temperature },
		set: func(s *ipc.SetPayload, v float64) { s.Temperature = &v },
	},
	rowCornerRadius: {
		label: "Corner radius", rng: light.CornerRadiusRange, step: 5, format: "%.0f px",
		get: func(p light.Params) float64 { return p.CornerRadius },
		set: func(s *ipc.SetPayload, v float64) { s.CornerRadius = &v },
	},
	rowEdgeInset: {
		label: "Edge inset", rng: light.EdgeInsetRange, step: 1, format: "%.0f px",
		get: func(p light.Params) float64 { return p.EdgeInset },
		set: func(s *ipc.SetPayload, v float64) { s.EdgeInset = &v },
	},
}

func (r row) label() string {
	switch r {
	case rowEnabled:
		return "Ring light"
	case rowDisplay:
		return "Display"
	}
	if s, ok := sliders[r]; ok {
		return s.label
	}
	return "?"
}

// stepped returns the patch moving the slider dir steps from the effective
// value p.
func (s slider) stepped(p light.Params, dir float64) ipc.SetPayload {
	var patch ipc.SetPayload
	s.set(&patch, s.rng.Clamp(s.get(p)+dir*s.step))
	return patch
}

// fraction is the slider position in [0, 1].
func (s slider) fraction(p light.Params) float64 {
	span := s.rng.Max - s.rng.Min
	if span <= 0 {
		return 0
	}
	return (s.rng.Clamp(s.get(p)) - s.rng.Min) / span
}

func (s slider) text(p light.Params) string {
	v := s.get(p)
	if s.format == "%.0f%%" {
		v *= 100
	}
	return fmt.Sprintf(s.format, v)
}
