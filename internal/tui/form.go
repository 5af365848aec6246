package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/1broseidon/ringlight/internal/ipc"
	"github.com/1broseidon/ringlight/internal/light"
)

// editForm edits every numeric parameter at once. Values are bound as
// strings for huh and parsed on submit.
type editForm struct {
	form *huh.Form

	fWidth        string
	fFeather      string
	fIntensity    string
	fTemperature  string
	fCornerRadius string
	fEdgeInset    string
}

func newEditForm(p light.Params, width int) *editForm {
	f := &editForm{
		fWidth:        formatFloat(p.Width),
		fFeather:      formatFloat(p.Feather),
		fIntensity:    formatFloat(p.Intensity),
		fTemperature:  formatFloat(p.Temperature),
		fCornerRadius: formatFloat(p.CornerRadius),
		fEdgeInset:    formatFloat(p.EdgeInset),
	}

	w := width - 4
	if w < 40 {
		w = 40
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			numberInput("width", "Width", "Band width in pixels", light.WidthRange, &f.fWidth),
			numberInput("feather", "Softness", "Fraction of the band that fades out", light.FeatherRange, &f.fFeather),
			numberInput("intensity", "Brightness", "Peak opacity", light.IntensityRange, &f.fIntensity),
		),
		huh.NewGroup(
			numberInput("temperature", "Temperature", "Color temperature in kelvin", light.TemperatureRange, &f.fTemperature),
			numberInput("corner_radius", "Corner radius", "Pixels", light.CornerRadiusRange, &f.fCornerRadius),
			numberInput("edge_inset", "Edge inset", "Pixels between screen edge and band", light.EdgeInsetRange, &f.fEdgeInset),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	return f
}

func numberInput(k, title, desc string, rng light.Range, value *string) *huh.Input {
	return huh.NewInput().
		Key(k).
		Title(title).
		Description(fmt.Sprintf("%s (%s to %s)", desc, formatFloat(rng.Min), formatFloat(rng.Max))).
		Validate(validateNumber).
		Value(value)
}

func validateNumber(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return fmt.Errorf("not a number")
	}
	return nil
}

// patch returns the submitted values. Unparseable fields are left out.
func (f *editForm) patch() ipc.SetPayload {
	var p ipc.SetPayload
	p.Width = parseField(f.fWidth)
	p.Feather = parseField(f.fFeather)
	p.Intensity = parseField(f.fIntensity)
	p.Temperature = parseField(f.fTemperature)
	p.CornerRadius = parseField(f.fCornerRadius)
	p.EdgeInset = parseField(f.fEdgeInset)
	return p
}

func parseField(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
