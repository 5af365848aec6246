package mcp

// GetRingLightInput is the input for the get_ring_light tool.
type GetRingLightInput struct{}

// RingLightOutput describes the ring light after a tool call.
type RingLightOutput struct {
	Enabled         bool          `json:"enabled"`
	Width           float64       `json:"width"`
	Feather         float64       `json:"feather"`
	Intensity       float64       `json:"intensity"`
	Temperature     float64       `json:"temperature"`
	CornerRadius    float64       `json:"corner_radius"`
	EdgeInset       float64       `json:"edge_inset"`
	Color           string        `json:"color"`
	Preset          string        `json:"preset,omitempty"`
	SelectedDisplay uint32        `json:"selected_display"`
	Overlays        []OverlayInfo `json:"overlays"`
}

// OverlayInfo describes one open overlay window.
type OverlayInfo struct {
	Display  uint32 `json:"display"`
	Name     string `json:"name"`
	Renderer string `json:"renderer"`
}

// SetRingLightInput is the input for the set_ring_light tool.
type SetRingLightInput struct {
	Enabled      *bool    `json:"enabled,omitempty" jsonschema:"Turn the ring light on or off"`
	Width        *float64 `json:"width,omitempty" jsonschema:"Band width in pixels (20 to 400)"`
	Feather      *float64 `json:"feather,omitempty" jsonschema:"Fraction of the band that fades toward the screen center (0 to 0.95)"`
	Intensity    *float64 `json:"intensity,omitempty" jsonschema:"Peak opacity (0.05 to 1)"`
	Temperature  *float64 `json:"temperature,omitempty" jsonschema:"Color temperature in kelvin (2500 to 7500)"`
	CornerRadius *float64 `json:"corner_radius,omitempty" jsonschema:"Corner radius in pixels (0 to 500)"`
	EdgeInset    *float64 `json:"edge_inset,omitempty" jsonschema:"Gap between the screen edge and the band in pixels (0 to 200)"`
}

// ApplyPresetInput is the input for the apply_ring_light_preset tool.
type ApplyPresetInput struct {
	Name string `json:"name" jsonschema:"Preset name, e.g. warm, neutral or cool"`
}

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []DisplayInfo `json:"displays"`
}

// DisplayInfo describes one selectable display. ID 0 is "All Displays".
type DisplayInfo struct {
	ID       uint32 `json:"id"`
	Name     string `json:"name"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Selected bool   `json:"selected"`
}

// SelectDisplayInput is the input for the select_display tool.
type SelectDisplayInput struct {
	Display string `json:"display" jsonschema:"all, a display ID from list_displays, or a display name such as HDMI-1"`
}
