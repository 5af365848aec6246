// Package glow computes the edge-band geometry of the software ring light and
// rasterizes it.
package glow

import (
	"math"

	"github.com/1broseidon/ringlight/internal/light"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// MinThickness is the thinnest band ever drawn, regardless of width.
	MinThickness = 10
	// MinStop keeps a sliver of solid color at maximum feather.
	MinStop = 0.001
	// HiddenIntensity is the intensity at or below which nothing is drawn.
	HiddenIntensity = 0.01
)

// Edge identifies a band.
type Edge int

const (
	Top Edge = iota
	Bottom
	Left
	Right
)

func (e Edge) String() string {
	switch e {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Size is a surface size in pixels.
type Size struct {
	W float64
	H float64
}

// Rect is a rectangle with a top-left origin.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Band is one edge gradient. The color is solid at the band's outer edge and
// fades to transparent toward the surface interior.
type Band struct {
	Edge Edge
	Rect Rect
}

// Extent is the band's length along its gradient axis.
func (b Band) Extent() float64 {
	if b.Edge == Left || b.Edge == Right {
		return b.Rect.W
	}
	return b.Rect.H
}

// Params are the inputs the band geometry depends on.
type Params struct {
	Width        float64
	Feather      float64
	Intensity    float64
	CornerRadius float64
	Color        colorful.Color
}

// ParamsFor extracts band parameters from a configuration.
func ParamsFor(cfg light.Configuration) Params {
	return Params{
		Width:        cfg.Width(),
		Feather:      cfg.Feather(),
		Intensity:    cfg.Intensity(),
		CornerRadius: cfg.CornerRadius(),
		Color:        cfg.Color(),
	}
}

// LayoutFor computes the bands of cfg for a surface, edge inset included.
func LayoutFor(cfg light.Configuration, topInset float64, size Size) Layout {
	return Compute(ParamsFor(cfg), topInset, size).Inset(cfg.EdgeInset())
}

// Layout is the computed geometry for one surface.
type Layout struct {
	Size      Size
	Hidden    bool
	Thickness float64
	// Stop is the gradient position where the solid region ends.
	Stop float64
	// TopInset is the effective top inset (safe inset plus thickness).
	TopInset float64
	Color    colorful.Color
	// Alpha is the band color's opacity at the solid edge.
	Alpha float64
	// CornerRadius rounds the outer corners of the ring.
	CornerRadius float64
	Bands        []Band
}

// Compute lays out the four bands for a surface of the given size with
// topInset pixels reserved for system UI at the top.
func Compute(p Params, topInset float64, size Size) Layout {
	w := math.Max(size.W, 0)
	h := math.Max(size.H, 0)

	thickness := math.Min(math.Max(p.Width, MinThickness), math.Min(w, h)/2)
	effTop := light.Clamp(topInset+thickness, 0, h)
	avail := math.Max(h-effTop, 0)

	return Layout{
		Size:         Size{W: w, H: h},
		Hidden:       p.Intensity <= HiddenIntensity,
		Thickness:    thickness,
		Stop:         GradientStop(p.Feather),
		TopInset:     effTop,
		Color:        p.Color,
		Alpha:        light.Clamp(p.Intensity, 0, 1),
		CornerRadius: math.Max(p.CornerRadius, 0),
		Bands: []Band{
			{Edge: Top, Rect: Rect{X: 0, Y: effTop, W: w, H: math.Min(thickness, avail)}},
			{Edge: Bottom, Rect: Rect{X: 0, Y: h - thickness, W: w, H: thickness}},
			{Edge: Left, Rect: Rect{X: 0, Y: effTop, W: thickness, H: avail}},
			{Edge: Right, Rect: Rect{X: w - thickness, Y: effTop, W: thickness, H: avail}},
		},
	}
}

// GradientStop returns where the solid part of the gradient ends.
func GradientStop(feather float64) float64 {
	return math.Max(MinStop, 1-feather)
}

// Opacity returns the gradient's opacity multiplier at pos, where 0 is the
// band's outer edge and 1 its inner edge.
func (l Layout) Opacity(pos float64) float64 {
	switch {
	case pos <= l.Stop:
		return 1
	case pos >= 1:
		return 0
	default:
		return (1 - pos) / (1 - l.Stop)
	}
}

// Inset returns a copy with every band moved inward from its outer edge by
// edge pixels. Bands that no longer fit are dropped to zero size.
func (l Layout) Inset(edge float64) Layout {
	if edge <= 0 {
		return l
	}
	out := l
	out.Bands = make([]Band, len(l.Bands))
	for i, b := range l.Bands {
		r := b.Rect
		switch b.Edge {
		case Top:
			r.Y += edge
			r.X += edge
			r.W -= 2 * edge
		case Bottom:
			r.Y -= edge
			r.X += edge
			r.W -= 2 * edge
		case Left:
			r.X += edge
			r.H -= edge
		case Right:
			r.X -= edge
			r.H -= edge
		}
		if r.W < 0 {
			r.W = 0
		}
		if r.H < 0 {
			r.H = 0
		}
		out.Bands[i] = Band{Edge: b.Edge, Rect: r}
	}
	return out
}

// Blank reports whether the layout draws nothing at all.
func (l Layout) Blank() bool {
	if l.Hidden || l.Alpha <= 0 {
		return true
	}
	for _, b := range l.Bands {
		if !b.Rect.Empty() {
			return false
		}
	}
	return true
}

// Bounds returns the smallest rectangle containing every non-empty band.
func (l Layout) Bounds() Rect {
	var minX, minY, maxX, maxY float64
	first := true
	for _, b := range l.Bands {
		r := b.Rect
		if r.Empty() {
			continue
		}
		if first {
			minX, minY, maxX, maxY = r.X, r.Y, r.X+r.W, r.Y+r.H
			first = false
			continue
		}
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.X+r.W)
		maxY = math.Max(maxY, r.Y+r.H)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Corners returns one-pixel-high strips covering the parts of Bounds that
// fall outside its rounded corners. The radius is limited to half the
// shorter side of Bounds.
func (l Layout) Corners() []Rect {
	b := l.Bounds()
	r := math.Min(l.CornerRadius, math.Min(b.W, b.H)/2)
	if r < 1 {
		return nil
	}

	var out []Rect
	rows := int(math.Ceil(r))
	for i := 0; i < rows; i++ {
		dy := math.Max(r-(float64(i)+0.5), 0)
		cut := math.Round(r - math.Sqrt(r*r-dy*dy))
		if cut <= 0 {
			continue
		}
		top := b.Y + float64(i)
		bottom := b.Y + b.H - 1 - float64(i)
		out = append(out,
			Rect{X: b.X, Y: top, W: cut, H: 1},
			Rect{X: b.X + b.W - cut, Y: top, W: cut, H: 1},
			Rect{X: b.X, Y: bottom, W: cut, H: 1},
			Rect{X: b.X + b.W - cut, Y: bottom, W: cut, H: 1},
		)
	}
	return out
}
