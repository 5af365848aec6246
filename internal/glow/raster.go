package glow

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Render allocates a transparent premultiplied canvas of the layout's size
// and paints the bands into it.
func Render(l Layout) *image.RGBA {
	w := int(math.Round(l.Size.W))
	h := int(math.Round(l.Size.H))
	img := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	Paint(img, l)
	return img
}

// Paint composites the layout's bands over dst and clears the pixels outside
// the rounded corners. A hidden layout leaves dst untouched.
func Paint(dst *image.RGBA, l Layout) {
	if l.Hidden || l.Alpha <= 0 {
		return
	}

	r, g, b := l.Color.RGB255()
	src := image.NewUniform(color.NRGBA{R: r, G: g, B: b, A: 255})

	for _, band := range l.Bands {
		rect := pixelRect(band.Rect).Intersect(dst.Bounds())
		if rect.Empty() {
			continue
		}
		mask := bandMask(l, band, rect)
		xdraw.DrawMask(dst, rect, src, image.Point{}, mask, rect.Min, xdraw.Over)
	}

	for _, c := range l.Corners() {
		rect := pixelRect(c).Intersect(dst.Bounds())
		if rect.Empty() {
			continue
		}
		xdraw.Draw(dst, rect, image.Transparent, image.Point{}, xdraw.Src)
	}
}

// Scale resizes src by factor with bilinear filtering.
func Scale(src image.Image, factor float64) *image.RGBA {
	b := src.Bounds()
	w := max(int(math.Round(float64(b.Dx())*factor)), 1)
	h := max(int(math.Round(float64(b.Dy())*factor)), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

// bandMask builds the opacity ramp for one band clipped to rect.
func bandMask(l Layout, band Band, rect image.Rectangle) *image.Alpha {
	mask := image.NewAlpha(rect)
	extent := band.Extent()
	if extent <= 0 {
		return mask
	}

	vertical := band.Edge == Left || band.Edge == Right
	n := rect.Dy()
	if vertical {
		n = rect.Dx()
	}

	// One alpha per step along the gradient axis.
	ramp := make([]uint8, n)
	for i := range ramp {
		var center float64
		if vertical {
			center = float64(rect.Min.X+i) + 0.5
		} else {
			center = float64(rect.Min.Y+i) + 0.5
		}
		var depth float64
		switch band.Edge {
		case Top:
			depth = center - band.Rect.Y
		case Bottom:
			depth = band.Rect.Y + band.Rect.H - center
		case Left:
			depth = center - band.Rect.X
		case Right:
			depth = band.Rect.X + band.Rect.W - center
		}
		a := l.Opacity(depth/extent) * l.Alpha
		ramp[i] = uint8(math.Round(to255(a)))
	}

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := mask.Pix[(y-rect.Min.Y)*mask.Stride:]
		for x := 0; x < rect.Dx(); x++ {
			if vertical {
				row[x] = ramp[x]
			} else {
				row[x] = ramp[y-rect.Min.Y]
			}
		}
	}
	return mask
}

func to255(a float64) float64 {
	return math.Max(0, math.Min(1, a)) * 255
}

func pixelRect(r Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.W)),
		int(math.Round(r.Y+r.H)),
	)
}
