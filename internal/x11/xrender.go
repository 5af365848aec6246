package x11

import (
	"errors"
	"fmt"
	"math"

	"github.com/1broseidon/ringlight/internal/glow"
	"github.com/1broseidon/ringlight/internal/light"
	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"
)

// ErrNoRender means the server cannot composite translucent gradients.
var ErrNoRender = errors.New("xrender acceleration unavailable")

// GradientRenderer draws the ring light with server-side XRender linear
// gradients into an overlay's backing pixmap. Each setter redraws when its
// value changes.
type GradientRenderer struct {
	win    *OverlayWindow
	format render.Pictformat

	cfg      light.Configuration
	hasCfg   bool
	topInset float64
	width    int
	height   int
	scale    float64
}

// NewGradientRenderer binds a renderer to win. It fails with ErrNoRender when
// RENDER is missing or the window has no alpha channel.
func (c *Connection) NewGradientRenderer(win *OverlayWindow) (*GradientRenderer, error) {
	if !c.hasRender || c.ARGB == nil || win.Depth() != 32 {
		return nil, ErrNoRender
	}
	format, err := c.argbPictFormat()
	if err != nil {
		return nil, err
	}
	w, h := win.Size()
	return &GradientRenderer{
		win:    win,
		format: format,
		width:  w,
		height: h,
		scale:  1,
	}, nil
}

// argbPictFormat finds the picture format matching the ARGB visual.
func (c *Connection) argbPictFormat() (render.Pictformat, error) {
	formats, err := render.QueryPictFormats(c.XUtil.Conn()).Reply()
	if err != nil {
		return 0, fmt.Errorf("query picture formats: %w", err)
	}
	for _, screen := range formats.Screens {
		for _, depth := range screen.Depths {
			if depth.Depth != 32 {
				continue
			}
			for _, v := range depth.Visuals {
				if v.Visual == c.ARGB.Visual {
					return v.Format, nil
				}
			}
		}
	}
	return 0, fmt.Errorf("%w: no picture format for ARGB visual", ErrNoRender)
}

// SetConfiguration updates the ring light parameters.
func (r *GradientRenderer) SetConfiguration(cfg light.Configuration) {
	if r.hasCfg && r.cfg == cfg {
		return
	}
	r.cfg = cfg
	r.hasCfg = true
	r.redraw()
}

// SetTopInset updates the space reserved at the top edge.
func (r *GradientRenderer) SetTopInset(inset float64) {
	if r.topInset == inset {
		return
	}
	r.topInset = inset
	r.redraw()
}

// ResizeDrawable updates the drawable size in device pixels.
func (r *GradientRenderer) ResizeDrawable(width, height int, scale float64) {
	if r.width == width && r.height == height && r.scale == scale {
		return
	}
	r.width = width
	r.height = height
	r.scale = scale
	r.redraw()
}

// Release drops the renderer. The window's backing pixmap is owned by the
// window and freed with it.
func (r *GradientRenderer) Release() {
	r.win = nil
}

func (r *GradientRenderer) redraw() {
	if r.win == nil || r.win.ID == 0 || !r.hasCfg {
		return
	}
	// Requests are asynchronous; failures reach the event loop's error
	// handler.
	_ = r.draw()
}

func (r *GradientRenderer) draw() error {
	conn := r.win.conn.XUtil.Conn()

	pixmap, err := r.win.Backing()
	if err != nil {
		return err
	}

	pic, err := render.NewPictureId(conn)
	if err != nil {
		return err
	}
	if err := render.CreatePictureChecked(conn, pic, xproto.Drawable(pixmap), r.format, 0, nil).Check(); err != nil {
		return fmt.Errorf("create picture: %w", err)
	}
	defer render.FreePicture(conn, pic)

	render.FillRectangles(conn, render.PictOpSrc, pic, render.Color{}, []xproto.Rectangle{
		{X: 0, Y: 0, Width: uint16(r.width), Height: uint16(r.height)},
	})

	layout := glow.LayoutFor(r.cfg, r.topInset, glow.Size{W: float64(r.width), H: float64(r.height)})

	if !layout.Hidden {
		for _, band := range layout.Bands {
			if band.Rect.Empty() {
				continue
			}
			if err := r.drawBand(pic, layout, band); err != nil {
				return err
			}
		}
		if corners := cornerRectangles(layout); len(corners) > 0 {
			render.FillRectangles(conn, render.PictOpSrc, pic, render.Color{}, corners)
		}
	}

	if r.win.Translucent() {
		r.win.ShapeTo(nil)
	} else {
		r.win.ShapeTo(glow.Render(layout))
	}
	r.win.Present()
	return nil
}

// cornerRectangles returns the pixels outside the layout's rounded corners.
func cornerRectangles(layout glow.Layout) []xproto.Rectangle {
	corners := layout.Corners()
	if len(corners) == 0 {
		return nil
	}
	out := make([]xproto.Rectangle, 0, len(corners))
	for _, c := range corners {
		x, y := math.Round(c.X), math.Round(c.Y)
		w, h := math.Round(c.X+c.W)-x, math.Round(c.Y+c.H)-y
		if w <= 0 || h <= 0 {
			continue
		}
		out = append(out, xproto.Rectangle{X: int16(x), Y: int16(y), Width: uint16(w), Height: uint16(h)})
	}
	return out
}

func (r *GradientRenderer) drawBand(dst render.Picture, layout glow.Layout, band glow.Band) error {
	conn := r.win.conn.XUtil.Conn()

	grad, err := render.NewPictureId(conn)
	if err != nil {
		return err
	}

	p1, p2 := gradientAxis(band)
	stops, colors := gradientStops(layout)
	render.CreateLinearGradient(conn, grad, p1, p2, uint32(len(stops)), stops, colors)
	defer render.FreePicture(conn, grad)

	x := int16(math.Round(band.Rect.X))
	y := int16(math.Round(band.Rect.Y))
	render.Composite(
		conn,
		render.PictOpOver,
		grad, 0, dst,
		x, y, // source coordinates equal destination so the axis is absolute
		0, 0,
		x, y,
		uint16(math.Round(band.Rect.W)), uint16(math.Round(band.Rect.H)),
	)
	return nil
}

// gradientAxis returns the gradient line from the band's outer edge to its
// inner edge in absolute surface coordinates.
func gradientAxis(band glow.Band) (render.Pointfix, render.Pointfix) {
	r := band.Rect
	switch band.Edge {
	case glow.Top:
		return pointfix(r.X, r.Y), pointfix(r.X, r.Y+r.H)
	case glow.Bottom:
		return pointfix(r.X, r.Y+r.H), pointfix(r.X, r.Y)
	case glow.Left:
		return pointfix(r.X, r.Y), pointfix(r.X+r.W, r.Y)
	default:
		return pointfix(r.X+r.W, r.Y), pointfix(r.X, r.Y)
	}
}

// gradientStops returns solid color up to the layout stop, fading to
// transparent. RENDER stop colors are not premultiplied.
func gradientStops(layout glow.Layout) ([]render.Fixed, []render.Color) {
	rr, gg, bb := layout.Color.RGB255()
	solid := render.Color{
		Red:   uint16(rr) * 257,
		Green: uint16(gg) * 257,
		Blue:  uint16(bb) * 257,
		Alpha: uint16(math.Round(light.Clamp(layout.Alpha, 0, 1) * 0xffff)),
	}
	fade := solid
	fade.Alpha = 0

	return []render.Fixed{toFixed(0), toFixed(layout.Stop), toFixed(1)},
		[]render.Color{solid, solid, fade}
}

func pointfix(x, y float64) render.Pointfix {
	return render.Pointfix{X: toFixed(x), Y: toFixed(y)}
}

// toFixed converts to 16.16 fixed point.
func toFixed(v float64) render.Fixed {
	return render.Fixed(math.Round(v * 65536))
}
