package x11

import (
	"errors"
	"fmt"
	"image"
	"slices"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

const (
	// putImageHeader is the fixed size of a PutImage request in bytes.
	putImageHeader = 24
	// shapeRectanglesHeader is the fixed size of a ShapeRectangles request.
	shapeRectanglesHeader = 16
	// shapeMinAlpha is the faintest pixel kept inside an opaque window's
	// bounding shape.
	shapeMinAlpha = 32
)

// OverlayWindow is an override-redirect, input-transparent window whose
// contents live in a server-side background pixmap, so the server repaints
// it on expose without client round trips.
type OverlayWindow struct {
	conn   *Connection
	ID     xproto.Window
	depth  byte
	width  int
	height int
	mapped bool
	// clipped is set while a bounding shape limits the visible area.
	clipped bool

	pixmap       xproto.Pixmap
	pixmapWidth  int
	pixmapHeight int
	gc           xproto.Gcontext
}

// CreateOverlayWindow creates an unmapped overlay covering the given
// rectangle. It uses the ARGB visual when available so transparent pixels
// show the desktop beneath.
func (c *Connection) CreateOverlayWindow(name string, x, y, width, height int) (*OverlayWindow, error) {
	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}

	depth := screen.RootDepth
	visual := screen.RootVisual
	// Value list order follows the bit positions of the mask (low to high).
	mask := uint32(xproto.CwBackPixel | xproto.CwBorderPixel | xproto.CwOverrideRedirect)
	values := []uint32{0, 0, 1}
	if c.ARGB != nil {
		depth = 32
		visual = c.ARGB.Visual
		mask |= xproto.CwColormap
		values = append(values, uint32(c.ARGB.Colormap))
	}

	err = xproto.CreateWindowChecked(
		conn,
		depth,
		wid,
		c.Root,
		int16(x), int16(y),
		uint16(max(width, 1)), uint16(max(height, 1)),
		0, // border_width
		xproto.WindowClassInputOutput,
		visual,
		mask,
		values,
	).Check()
	if err != nil {
		return nil, fmt.Errorf("create overlay window: %w", err)
	}

	w := &OverlayWindow{
		conn:   c,
		ID:     wid,
		depth:  depth,
		width:  max(width, 1),
		height: max(height, 1),
	}

	if err := w.clickThrough(); err != nil {
		w.Destroy()
		return nil, err
	}
	// Nothing is drawn yet; an opaque window must not cover the screen.
	w.ShapeTo(nil)
	w.setHints(name)

	return w, nil
}

// clickThrough empties the input region so pointer events reach the
// windows below.
func (w *OverlayWindow) clickThrough() error {
	if !w.conn.hasShape {
		return errors.New("SHAPE extension unavailable; overlay would block input")
	}
	return shape.RectanglesChecked(
		w.conn.XUtil.Conn(),
		shape.SoSet,
		shape.SkInput,
		xproto.ClipOrderingUnsorted,
		w.ID,
		0, 0,
		nil,
	).Check()
}

// setHints marks the window for compositors and pagers. Override-redirect
// windows are already ignored by window managers, so failures are harmless.
func (w *OverlayWindow) setHints(name string) {
	xu := w.conn.XUtil
	_ = ewmh.WmNameSet(xu, w.ID, name)
	_ = ewmh.WmWindowTypeSet(xu, w.ID, []string{"_NET_WM_WINDOW_TYPE_NOTIFICATION"})
	_ = ewmh.WmStateSet(xu, w.ID, []string{
		"_NET_WM_STATE_ABOVE",
		"_NET_WM_STATE_SKIP_TASKBAR",
		"_NET_WM_STATE_SKIP_PAGER",
	})
}

// Configure moves, resizes and raises the window.
func (w *OverlayWindow) Configure(x, y, width, height int) {
	// Ensure minimum dimensions
	width = max(width, 1)
	height = max(height, 1)

	xproto.ConfigureWindow(
		w.conn.XUtil.Conn(),
		w.ID,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(x),
			uint32(y),
			uint32(width),
			uint32(height),
			xproto.StackModeAbove, // Keep on top
		},
	)
	w.width = width
	w.height = height
}

// Raise restacks the window above its siblings.
func (w *OverlayWindow) Raise() {
	xproto.ConfigureWindow(w.conn.XUtil.Conn(), w.ID, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

// Map shows and raises the window.
func (w *OverlayWindow) Map() error {
	if err := xproto.MapWindowChecked(w.conn.XUtil.Conn(), w.ID).Check(); err != nil {
		return fmt.Errorf("map overlay window: %w", err)
	}
	w.Raise()
	w.mapped = true
	return nil
}

// Unmap hides the window without destroying it.
func (w *OverlayWindow) Unmap() {
	if !w.mapped {
		return
	}
	xproto.UnmapWindow(w.conn.XUtil.Conn(), w.ID)
	w.mapped = false
}

// Mapped reports whether Map has been called since the last Unmap.
func (w *OverlayWindow) Mapped() bool {
	return w.mapped
}

// Size returns the last configured size.
func (w *OverlayWindow) Size() (int, int) {
	return w.width, w.height
}

// Depth returns the window depth.
func (w *OverlayWindow) Depth() byte {
	return w.depth
}

// Translucent reports whether transparent pixels show the desktop beneath:
// the window has an alpha channel and a compositor is running.
func (w *OverlayWindow) Translucent() bool {
	return w.depth == 32 && w.conn.Compositing()
}

// ShapeTo limits an opaque window's visible area to the pixels of img that
// are painted, so unpainted pixels never hide the desktop. Translucent
// windows are left unshaped. A nil img hides an opaque window entirely.
func (w *OverlayWindow) ShapeTo(img *image.RGBA) {
	if w.ID == 0 || !w.conn.hasShape {
		return
	}
	conn := w.conn.XUtil.Conn()
	if w.Translucent() {
		if w.clipped {
			shape.Mask(conn, shape.SoSet, shape.SkBounding, w.ID, 0, 0, xproto.PixmapNone)
			w.clipped = false
		}
		return
	}

	rects := shapeRegion(img, w.width, w.height, shapeMinAlpha)
	w.clipped = true
	if len(rects) == 0 {
		shape.Rectangles(conn, shape.SoSet, shape.SkBounding, xproto.ClipOrderingUnsorted, w.ID, 0, 0, nil)
		return
	}
	chunk := max((maxRequestBytes(w.conn)-shapeRectanglesHeader)/8, 1)
	op := shape.Op(shape.SoSet)
	for i := 0; i < len(rects); i += chunk {
		end := min(i+chunk, len(rects))
		shape.Rectangles(conn, op, shape.SkBounding, xproto.ClipOrderingUnsorted, w.ID, 0, 0, rects[i:end])
		op = shape.SoUnion
	}
}

// Backing returns the background pixmap, recreating it when the window size
// changed since it was allocated.
func (w *OverlayWindow) Backing() (xproto.Pixmap, error) {
	if w.pixmap != 0 && w.pixmapWidth == w.width && w.pixmapHeight == w.height {
		return w.pixmap, nil
	}

	conn := w.conn.XUtil.Conn()
	w.freeBacking()

	pid, err := xproto.NewPixmapId(conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreatePixmapChecked(conn, w.depth, pid, xproto.Drawable(w.ID), uint16(w.width), uint16(w.height)).Check(); err != nil {
		return 0, fmt.Errorf("create backing pixmap: %w", err)
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.FreePixmap(conn, pid)
		return 0, err
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(pid), xproto.GcGraphicsExposures, []uint32{0}).Check(); err != nil {
		xproto.FreePixmap(conn, pid)
		return 0, fmt.Errorf("create gc: %w", err)
	}

	w.pixmap = pid
	w.gc = gc
	w.pixmapWidth = w.width
	w.pixmapHeight = w.height
	return pid, nil
}

// Present makes the backing pixmap the window background and repaints.
func (w *OverlayWindow) Present() {
	if w.pixmap == 0 {
		return
	}
	conn := w.conn.XUtil.Conn()
	xproto.ChangeWindowAttributes(conn, w.ID, xproto.CwBackPixmap, []uint32{uint32(w.pixmap)})
	xproto.ClearArea(conn, false, w.ID, 0, 0, 0, 0)
}

// PutImage uploads a premultiplied image into the backing pixmap and
// presents it. The image is clipped to the window size.
func (w *OverlayWindow) PutImage(img *image.RGBA) error {
	pixmap, err := w.Backing()
	if err != nil {
		return err
	}

	conn := w.conn.XUtil.Conn()
	width := min(img.Bounds().Dx(), w.width)
	height := min(img.Bounds().Dy(), w.height)
	if width <= 0 || height <= 0 {
		w.Present()
		return nil
	}

	rows := rowsPerRequest(width, maxRequestBytes(w.conn))
	buf := make([]byte, 0, rows*width*4)
	for y0 := 0; y0 < height; y0 += rows {
		n := min(rows, height-y0)
		buf = packBGRA(buf[:0], img, y0, n, width, w.depth)
		xproto.PutImage(
			conn,
			xproto.ImageFormatZPixmap,
			xproto.Drawable(pixmap),
			w.gc,
			uint16(width), uint16(n),
			0, int16(y0),
			0,
			w.depth,
			buf,
		)
	}

	w.ShapeTo(img)
	w.Present()
	return nil
}

// Destroy releases the window and its server resources.
func (w *OverlayWindow) Destroy() {
	if w.ID == 0 {
		return
	}
	w.freeBacking()
	xproto.DestroyWindow(w.conn.XUtil.Conn(), w.ID)
	w.ID = 0
	w.mapped = false
}

func (w *OverlayWindow) freeBacking() {
	conn := w.conn.XUtil.Conn()
	if w.gc != 0 {
		xproto.FreeGC(conn, w.gc)
		w.gc = 0
	}
	if w.pixmap != 0 {
		xproto.FreePixmap(conn, w.pixmap)
		w.pixmap = 0
	}
	w.pixmapWidth = 0
	w.pixmapHeight = 0
}

func maxRequestBytes(c *Connection) int {
	return int(xproto.Setup(c.XUtil.Conn()).MaximumRequestLength) * 4
}

// rowsPerRequest returns how many 32bpp rows of the given width fit in one
// PutImage request.
func rowsPerRequest(width, maxBytes int) int {
	if width <= 0 {
		return 1
	}
	rows := (maxBytes - putImageHeader) / (width * 4)
	return max(rows, 1)
}

// packBGRA appends rows [y0, y0+n) of img as little-endian 32bpp pixels.
// image.RGBA is already premultiplied, which is what compositors expect of
// ARGB windows. Without an alpha channel (depth 24) transparent pixels come
// out black; ShapeTo keeps them off screen.
func packBGRA(dst []byte, img *image.RGBA, y0, n, width int, depth byte) []byte {
	origin := img.Bounds().Min
	for y := y0; y < y0+n; y++ {
		off := img.PixOffset(origin.X, origin.Y+y)
		row := img.Pix[off : off+width*4]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+4]
			a := p[3]
			if depth != 32 {
				a = 0
			}
			dst = append(dst, p[2], p[1], p[0], a)
		}
	}
	return dst
}

type span struct{ x0, x1 int }

// shapeRegion returns rectangles covering the pixels of img with alpha at
// least minAlpha, limited to width x height. Identical consecutive rows
// merge into one taller rectangle.
func shapeRegion(img *image.RGBA, width, height int, minAlpha uint8) []xproto.Rectangle {
	if img == nil {
		return nil
	}
	width = min(width, img.Bounds().Dx())
	height = min(height, img.Bounds().Dy())
	origin := img.Bounds().Min

	var (
		out  []xproto.Rectangle
		open []xproto.Rectangle
		prev []span
	)
	for y := 0; y < height; y++ {
		spans := rowSpans(img, origin, y, width, minAlpha)
		if slices.Equal(spans, prev) {
			for i := range open {
				open[i].Height++
			}
			continue
		}
		out = append(out, open...)
		open = open[:0]
		for _, sp := range spans {
			open = append(open, xproto.Rectangle{
				X:      int16(sp.x0),
				Y:      int16(y),
				Width:  uint16(sp.x1 - sp.x0),
				Height: 1,
			})
		}
		prev = spans
	}
	return append(out, open...)
}

func rowSpans(img *image.RGBA, origin image.Point, y, width int, minAlpha uint8) []span {
	off := img.PixOffset(origin.X, origin.Y+y)
	row := img.Pix[off : off+width*4]

	var spans []span
	start := -1
	for x := 0; x < width; x++ {
		on := row[x*4+3] >= minAlpha
		switch {
		case on && start < 0:
			start = x
		case !on && start >= 0:
			spans = append(spans, span{start, x})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, width})
	}
	return spans
}
