package x11

import (
	"fmt"

	"github.com/1broseidon/ringlight/internal/notify"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// ARGB is the 32-bit TrueColor visual used for translucent overlays.
	// Nil when the server offers none.
	ARGB *ARGBVisual

	hasShape  bool
	hasRender bool

	topology notify.Registry[struct{}]
}

// ARGBVisual is a depth-32 visual with its colormap.
type ARGBVisual struct {
	Visual   xproto.Visualid
	Colormap xproto.Colormap
}

// NewConnection connects to $DISPLAY (or display when non-empty) and
// initializes the extensions overlays need. RandR is required; SHAPE and
// RENDER are optional.
func NewConnection(display string) (*Connection, error) {
	var (
		xu  *xgbutil.XUtil
		err error
	)
	if display != "" {
		xu, err = xgbutil.NewConnDisplay(display)
	} else {
		xu, err = xgbutil.NewConn()
	}
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)

	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}
	c.hasShape = shape.Init(xu.Conn()) == nil
	c.hasRender = render.Init(xu.Conn()) == nil

	argb, err := findARGBVisual(xu)
	if err == nil {
		c.ARGB = argb
	}

	return c, nil
}

// Compositing reports whether a compositing manager owns the
// _NET_WM_CM_Sn selection for the default screen.
func (c *Connection) Compositing() bool {
	atom, err := xprop.Atm(c.XUtil, fmt.Sprintf("_NET_WM_CM_S%d", c.XUtil.Conn().DefaultScreen))
	if err != nil {
		return false
	}
	reply, err := xproto.GetSelectionOwner(c.XUtil.Conn(), atom).Reply()
	if err != nil {
		return false
	}
	return reply.Owner != xproto.WindowNone
}

// HasRender reports whether the RENDER extension is available.
func (c *Connection) HasRender() bool {
	return c.hasRender
}

// HasShape reports whether the SHAPE extension is available.
func (c *Connection) HasShape() bool {
	return c.hasShape
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit asks the event loop to return after the current event.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

func findARGBVisual(xu *xgbutil.XUtil) (*ARGBVisual, error) {
	screen := xu.Screen()
	for _, depth := range screen.AllowedDepths {
		if depth.Depth != 32 {
			continue
		}
		for _, visual := range depth.Visuals {
			if visual.Class != xproto.VisualClassTrueColor {
				continue
			}
			cmap, err := xproto.NewColormapId(xu.Conn())
			if err != nil {
				return nil, err
			}
			if err := xproto.CreateColormapChecked(xu.Conn(), xproto.ColormapAllocNone, cmap, screen.Root, visual.VisualId).Check(); err != nil {
				return nil, fmt.Errorf("create colormap: %w", err)
			}
			return &ARGBVisual{Visual: visual.VisualId, Colormap: cmap}, nil
		}
	}
	return nil, fmt.Errorf("no 32-bit TrueColor visual")
}
