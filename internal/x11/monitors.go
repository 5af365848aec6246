package x11

import (
	"fmt"
	"math"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	// ID is the RandR output XID driving the monitor. It stays the same
	// for a connector while the server runs.
	ID     uint32
	Name   string
	X      int
	Y      int
	Width  int
	Height int
	// TopInset is the height of dock struts covering the monitor's top edge.
	TopInset int
	Scale    float64
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	resources, err := randr.GetScreenResourcesCurrent(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for _, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		// Mirrored outputs share a CRTC; the first one names the monitor.
		output := crtcInfo.Outputs[0]
		mon := Monitor{
			ID:     uint32(output),
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
			Scale:  1,
		}

		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), output, resources.ConfigTimestamp).Reply()
		if err == nil {
			mon.Name = string(outputInfo.Name)
			mon.Scale = scaleForPhysicalWidth(mon.Width, int(outputInfo.MmWidth))
		}

		monitors = append(monitors, mon)
	}

	if struts, ok := c.dockStruts(); ok {
		for i := range monitors {
			monitors[i].TopInset = topInsetForMonitor(monitors[i], struts)
		}
	}

	return monitors, nil
}

// scaleForPhysicalWidth derives a scale factor from DPI relative to 96,
// rounded to quarter steps and never below 1.
func scaleForPhysicalWidth(widthPx, widthMM int) float64 {
	if widthPx <= 0 || widthMM <= 0 {
		return 1
	}
	dpi := float64(widthPx) / (float64(widthMM) / 25.4)
	scale := math.Round(dpi/96*4) / 4
	if scale < 1 {
		return 1
	}
	return scale
}

// strutGeometry holds every dock's partial strut plus the root size the
// strut coordinates refer to.
type strutGeometry struct {
	rootWidth  int
	rootHeight int
	partials   []ewmh.WmStrutPartial
}

func (c *Connection) dockStruts() (strutGeometry, bool) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return strutGeometry{}, false
	}
	geom := strutGeometry{
		rootWidth:  int(rootGeom.Width),
		rootHeight: int(rootGeom.Height),
	}

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return strutGeometry{}, false
	}

	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
		if err != nil {
			continue
		}

		isDock := false
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DOCK" {
				isDock = true
				break
			}
		}
		if !isDock {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			geom.partials = append(geom.partials, *sp)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			geom.partials = append(geom.partials, ewmh.WmStrutPartial{
				Left:       s.Left,
				Right:      s.Right,
				Top:        s.Top,
				Bottom:     s.Bottom,
				LeftEndY:   uint(geom.rootHeight - 1),
				RightEndY:  uint(geom.rootHeight - 1),
				TopEndX:    uint(geom.rootWidth - 1),
				BottomEndX: uint(geom.rootWidth - 1),
			})
		}
	}

	return geom, len(geom.partials) > 0
}

// topInsetForMonitor returns how far top struts reach into the monitor.
// Strut rows are measured from the root window's top edge.
func topInsetForMonitor(m Monitor, struts strutGeometry) int {
	monX1 := m.X
	monY1 := m.Y
	monX2 := m.X + m.Width
	monY2 := m.Y + m.Height

	inset := 0
	for _, sp := range struts.partials {
		// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
		if sp.Top == 0 {
			continue
		}
		x1 := int(sp.TopStartX)
		x2 := int(sp.TopEndX) + 1
		y1 := 0
		y2 := int(sp.Top)
		isect := intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2)
		if isect.w > 0 && isect.h > 0 {
			inset = max(inset, y2-monY1)
		}
	}
	return min(inset, m.Height)
}

type intersection struct {
	w int
	h int
}

func intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1 := max(ax1, bx1)
	y1 := max(ay1, by1)
	x2 := min(ax2, bx2)
	y2 := min(ay2, by2)

	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{w: x2 - x1, h: y2 - y1}
}
