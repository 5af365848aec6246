//go:build linux

package platform

import (
	"fmt"
	"image"
	"sort"

	"github.com/1broseidon/ringlight/internal/notify"
	"github.com/1broseidon/ringlight/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend exposes an X11 connection as a screen provider, surface
// factory and XRender accelerator.
type LinuxBackend struct {
	conn       *x11.Connection
	accelerate bool
}

var (
	_ ScreenProvider = (*LinuxBackend)(nil)
	_ SurfaceFactory = (*LinuxBackend)(nil)
	_ Accelerator    = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn, accelerate: true}
}

// NewLinuxBackendFromDisplay opens a new X11 connection to display
// ($DISPLAY when empty) and starts watching topology changes.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if err := conn.WatchTopology(); err != nil {
		conn.Close()
		return nil, err
	}
	return NewLinuxBackend(conn), nil
}

// SetAccelerated enables or disables XRender acceleration for new surfaces.
func (b *LinuxBackend) SetAccelerated(enabled bool) {
	b.accelerate = enabled
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops the event loop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// ListScreens returns active displays ordered left to right, then top to
// bottom.
func (b *LinuxBackend) ListScreens() ([]ScreenDescriptor, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	screens := make([]ScreenDescriptor, 0, len(monitors))
	for _, m := range monitors {
		screens = append(screens, screenFromMonitor(m))
	}
	sortScreens(screens)
	return screens, nil
}

// Subscribe registers handler for RandR topology changes. The handler runs
// on the X event goroutine.
func (b *LinuxBackend) Subscribe(handler func()) notify.Token {
	return b.conn.SubscribeTopology(handler)
}

// Unsubscribe removes a topology subscription.
func (b *LinuxBackend) Unsubscribe(token notify.Token) {
	b.conn.UnsubscribeTopology(token)
}

// NewSurface creates an unmapped overlay window covering the screen frame.
func (b *LinuxBackend) NewSurface(screen ScreenDescriptor) (Surface, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	f := screen.Frame
	win, err := conn.CreateOverlayWindow("ringlight "+screen.Name, f.X, f.Y, f.Width, f.Height)
	if err != nil {
		return nil, fmt.Errorf("display %d: %w", screen.ID, err)
	}
	return &x11Surface{win: win}, nil
}

// TryAcquire binds an XRender gradient renderer to an X11 surface.
func (b *LinuxBackend) TryAcquire(surface Surface) (Renderer, bool) {
	if !b.accelerate {
		return nil, false
	}
	s, ok := surface.(*x11Surface)
	if !ok {
		return nil, false
	}
	r, err := b.conn.NewGradientRenderer(s.win)
	if err != nil {
		return nil, false
	}
	return r, true
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

// x11Surface adapts an overlay window to Surface.
type x11Surface struct {
	win *x11.OverlayWindow
}

func (s *x11Surface) SetFrame(frame Rect) error {
	s.win.Configure(frame.X, frame.Y, frame.Width, frame.Height)
	return nil
}

func (s *x11Surface) Show() error   { return s.win.Map() }
func (s *x11Surface) Hide()         { s.win.Unmap() }
func (s *x11Surface) Visible() bool { return s.win.Mapped() }
func (s *x11Surface) Destroy()      { s.win.Destroy() }

func (s *x11Surface) Draw(img *image.RGBA) error {
	return s.win.PutImage(img)
}

func screenFromMonitor(m x11.Monitor) ScreenDescriptor {
	return ScreenDescriptor{
		ID:   DisplayID(m.ID),
		Name: m.Name,
		Frame: Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
		TopInset: m.TopInset,
		Scale:    m.Scale,
	}
}

func sortScreens(screens []ScreenDescriptor) {
	sort.SliceStable(screens, func(i, j int) bool {
		a, b := screens[i].Frame, screens[j].Frame
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return screens[i].ID < screens[j].ID
	})
}
