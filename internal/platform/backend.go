package platform

import (
	"fmt"
	"image"

	"github.com/1broseidon/ringlight/internal/light"
	"github.com/1broseidon/ringlight/internal/notify"
)

// DisplayID identifies a physical display across enumerations. Zero is
// reserved for "all displays" and is never a real display.
type DisplayID uint32

// AllDisplays is the selection sentinel meaning every connected display.
const AllDisplays DisplayID = 0

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// ScreenDescriptor is an immutable snapshot of one display.
type ScreenDescriptor struct {
	ID    DisplayID `json:"id"`
	Name  string    `json:"name"`
	Frame Rect      `json:"frame"`
	// TopInset is the height reserved by system UI (panels, bars) at the
	// top of the frame.
	TopInset int `json:"top_inset"`
	// Scale is the backing scale factor; 1 on standard density displays.
	Scale float64 `json:"scale"`
}

// ScreenProvider enumerates displays and reports topology changes.
// Subscribers may be called from any goroutine.
type ScreenProvider interface {
	ListScreens() ([]ScreenDescriptor, error)
	Subscribe(handler func()) notify.Token
	Unsubscribe(token notify.Token)
}

// Surface is an on-screen window resource owned by one overlay window.
type Surface interface {
	SetFrame(frame Rect) error
	Show() error
	Hide()
	Visible() bool
	// Draw replaces the surface contents with a premultiplied image.
	Draw(img *image.RGBA) error
	Destroy()
}

// SurfaceFactory creates surfaces covering a display.
type SurfaceFactory interface {
	NewSurface(screen ScreenDescriptor) (Surface, error)
}

// Renderer is a hardware-accelerated ring-light renderer bound to a surface.
// Each setter redraws when its value changes.
type Renderer interface {
	SetConfiguration(cfg light.Configuration)
	SetTopInset(inset float64)
	ResizeDrawable(width, height int, scale float64)
	Release()
}

// Accelerator hands out hardware renderers. A false result means no
// acceleration for that surface, which is not an error.
type Accelerator interface {
	TryAcquire(surface Surface) (Renderer, bool)
}
