// Package overlay implements the per-display ring-light window. A window
// picks a hardware renderer when one can be acquired for its surface and
// otherwise paints the bands in software, for its whole lifetime.
package overlay

import (
	"errors"
	"fmt"

	"github.com/1broseidon/ringlight/internal/glow"
	"github.com/1broseidon/ringlight/internal/light"
	"github.com/1broseidon/ringlight/internal/platform"
)

// Renderer kinds reported by Window.RendererKind.
const (
	KindHardware = "hardware"
	KindSoftware = "software"
)

// ErrClosed is returned when a closed window is used.
var ErrClosed = errors.New("overlay window closed")

// Window is one overlay surface bound to one display.
type Window struct {
	screen  platform.ScreenDescriptor
	surface platform.Surface
	painter painter

	cfg    light.Configuration
	hasCfg bool
	closed bool
}

// painter is the rendering strategy chosen at creation.
type painter interface {
	kind() string
	// geometry is called after the surface frame, top inset or scale changed.
	geometry(screen platform.ScreenDescriptor, cfg light.Configuration, hasCfg bool) error
	// configure is called after the configuration changed.
	configure(screen platform.ScreenDescriptor, cfg light.Configuration) error
	release()
}

// Create builds and shows a window covering screen. accel may be nil.
func Create(screen platform.ScreenDescriptor, surfaces platform.SurfaceFactory, accel platform.Accelerator) (*Window, error) {
	surface, err := surfaces.NewSurface(screen)
	if err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}
	if err := surface.SetFrame(screen.Frame); err != nil {
		surface.Destroy()
		return nil, fmt.Errorf("set frame: %w", err)
	}

	w := &Window{screen: screen, surface: surface}
	if accel != nil {
		if r, ok := accel.TryAcquire(surface); ok {
			w.painter = &hardwarePainter{renderer: r}
		}
	}
	if w.painter == nil {
		w.painter = &softwarePainter{surface: surface}
	}

	if err := surface.Show(); err != nil {
		w.painter.release()
		surface.Destroy()
		return nil, fmt.Errorf("show surface: %w", err)
	}
	if err := w.painter.geometry(screen, w.cfg, false); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// Screen returns the descriptor of the last applied geometry.
func (w *Window) Screen() platform.ScreenDescriptor {
	return w.screen
}

// Configuration returns the last applied configuration and whether one has
// been applied.
func (w *Window) Configuration() (light.Configuration, bool) {
	return w.cfg, w.hasCfg
}

// RendererKind reports which renderer the window uses.
func (w *Window) RendererKind() string {
	return w.painter.kind()
}

// UpdateGeometry moves the window to the screen's current frame and
// recomputes the bands. Unchanged geometry is a no-op.
func (w *Window) UpdateGeometry(screen platform.ScreenDescriptor) error {
	if w.closed {
		return ErrClosed
	}
	prev := w.screen
	w.screen = screen
	if prev.Frame == screen.Frame && prev.TopInset == screen.TopInset && prev.Scale == screen.Scale {
		return nil
	}

	if prev.Frame != screen.Frame {
		if err := w.surface.SetFrame(screen.Frame); err != nil {
			return fmt.Errorf("set frame: %w", err)
		}
	}
	return w.refresh(false)
}

// ApplyConfiguration renders cfg. Applying the current configuration again
// does nothing.
func (w *Window) ApplyConfiguration(cfg light.Configuration) error {
	if w.closed {
		return ErrClosed
	}
	if w.hasCfg && w.cfg == cfg {
		return nil
	}
	w.cfg = cfg
	w.hasCfg = true
	return w.refresh(true)
}

// refresh repaints after a change. When the configuration draws nothing on
// this screen the surface is hidden, and it is shown again once bands fit.
func (w *Window) refresh(configChanged bool) error {
	if w.hasCfg && FallbackLayout(w.screen, w.cfg).Blank() {
		if w.surface.Visible() {
			w.surface.Hide()
		}
		return nil
	}

	if !w.surface.Visible() {
		if err := w.surface.Show(); err != nil {
			return fmt.Errorf("show surface: %w", err)
		}
		if err := w.painter.geometry(w.screen, w.cfg, false); err != nil {
			return err
		}
		if !w.hasCfg {
			return nil
		}
		return w.painter.configure(w.screen, w.cfg)
	}

	if configChanged {
		return w.painter.configure(w.screen, w.cfg)
	}
	return w.painter.geometry(w.screen, w.cfg, w.hasCfg)
}

// Close releases the renderer and destroys the surface. Closing twice is
// harmless.
func (w *Window) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.painter.release()
	w.surface.Destroy()
}

// hardwarePainter forwards state to an accelerated renderer.
type hardwarePainter struct {
	renderer platform.Renderer
}

func (p *hardwarePainter) kind() string { return KindHardware }

func (p *hardwarePainter) geometry(screen platform.ScreenDescriptor, _ light.Configuration, _ bool) error {
	p.renderer.SetTopInset(float64(screen.TopInset))
	p.renderer.ResizeDrawable(screen.Frame.Width, screen.Frame.Height, screen.Scale)
	return nil
}

func (p *hardwarePainter) configure(_ platform.ScreenDescriptor, cfg light.Configuration) error {
	p.renderer.SetConfiguration(cfg)
	return nil
}

func (p *hardwarePainter) release() {
	p.renderer.Release()
}

// softwarePainter rasterizes the fallback bands and uploads them.
type softwarePainter struct {
	surface platform.Surface
}

func (p *softwarePainter) kind() string { return KindSoftware }

func (p *softwarePainter) geometry(screen platform.ScreenDescriptor, cfg light.Configuration, hasCfg bool) error {
	if !hasCfg {
		return nil
	}
	return p.configure(screen, cfg)
}

func (p *softwarePainter) configure(screen platform.ScreenDescriptor, cfg light.Configuration) error {
	layout := FallbackLayout(screen, cfg)
	if err := p.surface.Draw(glow.Render(layout)); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	return nil
}

func (p *softwarePainter) release() {}

// FallbackLayout computes the software band layout for a screen, edge inset
// included.
func FallbackLayout(screen platform.ScreenDescriptor, cfg light.Configuration) glow.Layout {
	size := glow.Size{W: float64(screen.Frame.Width), H: float64(screen.Frame.Height)}
	return glow.LayoutFor(cfg, float64(screen.TopInset), size)
}
