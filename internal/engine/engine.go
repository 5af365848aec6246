// Package engine keeps exactly one overlay window per selected display. It
// reconciles the live display topology and the enable/selection state
// against the windows it owns.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/1broseidon/ringlight/internal/light"
	"github.com/1broseidon/ringlight/internal/notify"
	"github.com/1broseidon/ringlight/internal/overlay"
	"github.com/1broseidon/ringlight/internal/platform"
	"github.com/1broseidon/ringlight/internal/uiloop"
)

// Window is an overlay owned by the engine.
type Window interface {
	Screen() platform.ScreenDescriptor
	RendererKind() string
	UpdateGeometry(screen platform.ScreenDescriptor) error
	ApplyConfiguration(cfg light.Configuration) error
	Close()
}

// WindowFactory creates a window covering a screen.
type WindowFactory interface {
	Create(screen platform.ScreenDescriptor) (Window, error)
}

// Overlays creates overlay windows on a platform backend.
type Overlays struct {
	Surfaces    platform.SurfaceFactory
	Accelerator platform.Accelerator
}

// Create implements WindowFactory.
func (o Overlays) Create(screen platform.ScreenDescriptor) (Window, error) {
	w, err := overlay.Create(screen, o.Surfaces, o.Accelerator)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// CreateError reports that no window could be created for a display. The
// display stays without a window until the next reconciliation.
type CreateError struct {
	Display platform.DisplayID
	Err     error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("display %d: create window: %v", e.Display, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

// WindowInfo describes an open window.
type WindowInfo struct {
	Display  platform.DisplayID `json:"display"`
	Name     string             `json:"name"`
	Frame    platform.Rect      `json:"frame"`
	TopInset int                `json:"top_inset"`
	Renderer string             `json:"renderer"`
}

// Options configures an Engine.
type Options struct {
	Screens platform.ScreenProvider
	Windows WindowFactory
	Loop    *uiloop.Loop
	Logger  *slog.Logger
}

// Engine owns the window collection. Every method except New must run on
// the engine's loop.
type Engine struct {
	screens platform.ScreenProvider
	factory WindowFactory
	loop    *uiloop.Loop
	logger  *slog.Logger
	token   notify.Token

	enabled  bool
	cfg      light.Configuration
	selected platform.DisplayID
	windows  map[platform.DisplayID]Window
	closed   bool
}

// New creates a disabled engine with the default configuration and every
// display selected, subscribed to topology changes. Notifications are
// posted to the loop.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		screens:  opts.Screens,
		factory:  opts.Windows,
		loop:     opts.Loop,
		logger:   logger,
		cfg:      light.Default(),
		selected: platform.AllDisplays,
		windows:  make(map[platform.DisplayID]Window),
	}
	e.token = e.screens.Subscribe(func() {
		e.loop.Post(e.ScreenTopologyChanged)
	})
	return e
}

// Update sets the engine state and reconciles. Creation failures are
// returned as joined *CreateError values; the remaining displays are
// unaffected.
func (e *Engine) Update(enabled bool, cfg light.Configuration, selected platform.DisplayID) error {
	e.loop.MustOwn()
	e.enabled = enabled
	e.cfg = cfg
	e.selected = selected
	return e.reconcile()
}

// ScreenTopologyChanged re-reconciles with the last state.
func (e *Engine) ScreenTopologyChanged() {
	e.loop.MustOwn()
	e.logger.Debug("display topology changed")
	if err := e.reconcile(); err != nil {
		e.logger.Warn("reconcile after topology change", "error", err)
	}
}

// Enabled reports the last enable flag.
func (e *Engine) Enabled() bool {
	e.loop.MustOwn()
	return e.enabled
}

// Configuration returns the last configuration.
func (e *Engine) Configuration() light.Configuration {
	e.loop.MustOwn()
	return e.cfg
}

// Selected returns the last display selection.
func (e *Engine) Selected() platform.DisplayID {
	e.loop.MustOwn()
	return e.selected
}

// Windows returns the open windows ordered by display identifier.
func (e *Engine) Windows() []WindowInfo {
	e.loop.MustOwn()
	out := make([]WindowInfo, 0, len(e.windows))
	for id, w := range e.windows {
		s := w.Screen()
		out = append(out, WindowInfo{
			Display:  id,
			Name:     s.Name,
			Frame:    s.Frame,
			TopInset: s.TopInset,
			Renderer: w.RendererKind(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Display < out[j].Display })
	return out
}

// Close releases every window and stops listening for topology changes.
// The engine ignores later updates.
func (e *Engine) Close() {
	e.loop.MustOwn()
	if e.closed {
		return
	}
	e.closed = true
	e.screens.Unsubscribe(e.token)
	e.closeAll()
}

func (e *Engine) reconcile() error {
	if e.closed {
		return nil
	}
	if !e.enabled {
		e.closeAll()
		return nil
	}

	screens, err := e.screens.ListScreens()
	if err != nil {
		// Keep the current windows; the next trigger retries.
		return fmt.Errorf("list screens: %w", err)
	}

	desired := Desired(screens, e.selected)
	byID := make(map[platform.DisplayID]platform.ScreenDescriptor, len(desired))
	ids := make([]platform.DisplayID, 0, len(desired))
	for _, s := range desired {
		ids = append(ids, s.ID)
		byID[s.ID] = s
	}

	plan := Reconcile(ids, e.windows)
	if !plan.Empty() {
		e.logger.Debug("reconcile",
			"create", plan.Create,
			"update", plan.Update,
			"close", plan.Close,
		)
	}

	// Close first so a selection change never shows two windows at once.
	for _, id := range plan.Close {
		e.closeWindow(id)
	}

	var errs []error
	for _, id := range plan.Update {
		w := e.windows[id]
		if err := w.UpdateGeometry(byID[id]); err != nil {
			errs = append(errs, fmt.Errorf("display %d: update geometry: %w", id, err))
		}
		if err := w.ApplyConfiguration(e.cfg); err != nil {
			errs = append(errs, fmt.Errorf("display %d: apply configuration: %w", id, err))
		}
	}

	for _, id := range plan.Create {
		w, err := e.factory.Create(byID[id])
		if err != nil {
			e.logger.Warn("create overlay window", "display", id, "error", err)
			errs = append(errs, &CreateError{Display: id, Err: err})
			continue
		}
		e.windows[id] = w
		e.logger.Info("overlay window opened", "display", id, "renderer", w.RendererKind())
		if err := w.ApplyConfiguration(e.cfg); err != nil {
			errs = append(errs, fmt.Errorf("display %d: apply configuration: %w", id, err))
		}
	}

	return errors.Join(errs...)
}

func (e *Engine) closeAll() {
	if len(e.windows) == 0 {
		return
	}
	ids := make([]platform.DisplayID, 0, len(e.windows))
	for id := range e.windows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		e.closeWindow(id)
	}
}

func (e *Engine) closeWindow(id platform.DisplayID) {
	w, ok := e.windows[id]
	if !ok {
		return
	}
	delete(e.windows, id)
	w.Close()
	e.logger.Info("overlay window closed", "display", id)
}
