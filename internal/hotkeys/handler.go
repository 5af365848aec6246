package hotkeys

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/1broseidon/ringlight/internal/uiloop"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Actions are the ring-light operations hotkeys trigger. They run on the UI
// loop.
type Actions interface {
	Toggle() error
	ApplyPreset(name string) error
	AdjustIntensity(delta float64) error
}

// Keys holds key sequences in xgbutil keybind syntax, e.g. "Mod4-Mod1-r".
// Empty sequences are not bound.
type Keys struct {
	Toggle   string
	Warm     string
	Neutral  string
	Cool     string
	Brighter string
	Dimmer   string
}

// Binding is one key sequence and what it does.
type Binding struct {
	Name string
	Keys string
	Run  func(Actions) error
}

// Bindings returns the non-empty bindings in keys. step is the brightness
// change per press.
func Bindings(keys Keys, step float64) []Binding {
	all := []Binding{
		{Name: "toggle", Keys: keys.Toggle, Run: func(a Actions) error { return a.Toggle() }},
		{Name: "warm", Keys: keys.Warm, Run: func(a Actions) error { return a.ApplyPreset("warm") }},
		{Name: "neutral", Keys: keys.Neutral, Run: func(a Actions) error { return a.ApplyPreset("neutral") }},
		{Name: "cool", Keys: keys.Cool, Run: func(a Actions) error { return a.ApplyPreset("cool") }},
		{Name: "brighter", Keys: keys.Brighter, Run: func(a Actions) error { return a.AdjustIntensity(step) }},
		{Name: "dimmer", Keys: keys.Dimmer, Run: func(a Actions) error { return a.AdjustIntensity(-step) }},
	}
	out := all[:0]
	for _, b := range all {
		if b.Keys != "" {
			out = append(out, b)
		}
	}
	return out
}

// x11Accessor is implemented by backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	loop    *uiloop.Loop
	actions Actions
	logger  *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler. Key presses arrive on the X event
// goroutine and are posted to loop.
func NewHandler(backend x11Accessor, loop *uiloop.Loop, actions Actions, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	xu := backend.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:      xu,
		root:    backend.RootWindow(),
		loop:    loop,
		actions: actions,
		logger:  logger,
	}
}

// Register grabs every binding. A grab that fails is reported and the rest
// are still registered.
func (h *Handler) Register(bindings []Binding) error {
	var failed []string
	for _, b := range bindings {
		err := h.RegisterFunc(b.Keys, func() {
			h.loop.Post(func() { h.run(b) })
		})
		if err != nil {
			h.logger.Warn("failed to register hotkey", "action", b.Name, "keys", b.Keys, "error", err)
			failed = append(failed, fmt.Sprintf("%s (%s): %v", b.Name, b.Keys, err))
			continue
		}
		h.logger.Info("hotkey registered", "action", b.Name, "keys", b.Keys)
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to register hotkeys: %v", failed)
	}
	return nil
}

func (h *Handler) run(b Binding) {
	h.logger.Debug("hotkey triggered", "action", b.Name)
	if err := b.Run(h.actions); err != nil {
		h.logger.Warn("hotkey action failed", "action", b.Name, "error", err)
	}
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	xevent.IgnoreMods = ignoreMasks(base)
}

// ignoreMasks returns every combination of the lock masks, including none.
func ignoreMasks(base []uint16) []uint16 {
	unique := map[uint16]struct{}{0: {}}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	sort.Slice(ignore, func(i, j int) bool { return ignore[i] < ignore[j] })
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
