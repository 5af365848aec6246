package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/ringlight/internal/light"
	"github.com/1broseidon/ringlight/internal/notify"
	"github.com/1broseidon/ringlight/internal/platform"
	"github.com/1broseidon/ringlight/internal/uiloop"
)

type fakeScreens struct {
	mu       sync.Mutex
	screens  []platform.ScreenDescriptor
	err      error
	handlers notify.Registry[struct{}]
	tokens   map[notify.Token]bool
}

func (f *fakeScreens) set(screens ...platform.ScreenDescriptor) {
	f.mu.Lock()
	f.screens = screens
	f.mu.Unlock()
}

func (f *fakeScreens) ListScreens() ([]platform.ScreenDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]platform.ScreenDescriptor(nil), f.screens...), nil
}

func (f *fakeScreens) Subscribe(handler func()) notify.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := f.handlers.Subscribe(func(struct{}) { handler() })
	if f.tokens == nil {
		f.tokens = make(map[notify.Token]bool)
	}
	f.tokens[token] = true
	return token
}

func (f *fakeScreens) Unsubscribe(token notify.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers.Unsubscribe(token)
	delete(f.tokens, token)
}

func (f *fakeScreens) fire() {
	f.handlers.Notify(struct{}{})
}

type fakeWindow struct {
	screen  platform.ScreenDescriptor
	cfg     light.Configuration
	applies int
	moves   int
	closed  bool
}

func (w *fakeWindow) Screen() platform.ScreenDescriptor { return w.screen }
func (w *fakeWindow) RendererKind() string              { return "software" }

func (w *fakeWindow) UpdateGeometry(s platform.ScreenDescriptor) error {
	if s != w.screen {
		w.moves++
	}
	w.screen = s
	return nil
}

func (w *fakeWindow) ApplyConfiguration(cfg light.Configuration) error {
	if cfg != w.cfg {
		w.applies++
	}
	w.cfg = cfg
	return nil
}

func (w *fakeWindow) Close() { w.closed = true }

type fakeFactory struct {
	created []*fakeWindow
	fail    map[platform.DisplayID]error
	// live counts windows created and not yet closed.
	maxLive int
}

func (f *fakeFactory) Create(s platform.ScreenDescriptor) (Window, error) {
	if err := f.fail[s.ID]; err != nil {
		return nil, err
	}
	w := &fakeWindow{screen: s}
	f.created = append(f.created, w)
	if n := f.live(); n > f.maxLive {
		f.maxLive = n
	}
	return w, nil
}

func (f *fakeFactory) live() int {
	n := 0
	for _, w := range f.created {
		if !w.closed {
			n++
		}
	}
	return n
}

func (f *fakeFactory) closed() int {
	return len(f.created) - f.live()
}

var (
	display1 = platform.ScreenDescriptor{ID: 1, Name: "eDP-1", Frame: platform.Rect{Width: 1920, Height: 1080}, TopInset: 24, Scale: 1}
	display2 = platform.ScreenDescriptor{ID: 2, Name: "DP-1", Frame: platform.Rect{X: 1920, Width: 2560, Height: 1440}, Scale: 1}
)

type harness struct {
	t       *testing.T
	loop    *uiloop.Loop
	screens *fakeScreens
	factory *fakeFactory
	engine  *Engine
}

func newHarness(t *testing.T, screens ...platform.ScreenDescriptor) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	loop := uiloop.New(nil)
	go loop.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})

	h := &harness{
		t:       t,
		loop:    loop,
		screens: &fakeScreens{},
		factory: &fakeFactory{},
	}
	h.screens.set(screens...)
	h.engine = New(Options{Screens: h.screens, Windows: h.factory, Loop: loop})
	return h
}

// do runs fn on the loop.
func (h *harness) do(fn func()) {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.loop.Do(ctx, fn); err != nil {
		h.t.Fatalf("loop.Do: %v", err)
	}
}

func (h *harness) update(enabled bool, cfg light.Configuration, selected platform.DisplayID) error {
	var err error
	h.do(func() { err = h.engine.Update(enabled, cfg, selected) })
	return err
}

func (h *harness) windows() map[platform.DisplayID]*fakeWindow {
	out := make(map[platform.DisplayID]*fakeWindow)
	h.do(func() {
		for id, w := range h.engine.windows {
			out[id] = w.(*fakeWindow)
		}
	})
	return out
}

func keys(m map[platform.DisplayID]*fakeWindow) []platform.DisplayID {
	out := make([]platform.DisplayID, 0, len(m))
	for _, id := range []platform.DisplayID{1, 2, 3} {
		if _, ok := m[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func sameIDs(a, b []platform.DisplayID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAllDisplaysOpensOneWindowEach(t *testing.T) {
	h := newHarness(t, display1, display2)
	if err := h.update(true, light.Default(), platform.AllDisplays); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	got := h.windows()
	if !sameIDs(keys(got), []platform.DisplayID{1, 2}) {
		t.Fatalf("windows = %v, want [1 2]", keys(got))
	}
	if got[1].screen != display1 || got[2].screen != display2 {
		t.Fatalf("window geometry mismatch: %+v %+v", got[1].screen, got[2].screen)
	}
	for id, w := range got {
		if w.cfg != light.Default() {
			t.Fatalf("window %d configuration not applied", id)
		}
	}
}

func TestSelectionSwitchNeverOverlaps(t *testing.T) {
	h := newHarness(t, display1, display2)
	if err := h.update(true, light.Default(), 1); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got := keys(h.windows()); !sameIDs(got, []platform.DisplayID{1}) {
		t.Fatalf("windows = %v, want [1]", got)
	}

	if err := h.update(true, light.Default(), 2); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got := keys(h.windows()); !sameIDs(got, []platform.DisplayID{2}) {
		t.Fatalf("windows = %v, want [2]", got)
	}
	if h.factory.maxLive != 1 {
		t.Fatalf("windows for both displays existed at once (max live %d)", h.factory.maxLive)
	}
	if !h.factory.created[0].closed {
		t.Fatalf("window for display 1 not closed")
	}
}

func TestUnplugKeepsRemainingWindow(t *testing.T) {
	h := newHarness(t, display1, display2)
	if err := h.update(true, light.Default(), platform.AllDisplays); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	before := h.windows()

	h.screens.set(display1)
	h.screens.fire()
	// The notification is posted to the loop; a Do afterwards runs after it.
	after := h.windows()

	if !sameIDs(keys(after), []platform.DisplayID{1}) {
		t.Fatalf("windows = %v, want [1]", keys(after))
	}
	if after[1] != before[1] {
		t.Fatalf("window for display 1 was recreated")
	}
	if !before[2].closed {
		t.Fatalf("window for display 2 not closed")
	}
	if before[1].moves != 0 || before[1].applies != 1 {
		t.Fatalf("untouched window changed: moves=%d applies=%d", before[1].moves, before[1].applies)
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	h := newHarness(t, display1, display2)
	for i := 0; i < 3; i++ {
		if err := h.update(true, light.Default(), platform.AllDisplays); err != nil {
			t.Fatalf("Update() error: %v", err)
		}
	}
	if len(h.factory.created) != 2 || h.factory.closed() != 0 {
		t.Fatalf("created=%d closed=%d, want 2 and 0", len(h.factory.created), h.factory.closed())
	}
	for _, w := range h.factory.created {
		if w.applies != 1 {
			t.Fatalf("configuration applied %d times, want 1", w.applies)
		}
	}
}

func TestConfigurationChangeUpdatesInPlace(t *testing.T) {
	h := newHarness(t, display1)
	if err := h.update(true, light.Default(), platform.AllDisplays); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	warm := light.Default().WithTemperature(3000)
	if err := h.update(true, warm, platform.AllDisplays); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if len(h.factory.created) != 1 {
		t.Fatalf("created %d windows, want 1", len(h.factory.created))
	}
	if w := h.factory.created[0]; w.cfg != warm || w.applies != 2 {
		t.Fatalf("window cfg not updated: applies=%d", w.applies)
	}
}

func TestResizeUpdatesGeometry(t *testing.T) {
	h := newHarness(t, display1)
	if err := h.update(true, light.Default(), platform.AllDisplays); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	resized := display1
	resized.Frame.Width = 1280
	resized.Frame.Height = 800
	h.screens.set(resized)
	h.screens.fire()

	got := h.windows()
	if got[1].screen != resized || got[1].moves != 1 {
		t.Fatalf("geometry not updated: %+v", got[1].screen)
	}
}

func TestDisableClearsWindows(t *testing.T) {
	h := newHarness(t, display1, display2)
	if err := h.update(true, light.Default(), platform.AllDisplays); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if err := h.update(false, light.Default(), platform.AllDisplays); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if n := len(h.windows()); n != 0 {
		t.Fatalf("%d windows left after disable", n)
	}
	if h.factory.closed() != 2 {
		t.Fatalf("closed %d windows, want 2", h.factory.closed())
	}

	// Disabled engines ignore topology changes.
	h.screens.fire()
	if n := len(h.windows()); n != 0 || len(h.factory.created) != 2 {
		t.Fatalf("topology change while disabled opened windows")
	}
	if err := h.update(false, light.Default(), platform.AllDisplays); err != nil {
		t.Fatalf("Update() with nothing held: %v", err)
	}
}

func TestDisconnectedSelectionIsEmpty(t *testing.T) {
	h := newHarness(t, display1, display2)
	if err := h.update(true, light.Default(), platform.AllDisplays); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if err := h.update(true, light.Default(), 42); err != nil {
		t.Fatalf("Update() with absent display should not fail: %v", err)
	}
	if n := len(h.windows()); n != 0 {
		t.Fatalf("%d windows for an absent selection, want 0", n)
	}
}

func TestZeroDisplaysClosesEverything(t *testing.T) {
	h := newHarness(t, display1)
	if err := h.update(true, light.Default(), platform.AllDisplays); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	h.screens.set()
	h.screens.fire()
	if n := len(h.windows()); n != 0 {
		t.Fatalf("%d windows with no displays", n)
	}
}

func TestListScreensErrorKeepsWindows(t *testing.T) {
	h := newHarness(t, display1)
	if err := h.update(true, light.Default(), platform.AllDisplays); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	h.screens.mu.Lock()
	h.screens.err = errors.New("connection lost")
	h.screens.mu.Unlock()

	if err := h.update(true, light.Default(), platform.AllDisplays); err == nil {
		t.Fatalf("Update() should report the enumeration failure")
	}
	if n := len(h.windows()); n != 1 {
		t.Fatalf("windows = %d, want the existing window kept", n)
	}
}

func TestCreateFailureIsRetried(t *testing.T) {
	h := newHarness(t, display1, display2)
	boom := errors.New("out of resources")
	h.factory.fail = map[platform.DisplayID]error{2: boom}

	err := h.update(true, light.Default(), platform.AllDisplays)
	var createErr *CreateError
	if !errors.As(err, &createErr) || createErr.Display != 2 || !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want CreateError for display 2", err)
	}
	if got := keys(h.windows()); !sameIDs(got, []platform.DisplayID{1}) {
		t.Fatalf("windows = %v, want [1]", got)
	}

	h.factory.fail = nil
	h.screens.fire()
	if got := keys(h.windows()); !sameIDs(got, []platform.DisplayID{1, 2}) {
		t.Fatalf("windows after retry = %v, want [1 2]", got)
	}
}

func TestWindowsSnapshot(t *testing.T) {
	h := newHarness(t, display2, display1)
	if err := h.update(true, light.Default(), platform.AllDisplays); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	var infos []WindowInfo
	h.do(func() { infos = h.engine.Windows() })
	if len(infos) != 2 || infos[0].Display != 1 || infos[1].Display != 2 {
		t.Fatalf("Windows() = %+v", infos)
	}
	if infos[0].Name != "eDP-1" || infos[0].TopInset != 24 || infos[0].Renderer != "software" {
		t.Fatalf("Windows()[0] = %+v", infos[0])
	}
}

func TestCloseUnsubscribesAndReleases(t *testing.T) {
	h := newHarness(t, display1, display2)
	if err := h.update(true, light.Default(), platform.AllDisplays); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	h.do(h.engine.Close)
	h.do(h.engine.Close)

	if n := len(h.screens.tokens); n != 0 {
		t.Fatalf("%d topology subscriptions left after Close", n)
	}
	if h.factory.closed() != 2 {
		t.Fatalf("closed %d windows, want 2", h.factory.closed())
	}
	if err := h.update(true, light.Default(), platform.AllDisplays); err != nil {
		t.Fatalf("Update() after Close: %v", err)
	}
	if len(h.factory.created) != 2 {
		t.Fatalf("closed engine created windows")
	}
}

func TestEntryPointsRequireLoop(t *testing.T) {
	h := newHarness(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("Update() off the loop should panic")
		}
	}()
	_ = h.engine.Update(true, light.Default(), platform.AllDisplays)
}
