package palette

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/1broseidon/ringlight/internal/controller"
	"github.com/1broseidon/ringlight/internal/ipc"
	"github.com/1broseidon/ringlight/internal/light"
	"github.com/1broseidon/ringlight/internal/platform"
)

type fakeRun struct {
	args   []string
	stdin  string
	stdout string
	stderr string
	code   int
	err    error
}

func (f *fakeRun) run(command string, args []string, stdin io.Reader) (string, string, int, error) {
	f.args = args
	data, _ := io.ReadAll(stdin)
	f.stdin = string(data)
	return f.stdout, f.stderr, f.code, f.err
}

func testLauncher(kind launcherKind, f *fakeRun) *launcher {
	l := newLauncher(kind)
	l.run = f.run
	return l
}

var sampleItems = []Item{
	{Label: "Turn off", Action: ActionToggle},
	{Label: "Presets", IsHeader: true},
	{Label: "warm <3200 K>", Action: "preset:warm"},
	{Label: "cool", Action: "preset:cool", IsActive: true},
}

func TestRofiShow(t *testing.T) {
	f := &fakeRun{stdout: "2\n"}
	got, err := testLauncher(kindRofi, f).Show("ringlight", sampleItems, "Ring light on")
	if err != nil {
		t.Fatalf("Show() error: %v", err)
	}
	if got.Action != "preset:warm" {
		t.Fatalf("picked %+v", got)
	}

	args := strings.Join(f.args, " ")
	for _, want := range []string{"-dmenu", "-format i", "-p ringlight", "-a 3", "-selected-row 3", "-mesg Ring light on"} {
		if !strings.Contains(args, want) {
			t.Fatalf("args %q missing %q", args, want)
		}
	}
	rows := strings.Split(f.stdin, "\n")
	if rows[1] != "<b>Presets</b>\x00nonselectable\x1ftrue" {
		t.Fatalf("header row = %q", rows[1])
	}
	if rows[2] != "warm &lt;3200 K&gt;" {
		t.Fatalf("label should be escaped, got %q", rows[2])
	}
}

func TestDmenuMatchesByText(t *testing.T) {
	f := &fakeRun{stdout: "* cool\n"}
	got, err := testLauncher(kindDmenu, f).Show("", sampleItems, "")
	if err != nil {
		t.Fatalf("Show() error: %v", err)
	}
	if got.Action != "preset:cool" {
		t.Fatalf("picked %+v", got)
	}
	if strings.Join(f.args, " ") != "-i" {
		t.Fatalf("args = %q", f.args)
	}

	f.stdout = "Presets\n"
	if _, err := testLauncher(kindDmenu, f).Show("", sampleItems, ""); err == nil {
		t.Fatalf("header should not be selectable")
	}
}

func TestShowCancelAndFailure(t *testing.T) {
	f := &fakeRun{code: 1, err: errors.New("exit status 1")}
	if _, err := testLauncher(kindFuzzel, f).Show("", sampleItems, ""); !errors.Is(err, ErrCancelled) {
		t.Fatalf("exit 1 should cancel, got %v", err)
	}

	f = &fakeRun{code: 2, stderr: "cannot open display", err: errors.New("exit status 2")}
	_, err := testLauncher(kindFuzzel, f).Show("", sampleItems, "")
	if err == nil || !strings.Contains(err.Error(), "cannot open display") {
		t.Fatalf("expected stderr in error, got %v", err)
	}

	f = &fakeRun{stdout: "9"}
	if _, err := testLauncher(kindFuzzel, f).Show("", sampleItems, ""); err == nil {
		t.Fatalf("out of range index should fail")
	}

	if _, err := testLauncher(kindRofi, &fakeRun{}).Show("", nil, ""); err == nil {
		t.Fatalf("empty menu should fail")
	}
}

func TestNewBackendRejectsUnknown(t *testing.T) {
	if _, err := NewBackend("wofi"); err == nil {
		t.Fatalf("expected error for unsupported launcher")
	}
}

func sampleStatus() *ipc.StatusData {
	p := light.DefaultParams()
	p.Intensity = 0.5
	p.Temperature = 6500
	return &ipc.StatusData{Enabled: true, Params: p, Preset: "cool", SelectedDisplay: 7}
}

func TestItems(t *testing.T) {
	items := Items(sampleStatus(),
		[]light.Preset{{Name: "warm", Kelvin: 3200}, {Name: "cool", Kelvin: 6500}},
		[]controller.Display{
			{ID: platform.AllDisplays, Name: controller.AllDisplaysName},
			{ID: 7, Name: "HDMI-1", Frame: platform.Rect{Width: 1920, Height: 1080}, Selected: true},
		})

	active := map[string]bool{}
	actions := map[string]bool{}
	for _, it := range items {
		if it.IsActive {
			active[it.Action] = true
		}
		actions[it.Action] = true
	}
	if items[0].Label != "Turn off" || items[0].Action != ActionToggle {
		t.Fatalf("first item = %+v", items[0])
	}
	for _, want := range []string{"preset:cool", "brightness:0.5", "display:7"} {
		if !active[want] {
			t.Fatalf("%s should be active, got %v", want, active)
		}
	}
	for _, want := range []string{"preset:warm", "brightness:1", "display:0"} {
		if !actions[want] || active[want] {
			t.Fatalf("%s should be present and inactive", want)
		}
	}
	if got := Summary(sampleStatus()); got != "Ring light on, 50% at 6500 K" {
		t.Fatalf("Summary() = %q", got)
	}
}

type fakeClient struct {
	calls []string
	patch ipc.SetPayload
}

func (c *fakeClient) GetStatus() (*ipc.StatusData, error) { return sampleStatus(), nil }
func (c *fakeClient) GetPresets() (*ipc.PresetsData, error) {
	return &ipc.PresetsData{Presets: []light.Preset{{Name: "warm", Kelvin: 3200}}}, nil
}
func (c *fakeClient) GetDisplays() (*ipc.DisplaysData, error) { return &ipc.DisplaysData{}, nil }
func (c *fakeClient) Toggle() (*ipc.StatusData, error) {
	c.calls = append(c.calls, "toggle")
	return sampleStatus(), nil
}
func (c *fakeClient) ApplyPreset(name string) (*ipc.StatusData, error) {
	c.calls = append(c.calls, "preset "+name)
	return sampleStatus(), nil
}
func (c *fakeClient) Set(patch ipc.SetPayload) (*ipc.StatusData, error) {
	c.calls = append(c.calls, "set")
	c.patch = patch
	return sampleStatus(), nil
}
func (c *fakeClient) SelectDisplay(id platform.DisplayID) (*ipc.StatusData, error) {
	c.calls = append(c.calls, "display "+strconv.FormatUint(uint64(id), 10))
	return sampleStatus(), nil
}

func TestExecute(t *testing.T) {
	c := &fakeClient{}
	for _, action := range []string{ActionToggle, "preset:warm", "brightness:0.75", "display:7"} {
		if _, err := Execute(c, action); err != nil {
			t.Fatalf("Execute(%q) error: %v", action, err)
		}
	}
	want := []string{"toggle", "preset warm", "set", "display 7"}
	if strings.Join(c.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", c.calls, want)
	}
	if c.patch.Intensity == nil || *c.patch.Intensity != 0.75 {
		t.Fatalf("patch = %+v", c.patch)
	}

	for _, bad := range []string{"", "brightness:x", "display:-1", "reboot"} {
		if _, err := Execute(c, bad); err == nil {
			t.Fatalf("Execute(%q) should fail", bad)
		}
	}
}

type stubBackend struct {
	pick Item
	err  error
	seen []Item
}

func (s *stubBackend) Name() string { return "stub" }
func (s *stubBackend) Show(prompt string, items []Item, message string) (Item, error) {
	s.seen = items
	return s.pick, s.err
}

func TestRun(t *testing.T) {
	c := &fakeClient{}
	if err := Run(c, &stubBackend{pick: Item{Action: "preset:warm"}}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(c.calls) != 1 || c.calls[0] != "preset warm" {
		t.Fatalf("calls = %v", c.calls)
	}

	c = &fakeClient{}
	if err := Run(c, &stubBackend{err: ErrCancelled}); err != nil {
		t.Fatalf("cancel should not be an error: %v", err)
	}
	if len(c.calls) != 0 {
		t.Fatalf("cancel should not act, got %v", c.calls)
	}
}
