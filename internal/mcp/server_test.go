package mcp

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/ringlight/internal/controller"
	"github.com/1broseidon/ringlight/internal/engine"
	"github.com/1broseidon/ringlight/internal/ipc"
	"github.com/1broseidon/ringlight/internal/light"
	"github.com/1broseidon/ringlight/internal/platform"
)

type fakeClient struct {
	enabled  bool
	params   light.Params
	selected platform.DisplayID
	setErr   error
	patches  []ipc.SetPayload
}

func newFakeClient() *fakeClient {
	return &fakeClient{params: light.DefaultParams()}
}

func (c *fakeClient) status() *ipc.StatusData {
	cfg := light.Build(c.params)
	st := &ipc.StatusData{
		Enabled:         c.enabled,
		Params:          c.params,
		Effective:       cfg.Params(),
		Color:           cfg.Color().Clamped().Hex(),
		SelectedDisplay: c.selected,
	}
	if c.enabled {
		st.Windows = []engine.WindowInfo{{Display: 7, Name: "HDMI-1", Renderer: "software"}}
	}
	return st
}

func (c *fakeClient) GetStatus() (*ipc.StatusData, error) { return c.status(), nil }

func (c *fakeClient) GetDisplays() (*ipc.DisplaysData, error) {
	return &ipc.DisplaysData{Displays: []controller.Display{
		{ID: platform.AllDisplays, Name: controller.AllDisplaysName, Selected: c.selected == 0},
		{ID: 7, Name: "HDMI-1", Frame: platform.Rect{X: 1920, Width: 2560, Height: 1440}, Selected: c.selected == 7},
	}}, nil
}

func (c *fakeClient) Set(p ipc.SetPayload) (*ipc.StatusData, error) {
	if c.setErr != nil {
		return nil, c.setErr
	}
	c.patches = append(c.patches, p)
	if p.Enabled != nil {
		c.enabled = *p.Enabled
	}
	if p.Width != nil {
		c.params.Width = *p.Width
	}
	return c.status(), nil
}

func (c *fakeClient) ApplyPreset(name string) (*ipc.StatusData, error) {
	if name != "warm" {
		return nil, errors.New("daemon error: unknown preset: " + name)
	}
	c.params.Temperature = 3400
	return c.status(), nil
}

func (c *fakeClient) SelectDisplay(id platform.DisplayID) (*ipc.StatusData, error) {
	c.selected = id
	return c.status(), nil
}

func TestSetRingLightClampsAndReports(t *testing.T) {
	client := newFakeClient()
	s := NewServer(client, nil)
	on := true
	width := 1000.0

	_, out, err := s.handleSetRingLight(context.Background(), nil, SetRingLightInput{Enabled: &on, Width: &width})
	if err != nil {
		t.Fatalf("set_ring_light error: %v", err)
	}
	if !out.Enabled || out.Width != light.WidthRange.Max {
		t.Fatalf("output = %+v", out)
	}
	if len(out.Overlays) != 1 || out.Overlays[0].Renderer != "software" {
		t.Fatalf("overlays = %+v", out.Overlays)
	}
	if len(client.patches) != 1 || client.patches[0].Feather != nil {
		t.Fatalf("patch should only carry the given fields: %+v", client.patches)
	}
}

func TestSetRingLightRequiresAField(t *testing.T) {
	s := NewServer(newFakeClient(), nil)
	if _, _, err := s.handleSetRingLight(context.Background(), nil, SetRingLightInput{}); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestSetRingLightDaemonError(t *testing.T) {
	client := newFakeClient()
	client.setErr = errors.New("failed to connect to daemon")
	s := NewServer(client, nil)
	on := false
	if _, _, err := s.handleSetRingLight(context.Background(), nil, SetRingLightInput{Enabled: &on}); err == nil {
		t.Fatalf("expected daemon error to surface")
	}
}

func TestApplyPreset(t *testing.T) {
	s := NewServer(newFakeClient(), nil)
	_, out, err := s.handleApplyPreset(context.Background(), nil, ApplyPresetInput{Name: " warm "})
	if err != nil || out.Temperature != 3400 {
		t.Fatalf("apply warm = %+v, %v", out, err)
	}
	if _, _, err := s.handleApplyPreset(context.Background(), nil, ApplyPresetInput{Name: "sunset"}); err == nil {
		t.Fatalf("unknown preset should fail")
	}
	if _, _, err := s.handleApplyPreset(context.Background(), nil, ApplyPresetInput{}); err == nil {
		t.Fatalf("empty name should fail")
	}
}

func TestListAndSelectDisplay(t *testing.T) {
	client := newFakeClient()
	s := NewServer(client, nil)

	_, list, err := s.handleListDisplays(context.Background(), nil, ListDisplaysInput{})
	if err != nil {
		t.Fatalf("list_displays error: %v", err)
	}
	if len(list.Displays) != 2 || list.Displays[1].X != 1920 || list.Displays[1].Width != 2560 {
		t.Fatalf("displays = %+v", list.Displays)
	}

	_, out, err := s.handleSelectDisplay(context.Background(), nil, SelectDisplayInput{Display: "hdmi-1"})
	if err != nil || out.SelectedDisplay != 7 {
		t.Fatalf("select by name = %+v, %v", out, err)
	}
	_, out, err = s.handleSelectDisplay(context.Background(), nil, SelectDisplayInput{Display: "all"})
	if err != nil || out.SelectedDisplay != 0 {
		t.Fatalf("select all = %+v, %v", out, err)
	}
	if _, _, err := s.handleSelectDisplay(context.Background(), nil, SelectDisplayInput{Display: "VGA-9"}); err == nil {
		t.Fatalf("unknown display name should fail")
	}
}

func TestToolsOverSession(t *testing.T) {
	ctx := context.Background()
	s := NewServer(newFakeClient(), nil)

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	ss, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer ss.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := "apply_ring_light_preset,get_ring_light,list_displays,select_display,set_ring_light"
	if strings.Join(names, ",") != want {
		t.Fatalf("tools = %v", names)
	}

	res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: "get_ring_light", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("get_ring_light returned a tool error: %+v", res.Content)
	}
}
