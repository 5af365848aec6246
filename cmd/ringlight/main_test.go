package main

import (
	"bytes"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/ringlight/internal/config"
	"github.com/1broseidon/ringlight/internal/controller"
	"github.com/1broseidon/ringlight/internal/engine"
	"github.com/1broseidon/ringlight/internal/ipc"
	"github.com/1broseidon/ringlight/internal/light"
	"github.com/1broseidon/ringlight/internal/platform"
)

func TestParseSet(t *testing.T) {
	patch, err := parseSet([]string{"--width", "120", "--softness=0.2", "--temperature", "4000"})
	if err != nil {
		t.Fatalf("parseSet() error: %v", err)
	}
	if patch.Width == nil || *patch.Width != 120 {
		t.Fatalf("width = %v", patch.Width)
	}
	if patch.Feather == nil || *patch.Feather != 0.2 {
		t.Fatalf("feather = %v", patch.Feather)
	}
	if patch.Temperature == nil || *patch.Temperature != 4000 {
		t.Fatalf("temperature = %v", patch.Temperature)
	}
	if patch.Intensity != nil || patch.CornerRadius != nil || patch.EdgeInset != nil || patch.Enabled != nil {
		t.Fatalf("unset flags leaked into patch: %+v", patch)
	}

	// An explicit zero is a change, not an omission.
	patch, err = parseSet([]string{"--edge-inset", "0"})
	if err != nil || patch.EdgeInset == nil || *patch.EdgeInset != 0 {
		t.Fatalf("edge-inset 0 = %v, %v", patch.EdgeInset, err)
	}

	for _, bad := range [][]string{nil, {"--width"}, {"--colour", "red"}, {"--width", "10", "extra"}} {
		if _, err := parseSet(bad); err == nil {
			t.Fatalf("parseSet(%v) should fail", bad)
		}
	}
}

func TestPrintStatus(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	cfg := light.Default()
	st := &ipc.StatusData{
		Enabled:         true,
		Params:          cfg.Params(),
		Effective:       cfg.Params(),
		Color:           "#ffe4c8",
		Preset:          "neutral",
		SelectedDisplay: 7,
		Windows: []engine.WindowInfo{{
			Display:  7,
			Name:     "HDMI-1",
			Frame:    platform.Rect{X: 1920, Width: 2560, Height: 1440},
			Renderer: "hardware",
		}},
		StartedAt: now.Add(-3 * time.Minute),
	}

	var buf bytes.Buffer
	printStatus(&buf, st, now)
	out := buf.String()
	for _, want := range []string{
		"ring_light:    on",
		"brightness:    85%",
		"temperature:   5200 K (#ffe4c8)",
		"preset:        neutral",
		"display:       7",
		"HDMI-1 (7) 2560x1440+1920+0 hardware",
		"3 minutes ago",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("status output missing %q:\n%s", want, out)
		}
	}

	st.SelectedDisplay = 0
	st.StartedAt = time.Time{}
	buf.Reset()
	printStatus(&buf, st, now)
	if !strings.Contains(buf.String(), controller.AllDisplaysName) || strings.Contains(buf.String(), "started:") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestPrintDisplays(t *testing.T) {
	var buf bytes.Buffer
	printDisplays(&buf, []controller.Display{
		{ID: 0, Name: controller.AllDisplaysName},
		{ID: 7, Name: "HDMI-1", Frame: platform.Rect{Width: 1920, Height: 1080}, Selected: true},
	})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "  all") || !strings.HasPrefix(lines[1], "* 7") {
		t.Fatalf("unexpected display listing:\n%s", buf.String())
	}
}

func TestRenderPreview(t *testing.T) {
	cfg := light.Build(light.Params{Width: 40, Feather: 0, Intensity: 1, Temperature: 6500})
	img, err := renderPreview(cfg, previewOptions{width: 400, height: 300, topInset: 10, scale: 1})
	if err != nil {
		t.Fatalf("renderPreview() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Fatalf("bounds = %v", b)
	}
	if _, _, _, a := img.At(5, 200).RGBA(); a == 0 {
		t.Fatalf("left band should be painted")
	}
	if got := color.RGBAModel.Convert(img.At(200, 150)).(color.RGBA); got.A != 0 {
		t.Fatalf("center should stay transparent, got %v", got)
	}

	small, err := renderPreview(cfg, previewOptions{width: 400, height: 300, scale: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if b := small.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Fatalf("scaled bounds = %v", b)
	}

	if _, err := renderPreview(cfg, previewOptions{width: 0, height: 100, scale: 1}); err == nil {
		t.Fatalf("zero width should fail")
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}
