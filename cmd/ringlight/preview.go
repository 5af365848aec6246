package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/1broseidon/ringlight/internal/config"
	"github.com/1broseidon/ringlight/internal/glow"
	"github.com/1broseidon/ringlight/internal/light"
	"github.com/1broseidon/ringlight/internal/overlay"
	"github.com/1broseidon/ringlight/internal/platform"
	"github.com/1broseidon/ringlight/internal/settings"
)

type previewOptions struct {
	width    int
	height   int
	topInset int
	scale    float64
}

// renderPreview paints the software-path glow for a screen of the given
// size, optionally scaled.
func renderPreview(cfg light.Configuration, opts previewOptions) (image.Image, error) {
	if opts.width <= 0 || opts.height <= 0 {
		return nil, fmt.Errorf("invalid preview size %dx%d", opts.width, opts.height)
	}
	if opts.scale <= 0 {
		return nil, fmt.Errorf("scale must be positive")
	}
	screen := platform.ScreenDescriptor{
		Frame:    platform.Rect{Width: opts.width, Height: opts.height},
		TopInset: opts.topInset,
		Scale:    1,
	}
	img := glow.Render(overlay.FallbackLayout(screen, cfg))
	if opts.scale == 1 {
		return img, nil
	}
	return glow.Scale(img, opts.scale), nil
}

func runPreview(args []string) int {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ringlight preview --out FILE [flags]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Render the fallback glow for the saved settings to a PNG.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	out := fs.String("out", "", "Output PNG path (required)")
	settingsFile := fs.String("settings", "", "Settings file (default: from config)")
	var opts previewOptions
	fs.IntVar(&opts.width, "width", 1920, "Screen width in pixels")
	fs.IntVar(&opts.height, "height", 1080, "Screen height in pixels")
	fs.IntVar(&opts.topInset, "top-inset", 0, "Pixels reserved for a top panel")
	fs.Float64Var(&opts.scale, "scale", 1, "Scale factor of the written image")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *out == "" {
		fmt.Fprintln(os.Stderr, "preview requires --out")
		fs.Usage()
		return 2
	}

	path := *settingsFile
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if path, err = cfg.SettingsPath(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	values, err := settings.Read(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	img, err := renderPreview(values.Configuration(), opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := f.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("wrote %s (%dx%d)\n", *out, img.Bounds().Dx(), img.Bounds().Dy())
	return 0
}
