package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/1broseidon/ringlight/internal/controller"
	"github.com/1broseidon/ringlight/internal/ipc"
	"github.com/1broseidon/ringlight/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "on":
		os.Exit(runSimple("on", os.Args[2:], ipc.NewClient().Enable))
	case "off":
		os.Exit(runSimple("off", os.Args[2:], ipc.NewClient().Disable))
	case "toggle":
		os.Exit(runSimple("toggle", os.Args[2:], ipc.NewClient().Toggle))
	case "set":
		os.Exit(runSet(os.Args[2:]))
	case "preset":
		os.Exit(runPreset(os.Args[2:]))
	case "display":
		os.Exit(runDisplay(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "reload":
		os.Exit(runSimple("reload", os.Args[2:], ipc.NewClient().Reload))
	case "preview":
		os.Exit(runPreview(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "menu":
		os.Exit(runMenu(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ringlight <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the ring-light daemon (foreground)")
	fmt.Fprintln(w, "  status              Show the ring light and its overlays")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  on | off | toggle   Turn the ring light on or off")
	fmt.Fprintln(w, "  set                 Change width, softness, brightness, temperature...")
	fmt.Fprintln(w, "  preset <name>       Apply a temperature preset")
	fmt.Fprintln(w, "  display <id|all>    Select the display to light")
	fmt.Fprintln(w, "  displays            List selectable displays")
	fmt.Fprintln(w, "  reload              Re-read the settings file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  preview             Render the fallback glow to a PNG")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config init         Write a default config file")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print config and settings paths")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  menu                Open the quick menu (rofi, fuzzel or dmenu)")
	fmt.Fprintln(w, "  tui                 Open interactive control panel")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'ringlight <command> --help' for command-specific options.")
}

func isHelp(args []string) bool {
	return len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help")
}

// runSimple runs an argument-less mutating command and prints the result.
func runSimple(name string, args []string, call func() (*ipc.StatusData, error)) int {
	if isHelp(args) {
		fmt.Fprintf(os.Stdout, "Usage: ringlight %s\n", name)
		return 0
	}
	if len(args) != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		return 2
	}
	st, err := call()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printStatus(os.Stdout, st, time.Now())
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ringlight status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output status as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	st, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(st)
	}
	printStatus(os.Stdout, st, time.Now())
	return 0
}

func printStatus(w io.Writer, st *ipc.StatusData, now time.Time) {
	state := "off"
	if st.Enabled {
		state = "on"
	}
	e := st.Effective
	fmt.Fprintf(w, "ring_light:    %s\n", state)
	fmt.Fprintf(w, "width:         %.0f px\n", e.Width)
	fmt.Fprintf(w, "softness:      %.2f\n", e.Feather)
	fmt.Fprintf(w, "brightness:    %.0f%%\n", e.Intensity*100)
	fmt.Fprintf(w, "temperature:   %.0f K (%s)\n", e.Temperature, st.Color)
	fmt.Fprintf(w, "corner_radius: %.0f px\n", e.CornerRadius)
	fmt.Fprintf(w, "edge_inset:    %.0f px\n", e.EdgeInset)
	if st.Preset != "" {
		fmt.Fprintf(w, "preset:        %s\n", st.Preset)
	}
	if st.SelectedDisplay == 0 {
		fmt.Fprintf(w, "display:       %s\n", controller.AllDisplaysName)
	} else {
		fmt.Fprintf(w, "display:       %d\n", st.SelectedDisplay)
	}
	fmt.Fprintf(w, "overlays:      %d\n", len(st.Windows))
	for _, win := range st.Windows {
		fmt.Fprintf(w, "  - %s (%d) %dx%d+%d+%d %s\n", win.Name, win.Display,
			win.Frame.Width, win.Frame.Height, win.Frame.X, win.Frame.Y, win.Renderer)
	}
	if !st.StartedAt.IsZero() {
		fmt.Fprintf(w, "started:       %s\n", humanize.RelTime(st.StartedAt, now, "ago", "from now"))
	}
}

// setFlags are the numeric flags of "set". Only flags given on the command
// line end up in the patch.
type setFlags struct {
	width        float64
	feather      float64
	intensity    float64
	temperature  float64
	cornerRadius float64
	edgeInset    float64
}

func newSetFlagSet(v *setFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Float64Var(&v.width, "width", 0, "Band width in pixels (20-400)")
	fs.Float64Var(&v.feather, "softness", 0, "Fraction of the band that fades out (0-0.95)")
	fs.Float64Var(&v.intensity, "brightness", 0, "Peak opacity (0.05-1)")
	fs.Float64Var(&v.temperature, "temperature", 0, "Color temperature in kelvin (2500-7500)")
	fs.Float64Var(&v.cornerRadius, "corner-radius", 0, "Corner radius in pixels (0-500)")
	fs.Float64Var(&v.edgeInset, "edge-inset", 0, "Gap between screen edge and band in pixels (0-200)")
	return fs
}

func parseSet(args []string) (ipc.SetPayload, error) {
	var v setFlags
	fs := newSetFlagSet(&v)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return ipc.SetPayload{}, err
	}
	if fs.NArg() != 0 {
		return ipc.SetPayload{}, fmt.Errorf("set takes no positional arguments")
	}

	var patch ipc.SetPayload
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			patch.Width = &v.width
		case "softness":
			patch.Feather = &v.feather
		case "brightness":
			patch.Intensity = &v.intensity
		case "temperature":
			patch.Temperature = &v.temperature
		case "corner-radius":
			patch.CornerRadius = &v.cornerRadius
		case "edge-inset":
			patch.EdgeInset = &v.edgeInset
		}
	})
	if patch.Empty() {
		return ipc.SetPayload{}, fmt.Errorf("set requires at least one flag")
	}
	return patch, nil
}

func runSet(args []string) int {
	if isHelp(args) {
		var v setFlags
		fs := newSetFlagSet(&v)
		fs.SetOutput(os.Stdout)
		fmt.Fprintln(os.Stdout, "Usage: ringlight set [flags]")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Out-of-range values are clamped. Omitted flags are unchanged.")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Flags:")
		fs.PrintDefaults()
		return 0
	}
	patch, err := parseSet(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	st, err := ipc.NewClient().Set(patch)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printStatus(os.Stdout, st, time.Now())
	return 0
}

func runPreset(args []string) int {
	if isHelp(args) || len(args) > 1 {
		fmt.Fprintln(os.Stdout, "Usage: ringlight preset [name]")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Apply a temperature preset, or list presets when no name is given.")
		if len(args) > 1 {
			return 2
		}
		return 0
	}

	client := ipc.NewClient()
	if len(args) == 0 {
		data, err := client.GetPresets()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, p := range data.Presets {
			marker := " "
			if strings.EqualFold(p.Name, data.Selected) {
				marker = "*"
			}
			fmt.Printf("%s %-10s %.0f K\n", marker, p.Name, p.Kelvin)
		}
		return 0
	}

	st, err := client.ApplyPreset(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printStatus(os.Stdout, st, time.Now())
	return 0
}

func runDisplay(args []string) int {
	if isHelp(args) || len(args) != 1 {
		fmt.Fprintln(os.Stdout, "Usage: ringlight display <id|name|all>")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Select the display that shows the ring light. See 'ringlight displays'.")
		if len(args) != 1 && !isHelp(args) {
			return 2
		}
		return 0
	}

	client := ipc.NewClient()
	data, err := client.GetDisplays()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	id, err := controller.ResolveDisplay(data.Displays, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	st, err := client.SelectDisplay(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printStatus(os.Stdout, st, time.Now())
	return 0
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output displays as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	data, err := ipc.NewClient().GetDisplays()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(data)
	}
	printDisplays(os.Stdout, data.Displays)
	return 0
}

func printDisplays(w io.Writer, displays []controller.Display) {
	for _, d := range displays {
		marker := " "
		if d.Selected {
			marker = "*"
		}
		if d.ID == 0 {
			fmt.Fprintf(w, "%s %-6s %s\n", marker, "all", d.Name)
			continue
		}
		fmt.Fprintf(w, "%s %-6d %-12s %dx%d+%d+%d\n", marker, d.ID, d.Name,
			d.Frame.Width, d.Frame.Height, d.Frame.X, d.Frame.Y)
	}
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runTUI(args []string) int {
	if isHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage: ringlight tui")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive control panel for the running daemon.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓   Select a row")
		fmt.Fprintln(os.Stderr, "  h/l, ←/→   Adjust the selected value")
		fmt.Fprintln(os.Stderr, "  space      Turn the ring light on or off")
		fmt.Fprintln(os.Stderr, "  w/n/c      Warm, neutral or cool preset")
		fmt.Fprintln(os.Stderr, "  e          Edit all values in a form")
		fmt.Fprintln(os.Stderr, "  r          Refresh from the daemon")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C  Quit")
		return 0
	}
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "tui takes no arguments")
		return 2
	}

	if err := tui.Run(ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
