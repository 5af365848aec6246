package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/1broseidon/ringlight/internal/config"
	"github.com/1broseidon/ringlight/internal/ipc"
	"github.com/1broseidon/ringlight/internal/palette"
)

func runMenu(args []string) int {
	fs := flag.NewFlagSet("menu", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ringlight menu [--backend auto|rofi|fuzzel|dmenu]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Pick a preset, brightness or display from a launcher menu.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	backendName := fs.String("backend", "", "Launcher to use (default: menu_backend from config)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return 2
	}

	name := *backendName
	if name == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		name = cfg.MenuBackend
	}
	backend, err := palette.NewBackend(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := palette.Run(ipc.NewClient(), backend); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// launchMenu starts "ringlight menu" detached from the daemon.
func launchMenu(logger *slog.Logger) {
	exe, err := os.Executable()
	if err != nil {
		logger.Warn("menu: failed to find executable", "error", err)
		return
	}
	cmd := exec.Command(exe, "menu")
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		logger.Warn("menu: failed to launch", "error", err)
		return
	}
	go cmd.Wait()
}
