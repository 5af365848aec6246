// Package tui is an interactive control panel for the ring-light daemon.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/ringlight/internal/ipc"
	"github.com/1broseidon/ringlight/internal/platform"
)

// Client is the daemon API the panel drives. *ipc.Client implements it.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	Set(patch ipc.SetPayload) (*ipc.StatusData, error)
	Toggle() (*ipc.StatusData, error)
	ApplyPreset(name string) (*ipc.StatusData, error)
	SelectDisplay(id platform.DisplayID) (*ipc.StatusData, error)
}

// Run starts the panel and blocks until the user quits.
func Run(client Client) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
