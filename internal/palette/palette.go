// Package palette shows the ring light quick menu through an external
// dmenu-style launcher (rofi, fuzzel or dmenu).
package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the launcher without
// picking an entry.
var ErrCancelled = errors.New("palette cancelled")

// Item is a single row of the menu.
type Item struct {
	Label    string
	Action   string
	IsHeader bool // Non-selectable section header
	IsActive bool // Highlighted as the current value
}

// Backend shows items to the user and returns the picked one.
type Backend interface {
	Show(prompt string, items []Item, message string) (Item, error)
	Name() string
}

// Supported lists launchers in detection order.
var Supported = []string{"rofi", "fuzzel", "dmenu"}

// Detect returns the first supported launcher found in PATH.
func Detect() (string, error) {
	for _, name := range Supported {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no menu launcher found in PATH (looked for: %s)", strings.Join(Supported, ", "))
}

// NewBackend creates a launcher backend by name. An empty name or "auto"
// picks the first one available.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := Detect()
		if err != nil {
			return nil, err
		}
		name = detected
	}

	var b *launcher
	switch name {
	case "rofi":
		b = newLauncher(kindRofi)
	case "fuzzel":
		b = newLauncher(kindFuzzel)
	case "dmenu":
		b = newLauncher(kindDmenu)
	default:
		return nil, fmt.Errorf("unknown menu backend: %q (expected: auto, %s)", name, strings.Join(Supported, ", "))
	}
	if _, err := exec.LookPath(b.command); err != nil {
		return nil, fmt.Errorf("menu backend %q not found in PATH", b.command)
	}
	return b, nil
}
