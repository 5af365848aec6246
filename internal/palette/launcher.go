package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

type launcherKind int

const (
	kindRofi launcherKind = iota
	kindFuzzel
	kindDmenu
)

// runFunc executes a launcher with stdin and returns its stdout, stderr and
// exit code.
type runFunc func(command string, args []string, stdin io.Reader) (stdout, stderr string, exitCode int, err error)

type launcher struct {
	command string
	kind    launcherKind
	run     runFunc
}

func newLauncher(kind launcherKind) *launcher {
	command := map[launcherKind]string{kindRofi: "rofi", kindFuzzel: "fuzzel", kindDmenu: "dmenu"}[kind]
	return &launcher{command: command, kind: kind, run: execRun}
}

func (l *launcher) Name() string { return l.command }

// indexed reports whether the launcher prints the picked row index instead
// of its text.
func (l *launcher) indexed() bool { return l.kind != kindDmenu }

func (l *launcher) Show(prompt string, items []Item, message string) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	rows, selected := l.formatRows(items)
	stdout, stderr, code, err := l.run(l.command, l.args(prompt, message, items, selected), strings.NewReader(strings.Join(rows, "\n")))
	selection := strings.TrimSpace(stdout)
	if err != nil {
		// 1 is "nothing picked" for every launcher; 130 is Ctrl+C.
		if selection == "" && (code == 1 || code == 130) {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", l.command, msg)
		}
		return Item{}, fmt.Errorf("%s failed: %w", l.command, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return l.parse(selection, items, rows)
}

func (l *launcher) args(prompt, message string, items []Item, selected int) []string {
	switch l.kind {
	case kindRofi:
		args := []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		var active []string
		for i, it := range items {
			if it.IsActive && !it.IsHeader {
				active = append(active, strconv.Itoa(i))
			}
		}
		if len(active) > 0 {
			args = append(args, "-a", strings.Join(active, ","))
		}
		if selected >= 0 {
			args = append(args, "-selected-row", strconv.Itoa(selected))
		}
		if message != "" {
			args = append(args, "-mesg", html.EscapeString(message))
		}
		return args
	case kindFuzzel:
		args := []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
		return args
	default:
		args := []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		return args
	}
}

// formatRows renders one input line per item and returns the row to
// preselect: the first active selectable item, else the first selectable.
func (l *launcher) formatRows(items []Item) ([]string, int) {
	rows := make([]string, len(items))
	first, active := -1, -1
	for i, it := range items {
		label := sanitize(it.Label)
		switch {
		case l.kind == kindRofi && it.IsHeader:
			rows[i] = "<b>" + html.EscapeString(label) + "</b>\x00nonselectable\x1ftrue"
		case l.kind == kindRofi:
			rows[i] = html.EscapeString(label)
		case it.IsActive:
			rows[i] = "* " + label
		default:
			rows[i] = label
		}
		if it.IsHeader {
			continue
		}
		if first < 0 {
			first = i
		}
		if it.IsActive && active < 0 {
			active = i
		}
	}
	if active >= 0 {
		return rows, active
	}
	return rows, first
}

func (l *launcher) parse(selection string, items []Item, rows []string) (Item, error) {
	if l.indexed() {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			if items[idx].IsHeader {
				return Item{}, ErrCancelled
			}
			return items[idx], nil
		}
	}
	for i, row := range rows {
		if row == selection && !items[i].IsHeader {
			return items[i], nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitize(label string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ", "\x00", " ", "\x1f", " ").Replace(label))
}

func execRun(command string, args []string, stdin io.Reader) (string, string, int, error) {
	cmd := exec.Command(command, args...)
	cmd.Stdin = stdin
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return string(out), stderr.String(), code, err
}
