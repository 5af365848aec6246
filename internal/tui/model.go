package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/ringlight/internal/controller"
	"github.com/1broseidon/ringlight/internal/ipc"
	"github.com/1broseidon/ringlight/internal/platform"
)

type statusMsg struct{ status *ipc.StatusData }

type displaysMsg struct{ displays []controller.Display }

type errMsg struct {
	err        error
	disconnect bool
}

// model is the root bubbletea model for the panel.
type model struct {
	client Client
	keys   keyMap
	help   help.Model
	bar    progress.Model

	// Daemon state
	status    *ipc.StatusData
	displays  []controller.Display
	connected bool
	lastError string

	cursor row
	edit   *editForm

	// Terminal dimensions
	width  int
	height int
}

func newModel(client Client) model {
	return model{
		client: client,
		keys:   defaultKeyMap(),
		help:   help.New(),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(24)),
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), m.fetchDisplays())
}

func (m model) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		st, err := m.client.GetStatus()
		if err != nil {
			return errMsg{err: err, disconnect: true}
		}
		return statusMsg{status: st}
	}
}

func (m model) fetchDisplays() tea.Cmd {
	return func() tea.Msg {
		data, err := m.client.GetDisplays()
		if err != nil {
			return errMsg{err: err}
		}
		return displaysMsg{displays: data.Displays}
	}
}

// send runs a mutating call and reports the status it returns.
func (m model) send(call func() (*ipc.StatusData, error)) tea.Cmd {
	return func() tea.Msg {
		st, err := call()
		if err != nil {
			return errMsg{err: err}
		}
		return statusMsg{status: st}
	}
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		m.status = msg.status
		m.connected = true
		m.lastError = ""
		return m, nil
	case displaysMsg:
		m.displays = msg.displays
		return m, nil
	case errMsg:
		m.lastError = msg.err.Error()
		if msg.disconnect {
			m.connected = false
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}

	if m.edit != nil {
		return m.updateEditing(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(km, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(km, m.keys.Refresh):
		return m, tea.Batch(m.fetchStatus(), m.fetchDisplays())
	case key.Matches(km, m.keys.Up):
		m.cursor = (m.cursor - 1 + rowCount) % rowCount
		return m, nil
	case key.Matches(km, m.keys.Down):
		m.cursor = (m.cursor + 1) % rowCount
		return m, nil
	}

	if m.status == nil {
		return m, nil
	}

	switch {
	case key.Matches(km, m.keys.Toggle):
		return m, m.send(m.client.Toggle)
	case key.Matches(km, m.keys.Warm):
		return m, m.applyPreset("warm")
	case key.Matches(km, m.keys.Neutral):
		return m, m.applyPreset("neutral")
	case key.Matches(km, m.keys.Cool):
		return m, m.applyPreset("cool")
	case key.Matches(km, m.keys.Edit):
		m.edit = newEditForm(m.status.Effective, m.width)
		return m, m.edit.form.Init()
	case key.Matches(km, m.keys.Left):
		return m, m.adjust(-1)
	case key.Matches(km, m.keys.Right):
		return m, m.adjust(1)
	}
	return m, nil
}

func (m model) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.edit = nil
			return m, nil
		}
	}

	form, cmd := m.edit.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.edit.form = f
	}

	switch m.edit.form.State {
	case huh.StateCompleted:
		patch := m.edit.patch()
		m.edit = nil
		if patch.Empty() {
			return m, nil
		}
		return m, m.send(func() (*ipc.StatusData, error) { return m.client.Set(patch) })
	case huh.StateAborted:
		m.edit = nil
		return m, nil
	}
	return m, cmd
}

func (m model) applyPreset(name string) tea.Cmd {
	return m.send(func() (*ipc.StatusData, error) { return m.client.ApplyPreset(name) })
}

func (m model) adjust(dir float64) tea.Cmd {
	switch m.cursor {
	case rowEnabled:
		return m.send(m.client.Toggle)
	case rowDisplay:
		return m.cycleDisplay(int(dir))
	}
	s, ok := sliders[m.cursor]
	if !ok {
		return nil
	}
	patch := s.stepped(m.status.Effective, dir)
	return m.send(func() (*ipc.StatusData, error) { return m.client.Set(patch) })
}

func (m model) cycleDisplay(dir int) tea.Cmd {
	n := len(m.displays)
	if n == 0 {
		return nil
	}
	idx := 0
	for i, d := range m.displays {
		if d.ID == m.status.SelectedDisplay {
			idx = i
			break
		}
	}
	id := m.displays[(idx+dir+n)%n].ID
	return m.send(func() (*ipc.StatusData, error) { return m.client.SelectDisplay(id) })
}

func (m model) displayName(id platform.DisplayID) string {
	for _, d := range m.displays {
		if d.ID == id {
			return d.Name
		}
	}
	if id == platform.AllDisplays {
		return controller.AllDisplaysName
	}
	return fmt.Sprintf("display %d", id)
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Width(16).
			Align(lipgloss.Right).
			PaddingRight(2)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)
)

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 {
		return ""
	}

	var body string
	if m.edit != nil {
		body = titleStyle.Render("Edit ring light") + dimStyle.Render("  (esc to cancel)") +
			"\n\n" + m.edit.form.View()
	} else {
		body = m.viewPanel()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderStatusBar(m.connected, m.width),
		lipgloss.NewStyle().Padding(1, 2).Render(body),
		lipgloss.NewStyle().Padding(0, 1).Render(m.help.View(m.keys)),
	)
}

func (m model) viewPanel() string {
	if m.status == nil {
		msg := "Connecting to daemon..."
		if m.lastError != "" {
			msg = errorStyle.Render(m.lastError)
		}
		return msg
	}

	st := m.status
	lines := []string{titleStyle.Render("Ring light"), ""}
	for r := row(0); r < rowCount; r++ {
		marker := "  "
		if r == m.cursor {
			marker = cursorStyle.Render("› ")
		}
		lines = append(lines, marker+labelStyle.Render(r.label())+m.rowValue(r))
	}

	swatch := lipgloss.NewStyle().Background(lipgloss.Color(st.Color)).Render("      ")
	color := swatch + " " + st.Color
	if st.Preset != "" {
		color += dimStyle.Render("  preset: " + st.Preset)
	}
	lines = append(lines, "", "  "+labelStyle.Render("Color")+color)
	lines = append(lines, "  "+labelStyle.Render("Overlays")+m.overlaySummary())

	if m.lastError != "" {
		lines = append(lines, "", errorStyle.Render(m.lastError))
	}
	return strings.Join(lines, "\n")
}

func (m model) rowValue(r row) string {
	st := m.status
	switch r {
	case rowEnabled:
		if st.Enabled {
			return lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).Render("on")
		}
		return dimStyle.Render("off")
	case rowDisplay:
		return valueStyle.Render(m.displayName(st.SelectedDisplay))
	}
	s := sliders[r]
	return m.bar.ViewAs(s.fraction(st.Effective)) + " " + valueStyle.Render(s.text(st.Effective))
}

func (m model) overlaySummary() string {
	if len(m.status.Windows) == 0 {
		return dimStyle.Render("none")
	}
	parts := make([]string, 0, len(m.status.Windows))
	for _, w := range m.status.Windows {
		parts = append(parts, fmt.Sprintf("%s (%s)", w.Name, w.Renderer))
	}
	return valueStyle.Render(strings.Join(parts, ", "))
}

func renderStatusBar(connected bool, width int) string {
	var status string
	if connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		status = dot + " daemon connected"
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}
