package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Toggle  key.Binding
	Warm    key.Binding
	Neutral key.Binding
	Cool    key.Binding
	Edit    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h", "-"), key.WithHelp("←/h", "decrease")),
		Right:   key.NewBinding(key.WithKeys("right", "l", "+"), key.WithHelp("→/l", "increase")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "space", "t"), key.WithHelp("space", "on/off")),
		Warm:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "warm")),
		Neutral: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "neutral")),
		Cool:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cool")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit values")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Toggle, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Toggle, k.Warm, k.Neutral, k.Cool},
		{k.Edit, k.Refresh, k.Help, k.Quit},
	}
}
