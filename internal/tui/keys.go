package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	KDown   key.Binding
	KUp     key.Binding
	Analyze key.Binding
	Open    key.Binding
	Focus   key.Binding
	Dismiss key.Binding
	Scroll  key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle feature")),
		KDown:   key.NewBinding(key.WithKeys("left", "-"), key.WithHelp("←/-", "fewer clusters")),
		KUp:     key.NewBinding(key.WithKeys("right", "+", "="), key.WithHelp("→/+", "more clusters")),
		Analyze: key.NewBinding(key.WithKeys("enter", "a"), key.WithHelp("enter/a", "analyze")),
		Open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open file")),
		Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Dismiss: key.NewBinding(key.WithKeys("enter", "esc", " "), key.WithHelp("enter", "dismiss")),
		Scroll:  key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll results")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.KDown, k.KUp, k.Analyze, k.Open, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.KDown, k.KUp, k.Analyze},
		{k.Open, k.Focus, k.Scroll, k.Quit},
	}
}
