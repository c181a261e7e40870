package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Move     key.Binding
	Resize   key.Binding
	Snap     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Maximize key.Binding
	Minimize key.Binding
	Open     key.Binding
	Close    key.Binding
	Reset    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Move: key.NewBinding(
			key.WithKeys("up", "down", "left", "right"),
			key.WithHelp("←↑↓→", "move"),
		),
		Resize: key.NewBinding(
			key.WithKeys("shift+up", "shift+down", "shift+left", "shift+right"),
			key.WithHelp("shift+←↑↓→", "resize"),
		),
		Snap: key.NewBinding(
			key.WithKeys("ctrl+up", "ctrl+down", "ctrl+left", "ctrl+right"),
			key.WithHelp("ctrl+←↑↓→", "snap"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next window"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev window"),
		),
		Maximize: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "maximize"),
		),
		Minimize: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "minimize"),
		),
		Open: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "open"),
		),
		Close: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset layout"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Snap, k.Next, k.Maximize, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Move, k.Resize, k.Snap},
		{k.Next, k.Prev, k.Maximize, k.Minimize},
		{k.Open, k.Close, k.Reset, k.Quit},
	}
}
