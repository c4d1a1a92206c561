package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the explorer's key bindings. It satisfies help.KeyMap.
type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Home  key.Binding
	End   key.Binding
	Clear key.Binding
	Copy  key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "later month")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "earlier month")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "earlier year")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "later year")),
		Home:  key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first year")),
		End:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last year")),
		Clear: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear hover")),
		Copy:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy tooltip")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Copy, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Home, k.End, k.Clear},
		{k.Copy, k.Help, k.Quit},
	}
}
