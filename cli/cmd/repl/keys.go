package repl

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the key bindings of the REPL. It implements [help.KeyMap].
type keyMap struct {
	Submit       key.Binding
	Next         key.Binding
	Prev         key.Binding
	Mode         key.Binding
	Older        key.Binding
	Newer        key.Binding
	OlderInMode  key.Binding
	NewerInMode  key.Binding
	OlderCommand key.Binding
	NewerCommand key.Binding
	Clear        key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "render / run"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next candidate"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous candidate"),
		),
		Mode: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "toggle commands"),
		),
		Older: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "older"),
		),
		Newer: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "newer"),
		),
		OlderInMode: key.NewBinding(
			key.WithKeys("shift+up"),
			key.WithHelp("shift+↑", "older in mode"),
		),
		NewerInMode: key.NewBinding(
			key.WithKeys("shift+down"),
			key.WithHelp("shift+↓", "newer in mode"),
		),
		OlderCommand: key.NewBinding(
			key.WithKeys("alt+up"),
			key.WithHelp("alt+↑", "older command"),
		),
		NewerCommand: key.NewBinding(
			key.WithKeys("alt+down"),
			key.WithHelp("alt+↓", "newer command"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "clear line"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown below an empty prompt.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Next, k.Mode, k.Quit}
}

// FullHelp returns the bindings listed by the help command.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Next, k.Prev, k.Mode},
		{k.Older, k.Newer, k.OlderInMode, k.NewerInMode},
		{k.OlderCommand, k.NewerCommand, k.Clear, k.Quit},
	}
}
