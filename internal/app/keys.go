package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the app-level keyboard bindings. Screen-local bindings live
// in the view packages.
type KeyMap struct {
	Tab          key.Binding
	Dashboard    key.Binding
	Spots        key.Binding
	Leave        key.Binding
	Cars         key.Binding
	Reservations key.Binding
	Stats        key.Binding
	Profile      key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next screen"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		Spots: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "spots"),
		),
		Leave: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "leave"),
		),
		Cars: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "cars"),
		),
		Reservations: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "reservations"),
		),
		Stats: key.NewBinding(
			key.WithKeys("6"),
			key.WithHelp("6", "statistics"),
		),
		Profile: key.NewBinding(
			key.WithKeys("7"),
			key.WithHelp("7", "profile"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
