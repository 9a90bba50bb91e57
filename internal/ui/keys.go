package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// keyMap defines the keyboard bindings outside of forms.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	Back       key.Binding
	Refresh    key.Binding
	Login      key.Binding

	// View switching
	ViewHome      key.Binding
	ViewDirectory key.Binding
	ViewFavorites key.Binding
	ViewLogs      key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Open   key.Binding

	// Campsite actions
	Favorite key.Binding
	Comment  key.Binding
	Discard  key.Binding

	// Logs
	Severity key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle views"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
		Login: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Login"),
		),

		ViewHome: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Home"),
		),
		ViewDirectory: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Directory"),
		),
		ViewFavorites: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Favorites"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Logs"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open campsite"),
		),

		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Favorite (remove in list)"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Add comment"),
		),
		Discard: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Discard posting comment"),
		),

		Severity: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle min severity"),
		),
	}
}

// FullHelp returns the bindings grouped for the help overlay.
func (k keyMap) FullHelp() []helpSection {
	return []helpSection{
		{title: "Navigation", bindings: []key.Binding{k.Tab, k.ViewHome, k.ViewDirectory, k.ViewFavorites, k.ViewLogs, k.Back}},
		{title: "Lists", bindings: []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.Open}},
		{title: "Campsites", bindings: []key.Binding{k.Favorite, k.Comment, k.Discard}},
		{title: "Logs", bindings: []key.Binding{k.Severity}},
		{title: "General", bindings: []key.Binding{k.Refresh, k.Login, k.CycleTheme, k.Help, k.Quit}},
	}
}

type helpSection struct {
	title    string
	bindings []key.Binding
}

func matches(msg tea.KeyMsg, b key.Binding) bool {
	return key.Matches(msg, b)
}
