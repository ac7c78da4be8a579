package browser

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

// KeyMap defines the browser's key bindings.
type KeyMap struct {
	InstallGlobal key.Binding
	InstallLocal  key.Binding
	Install       key.Binding
	Delete        key.Binding
	Refresh       key.Binding
	NextView      key.Binding
	Skills        key.Binding
	Commands      key.Binding
	Usage         key.Binding
	Daily         key.Binding
	Weekly        key.Binding
	Monthly       key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		InstallGlobal: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "install global")),
		InstallLocal:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "install local")),
		Install:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "install/update")),
		Delete:        key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Refresh:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		NextView:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
		Skills:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skills")),
		Commands:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "commands")),
		Usage:         key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "usage")),
		Daily:         key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "daily")),
		Weekly:        key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "weekly")),
		Monthly:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "monthly")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Install, k.Delete, k.Refresh, k.NextView, k.Help, k.Quit}
}

// FullHelp lists every binding.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.InstallGlobal, k.InstallLocal, k.Install, k.Delete},
		{k.Refresh, k.NextView, k.Skills, k.Commands, k.Usage},
		{k.Daily, k.Weekly, k.Monthly},
		{k.Help, k.Quit},
	}
}

// tableKeyMap is the default table navigation without the bindings that
// collide with browser actions.
func tableKeyMap() table.KeyMap {
	km := table.DefaultKeyMap()
	km.GotoTop = key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "go to start"))
	km.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "½ page up"))
	km.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "½ page down"))
	return km
}
