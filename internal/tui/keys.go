package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	NextProj key.Binding
	PrevProj key.Binding
	MovePrev key.Binding
	MoveNext key.Binding
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Chart    key.Binding
	Report   key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
	Escape   key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
	NextProj: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next project")),
	PrevProj: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev project")),
	MovePrev: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move task left")),
	MoveNext: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move task right")),
	Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
	Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
	Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
	Chart:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "chart")),
	Report:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "report")),
	Refresh:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.MovePrev, k.MoveNext, k.Add, k.Edit, k.Chart, k.Report, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.NextProj, k.PrevProj, k.MovePrev, k.MoveNext},
		{k.Add, k.Edit, k.Delete, k.Refresh},
		{k.Chart, k.Report, k.Help, k.Quit},
	}
}
