package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the tree view bindings. It implements help.KeyMap for the
// footer.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	Expand    key.Binding
	Collapse  key.Binding
	Top       key.Binding
	Bottom    key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Search    key.Binding
	Detail    key.Binding
	New       key.Binding
	NewChild  key.Binding
	Edit      key.Binding
	Delete    key.Binding
	CopyLink  key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
	ClearFind key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "space", "tab"), key.WithHelp("space", "toggle")),
		Expand:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand")),
		Collapse:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
		Top:       key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		PageUp:    key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("ctrl+u", "page up")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("ctrl+d", "page down")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Detail:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view")),
		New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new blog")),
		NewChild:  key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "new sub-blog")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		CopyLink:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		ClearFind: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Search, k.Detail, k.New, k.Delete, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.Toggle, k.Expand, k.Collapse, k.Search, k.ClearFind},
		{k.Detail, k.New, k.NewChild, k.Edit, k.Delete},
		{k.CopyLink, k.Refresh, k.Help, k.Quit},
	}
}
