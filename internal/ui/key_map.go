package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	prevTab    key.Binding
	nextTab    key.Binding
	enter      key.Binding
	back       key.Binding
	yes        key.Binding
	no         key.Binding
	search     key.Binding
	status     key.Binding
	remove     key.Binding
	open       key.Binding
	export     key.Binding
	refresh    key.Binding
	logout     key.Binding
	focus      key.Binding
	switchMode key.Binding
	reveal     key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		prevTab:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev shelf")),
		nextTab:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next shelf")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:         key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		status:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status")),
		remove:     key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open page")),
		export:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		logout:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		focus:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		switchMode: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "login/register")),
		reveal:     key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "show password")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.prevTab, k.nextTab, k.enter},
		{k.search, k.status, k.remove, k.open, k.export},
		{k.refresh, k.logout, k.quit},
	}
}
