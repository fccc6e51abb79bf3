package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit         key.Binding
	SwitchPane   key.Binding
	Add          key.Binding
	EditName     key.Binding
	EditDesc     key.Binding
	Toggle       key.Binding
	Delete       key.Binding
	NextFilter   key.Binding
	FilterAll    key.Binding
	FilterActive key.Binding
	FilterDone   key.Binding
	Reload       key.Binding
	Send         key.Binding
	ClearChat    key.Binding
	Cancel       key.Binding
	Submit       key.Binding
	NextField    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		SwitchPane:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "chat")),
		Add:          key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
		EditName:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		EditDesc:     key.NewBinding(key.WithKeys("E", "D"), key.WithHelp("E", "description")),
		Toggle:       key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Delete:       key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		NextFilter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		FilterAll:    key.NewBinding(key.WithKeys("1")),
		FilterActive: key.NewBinding(key.WithKeys("2")),
		FilterDone:   key.NewBinding(key.WithKeys("3")),
		Reload:       key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "reload")),
		Send:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		ClearChat:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear chat")),
		Cancel:       key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "back")),
		Submit:       key.NewBinding(key.WithKeys("enter")),
		NextField:    key.NewBinding(key.WithKeys("tab", "shift+tab")),
	}
}

func (k keyMap) taskHelp() []key.Binding {
	return []key.Binding{k.Add, k.EditName, k.EditDesc, k.Toggle, k.Delete, k.NextFilter, k.Reload, k.SwitchPane, k.Quit}
}

func (k keyMap) chatHelp() []key.Binding {
	return []key.Binding{k.Send, k.ClearChat, k.Cancel}
}
