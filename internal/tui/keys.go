package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/fyrsmithlabs/vault/internal/stage"
)

type keyMap struct {
	Quit    key.Binding
	Leave   key.Binding
	Confirm key.Binding
	Submit  key.Binding
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Flip    key.Binding
	Next    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Tab     [4]key.Binding
	Reply   key.Binding

	stage int
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Leave:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		Confirm: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "continue")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "unlock")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Flip:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "flip")),
		Next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next game")),
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Tab: [4]key.Binding{
			key.NewBinding(key.WithKeys("1"), key.WithHelp("1-4", "open tab")),
			key.NewBinding(key.WithKeys("2")),
			key.NewBinding(key.WithKeys("3")),
			key.NewBinding(key.WithKeys("4")),
		},
		Reply: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "reply")),
	}
}

// ShortHelp implements help.KeyMap for the active stage.
func (k keyMap) ShortHelp() []key.Binding {
	switch k.stage {
	case stage.Gate:
		return []key.Binding{k.Submit, k.Quit}
	case stage.Memory:
		return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Flip, k.Next, k.Leave}
	case stage.Catch:
		return []key.Binding{k.Left, k.Right, k.Leave}
	case stage.Dashboard:
		return []key.Binding{k.Tab[0], k.NextTab, k.Reply, k.Leave}
	}
	return []key.Binding{k.Leave}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
