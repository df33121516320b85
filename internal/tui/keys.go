package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/asynkron/vibecheck/internal/session"
)

type keyMap struct {
	Select key.Binding
	Browse key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Browse, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

func newKeyMap() keyMap {
	return keyMap{
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "read vibe")),
		Browse: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "browse")),
		Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "start over")),
		Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

// forState enables only the bindings that do something in state. The reset
// key is disabled while idle so "r" can be typed into the path input.
func (k *keyMap) forState(state session.State, browsing bool) {
	idle := state == session.StateIdle
	k.Select.SetEnabled(idle)
	k.Browse.SetEnabled(idle)
	k.Reset.SetEnabled(!idle)
	if browsing {
		k.Select.SetHelp("⏎", "pick")
		k.Browse.SetHelp("tab", "type path")
		k.Quit.SetHelp("esc", "close browser")
	} else {
		k.Select.SetHelp("⏎", "read vibe")
		k.Browse.SetHelp("tab", "browse")
		k.Quit.SetHelp("esc", "quit")
	}
	if state == session.StateError {
		k.Reset.SetHelp("r", "try again")
	} else {
		k.Reset.SetHelp("r", "start over")
	}
}
