package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"offer_manager/models"
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	NextTab   key.Binding
	Toggle    key.Binding
	Open      key.Binding
	Reinstate key.Binding
	Help      key.Binding
	Quit      key.Binding
	Reject    []key.Binding // one per models.Reasons entry, same order
}

func newKeyMap() keyMap {
	k := keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Top:       key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch tab")),
		Toggle:    key.NewBinding(key.WithKeys("i", " "), key.WithHelp("i", "interesting")),
		Open:      key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("o", "open")),
		Reinstate: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "restore")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "save & quit")),
	}
	for i, r := range models.Reasons {
		n := strconv.Itoa(i + 1)
		k.Reject = append(k.Reject, key.NewBinding(
			key.WithKeys(n),
			key.WithHelp(n, strings.ToLower(r.Label())),
		))
	}
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Open, k.Reinstate, k.NextTab, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Toggle, k.Open, k.Reinstate, k.NextTab},
		k.Reject,
		{k.Help, k.Quit},
	}
}

// rejectReason maps a pressed key to its rejection reason.
func (k keyMap) rejectReason(msg tea.KeyMsg) (models.Reason, bool) {
	for i, b := range k.Reject {
		if key.Matches(msg, b) {
			return models.Reasons[i], true
		}
	}
	return "", false
}
