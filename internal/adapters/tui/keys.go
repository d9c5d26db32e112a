package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	extract  key.Binding
	generate key.Binding
	openFile key.Binding
	toggle   key.Binding
	cancel   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		extract: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "extract experiments"),
		),
		generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate report"),
		),
		openFile: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open file"),
		),
		toggle: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "list/report"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel request"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.extract, k.generate, k.openFile, k.toggle, k.cancel, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.openFile, k.extract, k.generate},
		{k.toggle, k.cancel, k.quit},
	}
}
