package builderui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Move      key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Place     key.Binding
	Delete    key.Binding
	Cancel    key.Binding
	Clear     key.Binding
	Sketch    key.Binding
	Edit      key.Binding
	Record    key.Binding
	Preview   key.Binding
	Recording key.Binding
	Export    key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Move:      key.NewBinding(key.WithKeys("up", "down", "left", "right"), key.WithHelp("arrows", "move")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Place:     key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "place")),
	Delete:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
	Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "break chain")),
	Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear sketch")),
	Sketch:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sketch")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Record:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record")),
	Preview:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
	Recording: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "start/stop recording")),
	Export:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "export")),
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

// helpLine renders the bindings as "key: desc" pairs.
func helpLine(bindings ...key.Binding) string {
	out := ""
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		if out != "" {
			out += "  "
		}
		out += h.Key + ": " + h.Desc
	}
	return out
}
