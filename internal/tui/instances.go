package tui

import (
	"strings"
)

// defaultInstanceLabel is shown for the empty instance name.
const defaultInstanceLabel = "(default instance)"

// InstancePicker selects the WSL instance to query. The first entry is
// always the default instance, selected by the empty name.
type InstancePicker struct {
	names  []string
	cursor int
	width  int
}

// NewInstancePicker creates a picker holding only the default instance.
func NewInstancePicker() *InstancePicker {
	return &InstancePicker{names: []string{""}}
}

// SetInstances updates the discoverable instances and places the cursor on
// current.
func (p *InstancePicker) SetInstances(names []string, current string) {
	p.names = append([]string{""}, names...)
	p.SelectName(current)
}

// SelectName places the cursor on name, or on the default instance when
// name is not listed.
func (p *InstancePicker) SelectName(name string) {
	p.cursor = 0
	for i, n := range p.names {
		if n == name {
			p.cursor = i
			return
		}
	}
}

// SetSize sets the picker dimensions.
func (p *InstancePicker) SetSize(width, _ int) {
	p.width = width
}

// MoveUp moves the cursor up.
func (p *InstancePicker) MoveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// MoveDown moves the cursor down.
func (p *InstancePicker) MoveDown() {
	if p.cursor < len(p.names)-1 {
		p.cursor++
	}
}

// Selected returns the selected instance name; "" is the default instance.
func (p *InstancePicker) Selected() string {
	if p.cursor >= 0 && p.cursor < len(p.names) {
		return p.names[p.cursor]
	}
	return ""
}

// Len returns the number of entries, the default instance included.
func (p *InstancePicker) Len() int {
	return len(p.names)
}

// View renders the picker dialog.
func (p *InstancePicker) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("WSL Instance"))
	sb.WriteString("\n\n")

	for i, name := range p.names {
		label := name
		if label == "" {
			label = defaultInstanceLabel
		}
		if i == p.cursor {
			sb.WriteString(selectedItemStyle.Render("▸ " + label))
		} else {
			sb.WriteString(itemStyle.Render("  " + label))
		}
		sb.WriteString("\n")
	}

	if len(p.names) == 1 {
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render("No other instances were found."))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(WrapHelpText("↑↓ navigate • Enter select • Esc back", p.width-6))

	return dialogStyle.Render(sb.String())
}
