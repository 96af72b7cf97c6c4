package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukaszraczylo/wsl2-ip-host/internal/config"
)

// FormKind selects what the single-field form edits.
type FormKind int

const (
	FormAddAlias FormKind = iota
	FormSetPath
)

// Form is a single text input dialog.
type Form struct {
	kind  FormKind
	input textinput.Model
	width int
}

// NewForm creates a new form.
func NewForm() *Form {
	input := textinput.New()
	input.CharLimit = 253
	return &Form{input: input}
}

// InitAddAlias prepares the form for a new alias.
func (f *Form) InitAddAlias() {
	f.kind = FormAddAlias
	f.input.Reset()
	f.input.Placeholder = "host.wsl.internal"
	f.input.CharLimit = 253
	f.input.Focus()
}

// InitSetPath prepares the form for a new hosts file path, prefilled with
// the current one.
func (f *Form) InitSetPath(current string) {
	f.kind = FormSetPath
	f.input.Reset()
	f.input.Placeholder = "/etc/hosts"
	f.input.CharLimit = 4096
	f.input.SetValue(current)
	f.input.CursorEnd()
	f.input.Focus()
}

// Cancel blurs and clears the input.
func (f *Form) Cancel() {
	f.input.Reset()
	f.input.Blur()
}

// Kind returns what the form edits.
func (f *Form) Kind() FormKind {
	return f.kind
}

// SetSize sets the form dimensions.
func (f *Form) SetSize(width, _ int) {
	f.width = width
	f.input.Width = min(60, max(10, width-10))
}

// Update forwards a key to the input.
func (f *Form) Update(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

// Value returns the trimmed input value.
func (f *Form) Value() string {
	return strings.TrimSpace(f.input.Value())
}

// Validate returns a message describing why the value cannot be submitted,
// or "" when it can.
func (f *Form) Validate() string {
	var err error
	switch f.kind {
	case FormAddAlias:
		err = config.ValidateAlias(f.Value())
	case FormSetPath:
		err = config.ValidateHostsPath(f.Value())
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// View renders the form dialog.
func (f *Form) View() string {
	title, label := "Add Alias", "Alias:"
	if f.kind == FormSetPath {
		title, label = "Hosts File Path", "Path:"
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(inputLabelStyle.Render(label))
	sb.WriteString("\n")
	sb.WriteString(inputFocusStyle.Render(f.input.View()))
	sb.WriteString("\n\n")
	sb.WriteString(helpDescStyle.Render("Enter save • Esc cancel"))

	return dialogStyle.Render(sb.String())
}
