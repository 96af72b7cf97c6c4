package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// AliasList handles the list of configured aliases.
type AliasList struct {
	aliases []string
	address string
	pending map[string]bool
	cursor  int
	width   int
}

// NewAliasList creates an empty alias list.
func NewAliasList() *AliasList {
	return &AliasList{pending: make(map[string]bool)}
}

// SetAliases replaces the aliases, keeping the cursor in range.
func (l *AliasList) SetAliases(aliases []string) {
	l.aliases = append([]string(nil), aliases...)
	for alias := range l.pending {
		if !l.contains(alias) {
			delete(l.pending, alias)
		}
	}
	if l.cursor >= len(l.aliases) {
		l.cursor = max(0, len(l.aliases)-1)
	}
}

// SetAddress sets the address shown next to each alias.
func (l *AliasList) SetAddress(address string) {
	l.address = address
}

// SetWidth sets the view width.
func (l *AliasList) SetWidth(width int) {
	l.width = width
}

// MoveUp moves the cursor up.
func (l *AliasList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
}

// MoveDown moves the cursor down.
func (l *AliasList) MoveDown() {
	if l.cursor < len(l.aliases)-1 {
		l.cursor++
	}
}

// Selected returns the alias under the cursor, or "" when the list is empty.
func (l *AliasList) Selected() string {
	if l.cursor >= 0 && l.cursor < len(l.aliases) {
		return l.aliases[l.cursor]
	}
	return ""
}

// SetPending marks an alias as having a request in flight.
func (l *AliasList) SetPending(alias string, pending bool) {
	if pending {
		l.pending[alias] = true
		return
	}
	delete(l.pending, alias)
}

// IsPending reports whether alias has a request in flight.
func (l *AliasList) IsPending(alias string) bool {
	return l.pending[alias]
}

// Len returns the number of aliases.
func (l *AliasList) Len() int {
	return len(l.aliases)
}

func (l *AliasList) contains(alias string) bool {
	for _, a := range l.aliases {
		if a == alias {
			return true
		}
	}
	return false
}

// View renders the aliases as a table.
func (l *AliasList) View() string {
	if len(l.aliases) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(colorMuted)
		return emptyStyle.Render("  No aliases configured. Press 'a' to add one.")
	}

	address := l.address
	if address == "" {
		address = "-"
	}

	rows := make([][]string, 0, len(l.aliases))
	for _, alias := range l.aliases {
		status := "● Configured"
		if l.pending[alias] {
			status = "◐ Pending"
		}
		rows = append(rows, []string{truncate(alias, 40), address, status})
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("ALIAS", "ADDRESS", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().
					Bold(true).
					Foreground(colorHeader).
					Padding(0, 1)
			}

			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(l.aliases) {
				return base
			}
			if row == l.cursor {
				return base.Background(colorSelectedBg).Foreground(colorSelectedFg)
			}
			if col == 2 {
				if l.pending[l.aliases[row]] {
					return base.Foreground(colorWarning)
				}
				return base.Foreground(colorSuccess)
			}
			return base
		})

	var sb strings.Builder
	sb.WriteString(sectionStyle.Render(fmt.Sprintf(" ALIASES (%d)", len(l.aliases))))
	sb.WriteString("\n")
	sb.WriteString(t.Render())
	return sb.String()
}
