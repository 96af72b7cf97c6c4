// Package tui provides the terminal user interface.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors, tuned for dark terminals.
var (
	colorPrimary    = lipgloss.Color("205") // Pink/Magenta
	colorSuccess    = lipgloss.Color("42")  // Green
	colorWarning    = lipgloss.Color("220") // Yellow
	colorError      = lipgloss.Color("196") // Red
	colorMuted      = lipgloss.Color("245") // Gray
	colorAccent     = lipgloss.Color("141") // Light purple
	colorHeader     = lipgloss.Color("220") // Yellow for headers
	colorSelectedBg = lipgloss.Color("236")
	colorSelectedFg = lipgloss.Color("255")
	colorManaged    = lipgloss.Color("213") // Light pink for managed lines
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHeader).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)
)

// Status indicators
var (
	enabledStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	disabledStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	pendingStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorIndicatorStyle = lipgloss.NewStyle().
				Foreground(colorError)
)

// Status bar and help
var (
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorHeader).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// Message styles
var (
	errorMsgStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true).
			MarginTop(1)

	successMsgStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			MarginTop(1)
)

// Form styles
var (
	inputLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	inputFocusStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)
)

// Dialog and content styles
var (
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)

	contentStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	managedLineStyle = lipgloss.NewStyle().
				Foreground(colorManaged)

	itemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
				Background(colorSelectedBg).
				Foreground(colorSelectedFg).
				Padding(0, 1)
)

// Indicator returns the access indicator for a flag.
func Indicator(ok bool, pending bool) string {
	if pending {
		return pendingStyle.Render("◐")
	}
	if ok {
		return enabledStyle.Render("●")
	}
	return errorIndicatorStyle.Render("✗")
}

// AccessText renders a labelled access flag, muted while unknown.
func AccessText(label string, ok bool, known bool) string {
	if !known {
		return disabledStyle.Render("○ " + label)
	}
	if ok {
		return enabledStyle.Render("● " + label)
	}
	return errorIndicatorStyle.Render("✗ " + label)
}

// WrapHelpText wraps help text to fit within maxWidth, splitting on bullet separators.
// If maxWidth is 0 or negative, returns the original text.
func WrapHelpText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return helpDescStyle.Render(text)
	}

	const separator = " • "
	parts := strings.Split(text, separator)

	var lines []string
	var current string
	for _, part := range parts {
		switch {
		case current == "":
			current = part
		case len(current)+len(separator)+len(part) > maxWidth:
			lines = append(lines, current)
			current = part
		default:
			current += separator + part
		}
	}
	if current != "" {
		lines = append(lines, current)
	}

	result := make([]string, 0, len(lines))
	for _, line := range lines {
		result = append(result, helpDescStyle.Render(line))
	}
	return strings.Join(result, "\n")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
