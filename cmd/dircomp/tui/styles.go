// Package tui provides the interactive dual-panel interface for
// dircomp. It uses Charmbracelet's Bubble Tea, Lip Gloss, and Bubbles
// for the terminal UI.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

// Color palette for the TUI.
var (
	// Primary colors
	primaryColor = lipgloss.Color("#7D56F4")
	accentColor  = lipgloss.Color("#00D9FF")

	// Status colors
	successColor = lipgloss.Color("#28A745")
	warningColor = lipgloss.Color("#FFC107")
	dangerColor  = lipgloss.Color("#DC3545")

	// Neutral colors
	mutedColor     = lipgloss.Color("#666666")
	subtleColor    = lipgloss.Color("#444444")
	borderColor    = lipgloss.Color("#333333")
	highlightColor = lipgloss.Color("#1A1A2E")
)

// Text styles.
var (
	// titleStyle for main titles and the active root path.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// mutedTextStyle for less important text.
	mutedTextStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// errorTextStyle for error messages.
	errorTextStyle = lipgloss.NewStyle().
			Foreground(dangerColor)

	// successTextStyle for success messages.
	successTextStyle = lipgloss.NewStyle().
				Foreground(successColor)

	// dividerStyle creates horizontal dividers.
	dividerStyle = lipgloss.NewStyle().
			Foreground(borderColor)
)

// Panel styles.
var (
	// panelBorderStyle frames one panel.
	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(borderColor)

	// activePanelBorderStyle frames the panel owning navigation.
	activePanelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor)

	// cursorRowStyle for the highlighted row on the active panel.
	cursorRowStyle = lipgloss.NewStyle().
			Background(highlightColor).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)

	// dimCursorRowStyle for the cursor row on the inactive panel.
	dimCursorRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#101020")).
				Foreground(lipgloss.Color("#AAAAAA"))

	// sizeColStyle for the size column.
	sizeColStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// mtimeColStyle for the modification time column.
	mtimeColStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// Per-status row styles.
var (
	identicalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	differentStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	onlyStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(dangerColor)

	pendingStyle = lipgloss.NewStyle().
			Foreground(subtleColor)
)

// statusStyle returns the row style for a comparison status.
func statusStyle(s types.Status) lipgloss.Style {
	switch s {
	case types.Different:
		return differentStyle
	case types.LeftOnly, types.RightOnly:
		return onlyStyle
	case types.Error:
		return statusErrorStyle
	case types.Pending:
		return pendingStyle
	default:
		return identicalStyle
	}
}

// Key hint styles.
var (
	// keyStyle for keyboard key hints.
	keyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	// keyDescStyle for key descriptions.
	keyDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// Confirmation dialog styles.
var (
	// dialogBoxStyle for modal dialogs.
	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(warningColor).
			Padding(1, 2).
			Width(50)

	// dialogTitleStyle for dialog titles.
	dialogTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(warningColor).
				Align(lipgloss.Center)

	// dialogTextStyle for dialog content.
	dialogTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Align(lipgloss.Center)

	// activeButtonStyle for the active/focused button.
	activeButtonStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Margin(0, 1).
				Background(primaryColor).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	// inactiveButtonStyle for inactive buttons.
	inactiveButtonStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Margin(0, 1).
				Background(subtleColor).
				Foreground(lipgloss.Color("#CCCCCC"))
)

// renderDivider creates a horizontal divider line.
func renderDivider(width int) string {
	return dividerStyle.Render(repeatChar('─', width))
}

// repeatChar repeats a character n times.
func repeatChar(char rune, n int) string {
	if n <= 0 {
		return ""
	}
	result := make([]rune, n)
	for i := range result {
		result[i] = char
	}
	return string(result)
}

// truncatePath truncates a path to fit within maxLen, preserving the end.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[:maxLen]
	}
	return "..." + path[len(path)-(maxLen-3):]
}

// truncateName truncates a name to maxLen, preserving the start.
func truncateName(name string, maxLen int) string {
	if len(name) <= maxLen {
		return name
	}
	if maxLen <= 1 {
		return name[:maxLen]
	}
	return name[:maxLen-1] + "…"
}

// center centers a string within the given width.
func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	leftPad := (width - len(s)) / 2
	rightPad := width - len(s) - leftPad
	return repeatChar(' ', leftPad) + s + repeatChar(' ', rightPad)
}
