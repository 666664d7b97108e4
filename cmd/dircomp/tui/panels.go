package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/dircomp/pkg/dircomp/panel"
	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

// Tree view icons using Unicode symbols.
const (
	iconExpanded  = "▼" // Black down-pointing triangle
	iconCollapsed = "▶" // Black right-pointing triangle
)

const (
	// statusVisible is how long a transient status message stays in
	// the footer.
	statusVisible = 4 * time.Second

	// mtimeFormat is the modification time column format.
	mtimeFormat = "Jan 02 15:04"
)

// panelChrome is the vertical space taken by header, borders and
// footer around the row area.
const panelChrome = 7

// renderBrowse renders the dual-panel comparison view.
func (m Model) renderBrowse() string {
	rows := m.visibleRows()
	m.ctrl.SetHeight(rows)

	panelWidth := (m.width - 5) / 2
	if panelWidth < 20 {
		panelWidth = 20
	}

	left := m.renderPanel(types.Left, panelWidth, rows)
	right := m.renderPanel(types.Right, panelWidth, rows)
	panels := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(panels)
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// visibleRows returns how many tree rows fit in the current window.
func (m Model) visibleRows() int {
	rows := m.height - panelChrome
	if rows < 3 {
		rows = 3
	}
	return rows
}

// renderHeader renders both root paths with the active side
// highlighted, plus live and refresh indicators.
func (m Model) renderHeader() string {
	leftRoot, rightRoot := m.eng.Roots()
	pathWidth := (m.width - 8) / 2
	if pathWidth < 10 {
		pathWidth = 10
	}

	renderRoot := func(root string, side types.Side) string {
		s := truncatePath(root, pathWidth)
		if m.ctrl.Active() == side {
			return titleStyle.Render(s)
		}
		return mutedTextStyle.Render(s)
	}

	header := " " + renderRoot(leftRoot, types.Left) +
		mutedTextStyle.Render("  |  ") +
		renderRoot(rightRoot, types.Right)

	if m.options.Watch {
		header += successTextStyle.Render("  ● LIVE")
	}
	if m.pending != nil {
		header += mutedTextStyle.Render(fmt.Sprintf("  %s refreshing (%s entries)",
			m.spinner.View(), humanize.Comma(m.entriesSeen)))
	}
	return header + "\n" + renderDivider(m.width-2)
}

// renderPanel renders one side's rows inside a bordered box.
func (m Model) renderPanel(side types.Side, width, height int) string {
	st := m.ctrl.Side(side)
	rows := m.ctrl.Rows()

	var b strings.Builder
	if len(rows) == 0 {
		b.WriteString(center(mutedTextStyle.Render("no entries"), width))
		b.WriteString("\n")
	}
	for i := st.Offset; i < st.Offset+height && i < len(rows); i++ {
		b.WriteString(m.renderRow(side, rows[i], width, i == st.Cursor))
		b.WriteString("\n")
	}
	// Pad remaining rows
	shown := len(rows) - st.Offset
	if len(rows) == 0 {
		shown = 1
	}
	for i := shown; i < height; i++ {
		b.WriteString("\n")
	}

	border := panelBorderStyle
	if m.ctrl.Active() == side {
		border = activePanelBorderStyle
	}
	return border.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

// renderRow renders a single row for one side. The row carries the
// shared node; each side shows only what it holds.
func (m Model) renderRow(side types.Side, row panel.Row, width int, isCursor bool) string {
	n := row.Node
	entry := n.Entry(side)

	var content strings.Builder
	content.WriteString(n.Status.Tag())
	content.WriteString(" ")
	content.WriteString(strings.Repeat("  ", row.Depth))

	if n.IsDir {
		if row.Expanded {
			content.WriteString(iconExpanded)
		} else {
			content.WriteString(iconCollapsed)
		}
		content.WriteString(" ")
	} else {
		content.WriteString("  ")
	}

	var sizeStr, mtimeStr string
	if entry != nil {
		content.WriteString(n.Name)
		if !entry.IsDir {
			sizeStr = entry.HumanSize()
		}
		mtimeStr = entry.ModTime.Format(mtimeFormat)
	}

	// Right-aligned size and mtime columns
	tail := fmt.Sprintf("%9s  %12s", sizeStr, mtimeStr)
	padding := width - lipgloss.Width(content.String()) - len(tail) - 1
	if padding < 1 {
		// Truncate the name to keep the columns aligned
		keep := width - len(tail) - 2
		truncated := truncateName(content.String(), keep)
		content.Reset()
		content.WriteString(truncated)
		padding = width - lipgloss.Width(content.String()) - len(tail) - 1
		if padding < 1 {
			padding = 1
		}
	}

	plain := content.String() + strings.Repeat(" ", padding) + tail

	if isCursor {
		if m.ctrl.Active() == side {
			return cursorRowStyle.Width(width).Render(plain)
		}
		return dimCursorRowStyle.Width(width).Render(plain)
	}
	return statusStyle(n.Status).Width(width).Render(plain)
}

// renderFooter renders the stats line, a transient status message,
// and the key hints.
func (m Model) renderFooter() string {
	var b strings.Builder
	b.WriteString(renderDivider(m.width - 2))
	b.WriteString("\n")

	s := m.ctrl.Tree().Stats()
	stats := fmt.Sprintf(" filter: %s  |  %d identical, %d different, %d left-only, %d right-only, %d errors",
		m.ctrl.Filter(), s.Identical, s.Different, s.LeftOnly, s.RightOnly, s.Errors)
	b.WriteString(mutedTextStyle.Render(stats))

	if m.status != "" && time.Since(m.statusAt) < statusVisible {
		b.WriteString("  ")
		b.WriteString(errorTextStyle.Render(m.status))
	}
	b.WriteString("\n")

	hints := []struct{ key, desc string }{
		{"h/l", "side"},
		{"j/k", "move"},
		{"enter", "open/diff"},
		{"c", "copy"},
		{"s", "swap"},
		{"r", "refresh"},
		{"1/2/3", "filter"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyStyle.Render(h.key)+" "+keyDescStyle.Render(h.desc))
	}
	b.WriteString(" " + strings.Join(parts, "  "))
	return b.String()
}

// renderScanning renders the initial scanning view.
func (m Model) renderScanning() string {
	leftRoot, rightRoot := m.eng.Roots()
	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  Comparing directories"))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  left:  %s\n", truncatePath(leftRoot, contentWidth-10)))
	b.WriteString(fmt.Sprintf("  right: %s\n", truncatePath(rightRoot, contentWidth-10)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s %s entries scanned  |  %v",
		m.spinner.View(),
		humanize.Comma(m.entriesSeen),
		time.Since(m.startTime).Round(time.Millisecond)))
	b.WriteString("\n\n")
	b.WriteString("  " + keyStyle.Render("q") + " " + keyDescStyle.Render("cancel"))
	b.WriteString("\n")
	return b.String()
}

// renderConfirmDialog renders the copy confirmation dialog over the
// browse view.
func (m Model) renderConfirmDialog() string {
	bg := m.renderBrowse()

	from := m.ctrl.Active()
	arrow := "->"
	if from == types.Right {
		arrow = "<-"
	}

	var content strings.Builder
	content.WriteString(dialogTitleStyle.Render("Confirm Copy"))
	content.WriteString("\n\n")
	content.WriteString(dialogTextStyle.Render(
		fmt.Sprintf("Copy %s %s %s?", truncatePath(m.copyRow.Node.RelPath, 30), arrow, from.Other())))
	content.WriteString("\n")
	content.WriteString(dialogTextStyle.Render(
		fmt.Sprintf("%d files, %d dirs, %s",
			m.copySummary.Files, m.copySummary.Dirs, types.FormatSize(m.copySummary.Bytes))))
	content.WriteString("\n\n")

	cancelBtn := inactiveButtonStyle.Render("Cancel")
	copyBtn := inactiveButtonStyle.Render("Copy")
	if m.confirmFocused == 0 {
		cancelBtn = activeButtonStyle.Render("Cancel")
	} else {
		copyBtn = activeButtonStyle.Render("Copy")
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, cancelBtn, "  ", copyBtn)
	content.WriteString(center(buttons, 46))

	dialog := dialogBoxStyle.Render(content.String())
	return m.overlayDialog(bg, dialog)
}

// overlayDialog centers a dialog over a background view.
func (m Model) overlayDialog(bg, dialog string) string {
	dialogLines := strings.Split(dialog, "\n")
	bgLines := strings.Split(bg, "\n")

	dialogHeight := len(dialogLines)
	startRow := (m.height - dialogHeight) / 2
	if startRow < 0 {
		startRow = 0
	}

	dialogWidth := lipgloss.Width(dialog)
	startCol := (m.width - dialogWidth) / 2
	if startCol < 0 {
		startCol = 0
	}

	var result []string
	for i := range max(len(bgLines), startRow+dialogHeight) {
		if i < startRow || i >= startRow+dialogHeight {
			if i < len(bgLines) {
				result = append(result, bgLines[i])
			} else {
				result = append(result, "")
			}
			continue
		}
		dialogLine := dialogLines[i-startRow]
		if i < len(bgLines) {
			bgLine := bgLines[i]
			if startCol > len(bgLine) {
				result = append(result, strings.Repeat(" ", startCol)+dialogLine)
			} else {
				result = append(result, bgLine[:min(startCol, len(bgLine))]+dialogLine)
			}
		} else {
			result = append(result, strings.Repeat(" ", startCol)+dialogLine)
		}
	}
	return strings.Join(result, "\n")
}
