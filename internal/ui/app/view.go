package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/universal-console/collapse/internal/interfaces"
	"github.com/universal-console/collapse/internal/ui/components"
)

var (
	titleBarStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7D56F4"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#CDD6F4"))

	sectionHeaderFocusedStyle = lipgloss.NewStyle().
					Bold(true).
					Foreground(lipgloss.Color("#1E1E2E")).
					Background(lipgloss.Color("#FAB387"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))
)

const (
	markerOpen    = "▾"
	markerClosed  = "▸"
	progressCells = 10
)

// View implements tea.Model.
func (m *AppModel) View() string {
	parts := []string{m.renderTitleBar(), m.viewport.View()}
	if pane := components.RenderErrorPane(m.currentError, m.terminalWidth); pane != "" {
		parts = append(parts, pane)
	}
	parts = append(parts, m.renderStatusBar(), m.help.View(m.keys))
	return strings.Join(parts, "\n")
}

// Body renders every section header followed by its panel's current frame.
func (m *AppModel) Body() string {
	focused := m.sections.Focused()
	lines := make([]string, 0, 2*len(m.panels))
	m.headerLines = m.headerLines[:0]
	row := 0
	for i, section := range m.doc.Sections {
		m.headerLines = append(m.headerLines, row)
		lines = append(lines, m.renderSectionHeader(section, section.ID == focused))
		row++

		if frame := m.panels[i].View(); frame != "" {
			lines = append(lines, frame)
			row += lipgloss.Height(frame)
		}
	}
	return strings.Join(lines, "\n")
}

// refreshViewport rebuilds the scrollable body and keeps the focused header
// visible after navigation.
func (m *AppModel) refreshViewport() {
	m.resizeViewport()
	m.viewport.SetContent(m.Body())

	if m.followFocus {
		m.followFocus = false
		m.scrollToFocus()
	}
}

// resizeViewport gives the viewport whatever the title bar, error pane,
// status bar and help leave over.
func (m *AppModel) resizeViewport() {
	chrome := 2 + lipgloss.Height(m.help.View(m.keys))
	if pane := components.RenderErrorPane(m.currentError, m.terminalWidth); pane != "" {
		chrome += lipgloss.Height(pane)
	}
	m.viewport.Width = m.terminalWidth
	m.viewport.Height = max(m.terminalHeight-chrome, 1)
}

// scrollToFocus moves the viewport the least distance that shows the
// focused section's header.
func (m *AppModel) scrollToFocus() {
	i, ok := m.index[m.sections.Focused()]
	if !ok || i >= len(m.headerLines) {
		return
	}
	line := m.headerLines[i]
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

func (m *AppModel) renderTitleBar() string {
	title := " " + m.doc.Title
	if m.doc.Path != "" {
		title += " · " + m.doc.Path
	}
	return titleBarStyle.Render(m.fit(title))
}

func (m *AppModel) renderSectionHeader(section interfaces.Section, focused bool) string {
	marker := markerClosed
	if m.sections.IsOpen(section.ID) {
		marker = markerOpen
	}

	indent := strings.Repeat("  ", max(section.Level-1, 0))
	header := fmt.Sprintf(" %s%s %s", indent, marker, section.Title)
	if p := m.Panel(section.ID); p != nil && p.Animating() {
		header += " …"
	}

	if focused {
		return sectionHeaderFocusedStyle.Render(m.fit(header))
	}
	return sectionHeaderStyle.Render(m.fitTruncate(header))
}

// renderStatusBar shows the last status message or the open count, and the
// focused panel's height with a bar tracking its animation.
func (m *AppModel) renderStatusBar() string {
	summary := m.sections.Summary()
	left := m.statusMessage
	if left == "" {
		left = fmt.Sprintf("%d/%d open", summary.OpenSections, summary.TotalSections)
	}
	left = components.RenderStatus("info", left)

	right := ""
	if p := m.Panel(summary.FocusedSection); p != nil {
		c := p.Collapse()
		right = fmt.Sprintf("%s %s %s rows · %d rests",
			summary.FocusedSection,
			components.RenderProgressBar(m.progress(summary.FocusedSection), progressCells, "█", "░"),
			c.Committed(),
			m.rests[summary.FocusedSection])
	}

	gap := m.terminalWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return m.fitTruncate(left)
	}
	return left + strings.Repeat(" ", gap) + statusBarStyle.Render(right)
}

// progress reports how far the panel of id has travelled toward its
// current target, in percent.
func (m *AppModel) progress(id string) int {
	p := m.Panel(id)
	natural := m.natural[id]
	if p == nil || natural <= 0 {
		return 100
	}
	painted, err := strconv.ParseFloat(p.Collapse().Committed(), 64)
	if err != nil {
		return 100
	}

	shown := min(painted, natural) / natural
	if !p.Props().IsOpened {
		shown = 1 - shown
	}
	return int(shown*100 + 0.5)
}

// fit pads or truncates s to exactly the terminal width.
func (m *AppModel) fit(s string) string {
	if m.terminalWidth <= 0 {
		return s
	}
	return runewidth.FillRight(m.fitTruncate(s), m.terminalWidth)
}

func (m *AppModel) fitTruncate(s string) string {
	if m.terminalWidth <= 0 || lipgloss.Width(s) <= m.terminalWidth {
		return s
	}
	return truncate.StringWithTail(s, uint(m.terminalWidth), "…")
}
