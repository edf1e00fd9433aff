// Package components provides small rendering helpers shared by the viewer
// and the document menu: status lines, progress bars, the loading spinner
// and the error pane.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// statusStyles maps status strings to their corresponding visual style.
var statusStyles = map[string]lipgloss.Style{
	"pending":  lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	"success":  lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
	"error":    lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	"warning":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FAB387")),
	"info":     lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA")),
	"running":  lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	"complete": lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
}

// statusIcons maps status strings to their corresponding icon.
var statusIcons = map[string]string{
	"pending":  "…",
	"success":  "✓",
	"error":    "✗",
	"warning":  "!",
	"info":     "•",
	"running":  "↻",
	"complete": "✓",
}

// RenderStatus formats a status message with an appropriate icon and color.
// It returns a styled string ready for display.
func RenderStatus(status, message string) string {
	style, exists := statusStyles[status]
	if !exists {
		style = lipgloss.NewStyle() // Default style
	}

	icon, exists := statusIcons[status]
	if !exists {
		icon = "•"
	}

	return style.Render(fmt.Sprintf("%s %s", icon, message))
}

// RenderProgressBar creates a visual textual progress bar.
// - progress: The percentage of completion (0-100).
// - width: The number of cells between the brackets.
// - fillChar: The character to use for the filled portion of the bar.
// - emptyChar: The character to use for the empty portion of the bar.
func RenderProgressBar(progress int, width int, fillChar, emptyChar string) string {
	if width <= 0 {
		return ""
	}
	progress = min(max(progress, 0), 100)

	filledWidth := (progress * width) / 100
	emptyWidth := width - filledWidth

	filled := strings.Repeat(fillChar, filledWidth)
	empty := strings.Repeat(emptyChar, emptyWidth)

	return fmt.Sprintf("[%s%s]", filled, empty)
}

// NewSpinner returns the spinner shown while documents load. The caller
// starts it with its Tick method and forwards spinner.TickMsg to Update.
func NewSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(statusStyles["running"]),
	)
}
