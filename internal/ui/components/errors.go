package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/universal-console/collapse/internal/errors"
)

// Styling for error components.
var (
	errorPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder(), false, true, true, true).
			BorderForeground(lipgloss.Color("#F38BA8")).
			Padding(0, 1)

	errorHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#F38BA8"))

	errorCodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAB387")).
			Italic(true)

	errorDetailsStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#CDD6F4"))

	recoveryKeyStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#A6E3A1"))
)

// RenderErrorPane renders a processed error with its code, details and the
// keys that recover from it. A nil error renders nothing.
func RenderErrorPane(currentError *errors.ProcessedError, width int) string {
	if currentError == nil {
		return ""
	}

	var builder strings.Builder

	builder.WriteString(errorHeaderStyle.Render("Error: " + currentError.Message))

	if currentError.Code != "" {
		builder.WriteRune('\n')
		builder.WriteString(errorCodeStyle.Render("Code: " + currentError.Code))
	}

	if currentError.Details != "" {
		builder.WriteRune('\n')
		builder.WriteString(errorDetailsStyle.Render(currentError.Details))
	}

	if len(currentError.Hints) > 0 {
		hints := make([]string, len(currentError.Hints))
		for i, hint := range currentError.Hints {
			hints[i] = fmt.Sprintf("%s %s", recoveryKeyStyle.Render("["+hint.Key+"]"), hint.Description)
		}
		builder.WriteRune('\n')
		builder.WriteString(strings.Join(hints, "  "))
	}

	paneWidth := width - errorPaneStyle.GetHorizontalBorderSize()
	if paneWidth < 1 {
		return errorPaneStyle.Render(builder.String())
	}
	return errorPaneStyle.Width(paneWidth).Render(builder.String())
}
