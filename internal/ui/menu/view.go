package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/universal-console/collapse/internal/ui/components"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#CBA6F7")).
			Padding(1, 2)

	focusedBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("#89B4FA")).
			Padding(1, 2)

	listItemStyle    = lipgloss.NewStyle().PaddingLeft(1)
	focusedItemStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(lipgloss.Color("#1e1e2e")).
				Background(lipgloss.Color("#FAB387"))

	pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")).Padding(1, 0)
)

// View renders the UI for the menu model.
func (m *MenuModel) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Width(m.width).Render("Collapse · documents"))
	s.WriteString("\n\n")

	if m.isLoading {
		s.WriteString(boxStyle.Render(m.spinner.View() + " " + m.statusMessage))
		s.WriteString("\n")
		return s.String()
	}

	s.WriteString(m.viewDocumentList())
	s.WriteString("\n\n")

	s.WriteString(m.viewPathInput())
	s.WriteString("\n\n")

	s.WriteString(helpStyle.Render("Commands: [Enter] Open | [1-9] Open by number | [Tab] Path | [R]eload | [Q]uit"))

	if pane := components.RenderErrorPane(m.currentError, m.width); pane != "" {
		s.WriteString("\n")
		s.WriteString(pane)
	}

	return s.String()
}

// viewDocumentList renders the loaded documents.
func (m *MenuModel) viewDocumentList() string {
	var listItems []string

	if len(m.documents) == 0 {
		listItems = append(listItems, helpStyle.Render("No documents loaded. Press Tab and enter a path."))
	} else {
		for i, doc := range m.documents {
			itemStr := fmt.Sprintf("[%d] %s (%d sections)", i+1, doc.Title, len(doc.Sections))
			if doc.Path != "" {
				itemStr += " " + pathStyle.Render(doc.Path)
			}

			if m.focusState == FocusList && i == m.selectedIndex {
				listItems = append(listItems, focusedItemStyle.Render(itemStr))
			} else {
				listItems = append(listItems, listItemStyle.Render(itemStr))
			}
		}
	}

	listContent := lipgloss.JoinVertical(lipgloss.Left, listItems...)

	style := boxStyle
	if m.focusState == FocusList {
		style = focusedBoxStyle
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lipgloss.NewStyle().Bold(true).Render("Documents"), listContent))
}

// viewPathInput renders the box for opening another document.
func (m *MenuModel) viewPathInput() string {
	style := boxStyle
	if m.focusState == FocusInput {
		style = focusedBoxStyle
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lipgloss.NewStyle().Bold(true).Render("Open"), m.pathInput.View()))
}
