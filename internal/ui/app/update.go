package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/universal-console/collapse/internal/content"
	"github.com/universal-console/collapse/internal/errors"
	"github.com/universal-console/collapse/internal/measure"
	"github.com/universal-console/collapse/internal/ui/panel"
)

// Update implements tea.Model. Every message ends with the viewport content
// rebuilt from the panels' current frames.
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var commands []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		commands = append(commands, m.handleKeyInput(msg))

	case tea.WindowSizeMsg:
		commands = append(commands, m.SetTerminalSize(msg.Width, msg.Height))

	case panel.FrameMsg:
		if p := m.Panel(msg.ID); p != nil {
			commands = append(commands, p.Update(msg))
		}

	case measure.HeightMsg:
		if p := m.Panel(msg.ID); p != nil {
			commands = append(commands, p.Update(msg))
		}

	case documentReloadedMsg:
		commands = append(commands, m.handleDocumentReloaded(msg))

	case clipboardResultMsg:
		if msg.err != nil {
			m.setError(errors.NewUIError("viewer").
				WithLogger(m.logger).
				WithMessage("failed to copy section to clipboard").
				WithOperation("yank").
				WithCause(msg.err).
				WithoutStackTrace().
				Build())
		} else {
			m.statusMessage = fmt.Sprintf("Copied %q to clipboard", msg.sectionID)
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		commands = append(commands, cmd)
	}

	m.refreshViewport()
	return m, tea.Batch(commands...)
}

// handleKeyInput dispatches key presses. While the error pane is shown
// only its recovery keys and quit are active.
func (m *AppModel) handleKeyInput(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}

	if m.currentError != nil {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.currentError = nil
		case key.Matches(msg, m.keys.Reload):
			m.currentError = nil
			return m.reload()
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		return m.navigate(content.NavigationPrevious)
	case key.Matches(msg, m.keys.Down):
		return m.navigate(content.NavigationNext)
	case key.Matches(msg, m.keys.Parent):
		return m.navigate(content.NavigationParent)
	case key.Matches(msg, m.keys.Child):
		return m.navigate(content.NavigationChild)
	case key.Matches(msg, m.keys.First):
		return m.navigate(content.NavigationFirst)
	case key.Matches(msg, m.keys.Last):
		return m.navigate(content.NavigationLast)

	case key.Matches(msg, m.keys.Toggle):
		return m.toggleFocusedSection()
	case key.Matches(msg, m.keys.ExpandAll):
		m.sections.ExpandAll()
		m.statusMessage = "Expanded all sections"
		return m.syncPanels()
	case key.Matches(msg, m.keys.CollapseAll):
		m.sections.CollapseAll()
		m.statusMessage = "Collapsed all sections"
		return m.syncPanels()
	case key.Matches(msg, m.keys.Undo):
		if err := m.sections.Undo(); err != nil {
			m.statusMessage = "Nothing to undo"
			return nil
		}
		return m.syncPanels()

	case key.Matches(msg, m.keys.Yank):
		return m.yank()
	case key.Matches(msg, m.keys.Reload):
		m.statusMessage = "Reloading " + m.doc.Path
		return m.reload()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resizeViewport()
		return nil
	case key.Matches(msg, m.keys.Back):
		return func() tea.Msg { return CloseMsg{} }
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *AppModel) navigate(direction content.NavigationDirection) tea.Cmd {
	if _, err := m.sections.Navigate(direction); err != nil {
		m.logger.Debug("Navigation ignored", "error", err.Error())
		return nil
	}
	m.statusMessage = ""
	m.followFocus = true
	return nil
}

func (m *AppModel) toggleFocusedSection() tea.Cmd {
	id := m.sections.Focused()
	if id == "" {
		return nil
	}
	return m.Toggle(id)
}

// Toggle flips the open intent of a section and hands the change to the
// panels. The returned command drives the animation frames.
func (m *AppModel) Toggle(id string) tea.Cmd {
	wasOpen := m.sections.IsOpen(id)
	if err := m.sections.Toggle(id); err != nil {
		m.setError(err)
		return nil
	}
	m.logger.LogUIStateChange(openLabel(wasOpen), openLabel(!wasOpen), id)
	return m.syncPanels()
}

func (m *AppModel) handleDocumentReloaded(msg documentReloadedMsg) tea.Cmd {
	if msg.err != nil {
		m.setError(msg.err)
		return nil
	}
	if cr, ok := m.renderer.(interface{ ClearCache() }); ok {
		cr.ClearCache()
	}
	m.setDocument(msg.doc)
	m.statusMessage = fmt.Sprintf("Reloaded %d sections", len(msg.doc.Sections))
	return nil
}

func openLabel(open bool) string {
	if open {
		return "open"
	}
	return "closed"
}
