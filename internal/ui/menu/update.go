package menu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model state.
func (m *MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	// While loading only the results, the spinner and quit get through.
	if m.isLoading {
		switch msg := msg.(type) {
		case documentsLoadedMsg:
			return m, m.handleDocumentsLoaded(msg)
		case pathLoadedMsg:
			return m, m.handlePathLoaded(msg)
		case spinner.TickMsg:
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		case tea.KeyMsg:
			if msg.Type == tea.KeyCtrlC {
				return m, tea.Quit
			}
		case tea.WindowSizeMsg:
			m.width = msg.Width
			m.height = msg.Height
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Clear error on any key press
		m.currentError = nil

		switch m.focusState {
		case FocusList:
			cmd = m.handleListKeys(msg)
		case FocusInput:
			cmd = m.handleInputKeys(msg)
		}
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case documentsLoadedMsg:
		cmds = append(cmds, m.handleDocumentsLoaded(msg))

	case pathLoadedMsg:
		cmds = append(cmds, m.handlePathLoaded(msg))

	// Standalone use; under the console controller this message is
	// intercepted before it reaches the menu.
	case OpenResultMsg:
		if msg.Err != nil {
			m.setError(msg.Err)
			return m, nil
		}
		return msg.Model, msg.Model.Init()
	}

	// Update the text input if it's focused
	if m.focusState == FocusInput {
		if key, ok := msg.(tea.KeyMsg); !ok || !isInputControlKey(key) {
			m.pathInput, cmd = m.pathInput.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// handleDocumentsLoaded lists whatever loaded. Failed files are reported
// but do not hide the documents that did load.
func (m *MenuModel) handleDocumentsLoaded(msg documentsLoadedMsg) tea.Cmd {
	m.isLoading = false
	m.documents = msg.docs
	m.selectedIndex = min(m.selectedIndex, max(len(m.documents)-1, 0))
	m.statusMessage = fmt.Sprintf("%d documents loaded", len(m.documents))

	autoOpen := m.autoOpen
	m.autoOpen = false

	if msg.err != nil {
		m.logger.Warn("Some documents failed to load", "error", msg.err.Error())
		m.setError(msg.err)
		return nil
	}
	if autoOpen && len(m.documents) == 1 {
		return m.openDocument(0)
	}
	return nil
}

func (m *MenuModel) handlePathLoaded(msg pathLoadedMsg) tea.Cmd {
	m.isLoading = false
	if msg.err != nil {
		m.statusMessage = ""
		m.setError(msg.err)
		return nil
	}

	i := m.addDocument(msg.doc)
	m.pathInput.Reset()
	m.focusState = FocusList
	m.pathInput.Blur()
	return m.openDocument(i)
}

// handleListKeys processes key presses when the document list is focused.
func (m *MenuModel) handleListKeys(msg tea.KeyMsg) tea.Cmd {
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		return tea.Quit

	case "up", "k":
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}

	case "down", "j":
		if m.selectedIndex < len(m.documents)-1 {
			m.selectedIndex++
		}

	case "enter":
		return m.openDocument(m.selectedIndex)

	case "r":
		if len(m.paths) > 0 {
			return m.reloadDocuments()
		}

	case "tab":
		m.focusState = FocusInput
		return m.pathInput.Focus()

	default:
		// Allow opening via number keys
		if i, err := strconv.Atoi(key); err == nil && i >= 1 && i <= len(m.documents) {
			return m.openDocument(i - 1)
		}
	}
	return nil
}

// handleInputKeys processes key presses when the path input is focused.
func (m *MenuModel) handleInputKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit

	case "enter":
		if path := strings.TrimSpace(m.pathInput.Value()); path != "" {
			return m.loadPath(path)
		}

	case "tab", "shift+tab", "esc":
		m.focusState = FocusList
		m.pathInput.Blur()
	}
	return nil
}

func isInputControlKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "enter", "tab", "shift+tab", "esc", "ctrl+c":
		return true
	}
	return false
}
