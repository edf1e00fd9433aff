// Package menu implements the document picker shown before the viewer. It
// lists the loaded documents, opens a new path typed into its input field and
// hands the chosen document to the parent controller as a viewer model.
package menu

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/universal-console/collapse/internal/errors"
	"github.com/universal-console/collapse/internal/interfaces"
	"github.com/universal-console/collapse/internal/logging"
	"github.com/universal-console/collapse/internal/ui/app"
	"github.com/universal-console/collapse/internal/ui/components"
)

// FocusState represents which part of the menu is currently focused.
type FocusState int

const (
	FocusList FocusState = iota
	FocusInput
)

// MenuModel represents the state of the document picker.
type MenuModel struct {
	// Injected dependencies
	loader  interfaces.DocumentLoader
	viewer  app.Options
	logger  *logging.Logger
	handler *errors.Handler

	// UI State
	paths         []string
	documents     []interfaces.Document
	selectedIndex int
	pathInput     textinput.Model
	spinner       spinner.Model
	focusState    FocusState
	isLoading     bool
	autoOpen      bool
	statusMessage string
	currentError  *errors.ProcessedError

	// Terminal dimensions
	width  int
	height int
}

// NewMenuModel creates a picker for paths. The viewer options are passed to
// every viewer the menu opens; their Loader also loads the menu's documents.
// When exactly one document loads on start the menu opens it right away.
func NewMenuModel(paths []string, viewer app.Options) *MenuModel {
	ti := textinput.New()
	ti.Placeholder = "docs/guide.yaml"
	ti.Prompt = "Path: "
	ti.CharLimit = 255
	ti.Width = 50

	logger := viewer.Logger
	if logger == nil {
		logger = logging.GetUILogger()
	}

	return &MenuModel{
		loader:    viewer.Loader,
		viewer:    viewer,
		logger:    logger.WithComponent("menu"),
		handler:   errors.NewHandler(),
		paths:     slices.Clone(paths),
		pathInput: ti,
		spinner:   components.NewSpinner(),
		autoOpen:  true,
	}
}

// Init loads the configured documents.
func (m *MenuModel) Init() tea.Cmd {
	if len(m.paths) == 0 {
		m.autoOpen = false
		m.focusState = FocusInput
		return m.pathInput.Focus()
	}
	return m.reloadDocuments()
}

// Documents returns the documents currently listed.
func (m *MenuModel) Documents() []interfaces.Document {
	return m.documents
}

// OpenResultMsg is sent after a document was chosen. The parent controller
// switches to Model, or shows Err in the menu.
type OpenResultMsg struct {
	Model tea.Model
	Err   error
}

type (
	// documentsLoadedMsg carries the result of loading every known path.
	documentsLoadedMsg struct {
		docs []interfaces.Document
		err  error
	}

	// pathLoadedMsg carries a single document opened from the input field.
	pathLoadedMsg struct {
		path string
		doc  interfaces.Document
		err  error
	}
)

// reloadDocuments starts loading every known path and the spinner.
func (m *MenuModel) reloadDocuments() tea.Cmd {
	if m.loader == nil {
		m.setError(fmt.Errorf("no document loader configured"))
		return nil
	}

	m.isLoading = true
	m.statusMessage = fmt.Sprintf("Loading %d documents", len(m.paths))
	m.currentError = nil

	loader := m.loader
	paths := slices.Clone(m.paths)
	load := func() tea.Msg {
		docs, err := loader.Load(context.Background(), paths)
		return documentsLoadedMsg{docs: docs, err: err}
	}
	return tea.Batch(load, m.spinner.Tick)
}

// loadPath starts loading a path typed into the input field.
func (m *MenuModel) loadPath(path string) tea.Cmd {
	if m.loader == nil {
		m.setError(fmt.Errorf("no document loader configured"))
		return nil
	}

	m.isLoading = true
	m.statusMessage = "Opening " + path
	m.currentError = nil

	loader := m.loader
	load := func() tea.Msg {
		docs, err := loader.Load(context.Background(), []string{path})
		if err == nil && len(docs) == 0 {
			err = fmt.Errorf("%s: no document loaded", path)
		}
		if err != nil {
			return pathLoadedMsg{path: path, err: err}
		}
		return pathLoadedMsg{path: path, doc: docs[0]}
	}
	return tea.Batch(load, m.spinner.Tick)
}

// openDocument builds the viewer for document i.
func (m *MenuModel) openDocument(i int) tea.Cmd {
	if i < 0 || i >= len(m.documents) {
		return nil
	}
	doc := m.documents[i]
	m.selectedIndex = i
	m.statusMessage = "Opening " + doc.Title

	opts := m.viewer
	opts.Logger = m.logger
	return func() tea.Msg {
		if len(doc.Sections) == 0 {
			return OpenResultMsg{Err: fmt.Errorf("%s has no sections", doc.Title)}
		}
		return OpenResultMsg{Model: app.NewAppModel(doc, opts)}
	}
}

// addDocument lists doc, replacing an entry with the same path, and returns
// its index.
func (m *MenuModel) addDocument(doc interfaces.Document) int {
	for i, existing := range m.documents {
		if existing.Path != "" && existing.Path == doc.Path {
			m.documents[i] = doc
			return i
		}
	}
	m.documents = append(m.documents, doc)
	if !slices.Contains(m.paths, doc.Path) {
		m.paths = append(m.paths, doc.Path)
	}
	return len(m.documents) - 1
}

func (m *MenuModel) setError(err error) {
	m.currentError = m.handler.Process(err)
}
