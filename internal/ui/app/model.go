// Package app implements the document viewer: an accordion of animated
// collapse panels, one per section, with keyboard focus, a scrolling
// viewport, a status bar and an error pane.
package app

import (
	"context"
	"fmt"
	"maps"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/universal-console/collapse/internal/collapse"
	"github.com/universal-console/collapse/internal/content"
	"github.com/universal-console/collapse/internal/errors"
	"github.com/universal-console/collapse/internal/interfaces"
	"github.com/universal-console/collapse/internal/logging"
	"github.com/universal-console/collapse/internal/spring"
	"github.com/universal-console/collapse/internal/ui/panel"
)

const defaultWidth = 80

// CloseMsg asks the parent controller to leave the viewer.
type CloseMsg struct{}

type (
	documentReloadedMsg struct {
		doc interfaces.Document
		err error
	}

	clipboardResultMsg struct {
		sectionID string
		err       error
	}
)

// plainTexter is implemented by renderers that can produce unstyled text
// for the clipboard.
type plainTexter interface {
	PlainText(section interfaces.Section) string
}

// Options configure a viewer.
type Options struct {
	Renderer interfaces.ContentRenderer
	Loader   interfaces.DocumentLoader
	Theme    *interfaces.Theme
	Defaults interfaces.PanelDefaults
	Logger   *logging.Logger
}

// AppModel is the Bubble Tea model of the document viewer.
type AppModel struct {
	// Injected dependencies
	renderer interfaces.ContentRenderer
	loader   interfaces.DocumentLoader
	theme    *interfaces.Theme
	defaults interfaces.PanelDefaults
	logger   *logging.Logger

	// Document state
	doc      interfaces.Document
	sections *content.SectionManager
	panels   []*panel.Model
	index    map[string]int

	// Values reported by panel callbacks. natural keeps the last non-zero
	// report, the height a closing panel is leaving.
	heights map[string]float64
	natural map[string]float64
	rests   map[string]int

	// Layout
	viewport       viewport.Model
	help           help.Model
	keys           keyMap
	terminalWidth  int
	terminalHeight int
	headerLines    []int
	followFocus    bool

	// Status and error management
	statusMessage string
	currentError  *errors.ProcessedError
	errorHandler  *errors.Handler

	writeClipboard func(string) error
}

// NewAppModel builds a viewer for doc. Every section becomes a panel; the
// sections' open flags are the initial open intents.
func NewAppModel(doc interfaces.Document, opts Options) *AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetUILogger()
	}

	vp := viewport.New(0, 0)
	vp.KeyMap = viewportKeys()

	m := &AppModel{
		renderer:       opts.Renderer,
		loader:         opts.Loader,
		theme:          opts.Theme,
		defaults:       opts.Defaults,
		logger:         logger.WithField("document", doc.Title),
		viewport:       vp,
		help:           help.New(),
		keys:           defaultKeyMap(),
		errorHandler:   errors.NewHandler(),
		writeClipboard: clipboard.WriteAll,
	}
	m.setDocument(doc)
	return m
}

// Init implements tea.Model.
func (m *AppModel) Init() tea.Cmd {
	return nil
}

// Document returns the document being viewed.
func (m *AppModel) Document() interfaces.Document {
	return m.doc
}

// Sections exposes the open intents and focus.
func (m *AppModel) Sections() *content.SectionManager {
	return m.sections
}

// Panel returns the panel of a section, or nil.
func (m *AppModel) Panel(sectionID string) *panel.Model {
	i, ok := m.index[sectionID]
	if !ok {
		return nil
	}
	return m.panels[i]
}

// ReportedHeight returns the last height a section reported through
// OnHeightReady.
func (m *AppModel) ReportedHeight(sectionID string) float64 {
	return m.heights[sectionID]
}

// Settles counts how often the panel of a section came to rest.
func (m *AppModel) Settles(sectionID string) int {
	return m.rests[sectionID]
}

// SetTerminalSize lays out the viewer and re-wraps every panel.
func (m *AppModel) SetTerminalSize(width, height int) tea.Cmd {
	m.terminalWidth = width
	m.terminalHeight = height
	m.help.Width = width
	m.resizeViewport()

	cmds := make([]tea.Cmd, 0, len(m.panels))
	for _, p := range m.panels {
		cmds = append(cmds, p.SetWidth(m.panelWidth()))
	}
	cmds = append(cmds, m.syncPanels())
	return tea.Batch(cmds...)
}

// setDocument replaces the document and rebuilds the panels. Open intents
// of sections that survive by ID are kept.
func (m *AppModel) setDocument(doc interfaces.Document) {
	previous := m.sections
	m.doc = doc
	m.sections = content.NewSectionManager()
	m.index = make(map[string]int, len(doc.Sections))
	m.panels = make([]*panel.Model, len(doc.Sections))
	m.heights = make(map[string]float64, len(doc.Sections))
	if m.rests == nil {
		m.rests = make(map[string]int)
		m.natural = make(map[string]float64)
	}

	for i, section := range doc.Sections {
		if previous != nil {
			if state, err := previous.State(section.ID); err == nil {
				section.Open = state.Open
			}
		}
		if err := m.sections.Register(section); err != nil {
			m.setError(errors.NewContentError("viewer").
				WithLogger(m.logger).
				WithMessage("failed to register section").
				WithContext("section", section.ID).
				WithCause(err).
				WithoutStackTrace().
				Build())
			continue
		}
		m.index[section.ID] = i
	}

	if previous != nil {
		if focused := previous.Focused(); focused != "" {
			_ = m.sections.Focus(focused)
		}
	}

	for i := range doc.Sections {
		m.panels[i] = panel.New(doc.Sections[i].ID, m.propsFor(i), panel.Config{
			Width:  m.panelWidth(),
			Spring: m.springParams(),
			Logger: m.logger,
		})
	}
}

// syncPanels pushes the current open intents and content into every panel.
// Panels whose inputs did not change ignore the update.
func (m *AppModel) syncPanels() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.panels))
	for i, p := range m.panels {
		cmds = append(cmds, p.SetProps(m.propsFor(i)))
	}
	return tea.Batch(cmds...)
}

// propsFor derives the panel props of section i from the document, the
// panel defaults and the section manager.
func (m *AppModel) propsFor(i int) collapse.Props {
	section := m.doc.Sections[i]
	id := section.ID

	props := collapse.DefaultProps()
	props.IsOpened = m.sections.IsOpen(id)
	props.KeepCollapsedContent = m.defaults.KeepCollapsedContent
	if section.KeepCollapsedContent != nil {
		props.KeepCollapsedContent = *section.KeepCollapsedContent
	}
	if section.FixedHeight != nil {
		props.FixedHeight = *section.FixedHeight
	}

	props.Style = collapse.Style{}
	maps.Copy(props.Style, m.defaults.Style)
	if section.Level > 1 {
		props.Style["marginLeft"] = 2 * (section.Level - 1)
	}
	maps.Copy(props.Style, section.Style)

	if len(m.defaults.Spring) > 0 || len(section.Spring) > 0 {
		props.SpringConfig = collapse.SpringConfig{}
		maps.Copy(props.SpringConfig, m.defaults.Spring)
		maps.Copy(props.SpringConfig, section.Spring)
	}

	props.Attrs = map[string]string{"section": id}
	maps.Copy(props.Attrs, section.Attrs)

	props.Children = m.renderSection(section, panel.ContentWidth(m.panelWidth(), props.Style))
	props.OnHeightReady = func(h float64) {
		m.heights[id] = h
		if h > 0 {
			m.natural[id] = h
		}
	}
	props.OnRest = func() {
		m.rests[id]++
	}
	return props
}

func (m *AppModel) renderSection(section interfaces.Section, width int) string {
	if m.renderer == nil {
		return ""
	}
	rendered, err := m.renderer.RenderSection(section, width, m.theme)
	if err != nil {
		m.setError(err)
		return ""
	}
	return rendered
}

func (m *AppModel) springParams() spring.Params {
	params := spring.DefaultParams()
	if m.defaults.FPS > 0 {
		params.FPS = m.defaults.FPS
	}
	return params
}

// panelWidth leaves room for the header marker column. Before the first
// WindowSizeMsg the viewer assumes defaultWidth.
func (m *AppModel) panelWidth() int {
	width := m.terminalWidth
	if width <= 0 {
		width = defaultWidth
	}
	return max(width-2, 1)
}

func (m *AppModel) setError(err error) {
	m.currentError = m.errorHandler.Process(err)
}

// reload re-reads the document from disk.
func (m *AppModel) reload() tea.Cmd {
	if m.loader == nil || m.doc.Path == "" {
		m.statusMessage = "Nothing to reload"
		return nil
	}
	path := m.doc.Path
	loader := m.loader
	return func() tea.Msg {
		docs, err := loader.Load(context.Background(), []string{path})
		if err != nil {
			return documentReloadedMsg{err: err}
		}
		if len(docs) == 0 {
			return documentReloadedMsg{err: fmt.Errorf("%s: no document loaded", path)}
		}
		return documentReloadedMsg{doc: docs[0]}
	}
}

// yank copies the focused section to the clipboard.
func (m *AppModel) yank() tea.Cmd {
	id := m.sections.Focused()
	i, ok := m.index[id]
	if !ok {
		return nil
	}

	text := m.panels[i].Props().Children
	if pt, ok := m.renderer.(plainTexter); ok {
		text = pt.PlainText(m.doc.Sections[i])
	}

	write := m.writeClipboard
	return func() tea.Msg {
		return clipboardResultMsg{sectionID: id, err: write(text)}
	}
}
