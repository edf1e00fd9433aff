// Package panel hosts a collapse.Collapse inside a Bubble Tea program. It owns
// the spring, the measurer and the frame ticker of one panel, and paints the
// Collapse render output with Lip Gloss.
package panel

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/universal-console/collapse/internal/collapse"
	"github.com/universal-console/collapse/internal/logging"
	"github.com/universal-console/collapse/internal/measure"
	"github.com/universal-console/collapse/internal/spring"
)

// FrameMsg advances the animation of the panel with ID. Tag invalidates
// ticks of a ticker that has since been restarted.
type FrameMsg struct {
	ID  string
	Tag int
}

type viewKey struct {
	width int
	rows  int
	auto  bool
}

// Config holds the per-panel runtime settings.
type Config struct {
	// Width is the total width available to the panel.
	Width  int
	Spring spring.Params
	Logger *logging.Logger
}

// Model is one animated panel.
type Model struct {
	id       string
	collapse *collapse.Collapse
	motion   *spring.Motion
	measurer *measure.Measurer
	width    int
	fps      int
	logger   *logging.Logger

	// Frame ticker
	ticking bool
	tag     int

	// View cache
	cached      bool
	view        string
	viewInputs  collapse.RenderInputs
	viewKey     viewKey
	cacheHits   int
	cacheMisses int
}

// New mounts a panel and measures its children.
func New(id string, props collapse.Props, cfg Config) *Model {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetUILogger()
	}
	logger = logger.WithField("panel", id)

	motion := spring.NewMotion(cfg.Spring)
	motion.SetLogger(logger)

	m := &Model{
		id:       id,
		motion:   motion,
		width:    cfg.Width,
		fps:      motion.Params().FPS,
		logger:   logger,
		measurer: measure.New(ContentWidth(cfg.Width, props.Style)),
	}
	m.collapse = collapse.New(props, motion, collapse.WithLogger(logger))
	m.measureNow()
	return m
}

// ID returns the panel id.
func (m *Model) ID() string {
	return m.id
}

// Collapse exposes the state machine, mainly for status display.
func (m *Model) Collapse() *collapse.Collapse {
	return m.collapse
}

// Props returns the current props.
func (m *Model) Props() collapse.Props {
	return m.collapse.Props()
}

// Animating reports whether frames are still being produced.
func (m *Model) Animating() bool {
	return m.collapse.Animating()
}

// SetProps applies new props, re-measures the children and starts the frame
// ticker when an animation begins.
func (m *Model) SetProps(props collapse.Props) tea.Cmd {
	m.collapse.SetProps(props)
	m.measurer.SetWidth(ContentWidth(m.width, props.Style))
	m.measureNow()
	return m.startTicking()
}

// SetWidth changes the panel width. The children are re-measured
// asynchronously; the result arrives as a measure.HeightMsg.
func (m *Model) SetWidth(width int) tea.Cmd {
	if width == m.width {
		return nil
	}
	m.width = width
	m.measurer.SetWidth(ContentWidth(width, m.Props().Style))
	return m.measurer.Cmd(m.id, m.Props().Children)
}

// Update handles frame ticks and measurements addressed to this panel.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case FrameMsg:
		if msg.ID != m.id || msg.Tag != m.tag {
			return nil
		}
		if m.collapse.Tick() {
			return m.tick()
		}
		m.ticking = false
		return nil

	case measure.HeightMsg:
		if msg.ID != m.id {
			return nil
		}
		m.collapse.Bridge().Deliver(msg.Report)
		return m.startTicking()
	}
	return nil
}

// Advance steps the animation by one frame without a ticker. It reports
// whether more frames follow.
func (m *Model) Advance() bool {
	return m.collapse.Tick()
}

// View paints the current render output. Painting is skipped while the
// inputs, width and painted row count are unchanged.
func (m *Model) View() string {
	node := m.collapse.Render()
	key := viewKey{width: m.width, rows: -1}
	if node != nil {
		key.rows = Rows(node.Height)
		key.auto = node.AutoHeight
	}

	inputs := m.collapse.Inputs()
	if m.cached && m.viewKey == key && !collapse.ShouldRender(m.viewInputs, inputs) {
		m.cacheHits++
		return m.view
	}

	m.cacheMisses++
	m.view = Paint(node, m.width)
	m.viewInputs = inputs
	m.viewKey = key
	m.cached = true
	return m.view
}

// CacheStats reports how often View reused the painted frame.
func (m *Model) CacheStats() (hits, misses int) {
	return m.cacheHits, m.cacheMisses
}

func (m *Model) measureNow() {
	m.collapse.Bridge().Deliver(m.measurer.Measure(m.Props().Children))
}

func (m *Model) startTicking() tea.Cmd {
	if !m.collapse.Animating() || m.ticking {
		return nil
	}
	m.ticking = true
	m.tag++
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	id, tag := m.id, m.tag
	return tea.Tick(time.Second/time.Duration(m.fps), func(time.Time) tea.Msg {
		return FrameMsg{ID: id, Tag: tag}
	})
}
