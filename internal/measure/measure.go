// Package measure computes the natural height of panel content in terminal
// rows and reports it to a collapse.Bridge, either synchronously or as a
// Bubble Tea command.
package measure

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/universal-console/collapse/internal/collapse"
	"github.com/universal-console/collapse/internal/logging"
)

// HeightMsg carries an asynchronous measurement for the panel with ID.
type HeightMsg struct {
	ID     string
	Report collapse.Report
}

// Measurer measures children at a fixed content width. Reports are
// sequenced in request order so late results can be discarded.
type Measurer struct {
	width  atomic.Int64
	seq    atomic.Uint64
	logger *logging.Logger
}

// New returns a Measurer for the given content width. A width <= 0 disables
// wrapping.
func New(width int) *Measurer {
	m := &Measurer{logger: logging.GetMeasureLogger()}
	m.width.Store(int64(width))
	return m
}

// SetWidth changes the content width for later measurements.
func (m *Measurer) SetWidth(width int) {
	m.width.Store(int64(width))
}

// Width returns the content width.
func (m *Measurer) Width() int {
	return int(m.width.Load())
}

// Measure measures children now.
func (m *Measurer) Measure(children string) collapse.Report {
	return m.measure(children, m.Width(), m.seq.Add(1))
}

// Cmd measures children off the update loop. The sequence number is taken
// when the command is created, not when it runs.
func (m *Measurer) Cmd(id, children string) tea.Cmd {
	width := m.Width()
	seq := m.seq.Add(1)
	return func() tea.Msg {
		return HeightMsg{ID: id, Report: m.measure(children, width, seq)}
	}
}

func (m *Measurer) measure(children string, width int, seq uint64) collapse.Report {
	h := Height(Wrap(children, width))
	m.logger.Debug("Measured content", "height", h, "width", width, "seq", seq)
	return collapse.Report{
		Height: h,
		Digest: collapse.Fingerprint(children),
		Seq:    seq,
	}
}

// Wrap word-wraps s to width and hard-wraps words that are still too long.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wrap.String(wordwrap.String(s, width), width)
}

// Height is the number of rows s occupies. Empty content has no height.
func Height(s string) float64 {
	if s == "" {
		return 0
	}
	return float64(lipgloss.Height(s))
}
