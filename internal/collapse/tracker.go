package collapse

// state is the authoritative, externally observable state.
type state struct {
	// height is the displayed target height; Unset until the first report.
	height float64

	// measured is the raw height of the last accepted report.
	measured float64

	// openChanged is set for the update that flipped IsOpened.
	openChanged bool
}

// renderCache is the non-state tier: values that describe what was painted.
// It is only written by SetProps, ReportHeight and Tick, never by Render.
type renderCache struct {
	// committed is HeightString of the last painted height.
	committed string

	phase Phase

	// reported is the last value passed to OnHeightReady.
	reported float64

	// mounted is false while nothing is rendered, so the next mount starts
	// the animator from its default value.
	mounted bool

	frame frame
}

type frameKind int

const (
	frameNone frameKind = iota
	frameAuto
	frameHidden
	frameInstant
	frameMotion
)

// frame is the render snapshot taken by the last reconcile.
type frame struct {
	mode   Mode
	kind   frameKind
	height float64
}

func newRenderCache() renderCache {
	return renderCache{
		committed: zeroHeight,
		phase:     PhaseStatic,
		reported:  0,
	}
}

// recordHeight stores a measurement. While static and open the first
// measurement defines the natural baseline; the displayed height is gated to
// 0 while closed in the static phase.
func (c *Collapse) recordHeight(h float64) {
	open := c.props.IsOpened
	static := c.cache.phase == PhaseStatic

	if static && open {
		c.cache.committed = HeightString(h)
	}

	c.state.measured = h
	if open || !static {
		c.state.height = h
	} else {
		c.state.height = 0
	}

	if report := c.reportFor(h); report != c.cache.reported {
		c.notifyHeight(report)
	}
}

// reportFor is the value OnHeightReady sees for a measurement of h: 0 while
// closed and the fixed height while one is set.
func (c *Collapse) reportFor(h float64) float64 {
	switch {
	case !c.props.IsOpened:
		return 0
	case c.props.fixedSet():
		return Clamp(c.props.FixedHeight)
	default:
		return h
	}
}

// reportTransition runs after an open intent flip.
func (c *Collapse) reportTransition() {
	if !c.props.IsOpened || c.props.fixedSet() || known(c.state.measured) {
		c.notifyHeight(c.reportFor(c.state.measured))
	}
}

// reportFixedChange runs when FixedHeight changes without an open flip.
func (c *Collapse) reportFixedChange() {
	if !c.props.fixedSet() && !known(c.state.measured) {
		return
	}
	if report := c.reportFor(c.state.measured); report != c.cache.reported {
		c.notifyHeight(report)
	}
}

func (c *Collapse) notifyHeight(h float64) {
	c.cache.reported = h
	c.props.OnHeightReady(h)
}

func (c *Collapse) setPhase(p Phase) {
	if c.cache.phase == p || p == PhaseStatic {
		return
	}
	c.logger.LogPhaseChange(c.cache.phase.String(), p.String(), c.state.height)
	c.cache.phase = p
}
