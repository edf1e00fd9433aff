package collapse

import (
	"github.com/universal-console/collapse/internal/logging"
)

// Collapse animates the height of one panel. It is not safe for concurrent
// use: every method must be called from the host's update loop.
type Collapse struct {
	props  Props
	state  state
	cache  renderCache
	anim   Animator
	bridge *Bridge
	logger *logging.Logger
}

// Option configures a Collapse.
type Option func(*Collapse)

// WithLogger overrides the component logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Collapse) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New mounts a Collapse. The first render is computed immediately; no
// callbacks fire during mount.
func New(props Props, anim Animator, opts ...Option) *Collapse {
	c := &Collapse{
		props: props.withDefaults(),
		state: state{
			height:   Unset,
			measured: Unset,
		},
		cache:  newRenderCache(),
		anim:   anim,
		logger: logging.GetCollapseLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.bridge = newBridge(c.props.Children, c.ReportHeight, c.logger)
	c.reconcile()
	return c
}

// SetProps applies new props from the owner. Updates that change nothing
// rendered are ignored apart from refreshing the callbacks.
func (c *Collapse) SetProps(next Props) {
	next = next.withDefaults()
	prev := c.props

	if !ShouldRender(inputsOf(prev, c.state), inputsOf(next, c.state)) {
		c.props = next
		return
	}

	c.state.openChanged = next.IsOpened != prev.IsOpened
	c.props = next
	if next.Children != prev.Children {
		c.bridge.retarget(next.Children)
	}

	c.reconcile()

	switch {
	case prev.IsOpened != next.IsOpened:
		c.reportTransition()
	case prev.FixedHeight != next.FixedHeight:
		c.reportFixedChange()
	}
}

// ReportHeight records a measured height. Most callers should go through
// Bridge().Deliver so stale reports are filtered.
func (c *Collapse) ReportHeight(h float64) {
	if !known(h) {
		c.logger.LogHeightReport(h, 0, false, "unknown height")
		return
	}

	before := c.Inputs()
	committed := c.cache.committed
	c.recordHeight(h)

	// A fixed height is never driven by measurements; the value is kept as
	// the baseline for when the fixed height is cleared.
	if c.props.fixedSet() {
		return
	}
	if ShouldRender(before, c.Inputs()) || committed != c.cache.committed {
		c.reconcile()
	}
}

// Bridge returns the measurement channel of this component.
func (c *Collapse) Bridge() *Bridge {
	return c.bridge
}

// Tick advances the animation by one frame and reports whether more frames
// are needed. OnRest fires on the frame that settles.
func (c *Collapse) Tick() bool {
	if !c.anim.Animating() {
		return false
	}

	value, settled := c.anim.Step()
	c.cache.committed = HeightString(value)
	if !settled {
		return true
	}

	c.logger.Debug("Animation settled", "height", c.cache.committed)
	if c.props.OnRest != nil {
		c.props.OnRest()
	}
	return false
}

// Render returns the node for the current update, or nil when nothing is
// rendered. It has no side effects.
func (c *Collapse) Render() *Node {
	p := c.props
	f := c.cache.frame

	switch f.kind {
	case frameAuto:
		return autoNode(p)
	case frameHidden:
		return hiddenNode(p)
	case frameInstant:
		return boundedNode(p, f.height)
	case frameMotion:
		committed := c.cache.committed
		if !p.IsOpened && committed == zeroHeight {
			if !p.KeepCollapsedContent {
				return nil
			}
			return hiddenNode(p)
		}
		if f.mode == ModeSpring && p.IsOpened && committed == HeightString(c.state.height) {
			return autoNode(p)
		}
		return boundedNode(p, c.anim.Value())
	default:
		return nil
	}
}

// Props returns the current props.
func (c *Collapse) Props() Props {
	return c.props
}

// Inputs returns the render-affecting props and state.
func (c *Collapse) Inputs() RenderInputs {
	return inputsOf(c.props, c.state)
}

// Phase returns the render phase.
func (c *Collapse) Phase() Phase {
	return c.cache.phase
}

// Mode returns the mode used by the last update.
func (c *Collapse) Mode() Mode {
	return c.cache.frame.mode
}

// Committed returns the last painted height in canonical form.
func (c *Collapse) Committed() string {
	return c.cache.committed
}

// Height returns the displayed target height, or Unset.
func (c *Collapse) Height() float64 {
	return c.state.height
}

// Animating reports whether Tick should be called again.
func (c *Collapse) Animating() bool {
	return c.anim.Animating()
}

// reconcile recomputes the render snapshot after props or state changed.
func (c *Collapse) reconcile() {
	mode := SelectMode(c.props.fixedSet(), c.cache.phase)
	switch mode {
	case ModeFixed:
		c.reconcileFixed()
	case ModeStatic:
		c.reconcileStatic()
	default:
		c.reconcileSpring()
	}
}

func (c *Collapse) reconcileFixed() {
	p := c.props

	// The first fixed render paints instantly so mounting never animates.
	if c.cache.phase == PhaseStatic {
		c.setPhase(PhaseAnimated)
		if !p.IsOpened && !p.KeepCollapsedContent {
			c.cache.mounted = false
			c.cache.frame = frame{mode: ModeFixed, kind: frameNone}
			return
		}
		painted := 0.0
		if p.IsOpened {
			painted = Clamp(p.FixedHeight)
		}
		c.anim.Jump(painted)
		c.cache.mounted = true
		c.cache.committed = HeightString(painted)
		c.cache.frame = frame{mode: ModeFixed, kind: frameInstant, height: painted}
		return
	}

	if !c.cache.mounted {
		c.anim.Jump(0)
		c.cache.mounted = true
	}
	c.applyMotion(ModeFixed, p.FixedHeight)
}

func (c *Collapse) reconcileStatic() {
	p := c.props

	// The phase flips for later updates; this one still renders statically.
	if c.state.height > Unset {
		c.setPhase(PhaseAnimated)
	}

	if !p.IsOpened {
		c.cache.mounted = false
		if !p.KeepCollapsedContent {
			c.cache.frame = frame{mode: ModeStatic, kind: frameNone}
			return
		}
		c.cache.frame = frame{mode: ModeStatic, kind: frameHidden}
		return
	}

	c.anim.Jump(Clamp(c.state.height))
	c.cache.mounted = true
	c.cache.frame = frame{mode: ModeStatic, kind: frameAuto}
}

func (c *Collapse) reconcileSpring() {
	if !c.cache.mounted {
		c.anim.Jump(Clamp(c.state.height))
		c.cache.mounted = true
	}
	c.applyMotion(ModeSpring, c.state.height)
}

func (c *Collapse) applyMotion(mode Mode, height float64) {
	t := decideMotion(motionInput{
		height:      height,
		open:        c.props.IsOpened,
		openChanged: c.state.openChanged,
		fixedSet:    c.props.fixedSet(),
		committed:   c.cache.committed,
		spring:      c.props.SpringConfig,
	})

	if t.Animate {
		c.anim.SpringTo(t.Value, t.Config)
	} else {
		c.anim.Jump(t.Value)
	}
	c.cache.committed = HeightString(c.anim.Value())
	c.cache.frame = frame{mode: mode, kind: frameMotion}
	c.logger.LogMotion(mode.String(), t.Value, t.Animate, c.cache.committed)
}
