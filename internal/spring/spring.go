// Package spring drives panel heights with a damped spring. It adapts
// harmonica's closed-form spring to the stiffness/damping/precision
// parameters used by collapse.SpringConfig.
package spring

import (
	"iter"
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/universal-console/collapse/internal/collapse"
	"github.com/universal-console/collapse/internal/logging"
)

// Default physics, matching the usual "gentle" UI spring.
const (
	DefaultStiffness = 170.0
	DefaultDamping   = 26.0
	DefaultPrecision = 0.01
	DefaultFPS       = 60

	// maxSeconds bounds an animation that never meets its precision.
	maxSeconds = 10
)

// Params configure the spring.
type Params struct {
	Stiffness float64
	Damping   float64
	Precision float64
	FPS       int
}

// DefaultParams returns the default spring.
func DefaultParams() Params {
	return Params{
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
		Precision: DefaultPrecision,
		FPS:       DefaultFPS,
	}
}

// With overlays the keys of cfg ("stiffness", "damping", "precision") on p.
// Negative values are ignored, as is a zero stiffness or precision.
func (p Params) With(cfg map[string]float64) Params {
	for key, v := range cfg {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		switch key {
		case "stiffness":
			if v > 0 {
				p.Stiffness = v
			}
		case "damping":
			p.Damping = v
		case "precision":
			if v > 0 {
				p.Precision = v
			}
		}
	}
	return p
}

func (p Params) normalized() Params {
	d := DefaultParams()
	if p.Stiffness <= 0 {
		p.Stiffness = d.Stiffness
	}
	if p.Damping < 0 {
		p.Damping = d.Damping
	}
	if p.Precision <= 0 {
		p.Precision = d.Precision
	}
	if p.FPS <= 0 {
		p.FPS = d.FPS
	}
	return p
}

// spring converts stiffness and damping for a unit mass into harmonica's
// angular frequency and damping ratio.
func (p Params) spring() harmonica.Spring {
	omega := math.Sqrt(p.Stiffness)
	zeta := p.Damping / (2 * omega)
	return harmonica.NewSpring(harmonica.FPS(p.FPS), omega, zeta)
}

func (p Params) maxFrames() int {
	return p.FPS * maxSeconds
}

func settled(pos, vel, target, precision float64) bool {
	return math.Abs(vel) < precision && math.Abs(pos-target) < precision
}

// Animate yields the value of every frame of a spring from rest at from
// toward to. The sequence ends with exactly to.
func Animate(from, to float64, p Params) iter.Seq[float64] {
	p = p.normalized()
	return func(yield func(float64) bool) {
		s := p.spring()
		pos, vel := from, 0.0
		for range p.maxFrames() {
			pos, vel = s.Update(pos, vel, to)
			if settled(pos, vel, to, p.Precision) {
				break
			}
			if !yield(pos) {
				return
			}
		}
		yield(to)
	}
}

// Motion is a stateful spring that implements collapse.Animator. A new
// target keeps the current velocity, so retargeting mid-flight is smooth.
type Motion struct {
	base   Params
	params Params
	spring harmonica.Spring

	pos, vel, target float64
	animating        bool
	frames           int

	logger *logging.Logger
}

var _ collapse.Animator = (*Motion)(nil)

// NewMotion creates a Motion at rest at 0.
func NewMotion(base Params) *Motion {
	base = base.normalized()
	return &Motion{
		base:   base,
		params: base,
		spring: base.spring(),
		logger: logging.GetSpringLogger(),
	}
}

// SetLogger overrides the component logger.
func (m *Motion) SetLogger(logger *logging.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

func (m *Motion) Value() float64 {
	return m.pos
}

func (m *Motion) Animating() bool {
	return m.animating
}

// Target is the value the motion is heading to.
func (m *Motion) Target() float64 {
	return m.target
}

// Params returns the parameters of the current animation.
func (m *Motion) Params() Params {
	return m.params
}

func (m *Motion) Jump(value float64) {
	m.pos = value
	m.vel = 0
	m.target = value
	m.animating = false
}

func (m *Motion) SpringTo(target float64, cfg collapse.SpringConfig) {
	params := m.base.With(cfg)
	if params != m.params {
		m.params = params
		m.spring = params.spring()
	}

	m.target = target
	m.frames = 0
	if settled(m.pos, m.vel, target, m.params.Precision) {
		m.pos = target
		m.vel = 0
		m.animating = false
		return
	}
	m.animating = true
	m.logger.Debug("Spring started",
		"from", m.pos,
		"to", target,
		"stiffness", m.params.Stiffness,
		"damping", m.params.Damping)
}

func (m *Motion) Step() (float64, bool) {
	if !m.animating {
		return m.pos, true
	}

	m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.target)
	m.frames++

	if settled(m.pos, m.vel, m.target, m.params.Precision) || m.frames >= m.params.maxFrames() {
		if m.frames >= m.params.maxFrames() {
			m.logger.Warn("Spring did not settle", "frames", m.frames, "target", m.target)
		}
		m.pos = m.target
		m.vel = 0
		m.animating = false
		return m.pos, true
	}
	return m.pos, false
}
