package collapse

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/universal-console/collapse/internal/logging"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func quietLogger() *logging.Logger {
	return logging.NewLoggerWithWriter(logging.DefaultConfig(), io.Discard)
}

// fakeAnimator moves a fixed distance per Step so tests can count frames.
type fakeAnimator struct {
	value     float64
	target    float64
	animating bool
	step      float64

	jumps   []float64
	springs []float64
	configs []SpringConfig
}

func newFakeAnimator() *fakeAnimator {
	return &fakeAnimator{step: 40}
}

func (f *fakeAnimator) Value() float64  { return f.value }
func (f *fakeAnimator) Animating() bool { return f.animating }

func (f *fakeAnimator) Jump(value float64) {
	f.jumps = append(f.jumps, value)
	f.value = value
	f.target = value
	f.animating = false
}

func (f *fakeAnimator) SpringTo(target float64, cfg SpringConfig) {
	f.springs = append(f.springs, target)
	f.configs = append(f.configs, cfg)
	f.target = target
	f.animating = f.value != target
}

func (f *fakeAnimator) Step() (float64, bool) {
	switch {
	case f.value < f.target:
		f.value = min(f.value+f.step, f.target)
	case f.value > f.target:
		f.value = max(f.value-f.step, f.target)
	}
	if f.value == f.target {
		f.animating = false
		return f.value, true
	}
	return f.value, false
}

// settle ticks until the animation rests and returns the number of frames.
func settle(t *testing.T, c *Collapse) int {
	t.Helper()
	frames := 0
	for c.Tick() {
		frames++
		if frames > 1000 {
			t.Fatal("animation never settled")
		}
	}
	return frames
}

// recorder collects callback invocations.
type recorder struct {
	heights []float64
	rests   int
}

func (r *recorder) props(p Props) Props {
	p.OnHeightReady = func(h float64) { r.heights = append(r.heights, h) }
	p.OnRest = func() { r.rests++ }
	return p
}
