package spring

import (
	"io"
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/universal-console/collapse/internal/collapse"
	"github.com/universal-console/collapse/internal/logging"
)

func quietMotion(p Params) *Motion {
	m := NewMotion(p)
	m.SetLogger(logging.NewLoggerWithWriter(logging.DefaultConfig(), io.Discard))
	return m
}

func TestParamsWith(t *testing.T) {
	got := DefaultParams().With(map[string]float64{
		"stiffness": 300,
		"precision": 0.5,
		"damping":   -1,
		"mass":      2,
	})
	want := Params{Stiffness: 300, Damping: DefaultDamping, Precision: 0.5, FPS: DefaultFPS}
	if d := cmp.Diff(want, got); d != "" {
		t.Error(d)
	}
}

func TestParamsWithZeroDamping(t *testing.T) {
	got := DefaultParams().With(map[string]float64{"damping": 0, "stiffness": 0, "precision": 0})
	want := Params{Stiffness: DefaultStiffness, Damping: 0, Precision: DefaultPrecision, FPS: DefaultFPS}
	if d := cmp.Diff(want, got); d != "" {
		t.Error(d)
	}
	if n := got.normalized(); n.Damping != 0 {
		t.Errorf("normalized damping = %v, want 0", n.Damping)
	}
}

func TestAnimateEndsAtTarget(t *testing.T) {
	frames := slices.Collect(Animate(0, 120, DefaultParams()))

	if len(frames) < 2 {
		t.Fatalf("got %d frames, want an animation", len(frames))
	}
	if last := frames[len(frames)-1]; last != 120 {
		t.Errorf("last frame = %v, want 120", last)
	}
	if len(frames) > DefaultFPS*maxSeconds+1 {
		t.Errorf("got %d frames, spring never settled", len(frames))
	}
	for i, v := range frames {
		if v < -1 || v > 125 {
			t.Errorf("frame %d = %v, out of range", i, v)
		}
	}
}

func TestAnimateStopsEarly(t *testing.T) {
	n := 0
	for range Animate(0, 100, DefaultParams()) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("iterated %d frames, want 3", n)
	}
}

func TestStifferSpringIsFaster(t *testing.T) {
	soft := slices.Collect(Animate(0, 100, DefaultParams()))
	stiff := slices.Collect(Animate(0, 100, DefaultParams().With(map[string]float64{"stiffness": 600, "damping": 49})))
	if len(stiff) >= len(soft) {
		t.Errorf("stiff spring took %d frames, soft %d", len(stiff), len(soft))
	}
}

func TestMotionSettles(t *testing.T) {
	m := quietMotion(DefaultParams())
	m.SpringTo(80, collapse.SpringConfig{"precision": 0.5})

	if !m.Animating() {
		t.Fatal("SpringTo did not start an animation")
	}
	frames := 0
	for {
		v, done := m.Step()
		frames++
		if done {
			if v != 80 {
				t.Errorf("settled at %v, want 80", v)
			}
			break
		}
		if frames > 1000 {
			t.Fatal("never settled")
		}
	}
	if m.Animating() {
		t.Error("still animating after settle")
	}
	if m.Params().Precision != 0.5 {
		t.Errorf("precision = %v, want 0.5", m.Params().Precision)
	}
}

func TestMotionRetargetKeepsVelocity(t *testing.T) {
	m := quietMotion(DefaultParams())
	m.SpringTo(100, nil)
	for range 5 {
		m.Step()
	}
	pos, vel := m.Value(), m.vel
	if vel <= 0 {
		t.Fatalf("velocity %v, want moving up", vel)
	}

	m.SpringTo(0, nil)
	if m.Value() != pos || m.vel != vel {
		t.Error("retarget reset position or velocity")
	}
	if m.Target() != 0 {
		t.Errorf("Target() = %v, want 0", m.Target())
	}
}

func TestMotionJumpStops(t *testing.T) {
	m := quietMotion(DefaultParams())
	m.SpringTo(100, nil)
	m.Step()
	m.Jump(42)

	if m.Animating() {
		t.Error("Jump left the motion animating")
	}
	if v, done := m.Step(); v != 42 || !done {
		t.Errorf("Step() = %v, %v after Jump, want 42, true", v, done)
	}
}

func TestMotionSpringToCurrentValue(t *testing.T) {
	m := quietMotion(DefaultParams())
	m.Jump(50)
	m.SpringTo(50.2, collapse.SpringConfig{"precision": 0.5})

	if m.Animating() {
		t.Error("spring within precision started animating")
	}
	if math.Abs(m.Value()-50.2) > 1e-9 {
		t.Errorf("Value() = %v, want 50.2", m.Value())
	}
}
