package collapse

// Animator is the spring interpolation collaborator. It holds the currently
// painted value and advances it toward a target one frame per Step.
// A SpringTo call supersedes any animation in flight.
type Animator interface {
	// Value is the current interpolated height.
	Value() float64

	// Animating reports whether a spring target has not settled yet.
	Animating() bool

	// Jump sets the value instantly and stops any animation.
	Jump(value float64)

	// SpringTo starts (or retargets) an animation from the current value.
	SpringTo(target float64, cfg SpringConfig)

	// Step advances one frame. settled is true once the target is reached
	// within the configured precision.
	Step() (value float64, settled bool)
}

// Target is the outcome of the animation decision for one update.
type Target struct {
	// Value is the height to jump or spring to.
	Value float64

	// Animate selects SpringTo over Jump.
	Animate bool

	// Want is HeightString of the target used for the skip comparison.
	Want string

	Config SpringConfig
}

// motionInput collects everything the decision depends on.
type motionInput struct {
	height      float64
	open        bool
	openChanged bool
	fixedSet    bool
	committed   string
	spring      SpringConfig
}

// decideMotion computes whether a transition animates or snaps and where to.
//
// A close-to-close update never animates. When the rounded target equals the
// committed painted height the update snaps, unless the open intent just
// changed or a fixed height is in use (its target can move at any time).
func decideMotion(in motionInput) Target {
	value := 0.0
	want := zeroHeight
	if in.open {
		value = Clamp(in.height)
		want = HeightString(in.height)
	}

	skip := (!in.openChanged && !in.open) ||
		(!in.openChanged && in.committed == want && !in.fixedSet)

	return Target{
		Value:   value,
		Animate: !skip,
		Want:    want,
		Config:  mergeSpringConfig(in.spring),
	}
}
