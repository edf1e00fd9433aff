package collapse

import (
	"math"
)

// Style is merged into the outermost wrapper of a rendered Node.
type Style map[string]any

// SpringConfig maps physics parameter names ("stiffness", "damping",
// "precision") to values. Missing keys use the animator's defaults.
type SpringConfig map[string]float64

// Props are the construction parameters of a Collapse.
type Props struct {
	// IsOpened is the open intent. It is owned by the caller.
	IsOpened bool

	// Children is the rendered content whose natural height is measured.
	Children string

	// FixedHeight bypasses measurement when >= 0. Use Unset (the default
	// produced by DefaultProps) to measure the children instead.
	FixedHeight float64

	Style                Style
	SpringConfig         SpringConfig
	KeepCollapsedContent bool

	// OnRest fires when a spring animation settles.
	OnRest func()

	// OnHeightReady fires whenever the reported height changes: the fixed
	// height or else the measured height while open, 0 when closed.
	OnHeightReady func(reportedHeight float64)

	// Attrs are copied verbatim onto every rendered Node.
	Attrs map[string]string
}

// DefaultProps returns Props with every optional field at its default.
func DefaultProps() Props {
	return Props{
		FixedHeight:   Unset,
		Style:         Style{},
		OnHeightReady: func(float64) {},
	}
}

// fixedSet reports whether FixedHeight overrides measurement. Negative values
// other than the sentinel are treated as unset.
func (p Props) fixedSet() bool {
	return !math.IsNaN(p.FixedHeight) && p.FixedHeight >= 0
}

func (p Props) withDefaults() Props {
	if p.OnHeightReady == nil {
		p.OnHeightReady = func(float64) {}
	}
	if p.Style == nil {
		p.Style = Style{}
	}
	if !p.fixedSet() {
		p.FixedHeight = Unset
	}
	return p
}

// mergeSpringConfig layers the caller's config over the default precision.
func mergeSpringConfig(cfg SpringConfig) SpringConfig {
	merged := SpringConfig{"precision": Precision}
	for k, v := range cfg {
		merged[k] = v
	}
	return merged
}
