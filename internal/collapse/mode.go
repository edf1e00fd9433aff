package collapse

import "fmt"

// Phase is the render phase of a Collapse. It only ever moves from
// PhaseStatic to PhaseAnimated.
type Phase int

const (
	// PhaseStatic renders without interpolation until a real height is known.
	PhaseStatic Phase = iota
	// PhaseAnimated drives every height change through the animator.
	PhaseAnimated
)

func (p Phase) String() string {
	switch p {
	case PhaseStatic:
		return "static"
	case PhaseAnimated:
		return "animated"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Mode is the rendering strategy chosen for an update.
type Mode int

const (
	// ModeFixed uses Props.FixedHeight and never consults measurements.
	ModeFixed Mode = iota
	// ModeStatic renders auto height when open and nothing (or a hidden
	// zero-height wrapper) when closed.
	ModeStatic
	// ModeSpring interpolates between measured heights.
	ModeSpring
)

func (m Mode) String() string {
	switch m {
	case ModeFixed:
		return "fixed"
	case ModeStatic:
		return "static"
	case ModeSpring:
		return "spring"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// SelectMode picks the rendering strategy:
//
//	fixed height set     -> ModeFixed
//	unset, PhaseStatic   -> ModeStatic
//	unset, PhaseAnimated -> ModeSpring
func SelectMode(fixedSet bool, phase Phase) Mode {
	switch {
	case fixedSet:
		return ModeFixed
	case phase == PhaseStatic:
		return ModeStatic
	default:
		return ModeSpring
	}
}
