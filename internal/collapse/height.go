// Package collapse implements the height-animation state machine behind an
// expandable panel. A Collapse reconciles an open/closed intent with a child
// whose natural height is only known once measured, an optional fixed height
// and a spring animator, and produces a pure render description (*Node) on
// every update. Rendering, measurement and spring physics are collaborators
// supplied by the caller.
package collapse

import (
	"math"
	"strconv"
)

// Unset marks an unknown measured height or an unset fixed height.
const Unset = -1.0

// Precision is the spring settle tolerance merged under the caller's spring config.
const Precision = 0.5

// zeroHeight is HeightString(0).
const zeroHeight = "0.0"

// Clamp guards a height against negative or malformed values.
func Clamp(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		return 0
	}
	return h
}

// HeightString is the canonical painted-height form: clamped to >= 0 and
// rounded to one decimal place. Equality on this form ignores sub-0.05 jitter.
func HeightString(h float64) string {
	return strconv.FormatFloat(Clamp(h), 'f', 1, 64)
}

// known reports whether h is a usable measurement.
func known(h float64) bool {
	return !math.IsNaN(h) && !math.IsInf(h, 0) && h >= 0
}
