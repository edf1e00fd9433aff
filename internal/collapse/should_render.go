package collapse

import (
	"maps"
	"reflect"
)

// RenderInputs are the props and state fields that affect rendering.
// Callbacks are excluded.
type RenderInputs struct {
	IsOpened             bool
	Children             string
	FixedHeight          float64
	KeepCollapsedContent bool
	Style                Style
	SpringConfig         SpringConfig
	Attrs                map[string]string

	Height      float64
	OpenChanged bool
}

// ShouldRender reports whether next differs from prev in anything that can
// change the render output.
func ShouldRender(prev, next RenderInputs) bool {
	if prev.IsOpened != next.IsOpened ||
		prev.Children != next.Children ||
		prev.FixedHeight != next.FixedHeight ||
		prev.KeepCollapsedContent != next.KeepCollapsedContent ||
		prev.Height != next.Height ||
		prev.OpenChanged != next.OpenChanged {
		return true
	}
	if !maps.Equal(prev.SpringConfig, next.SpringConfig) || !maps.Equal(prev.Attrs, next.Attrs) {
		return true
	}
	return !styleEqual(prev.Style, next.Style)
}

func styleEqual(a, b Style) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !reflect.DeepEqual(av, bv) {
			return false
		}
	}
	return true
}

func inputsOf(p Props, s state) RenderInputs {
	return RenderInputs{
		IsOpened:             p.IsOpened,
		Children:             p.Children,
		FixedHeight:          p.FixedHeight,
		KeepCollapsedContent: p.KeepCollapsedContent,
		Style:                p.Style,
		SpringConfig:         p.SpringConfig,
		Attrs:                p.Attrs,
		Height:               s.height,
		OpenChanged:          s.openChanged,
	}
}
