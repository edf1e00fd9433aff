package collapse

// Overflow controls whether content beyond Node.Height is painted.
type Overflow int

const (
	OverflowVisible Overflow = iota
	OverflowHidden
)

// Node is the render output of a Collapse for one update. A nil *Node means
// nothing is rendered and the content is unmounted.
type Node struct {
	// Height is the painted height. Ignored when AutoHeight is set.
	Height float64

	// AutoHeight lets the content define its own height.
	AutoHeight bool

	Overflow Overflow

	// Style is the caller's style with the computed keys removed.
	Style Style

	Attrs    map[string]string
	Children string
}

// reserved style keys are always computed by the component.
var reservedStyleKeys = map[string]struct{}{
	"height":   {},
	"overflow": {},
}

func mergeStyle(user Style) Style {
	merged := make(Style, len(user))
	for k, v := range user {
		if _, reserved := reservedStyleKeys[k]; reserved {
			continue
		}
		merged[k] = v
	}
	return merged
}

func copyAttrs(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

func autoNode(p Props) *Node {
	return &Node{
		AutoHeight: true,
		Overflow:   OverflowVisible,
		Style:      mergeStyle(p.Style),
		Attrs:      copyAttrs(p.Attrs),
		Children:   p.Children,
	}
}

func hiddenNode(p Props) *Node {
	return boundedNode(p, 0)
}

func boundedNode(p Props, height float64) *Node {
	return &Node{
		Height:   Clamp(height),
		Overflow: OverflowHidden,
		Style:    mergeStyle(p.Style),
		Attrs:    copyAttrs(p.Attrs),
		Children: p.Children,
	}
}
