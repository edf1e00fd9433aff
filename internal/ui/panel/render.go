package panel

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/universal-console/collapse/internal/collapse"
	"github.com/universal-console/collapse/internal/measure"
)

var borders = map[string]lipgloss.Border{
	"normal":  lipgloss.NormalBorder(),
	"rounded": lipgloss.RoundedBorder(),
	"thick":   lipgloss.ThickBorder(),
	"double":  lipgloss.DoubleBorder(),
}

// Paint draws a node into a block of text. A nil node, or one painted at
// zero rows, occupies no space.
func Paint(n *collapse.Node, width int) string {
	if n == nil {
		return ""
	}

	style := styleFor(n.Style)
	body := measure.Wrap(n.Children, ContentWidth(width, n.Style))

	if !n.AutoHeight {
		r := Rows(n.Height)
		if r == 0 {
			return ""
		}
		body = clip(body, r)
	}
	if body == "" {
		return ""
	}
	return style.Render(body)
}

// Rows converts a painted height into whole terminal rows.
func Rows(h float64) int {
	return int(math.Round(collapse.Clamp(h)))
}

// ContentWidth is the width left for children once the style's border,
// padding and margin are taken off. A "width" style key replaces width.
func ContentWidth(width int, s collapse.Style) int {
	if w, ok := intValue(s["width"]); ok && w > 0 {
		width = w
	}
	w := width - styleFor(s).GetHorizontalFrameSize()
	if w < 1 {
		return 1
	}
	return w
}

// clip cuts body to exactly rows lines, padding with blank lines while a
// spring overshoots the content.
func clip(body string, rows int) string {
	var lines []string
	if body != "" {
		lines = strings.Split(body, "\n")
	}
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func styleFor(s collapse.Style) lipgloss.Style {
	style := lipgloss.NewStyle()

	if name, ok := s["border"].(string); ok {
		if b, found := borders[name]; found {
			style = style.Border(b)
		}
	}
	if c, ok := s["foreground"].(string); ok && c != "" {
		style = style.Foreground(lipgloss.Color(c))
	}
	if c, ok := s["background"].(string); ok && c != "" {
		style = style.Background(lipgloss.Color(c))
	}
	if n, ok := intValue(s["paddingLeft"]); ok && n > 0 {
		style = style.PaddingLeft(n)
	}
	if n, ok := intValue(s["marginLeft"]); ok && n > 0 {
		style = style.MarginLeft(n)
	}
	return style
}

// intValue accepts the numeric types produced by Go literals and YAML.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
