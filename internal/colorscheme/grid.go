package colorscheme

import "strings"

const (
	gridCellSize    = 256
	gridMaxPerAxis  = 4
	lightnessCutoff = 0.5
)

// HasDefinedDarkTheme reports whether the page already renders its own dark
// theme. It is deliberately strict: every unique element hit on a sampling
// grid must either have an opaque background no lighter than 0.5, or a
// non-opaque background under text at least 0.5 light. A single violation,
// or any unparseable color, rules the page out.
func HasDefinedDarkTheme(view Viewport) bool {
	if view == nil {
		return false
	}
	root := view.Root()
	if root != nil && strings.Contains(root.Style("filter"), "invert(1)") {
		return true
	}

	width, height := view.Size()
	if width > 0 && height > 0 {
		stepX := gridStep(width)
		stepY := gridStep(height)
		seen := make(map[Element]struct{})

		for y := stepY / 2; y < height; y += stepY {
			for x := stepX / 2; x < width; x += stepX {
				el := view.ElementAt(x, y)
				if el == nil {
					continue
				}
				if _, ok := seen[el]; ok {
					continue
				}
				seen[el] = struct{}{}

				if !looksDark(el) {
					return false
				}
			}
		}
	}

	return compositeLightness(root, view.Body()) < lightnessCutoff
}

// gridStep partitions a viewport axis into at most gridMaxPerAxis cells.
func gridStep(length int) int {
	cells := (length + gridCellSize - 1) / gridCellSize
	if cells > gridMaxPerAxis {
		cells = gridMaxPerAxis
	}
	if cells < 1 {
		cells = 1
	}
	step := length / cells
	if step < 1 {
		step = 1
	}
	return step
}

func looksDark(el Element) bool {
	bg, ok := ParseColor(el.Style("background-color"))
	if !ok {
		return false
	}
	if bg.Opaque() {
		return SRGBLightness(bg.R, bg.G, bg.B) <= lightnessCutoff
	}

	text, ok := ParseColor(el.Style("color"))
	if !ok {
		return false
	}
	return SRGBLightness(text.R, text.G, text.B) >= lightnessCutoff
}

// compositeLightness blends the body background over the root background over
// a white canvas. Unparseable colors count as fully light.
func compositeLightness(root, body Element) float64 {
	rootLightness := 1.0
	if root != nil {
		c, ok := ParseColor(root.Style("background-color"))
		if !ok {
			return 1
		}
		rootLightness = 1 - c.A + c.A*SRGBLightness(c.R, c.G, c.B)
	}
	if body == nil {
		return rootLightness
	}
	c, ok := ParseColor(body.Style("background-color"))
	if !ok {
		return 1
	}
	return (1-c.A)*rootLightness + c.A*SRGBLightness(c.R, c.G, c.B)
}
