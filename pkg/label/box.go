package label

// CharacterBox is the axis-aligned bounding box of one rendered character
// in the final image's pixel frame.
type CharacterBox struct {
	Char      string  `json:"char"`
	X0        float64 `json:"x0"`
	Y0        float64 `json:"y0"`
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
	LineIndex int     `json:"line_index"`

	// Truncated is set when augmentation clipped this box to the image
	// bounds rather than it naturally falling inside them.
	Truncated bool `json:"truncated,omitempty"`

	// Occluded is set in place of removing a box entirely when a glyph's
	// remapped mask under elastic/grid/optical distortion came out empty;
	// the box then holds the distortion's predicted hull for the glyph,
	// clipped to the image bounds.
	Occluded bool `json:"occluded,omitempty"`
}

// Valid reports whether the box satisfies the core invariant: x1 > x0 and
// y1 > y0.
func (b CharacterBox) Valid() bool {
	return b.X1 > b.X0 && b.Y1 > b.Y0
}

// Width returns x1 - x0.
func (b CharacterBox) Width() float64 { return b.X1 - b.X0 }

// Height returns y1 - y0.
func (b CharacterBox) Height() float64 { return b.Y1 - b.Y0 }

// Translate returns a copy of b shifted by (dx, dy), used by the Canvas
// Placer to rebase every box into the final image frame.
func (b CharacterBox) Translate(dx, dy float64) CharacterBox {
	b.X0 += dx
	b.Y0 += dy
	b.X1 += dx
	b.Y1 += dy
	return b
}

// Clip intersects b with bounds, flips Truncated to true when the box had
// to shrink to fit, and reports whether any area survived.
func (b CharacterBox) Clip(width, height float64) (CharacterBox, bool) {
	clipped := b
	if clipped.X0 < 0 {
		clipped.X0 = 0
		clipped.Truncated = true
	}
	if clipped.Y0 < 0 {
		clipped.Y0 = 0
		clipped.Truncated = true
	}
	if clipped.X1 > width {
		clipped.X1 = width
		clipped.Truncated = true
	}
	if clipped.Y1 > height {
		clipped.Y1 = height
		clipped.Truncated = true
	}
	return clipped, clipped.Valid()
}

// Corners returns the four corners of b in the order top-left, top-right,
// bottom-right, bottom-left, used by rotation/perspective to transform the
// box and re-hull it.
func (b CharacterBox) Corners() [4][2]float64 {
	return [4][2]float64{
		{b.X0, b.Y0},
		{b.X1, b.Y0},
		{b.X1, b.Y1},
		{b.X0, b.Y1},
	}
}

// HullOf computes the axis-aligned bounding box of a set of points,
// preserving every other field of template.
func HullOf(points [][2]float64, template CharacterBox) CharacterBox {
	if len(points) == 0 {
		return template
	}
	minX, minY := points[0][0], points[0][1]
	maxX, maxY := points[0][0], points[0][1]
	for _, p := range points[1:] {
		if p[0] < minX {
			minX = p[0]
		}
		if p[0] > maxX {
			maxX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	out := template
	out.X0, out.Y0, out.X1, out.Y1 = minX, minY, maxX, maxY
	return out
}
