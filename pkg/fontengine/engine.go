package fontengine

import "image"

// Handle is an opaque reference to a loaded font file, returned by
// Engine.Open and passed to every other Engine method.
type Handle interface{}

// InkBox is the tight bounding box the rasterizer reports for one glyph,
// in pixels relative to Bitmap's own top-left corner (0,0) to (Bitmap
// width, Bitmap height) — not the font's baseline or any other rendering
// origin. The Shaper composites Bitmap at a chosen origin and derives the
// CharacterBox as origin+Ink, so Ink must share Bitmap's coordinate frame
// for the two to agree on what was actually drawn.
type InkBox struct {
	X0, Y0, X1, Y1 float64
}

// Glyph is the rasterized output for a single character at a given point
// size: an alpha bitmap (nil if the glyph is blank, e.g. space), the
// advance width in pixels, and the ink box used for tight bounding boxes.
type Glyph struct {
	Bitmap  *image.Alpha
	Advance float64
	Ink     InkBox
	Covered bool
}

// Engine is the external font-engine contract. Implementations must not
// allocate per glyph call beyond scratch buffers; the default
// implementation caches per-(handle,size) faces to honor this.
type Engine interface {
	// Open loads a font file and returns a handle for repeated use.
	Open(path string) (Handle, error)

	// Metrics returns the ascent and descent, in pixels, for handle at the
	// given point size.
	Metrics(h Handle, size float64) (ascent, descent float64, err error)

	// Glyph rasterizes r at size using h. Covered is false (with a zero
	// Glyph otherwise) when the font lacks the requested character.
	Glyph(h Handle, size float64, r rune) (Glyph, error)

	// HasGlyph reports whether h covers r, without rasterizing.
	HasGlyph(h Handle, r rune) bool
}
