// Package fontengine defines the external font-engine contract the Glyph
// Shaper renders against: given an open font handle, a point size, and a
// character, produce an opaque glyph bitmap plus advance metrics.
//
// The contract is intentionally narrow so the Shaper never depends on a
// specific rasterizer. The facefont subpackage provides the default
// implementation backed by golang.org/x/image/font/opentype.
package fontengine
