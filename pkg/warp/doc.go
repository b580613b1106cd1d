// Package warp provides the pixel-remapping primitives shared by the Glyph
// Shaper's curved rendering and the Augmenter's geometric transforms:
// affine rotation, perspective homography, and displacement-field remap,
// each exposed as an inverse Mapper so every caller samples the source
// image with the same bilinear kernel.
//
// No pack dependency exposes perspective homography or smoothed
// displacement-field remap, and the per-glyph curve rotation must use the
// exact same forward transform as the corner-hull bounding-box math in
// pkg/label, so this package is implemented directly against the standard
// library rather than golang.org/x/image/draw's affine Transform (see
// DESIGN.md).
package warp
