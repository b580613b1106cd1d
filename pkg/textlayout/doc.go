// Package textlayout breaks a text string into a fixed number of lines and
// computes the geometry (multi-line bounding dimensions and per-line
// offsets) needed to composite them onto one surface.
//
// Font metrics are supplied by the caller via a FontMetrics function
// rather than a concrete font handle, so this package stays independent
// of the font engine contract (pkg/fontengine) and is trivially unit
// testable with synthetic metrics.
package textlayout
