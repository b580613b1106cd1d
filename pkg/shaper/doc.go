// Package shaper renders one logical text line (or a stack of lines) onto
// a transparent RGBA surface, tracking a tight axis-aligned bounding box
// per visual glyph.
//
// It is the hardest kernel in the pipeline: straight and curved (arc,
// sine) baselines, all four text directions, and the "rightmost glyph
// first" RTL convention are all implemented here, against the external
// pkg/fontengine and pkg/bidi contracts so the geometry stays independent
// of any concrete rasterizer.
package shaper
