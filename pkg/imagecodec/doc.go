// Package imagecodec encodes the Canvas Placer's final image to PNG,
// 8-bit RGB or RGBA depending on whether any pixel carries partial
// alpha. This is deliberately a thin wrapper over the standard library's
// image/png: no pack dependency offers a PNG encoder with meaningfully
// different capabilities for this use case (sRGB 8-bit output, no
// animation, no palette reduction), so reaching for one would add a
// dependency without adding a capability.
package imagecodec
