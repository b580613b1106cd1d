// Package canvas sizes the final output canvas, chooses where the text
// surface sits on it, and composites text over an optional cropped
// background — the Canvas Placer stage. It never resizes a background
// image, only crops it, and never mutates a CharacterBox beyond
// translating it into the final image frame.
package canvas
