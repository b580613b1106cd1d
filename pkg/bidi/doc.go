// Package bidi implements the external bidirectional-reordering contract:
// a pure function from logical text to visual order, with no internal
// state. The default implementation wraps golang.org/x/text/unicode/bidi.
package bidi
