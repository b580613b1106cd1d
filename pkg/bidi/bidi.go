package bidi

import (
	"strings"

	xbidi "golang.org/x/text/unicode/bidi"
)

// BaseDirection is the paragraph-level direction hint passed to the
// underlying bidi algorithm.
type BaseDirection int

const (
	BaseLeftToRight BaseDirection = iota
	BaseRightToLeft
)

// ToVisual reorders logical into the sequence the Glyph Shaper should
// iterate over. It is a pure function: the same (logical, base) pair
// always returns the same result, and it holds no state across calls.
//
// For runs matching the base direction, characters are emitted in their
// stored (logical) order, since Unicode already stores RTL text in
// reading order. Runs of the opposite direction embedded in the text
// (e.g. a Latin word inside an RTL sentence) are internally preserved in
// their own reading order while the run sequence itself follows the
// bidi algorithm's visual ordering.
func ToVisual(logical string, base BaseDirection) string {
	if logical == "" {
		return ""
	}

	var p xbidi.Paragraph
	var opts []xbidi.Option
	if base == BaseRightToLeft {
		opts = append(opts, xbidi.DefaultDirection(xbidi.RightToLeft))
	}
	if err := p.SetString(logical, opts...); err != nil {
		return logical
	}
	ordering, err := p.Order()
	if err != nil {
		return logical
	}

	var b strings.Builder
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		b.WriteString(run.String())
	}
	return b.String()
}
