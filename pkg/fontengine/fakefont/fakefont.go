// Package fakefont implements fontengine.Engine with synthetic, purely
// computed glyph metrics — no file I/O, no rasterization library. It
// exists for tests that exercise the shaping, effect, and augmentation
// pipelines without depending on a real font file being present.
package fakefont

import (
	"image"
	"strings"

	"github.com/dshills/ocrsynth/pkg/fontengine"
)

// Engine is a deterministic stand-in font: every covered rune has an
// advance and ink box derived purely from its codepoint and the
// requested size, with no external state.
type Engine struct {
	// Uncovered, if set, marks these runes as not covered by any font
	// opened through this engine, to exercise glyph-miss handling.
	Uncovered map[rune]bool
}

type handle struct{ path string }

func (e *Engine) Open(path string) (fontengine.Handle, error) {
	return &handle{path: path}, nil
}

func (e *Engine) Metrics(h fontengine.Handle, size float64) (float64, float64, error) {
	return size * 0.8, size * 0.2, nil
}

func (e *Engine) HasGlyph(h fontengine.Handle, r rune) bool {
	if e.Uncovered != nil && e.Uncovered[r] {
		return false
	}
	return true
}

func (e *Engine) Glyph(h fontengine.Handle, size float64, r rune) (fontengine.Glyph, error) {
	if !e.HasGlyph(h, r) {
		return fontengine.Glyph{Covered: false}, nil
	}
	if r == ' ' {
		return fontengine.Glyph{Covered: true, Advance: size * 0.4}, nil
	}
	// Width varies slightly by rune so bounding boxes are not all
	// identical, which would hide transposition bugs in tests.
	width := size*0.55 + float64(r%5)
	height := size * 0.7
	advance := width + size*0.08

	bmp := image.NewAlpha(image.Rect(0, 0, int(width)+1, int(height)+1))
	for i := range bmp.Pix {
		bmp.Pix[i] = 255
	}

	return fontengine.Glyph{
		Bitmap:  bmp,
		Advance: advance,
		Ink: fontengine.InkBox{
			X0: 0, Y0: 0,
			X1: width, Y1: height,
		},
		Covered: true,
	}, nil
}

// Text is a convenience for building test strings without worrying about
// rune boundaries.
func Text(s string) []rune { return []rune(strings.TrimSpace(s)) }

var _ fontengine.Engine = (*Engine)(nil)
