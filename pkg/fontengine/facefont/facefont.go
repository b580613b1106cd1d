// Package facefont implements the fontengine.Engine contract on top of
// golang.org/x/image/font/opentype, the way le-veilleur-Watermarck's
// optimizer service loads a TTF once and reuses the resulting font.Face
// for every subsequent request. Here the cache is keyed per (path, size)
// rather than global, since one synthesis run opens many fonts at many
// sizes across workers.
package facefont

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/dshills/ocrsynth/pkg/fontengine"
)

// handle wraps a parsed opentype.Font plus its raw bytes (kept to build
// new faces cheaply at arbitrary sizes).
type handle struct {
	path string
	font *opentype.Font
}

// Engine caches parsed fonts by path and rendering faces by (path, size)
// so that repeated glyph calls at a fixed size never re-parse or
// re-rasterize more than necessary.
type Engine struct {
	mu     sync.Mutex
	fonts  map[string]*handle
	faces  map[string]font.Face
	dpi    float64
}

// NewEngine constructs a facefont Engine. dpi defaults to 72 when 0.
func NewEngine(dpi float64) *Engine {
	if dpi == 0 {
		dpi = 72
	}
	return &Engine{
		fonts: make(map[string]*handle),
		faces: make(map[string]font.Face),
		dpi:   dpi,
	}
}

// Open loads and parses the font at path, caching the parse result for
// reuse across sizes and glyph calls.
func (e *Engine) Open(path string) (fontengine.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if h, ok := e.fonts[path]; ok {
		return h, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("facefont: reading %s: %w", path, err)
	}
	collection, err := opentype.ParseCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("facefont: parsing %s: %w", path, err)
	}
	f, err := collection.Font(0)
	if err != nil {
		return nil, fmt.Errorf("facefont: %s has no fonts: %w", path, err)
	}
	h := &handle{path: path, font: f}
	e.fonts[path] = h
	return h, nil
}

func (e *Engine) faceFor(h *handle, size float64) (font.Face, error) {
	key := fmt.Sprintf("%s@%g", h.path, size)
	e.mu.Lock()
	defer e.mu.Unlock()
	if f, ok := e.faces[key]; ok {
		return f, nil
	}
	face, err := opentype.NewFace(h.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     e.dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("facefont: building face for %s at size %g: %w", h.path, size, err)
	}
	e.faces[key] = face
	return face, nil
}

func asHandle(h fontengine.Handle) (*handle, error) {
	hh, ok := h.(*handle)
	if !ok {
		return nil, fmt.Errorf("facefont: handle was not opened by this engine")
	}
	return hh, nil
}

// Metrics returns the ascent and descent, in pixels, of h at size.
func (e *Engine) Metrics(h fontengine.Handle, size float64) (float64, float64, error) {
	hh, err := asHandle(h)
	if err != nil {
		return 0, 0, err
	}
	face, err := e.faceFor(hh, size)
	if err != nil {
		return 0, 0, err
	}
	m := face.Metrics()
	return fixedToFloat(m.Ascent), fixedToFloat(m.Descent), nil
}

// HasGlyph reports whether h covers r at its default rasterization path.
func (e *Engine) HasGlyph(h fontengine.Handle, r rune) bool {
	hh, err := asHandle(h)
	if err != nil {
		return false
	}
	face, err := e.faceFor(hh, 16)
	if err != nil {
		return false
	}
	_, ok := face.GlyphAdvance(r)
	return ok
}

// Glyph rasterizes r at size, returning an alpha bitmap tightly cropped to
// the glyph's ink box plus its advance width.
func (e *Engine) Glyph(h fontengine.Handle, size float64, r rune) (fontengine.Glyph, error) {
	hh, err := asHandle(h)
	if err != nil {
		return fontengine.Glyph{}, err
	}
	face, err := e.faceFor(hh, size)
	if err != nil {
		return fontengine.Glyph{}, err
	}

	advance, ok := face.GlyphAdvance(r)
	if !ok {
		return fontengine.Glyph{Covered: false}, nil
	}
	if r == ' ' {
		return fontengine.Glyph{Covered: true, Advance: fixedToFloat(advance)}, nil
	}

	dr, mask, maskp, _, ok := face.Glyph(fixed.Point26_6{}, r)
	if !ok || dr.Empty() {
		return fontengine.Glyph{Covered: true, Advance: fixedToFloat(advance)}, nil
	}

	bitmap := image.NewAlpha(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	draw.Draw(bitmap, bitmap.Bounds(), mask, maskp, draw.Src)

	// Ink is reported relative to bitmap's own top-left, not the baseline
	// dr came from: the Shaper composites Bitmap at an origin and derives
	// each CharacterBox as origin+Ink, which only lines up with the pixels
	// actually drawn when Ink shares the bitmap's (0,0) origin.
	return fontengine.Glyph{
		Bitmap:  bitmap,
		Advance: fixedToFloat(advance),
		Ink: fontengine.InkBox{
			X0: 0,
			Y0: 0,
			X1: float64(dr.Dx()),
			Y1: float64(dr.Dy()),
		},
		Covered: true,
	}, nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

var _ fontengine.Engine = (*Engine)(nil)
