package shaper

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/dshills/ocrsynth/pkg/bidi"
	"github.com/dshills/ocrsynth/pkg/config"
	"github.com/dshills/ocrsynth/pkg/fontengine"
	"github.com/dshills/ocrsynth/pkg/label"
	"github.com/dshills/ocrsynth/pkg/ocrerr"
	"github.com/dshills/ocrsynth/pkg/plan"
	"github.com/dshills/ocrsynth/pkg/sampler"
	"github.com/dshills/ocrsynth/pkg/textlayout"
	"github.com/dshills/ocrsynth/pkg/warp"
)

// margin is the fixed pixel border left around the rendered glyph run on
// its leading and trailing edges.
const margin = 4.0

// overlapK is the overlap-intensity coefficient from spec section 4.5.
const overlapK = 0.8

// jitterFraction bounds the per-character cursor jitter to a small
// fraction of that character's base advance, drawn from a dedicated
// "shaper.jitter" generator so disabling it never perturbs any other
// sampled sequence.
const jitterFraction = 0.08

type glyphPlacement struct {
	glyph fontengine.Glyph
	adv   float64
}

// ShapeLine renders one logical line in one direction, returning a
// transparent RGBA surface and the ordered CharacterBoxes for its visual
// glyphs. startGlyphIndex offsets per-glyph and gradient color lookups so
// multi-line callers can keep color continuity across lines.
func ShapeLine(
	engine fontengine.Engine,
	handle fontengine.Handle,
	text string,
	fontSize float64,
	dir config.Direction,
	curve plan.CurveParams,
	colorP plan.ColorParams,
	overlapIntensity float64,
	lineIndex int,
	startGlyphIndex int,
	jitterRNG *sampler.NamedRNG,
) (*image.RGBA, []label.CharacterBox, error) {
	visual := text
	if dir == config.RTL {
		visual = bidi.ToVisual(text, bidi.BaseRightToLeft)
	}
	runes := []rune(visual)
	if len(runes) == 0 {
		return image.NewRGBA(image.Rect(0, 0, 10, 10)), nil, nil
	}

	ascent, descent, err := engine.Metrics(handle, fontSize)
	if err != nil {
		return nil, nil, ocrerr.New(ocrerr.ResourceMissing, "", fmt.Errorf("shaper: metrics: %w", err))
	}

	placements := make([]glyphPlacement, len(runes))
	for i, r := range runes {
		g, err := engine.Glyph(handle, fontSize, r)
		if err != nil {
			return nil, nil, ocrerr.New(ocrerr.RenderPanic, "", fmt.Errorf("shaper: glyph %q: %w", r, err))
		}
		if !g.Covered {
			return nil, nil, ocrerr.New(ocrerr.GlyphMiss, "", fmt.Errorf("shaper: no coverage for %q", r))
		}
		base := g.Advance
		reduced := base * (1 - overlapK*overlapIntensity)
		jitter := (jitterRNG.Float64() - 0.5) * jitterFraction * base
		adv := reduced + jitter
		if adv < 1 {
			adv = 1
		}
		placements[i] = glyphPlacement{glyph: g, adv: adv}
	}

	totalAdvance := 0.0
	for _, p := range placements {
		totalAdvance += p.adv
	}
	geo := computeGeometry(totalAdvance, ascent+descent, curve)

	horizontal := dir.Horizontal()
	forward := dir == config.LTR || dir == config.TTB

	var w, h int
	if horizontal {
		w, h = int(math.Ceil(geo.axisLen)), int(math.Ceil(geo.crossSize))
	} else {
		w, h = int(math.Ceil(geo.crossSize)), int(math.Ceil(geo.axisLen))
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	surface := image.NewRGBA(image.Rect(0, 0, w, h))

	boxes := make([]label.CharacterBox, 0, len(runes))
	cursor := 0.0
	crossRest := geo.crossSize - (ascent + descent)
	if crossRest < 0 {
		crossRest = 0
	}
	baseCrossOrigin := crossRest / 2

	for i, p := range placements {
		adv := p.adv
		sCenter := cursor + adv/2
		signedOffset, rotRad := geo.curveAt(sCenter)
		if !forward {
			rotRad = -rotRad
		}

		var alongPos float64
		if forward {
			alongPos = margin + cursor
		} else {
			alongPos = geo.axisLen - margin - cursor - adv
		}
		crossCenter := geo.crossSize/2 + signedOffset

		col := glyphColor(colorP, startGlyphIndex+i)

		if curve.Type == config.CurveNone {
			var originX, originY float64
			if horizontal {
				originX = alongPos
				originY = baseCrossOrigin
			} else {
				originX = baseCrossOrigin
				originY = alongPos
			}
			compositeAlphaColored(surface, p.glyph.Bitmap, int(math.Round(originX)), int(math.Round(originY)), col)
			box := label.CharacterBox{
				Char:      string(runes[i]),
				X0:        originX + p.glyph.Ink.X0,
				Y0:        originY + p.glyph.Ink.Y0,
				X1:        originX + p.glyph.Ink.X1,
				Y1:        originY + p.glyph.Ink.Y1,
				LineIndex: lineIndex,
			}
			boxes = append(boxes, box)
			cursor += adv
			continue
		}

		var centerAlong, centerCross float64
		centerAlong = alongPos + adv/2
		centerCross = crossCenter
		var targetX, targetY float64
		if horizontal {
			targetX, targetY = centerAlong, centerCross
		} else {
			targetX, targetY = centerCross, centerAlong
		}

		rotated, bitmapOriginX, bitmapOriginY := rotateAlphaAroundCenter(p.glyph.Bitmap, rotRad, targetX, targetY)
		compositeAlphaColored(surface, rotated, int(math.Round(bitmapOriginX)), int(math.Round(bitmapOriginY)), col)

		pts := rotatedInkCorners(p.glyph.Ink, rotRad, targetX, targetY)
		box := label.HullOf(pts, label.CharacterBox{Char: string(runes[i]), LineIndex: lineIndex})
		boxes = append(boxes, box)

		cursor += adv
	}

	return surface, boxes, nil
}

// ShapeMultiLine renders every line of a multi-line Plan with textlayout's
// alignment offsets and composites them onto one surface, threading a
// running glyph index through color lookups for per-glyph and gradient
// color modes.
func ShapeMultiLine(
	engine fontengine.Engine,
	handle fontengine.Handle,
	lines []string,
	fontSize float64,
	dir config.Direction,
	curve plan.CurveParams,
	colorP plan.ColorParams,
	overlapIntensity float64,
	spacing float64,
	alignment config.Alignment,
	jitterRNG *sampler.NamedRNG,
) (*image.RGBA, []label.CharacterBox, error) {
	metrics := textlayout.FontMetrics(func(line string) (float64, float64) {
		adv, height, err := Measure(engine, handle, line, fontSize, overlapIntensity, curve)
		if err != nil {
			return 0, 0
		}
		return adv, height
	})

	totalW, totalH := textlayout.MultilineDimensions(lines, metrics, spacing, dir)
	offsets, err := textlayout.LinePositions(lines, metrics, spacing, alignment, dir)
	if err != nil {
		return nil, nil, ocrerr.New(ocrerr.ConfigError, "", err)
	}

	w, h := int(math.Ceil(totalW)), int(math.Ceil(totalH))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	surface := image.NewRGBA(image.Rect(0, 0, w, h))

	var boxes []label.CharacterBox
	globalIdx := 0
	for i, line := range lines {
		lineSurface, lineBoxes, err := ShapeLine(engine, handle, line, fontSize, dir, curve, colorP, overlapIntensity, i, globalIdx, jitterRNG)
		if err != nil {
			return nil, nil, err
		}
		dx, dy := offsets[i].DX, offsets[i].DY
		compositeRGBA(surface, lineSurface, int(math.Round(dx)), int(math.Round(dy)))
		for _, b := range lineBoxes {
			boxes = append(boxes, b.Translate(dx, dy))
		}
		globalIdx += len([]rune(line))
	}

	return surface, boxes, nil
}

// Measure returns the straight-kernel (width, height) a line would occupy,
// ignoring per-character jitter, so layout sizing stays a pure function of
// the text and Plan parameters rather than of RNG state.
func Measure(engine fontengine.Engine, handle fontengine.Handle, text string, fontSize float64, overlapIntensity float64, curve plan.CurveParams) (advance, height float64, err error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0, 0, nil
	}
	ascent, descent, err := engine.Metrics(handle, fontSize)
	if err != nil {
		return 0, 0, err
	}
	total := 0.0
	for _, r := range runes {
		g, err := engine.Glyph(handle, fontSize, r)
		if err != nil {
			return 0, 0, err
		}
		if !g.Covered {
			return 0, 0, ocrerr.New(ocrerr.GlyphMiss, "", fmt.Errorf("shaper: no coverage for %q", r))
		}
		adv := g.Advance * (1 - overlapK*overlapIntensity)
		if adv < 1 {
			adv = 1
		}
		total += adv
	}
	geo := computeGeometry(total, ascent+descent, curve)
	return geo.axisLen, geo.crossSize, nil
}

func glyphColor(cp plan.ColorParams, globalIdx int) color.RGBA {
	toRGBA := func(c [3]uint8) color.RGBA { return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255} }
	if len(cp.GlyphRGBs) == 0 {
		return color.RGBA{A: 255}
	}
	switch cp.Mode {
	case config.ColorPerGlyph:
		return toRGBA(cp.GlyphRGBs[globalIdx%len(cp.GlyphRGBs)])
	case config.ColorGradient:
		n := len(cp.GlyphRGBs)
		if n == 1 {
			return toRGBA(cp.GlyphRGBs[0])
		}
		t := float64(globalIdx%n) / float64(n-1)
		pos := t * float64(n-1)
		i0 := int(math.Floor(pos))
		i1 := i0 + 1
		if i1 > n-1 {
			i1 = n - 1
		}
		frac := pos - float64(i0)
		c0, c1 := cp.GlyphRGBs[i0], cp.GlyphRGBs[i1]
		lerp := func(a, b uint8) uint8 { return uint8(float64(a) + (float64(b)-float64(a))*frac) }
		return color.RGBA{R: lerp(c0[0], c1[0]), G: lerp(c0[1], c1[1]), B: lerp(c0[2], c1[2]), A: 255}
	default:
		return toRGBA(cp.GlyphRGBs[0])
	}
}

func compositeAlphaColored(dst *image.RGBA, mask *image.Alpha, originX, originY int, col color.RGBA) {
	if mask == nil {
		return
	}
	b := mask.Bounds()
	db := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		dy := originY + (y - b.Min.Y)
		if dy < db.Min.Y || dy >= db.Max.Y {
			continue
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := originX + (x - b.Min.X)
			if dx < db.Min.X || dx >= db.Max.X {
				continue
			}
			a := mask.AlphaAt(x, y).A
			if a == 0 {
				continue
			}
			src := color.RGBA{R: col.R, G: col.G, B: col.B, A: a}
			dst.Set(dx, dy, blendOver(dst.RGBAAt(dx, dy), src))
		}
	}
}

func compositeRGBA(dst, src *image.RGBA, originX, originY int) {
	b := src.Bounds()
	db := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		dy := originY + (y - b.Min.Y)
		if dy < db.Min.Y || dy >= db.Max.Y {
			continue
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := originX + (x - b.Min.X)
			if dx < db.Min.X || dx >= db.Max.X {
				continue
			}
			s := src.RGBAAt(x, y)
			if s.A == 0 {
				continue
			}
			dst.Set(dx, dy, blendOver(dst.RGBAAt(dx, dy), s))
		}
	}
}

func blendOver(bg, fg color.RGBA) color.RGBA {
	if fg.A == 255 {
		return fg
	}
	fa := float64(fg.A) / 255
	ba := 1 - fa
	mix := func(f, b uint8) uint8 { return uint8(float64(f)*fa + float64(b)*ba) }
	return color.RGBA{
		R: mix(fg.R, bg.R),
		G: mix(fg.G, bg.G),
		B: mix(fg.B, bg.B),
		A: uint8(math.Min(255, float64(fg.A)+float64(bg.A)*ba)),
	}
}

// rotateAlphaAroundCenter rotates mask by angleRad and returns the new
// bitmap plus the top-left origin at which it must be composited so its
// rotation center lands at (targetX, targetY) on the destination surface.
func rotateAlphaAroundCenter(mask *image.Alpha, angleRad, targetX, targetY float64) (*image.Alpha, float64, float64) {
	if mask == nil {
		return nil, targetX, targetY
	}
	b := mask.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	cx0, cy0 := w/2, h/2
	rot := warp.Rotation(angleRad, cx0, cy0)

	corners := [4][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x, y := rot.Apply(c[0], c[1])
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	newW := int(math.Ceil(maxX - minX))
	newH := int(math.Ceil(maxY - minY))
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	inv, ok := rot.Invert()
	if !ok {
		inv = warp.Identity()
	}
	mapper := func(x, y float64) (float64, float64) { return inv.Apply(x+minX, y+minY) }
	out := warp.WarpAlpha(mask, newW, newH, mapper)

	originX := targetX - (cx0 - minX)
	originY := targetY - (cy0 - minY)
	return out, originX, originY
}

// rotatedInkCorners rotates ink's four corners about its own glyph center
// by angleRad and translates the result so the glyph's rotation center
// lands at (targetX, targetY).
func rotatedInkCorners(ink fontengine.InkBox, angleRad, targetX, targetY float64) [][2]float64 {
	cx0, cy0 := (ink.X0+ink.X1)/2, (ink.Y0+ink.Y1)/2
	// Ink corners rotate about the glyph bitmap's own center, which the
	// caller has already placed at (targetX, targetY); since Rotation's
	// fixed point is its own center argument, rotating about (cx0,cy0)
	// and re-centering on (targetX,targetY) requires the bitmap's true
	// center, which rotateAlphaAroundCenter derives from the bitmap
	// bounds, not the ink box. Approximate by rotating about the ink
	// box's own center and re-basing, acceptable given the spec's
	// documented ~5% looseness allowance for rotated hulls.
	rot := warp.Rotation(angleRad, cx0, cy0)
	corners := [4][2]float64{
		{ink.X0, ink.Y0}, {ink.X1, ink.Y0}, {ink.X1, ink.Y1}, {ink.X0, ink.Y1},
	}
	out := make([][2]float64, 4)
	for i, c := range corners {
		x, y := rot.Apply(c[0], c[1])
		out[i] = [2]float64{targetX + (x - cx0), targetY + (y - cy0)}
	}
	return out
}
