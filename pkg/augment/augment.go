package augment

import (
	"image"
	"math"

	"github.com/dshills/ocrsynth/pkg/label"
	"github.com/dshills/ocrsynth/pkg/plan"
	"github.com/dshills/ocrsynth/pkg/sampler"
	"github.com/dshills/ocrsynth/pkg/warp"
)

// Apply runs rotation, perspective, elastic, grid, and optical distortion
// over surface and boxes in that fixed order, skipping any stage whose
// sampled parameter is at its neutral value. It returns the final surface
// (which may be a different *image.RGBA than the input once any stage
// runs) and the recomputed CharacterBoxes.
func Apply(surface *image.RGBA, boxes []label.CharacterBox, p plan.AugmentParams, rng *sampler.NamedRNG) (*image.RGBA, []label.CharacterBox) {
	surface, boxes = applyRotation(surface, boxes, p.RotationAngle)
	surface, boxes = applyPerspective(surface, boxes, p.PerspectiveMagnitude, rng)
	surface, boxes = applyElastic(surface, boxes, p.ElasticAlpha, p.ElasticSigma, rng)
	surface, boxes = applyGrid(surface, boxes, p.GridSteps, p.GridLimit, rng)
	surface, boxes = applyOptical(surface, boxes, p.OpticalLimit)
	return surface, boxes
}

// applyRotation rotates the surface about its own center and analytically
// transforms every box's four corners through the same forward transform,
// re-hulling and clipping to the unchanged canvas bounds.
func applyRotation(img *image.RGBA, boxes []label.CharacterBox, angleDeg float64) (*image.RGBA, []label.CharacterBox) {
	if angleDeg == 0 {
		return img, boxes
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cx, cy := float64(w)/2, float64(h)/2
	rad := angleDeg * math.Pi / 180
	fwd := warp.Rotation(rad, cx, cy)
	inv, ok := fwd.Invert()
	if !ok {
		return img, boxes
	}
	out := warp.WarpRGBA(img, w, h, inv.Mapper())
	return out, transformBoxes(boxes, fwd.Apply, float64(w), float64(h))
}

// applyPerspective fits a homography mapping the surface's four corners to
// the same corners jittered by +/- magnitude*min(w,h) and warps pixels and
// boxes through it.
func applyPerspective(img *image.RGBA, boxes []label.CharacterBox, magnitude float64, rng *sampler.NamedRNG) (*image.RGBA, []label.CharacterBox) {
	if magnitude == 0 {
		return img, boxes
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	span := magnitude * math.Min(float64(w), float64(h))
	src := [4]warp.Point{{X: 0, Y: 0}, {X: float64(w), Y: 0}, {X: float64(w), Y: float64(h)}, {X: 0, Y: float64(h)}}
	dst := src
	for i := range dst {
		dst[i].X += span * (2*rng.Float64() - 1)
		dst[i].Y += span * (2*rng.Float64() - 1)
	}
	fwd := warp.FitHomography(src, dst)
	inv := fwd.Invert()
	out := warp.WarpRGBA(img, w, h, inv.Mapper())
	return out, transformBoxes(boxes, fwd.Apply, float64(w), float64(h))
}

// applyElastic displaces pixels through a coarse field of independently
// sampled Gaussian offsets, upsampled bilinearly by warp.Field.Sample as a
// stand-in for explicit Gaussian smoothing — the field is already
// continuous between control points, and sigma widens the control grid
// spacing rather than post-filtering a dense field.
func applyElastic(img *image.RGBA, boxes []label.CharacterBox, alpha, sigma float64, rng *sampler.NamedRNG) (*image.RGBA, []label.CharacterBox) {
	if alpha == 0 {
		return img, boxes
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rows, cols := 2, 2
	if sigma > 0 {
		rows = int(float64(h)/sigma) + 1
		cols = int(float64(w)/sigma) + 1
	}
	if rows < 2 {
		rows = 2
	}
	if cols < 2 {
		cols = 2
	}
	field := randomField(rows, cols, w, h, alpha, rng)
	mapper := field.Mapper()
	out := warp.WarpRGBA(img, w, h, mapper)
	return out, recomputeBoxesFromAlpha(out, boxes, field, float64(w), float64(h))
}

// applyGrid displaces pixels at a coarse steps x steps control grid by up
// to limit pixels per axis, bilinearly interpolated between control
// points — a bilinear stand-in for the bicubic grid-distortion kernel
// since no pack dependency exposes bicubic resampling for image.RGBA.
func applyGrid(img *image.RGBA, boxes []label.CharacterBox, steps int, limit float64, rng *sampler.NamedRNG) (*image.RGBA, []label.CharacterBox) {
	if steps <= 1 || limit == 0 {
		return img, boxes
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dx := make([][]float64, steps)
	dy := make([][]float64, steps)
	for r := range dx {
		dx[r] = make([]float64, steps)
		dy[r] = make([]float64, steps)
		for c := range dx[r] {
			dx[r][c] = limit * (2*rng.Float64() - 1)
			dy[r][c] = limit * (2*rng.Float64() - 1)
		}
	}
	field := warp.Field{DX: dx, DY: dy, Width: w, Height: h}
	mapper := field.Mapper()
	out := warp.WarpRGBA(img, w, h, mapper)
	return out, recomputeBoxesFromAlpha(out, boxes, field, float64(w), float64(h))
}

// applyOptical applies radial barrel (limit > 0) or pincushion (limit < 0)
// distortion centered on the surface, an analytic closure rather than a
// precomputed warp.Field since the radial formula is exact at every pixel.
func applyOptical(img *image.RGBA, boxes []label.CharacterBox, limit float64) (*image.RGBA, []label.CharacterBox) {
	if limit == 0 {
		return img, boxes
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cx, cy := float64(w)/2, float64(h)/2
	maxR := math.Hypot(cx, cy)
	if maxR == 0 {
		return img, boxes
	}
	mapper := func(x, y float64) (float64, float64) {
		dx, dy := x-cx, y-cy
		r := math.Hypot(dx, dy) / maxR
		factor := 1 + limit*r*r
		return cx + dx*factor, cy + dy*factor
	}
	out := warp.WarpRGBA(img, w, h, mapper)
	newBoxes := make([]label.CharacterBox, 0, len(boxes))
	for _, box := range boxes {
		newBoxes = append(newBoxes, recomputeOneBoxFromAlpha(out, box, func(x, y float64) (float64, float64) {
			// Forward transform for the hull search window: invert the
			// analytic radial formula by Newton iteration on the radius,
			// since it is monotonic in r for the magnitudes the Planner
			// samples.
			dx, dy := x-cx, y-cy
			rs := math.Hypot(dx, dy)
			if rs == 0 {
				return x, y
			}
			ro := rs
			for i := 0; i < 20; i++ {
				dg := 1 + 3*limit*ro*ro/(maxR*maxR)
				if dg <= 0 {
					break
				}
				ro -= (ro*(1+limit*ro*ro/(maxR*maxR)) - rs) / dg
			}
			return cx + dx*ro/rs, cy + dy*ro/rs
		}, float64(w), float64(h)))
	}
	return out, newBoxes
}

func randomField(rows, cols, w, h int, scale float64, rng *sampler.NamedRNG) warp.Field {
	dx := make([][]float64, rows)
	dy := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		dx[r] = make([]float64, cols)
		dy[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			dx[r][c] = rng.NormFloat64() * scale
			dy[r][c] = rng.NormFloat64() * scale
		}
	}
	return warp.Field{DX: dx, DY: dy, Width: w, Height: h}
}

// transformBoxes maps every box's corners through fwd, re-hulls, and clips
// to the canvas bounds, dropping boxes that land entirely outside.
func transformBoxes(boxes []label.CharacterBox, fwd func(x, y float64) (float64, float64), w, h float64) []label.CharacterBox {
	out := make([]label.CharacterBox, 0, len(boxes))
	for _, box := range boxes {
		corners := box.Corners()
		pts := make([][2]float64, 4)
		for i, c := range corners {
			x, y := fwd(c[0], c[1])
			pts[i] = [2]float64{x, y}
		}
		hull := label.HullOf(pts, box)
		clipped, ok := hull.Clip(w, h)
		if !ok {
			continue
		}
		out = append(out, clipped)
	}
	return out
}

// recomputeBoxesFromAlpha re-derives each box's ink extent from the
// distorted surface's alpha channel within a search window predicted by
// the field's forward displacement, the "isolate -> remap -> recompute ink
// box" recipe approximated at the merged-surface level: the Shaper no
// longer carries a per-glyph mask once compositing has merged every glyph
// into one RGBA surface, so the search window stands in for an isolated
// glyph mask.
func recomputeBoxesFromAlpha(img *image.RGBA, boxes []label.CharacterBox, field warp.Field, w, h float64) []label.CharacterBox {
	fwd := func(x, y float64) (float64, float64) {
		dx, dy := field.Sample(x, y)
		return x + dx, y + dy
	}
	out := make([]label.CharacterBox, 0, len(boxes))
	for _, box := range boxes {
		out = append(out, recomputeOneBoxFromAlpha(img, box, fwd, w, h))
	}
	return out
}

func recomputeOneBoxFromAlpha(img *image.RGBA, box label.CharacterBox, fwd func(x, y float64) (float64, float64), w, h float64) label.CharacterBox {
	corners := box.Corners()
	pts := make([][2]float64, 4)
	for i, c := range corners {
		x, y := fwd(c[0], c[1])
		pts[i] = [2]float64{x, y}
	}
	predicted := label.HullOf(pts, box)

	const margin = 3.0
	x0 := int(math.Floor(predicted.X0 - margin))
	y0 := int(math.Floor(predicted.Y0 - margin))
	x1 := int(math.Ceil(predicted.X1 + margin))
	y1 := int(math.Ceil(predicted.Y1 + margin))
	b := img.Bounds()

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	found := false
	for y := y0; y < y1; y++ {
		if y < b.Min.Y || y >= b.Max.Y {
			continue
		}
		for x := x0; x < x1; x++ {
			if x < b.Min.X || x >= b.Max.X {
				continue
			}
			if img.RGBAAt(x, y).A > 0 {
				found = true
				if float64(x) < minX {
					minX = float64(x)
				}
				if float64(x+1) > maxX {
					maxX = float64(x + 1)
				}
				if float64(y) < minY {
					minY = float64(y)
				}
				if float64(y+1) > maxY {
					maxY = float64(y + 1)
				}
			}
		}
	}
	out := box
	if !found {
		out.Occluded = true
		clipped, _ := predicted.Clip(w, h)
		out.X0, out.Y0, out.X1, out.Y1 = clipped.X0, clipped.Y0, clipped.X1, clipped.Y1
		return out
	}
	out.X0, out.Y0, out.X1, out.Y1 = minX, minY, maxX, maxY
	clipped, ok := out.Clip(w, h)
	if !ok {
		out.Occluded = true
		return out
	}
	return clipped
}
