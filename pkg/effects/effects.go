package effects

import (
	"image"
	"image/color"
	"math"

	"github.com/dshills/ocrsynth/pkg/plan"
	"github.com/dshills/ocrsynth/pkg/sampler"
)

// Variant names one stage of the fixed-order chain, used only for logging
// and tests; Apply always runs every stage in order, skipping no-ops by
// parameter value rather than by variant list.
type Variant string

const (
	InkBleed           Variant = "ink_bleed"
	DropShadow         Variant = "drop_shadow"
	Relief             Variant = "relief"
	ColorFill          Variant = "color_fill"
	Noise              Variant = "noise"
	Blur               Variant = "blur"
	BrightnessContrast Variant = "brightness_contrast"
	Morphology         Variant = "morphology"
	Cutout             Variant = "cutout"
)

// Order lists every variant in the fixed application order from spec
// section 4.6.
var Order = []Variant{InkBleed, DropShadow, Relief, ColorFill, Noise, Blur, BrightnessContrast, Morphology, Cutout}

// Apply runs the full effect chain over surface (in place, returning it
// for chaining convenience) using p's sampled parameters and rng for the
// noise and cutout stages' randomness.
func Apply(surface *image.RGBA, p plan.EffectParams, rng *sampler.NamedRNG) *image.RGBA {
	for _, v := range Order {
		switch v {
		case InkBleed:
			applyInkBleed(surface, p.InkBleedRadius)
		case DropShadow:
			applyDropShadow(surface, p.ShadowOffsetX, p.ShadowOffsetY, p.ShadowBlur)
		case Relief:
			applyRelief(surface, p.Relief, p.ReliefAzimuth, p.ReliefElevation)
		case ColorFill:
			// Per-glyph, gradient, and uniform colors are resolved by the
			// Shaper at render time from plan.ColorParams; the auto-contrast
			// background (plan.ColorParams.AutoBG) is resolved even earlier,
			// by the Planner, so both are already baked into the Plan by the
			// time the chain reaches here. This stage is a deliberate no-op
			// placeholder preserving the chain's fixed position.
		case Noise:
			applyNoise(surface, p.NoiseDensity, rng)
		case Blur:
			applyBlur(surface, p.BlurRadius)
		case BrightnessContrast:
			applyBrightnessContrast(surface, p.Brightness, p.Contrast)
		case Morphology:
			applyMorphology(surface, p.MorphologyKernel, p.MorphologyDilate)
		case Cutout:
			applyCutout(surface, p.CutoutSize, rng)
		}
	}
	return surface
}

func applyInkBleed(img *image.RGBA, radius float64) {
	if radius <= 0 {
		return
	}
	blurred := boxBlurAlpha(img, radius, 3)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			na := blurred[idx(img, x, y)]
			if na > c.A {
				img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: na})
			}
		}
	}
}

func applyDropShadow(img *image.RGBA, offsetX, offsetY, blurRadius float64) {
	if offsetX == 0 && offsetY == 0 && blurRadius == 0 {
		return
	}
	b := img.Bounds()
	shadowAlpha := make([]uint8, b.Dx()*b.Dy())
	ox, oy := int(math.Round(offsetX)), int(math.Round(offsetY))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sx, sy := x-ox, y-oy
			if sx < b.Min.X || sx >= b.Max.X || sy < b.Min.Y || sy >= b.Max.Y {
				continue
			}
			shadowAlpha[idx(img, x, y)] = img.RGBAAt(sx, sy).A
		}
	}
	if blurRadius > 0 {
		shadowAlpha = boxBlurPlane(shadowAlpha, b.Dx(), b.Dy(), blurRadius, 3)
	}

	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sa := shadowAlpha[idx(img, x, y)]
			fg := img.RGBAAt(x, y)
			if fg.A == 0 && sa > 0 {
				out.SetRGBA(x, y, color.RGBA{A: sa})
				continue
			}
			out.SetRGBA(x, y, fg)
		}
	}
	copy(img.Pix, out.Pix)
}

func idx(img *image.RGBA, x, y int) int {
	b := img.Bounds()
	return (y-b.Min.Y)*b.Dx() + (x - b.Min.X)
}
