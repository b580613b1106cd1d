package effects

import (
	"image"
	"image/color"
	"testing"

	"github.com/dshills/ocrsynth/pkg/config"
	"github.com/dshills/ocrsynth/pkg/plan"
	"github.com/dshills/ocrsynth/pkg/sampler"
)

func solidSurface(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 0, G: 0, B: 0, A: 255})
		}
	}
	return img
}

func TestApplyNoOpLeavesImageUnchanged(t *testing.T) {
	img := solidSurface(10, 10)
	before := append([]byte(nil), img.Pix...)
	Apply(img, plan.EffectParams{Brightness: 1, Contrast: 1}, sampler.NewNamedRNG(1, "effects"))
	for i := range before {
		if img.Pix[i] != before[i] {
			t.Fatalf("zero-parameter effect chain mutated pixel %d: %d vs %d", i, before[i], img.Pix[i])
		}
	}
}

func TestApplyNoiseSetsExactCount(t *testing.T) {
	img := solidSurface(20, 20)
	rng := sampler.NewNamedRNG(1, "effects.noise")
	applyNoise(img, 0.1, rng)
	count := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			c := img.RGBAAt(x, y)
			if c.R == 0 || c.R == 255 {
				if c.R != 0 {
					count++
				}
			}
		}
	}
	// floor(0.1*400) = 40 distinct pixels are hit; every other one is white.
	if count != 20 {
		t.Fatalf("expected exactly 20 white noise pixels, got %d", count)
	}
}

func TestApplyCutoutPunchesHole(t *testing.T) {
	img := solidSurface(20, 20)
	rng := sampler.NewNamedRNG(2, "effects.cutout")
	applyCutout(img, 5, rng)
	transparent := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if img.RGBAAt(x, y).A == 0 {
				transparent++
			}
		}
	}
	if transparent != 25 {
		t.Fatalf("expected exactly 25 transparent pixels from a 5x5 cutout, got %d", transparent)
	}
}

func TestApplyMorphologyDilateGrowsAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 9, 9))
	img.SetRGBA(4, 4, color.RGBA{A: 255})
	applyMorphology(img, 3, true)
	if img.RGBAAt(3, 4).A == 0 || img.RGBAAt(5, 4).A == 0 {
		t.Fatal("dilation should have spread alpha to neighboring pixels")
	}
}

func TestApplyMorphologyErodeShrinksAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 9, 9))
	for y := 3; y <= 5; y++ {
		for x := 3; x <= 5; x++ {
			img.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}
	applyMorphology(img, 3, false)
	if img.RGBAAt(4, 4).A == 0 {
		t.Fatal("erosion removed the interior pixel of a solid block")
	}
	if img.RGBAAt(3, 3).A != 0 {
		t.Fatal("erosion should have removed a corner pixel with uncovered neighbors")
	}
}

func TestApplyReliefNoneIsNoOp(t *testing.T) {
	img := solidSurface(5, 5)
	before := append([]byte(nil), img.Pix...)
	applyRelief(img, config.ReliefNone, 45, 45)
	for i := range before {
		if img.Pix[i] != before[i] {
			t.Fatal("relief=none should not modify pixels")
		}
	}
}
