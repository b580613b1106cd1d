package augment

import (
	"image"
	"image/color"
	"testing"

	"github.com/dshills/ocrsynth/pkg/label"
	"github.com/dshills/ocrsynth/pkg/plan"
	"github.com/dshills/ocrsynth/pkg/sampler"
)

func glyphSurface(w, h int, boxes ...label.CharacterBox) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for _, box := range boxes {
		for y := int(box.Y0); y < int(box.Y1); y++ {
			for x := int(box.X0); x < int(box.X1); x++ {
				img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}
	return img
}

func TestApplyZeroParamsIsNoOp(t *testing.T) {
	boxes := []label.CharacterBox{{Char: "a", X0: 10, Y0: 10, X1: 20, Y1: 20}}
	img := glyphSurface(40, 40, boxes[0])
	before := append([]byte(nil), img.Pix...)
	out, newBoxes := Apply(img, boxes, plan.AugmentParams{}, sampler.NewNamedRNG(1, "augment"))
	for i := range before {
		if out.Pix[i] != before[i] {
			t.Fatalf("zero-parameter augmentation chain mutated pixel %d", i)
		}
	}
	if len(newBoxes) != 1 || newBoxes[0] != boxes[0] {
		t.Fatalf("zero-parameter augmentation chain changed box: %+v", newBoxes)
	}
}

func TestApplyRotationPreservesBoxCount(t *testing.T) {
	boxes := []label.CharacterBox{
		{Char: "a", X0: 15, Y0: 15, X1: 25, Y1: 25, LineIndex: 0},
	}
	img := glyphSurface(40, 40, boxes[0])
	out, newBoxes := Apply(img, boxes, plan.AugmentParams{RotationAngle: 15}, sampler.NewNamedRNG(1, "augment"))
	if out.Bounds().Dx() != 40 || out.Bounds().Dy() != 40 {
		t.Fatalf("rotation should preserve canvas size, got %v", out.Bounds())
	}
	if len(newBoxes) != 1 {
		t.Fatalf("expected rotation near image center to preserve 1 box, got %d", len(newBoxes))
	}
	if !newBoxes[0].Valid() {
		t.Fatal("rotated box should remain valid")
	}
}

func TestApplyRotationKeepsClippedCornerBox(t *testing.T) {
	boxes := []label.CharacterBox{{Char: "a", X0: 0, Y0: 0, X1: 2, Y1: 2}}
	out, newBoxes := applyRotation(glyphSurface(10, 10, boxes[0]), boxes, 180)
	if out.Bounds().Dx() != 10 {
		t.Fatal("rotation must not resize the canvas")
	}
	// A corner box rotated 180 degrees about the 10x10 center lands near
	// (8,8)-(10,10), which still intersects bounds, so it should survive
	// clipped rather than be dropped.
	if len(newBoxes) != 1 {
		t.Fatalf("expected the rotated corner box to survive clipped, got %d boxes", len(newBoxes))
	}
}

func TestApplyPerspectiveIsDeterministic(t *testing.T) {
	boxes := []label.CharacterBox{{Char: "a", X0: 10, Y0: 10, X1: 20, Y1: 20}}
	img1 := glyphSurface(40, 40, boxes[0])
	img2 := glyphSurface(40, 40, boxes[0])
	out1, boxes1 := applyPerspective(img1, boxes, 0.1, sampler.NewNamedRNG(42, "augment.perspective"))
	out2, boxes2 := applyPerspective(img2, boxes, 0.1, sampler.NewNamedRNG(42, "augment.perspective"))
	if len(boxes1) != len(boxes2) {
		t.Fatal("same seed should produce the same number of surviving boxes")
	}
	for i := range boxes1 {
		if boxes1[i] != boxes2[i] {
			t.Fatalf("same seed should produce identical boxes, got %+v vs %+v", boxes1[i], boxes2[i])
		}
	}
	if string(out1.Pix) != string(out2.Pix) {
		t.Fatal("same seed should produce identical pixels")
	}
}

func TestApplyElasticRecomputesFromAlpha(t *testing.T) {
	boxes := []label.CharacterBox{{Char: "a", X0: 15, Y0: 15, X1: 25, Y1: 25}}
	img := glyphSurface(40, 40, boxes[0])
	_, newBoxes := applyElastic(img, boxes, 2, 4, sampler.NewNamedRNG(7, "augment.elastic"))
	if len(newBoxes) != 1 {
		t.Fatalf("expected 1 recomputed box, got %d", len(newBoxes))
	}
}

func TestApplyOpticalBarrelKeepsCornerBox(t *testing.T) {
	boxes := []label.CharacterBox{{Char: "a", X0: 0, Y0: 0, X1: 6, Y1: 6}}
	img := glyphSurface(40, 40, boxes[0])
	_, newBoxes := applyOptical(img, boxes, 0.5)
	if len(newBoxes) != 1 {
		t.Fatalf("expected 1 box after optical distortion, got %d", len(newBoxes))
	}
}

func TestApplyGridNoStepsIsNoOp(t *testing.T) {
	boxes := []label.CharacterBox{{Char: "a", X0: 10, Y0: 10, X1: 20, Y1: 20}}
	img := glyphSurface(40, 40, boxes[0])
	before := append([]byte(nil), img.Pix...)
	out, newBoxes := applyGrid(img, boxes, 0, 5, sampler.NewNamedRNG(1, "augment.grid"))
	for i := range before {
		if out.Pix[i] != before[i] {
			t.Fatal("grid_steps<=1 should be a no-op")
		}
	}
	if len(newBoxes) != 1 || newBoxes[0] != boxes[0] {
		t.Fatal("grid_steps<=1 should leave boxes untouched")
	}
}
