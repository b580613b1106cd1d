package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/ocrsynth/pkg/config"
	"github.com/dshills/ocrsynth/pkg/fontengine/fakefont"
	"github.com/dshills/ocrsynth/pkg/ocrerr"
	"github.com/dshills/ocrsynth/pkg/plan"
)

func basicPlan(seed uint64) *plan.Plan {
	return &plan.Plan{
		SpecName:    "printed_horizontal",
		Text:        "hello world",
		FontPath:    "fake.ttf",
		ImageIndex:  0,
		Seed:        seed,
		Direction:   config.LTR,
		FontSize:    24,
		NumLines:    1,
		LineBreak:   config.BreakWord,
		LineSpacing: 1.2,
		Alignment:   config.AlignLeft,
		Curve:       plan.CurveParams{Type: config.CurveNone},
		Color:       plan.ColorParams{Mode: config.ColorUniform, Background: [3]uint8{255, 255, 255}},
		Effect: plan.EffectParams{
			Brightness: 1,
			Contrast:   1,
		},
		OverlapIntensity: 0,
		MinPadding:       10,
		MaxMegapixels:    5,
		Placement:        config.PlaceCenter,
	}
}

func TestGenerateFromPlanProducesImageAndBoxes(t *testing.T) {
	gen := NewGenerator(&fakefont.Engine{}, nil)
	img, boxes, manifest, _, err := gen.GenerateFromPlan(context.Background(), basicPlan(1))
	if err != nil {
		t.Fatalf("GenerateFromPlan failed: %v", err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Fatal("expected a non-empty canvas")
	}
	if len(boxes) != len([]rune("hello world")) {
		t.Fatalf("expected one box per rune including spaces, got %d", len(boxes))
	}
	if manifest.Rotation || manifest.Perspective || manifest.Elastic || manifest.Grid || manifest.Optical {
		t.Fatal("zero-parameter augmentation should report an empty manifest")
	}
}

func TestGenerateFromPlanIsDeterministic(t *testing.T) {
	gen := NewGenerator(&fakefont.Engine{}, nil)
	p := basicPlan(42)
	img1, boxes1, _, _, err := gen.GenerateFromPlan(context.Background(), p)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	img2, boxes2, _, _, err := gen.GenerateFromPlan(context.Background(), p)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if string(img1.Pix) != string(img2.Pix) {
		t.Fatal("re-invoking GenerateFromPlan on the same plan must be byte-identical")
	}
	if len(boxes1) != len(boxes2) {
		t.Fatal("box count must be identical across repeated runs")
	}
	for i := range boxes1 {
		if boxes1[i] != boxes2[i] {
			t.Fatalf("box %d differs across repeated runs: %+v vs %+v", i, boxes1[i], boxes2[i])
		}
	}
}

func TestGenerateFromPlanRespectsCancellation(t *testing.T) {
	gen := NewGenerator(&fakefont.Engine{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, _, _, err := gen.GenerateFromPlan(ctx, basicPlan(1))
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
}

func TestGenerateFromPlanGlyphMissReturnsTypedError(t *testing.T) {
	gen := NewGenerator(&fakefont.Engine{Uncovered: map[rune]bool{'h': true}}, nil)
	_, _, _, _, err := gen.GenerateFromPlan(context.Background(), basicPlan(1))
	if err == nil {
		t.Fatal("expected a glyph-miss error for an uncovered rune")
	}
	var oe *ocrerr.Error
	if !errors.As(err, &oe) || oe.Kind != ocrerr.GlyphMiss {
		t.Fatalf("expected an ocrerr.Error of kind GlyphMiss, got %v", err)
	}
}
