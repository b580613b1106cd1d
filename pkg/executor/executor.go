package executor

import (
	"context"
	"image"
	"image/draw"

	"github.com/dshills/ocrsynth/pkg/augment"
	"github.com/dshills/ocrsynth/pkg/canvas"
	"github.com/dshills/ocrsynth/pkg/effects"
	"github.com/dshills/ocrsynth/pkg/fontengine"
	"github.com/dshills/ocrsynth/pkg/label"
	"github.com/dshills/ocrsynth/pkg/ocrerr"
	"github.com/dshills/ocrsynth/pkg/plan"
	"github.com/dshills/ocrsynth/pkg/sampler"
	"github.com/dshills/ocrsynth/pkg/shaper"
	"github.com/dshills/ocrsynth/pkg/textlayout"
)

// Generator runs the five-stage render pipeline for one Plan. The font
// engine is expected to cache per-(handle,size) faces internally per its
// contract, so Generator opens a handle on every call without its own
// cache; LoadBackground is the only filesystem access this package makes,
// kept injectable so the Scheduler's I/O pool owns all blocking reads.
type Generator struct {
	Engine         fontengine.Engine
	LoadBackground func(path string) (image.Image, error)

	// OnBackgroundOutcome, if set, is invoked with the Canvas Placer's
	// size classification of the chosen background every time one is
	// resolved. The Scheduler wires this to the background health
	// tracker; Generator itself holds no health state.
	OnBackgroundOutcome func(path string, class canvas.BackgroundClass)
}

// NewGenerator builds a Generator. loadBackground may be nil if no
// specification in the batch ever sets a background directory.
func NewGenerator(engine fontengine.Engine, loadBackground func(path string) (image.Image, error)) *Generator {
	return &Generator{Engine: engine, LoadBackground: loadBackground}
}

// GenerateFromPlan seeds every named RNG from p.Seed and renders the
// final image, CharacterBoxes, and applied-augmentation manifest.
func (g *Generator) GenerateFromPlan(ctx context.Context, p *plan.Plan) (*image.RGBA, []label.CharacterBox, label.AugmentationManifest, image.Point, error) {
	var manifest label.AugmentationManifest

	if err := ctx.Err(); err != nil {
		return nil, nil, manifest, image.Point{}, err
	}

	handle, err := g.Engine.Open(p.FontPath)
	if err != nil {
		return nil, nil, manifest, image.Point{}, ocrerr.New(ocrerr.ResourceMissing, p.FontPath, err)
	}

	lines, err := textlayout.BreakIntoLines(p.Text, p.NumLines, p.LineBreak)
	if err != nil {
		return nil, nil, manifest, image.Point{}, ocrerr.New(ocrerr.ConfigError, "", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, manifest, image.Point{}, err
	}

	jitterRNG := sampler.NewNamedRNG(p.Seed, "shaper.jitter")
	surface, boxes, err := shaper.ShapeMultiLine(g.Engine, handle, lines, p.FontSize, p.Direction, p.Curve, p.Color, p.OverlapIntensity, p.LineSpacing, p.Alignment, jitterRNG)
	if err != nil {
		return nil, nil, manifest, image.Point{}, err
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, manifest, image.Point{}, err
	}

	effectsRNG := sampler.NewNamedRNG(p.Seed, "effects")
	surface = effects.Apply(surface, p.Effect, effectsRNG)

	if err := ctx.Err(); err != nil {
		return nil, nil, manifest, image.Point{}, err
	}

	augmentRNG := sampler.NewNamedRNG(p.Seed, "augment")
	surface, boxes = augment.Apply(surface, boxes, p.Augmentation, augmentRNG)
	manifest = label.AugmentationManifest{
		Rotation:    p.Augmentation.RotationAngle != 0,
		Perspective: p.Augmentation.PerspectiveMagnitude != 0,
		Elastic:     p.Augmentation.ElasticAlpha != 0,
		Grid:        p.Augmentation.GridSteps > 1 && p.Augmentation.GridLimit != 0,
		Optical:     p.Augmentation.OpticalLimit != 0,
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, manifest, image.Point{}, err
	}

	tb := surface.Bounds()
	canvasSizeRNG := sampler.NewNamedRNG(p.Seed, "canvas.size")
	canvasW, canvasH := canvas.GenerateCanvasSize(tb.Dx(), tb.Dy(), p.MinPadding, p.MaxMegapixels, canvasSizeRNG)

	placementRNG := sampler.NewNamedRNG(p.Seed, "canvas.placement")
	x, y := canvas.ChoosePlacement(canvasW, canvasH, tb.Dx(), tb.Dy(), p.Placement, placementRNG)

	bg := g.loadAndCropBackground(p, canvasW, canvasH, tb.Dx(), tb.Dy())

	finalImg, finalBoxes := canvas.Compose(surface, boxes, canvasW, canvasH, x, y, bg, p.Color.Background)
	return finalImg, finalBoxes, manifest, image.Pt(x, y), nil
}

// loadAndCropBackground resolves the Plan's chosen background, if any,
// into a pre-cropped canvasW x canvasH image. Any load failure, or a
// background classified as undersized, falls back to no background,
// letting Compose fill with the Plan's background color instead, per the
// Canvas Placer's fallback contract; the classification is still reported
// via OnBackgroundOutcome so the Scheduler can penalize the resource.
func (g *Generator) loadAndCropBackground(p *plan.Plan, canvasW, canvasH, textW, textH int) image.Image {
	if p.BackgroundPath == "" || g.LoadBackground == nil {
		return nil
	}
	raw, err := g.LoadBackground(p.BackgroundPath)
	if err != nil {
		return nil
	}
	bb := raw.Bounds()

	class := canvas.ClassifyBackground(bb.Dx(), bb.Dy(), canvasW, canvasH, textW, textH)
	if g.OnBackgroundOutcome != nil {
		g.OnBackgroundOutcome(p.BackgroundPath, class)
	}
	if class != canvas.BackgroundOK {
		return nil
	}

	cropRNG := sampler.NewNamedRNG(p.Seed, "canvas.background_crop")
	cx, cy, ok := canvas.ChooseBackgroundCrop(bb.Dx(), bb.Dy(), canvasW, canvasH, cropRNG)
	if !ok {
		return nil
	}
	cropped := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	draw.Draw(cropped, cropped.Bounds(), raw, bb.Min.Add(image.Pt(cx, cy)), draw.Src)
	return cropped
}
