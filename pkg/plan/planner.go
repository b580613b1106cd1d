package plan

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dshills/ocrsynth/pkg/config"
	"github.com/dshills/ocrsynth/pkg/health"
	"github.com/dshills/ocrsynth/pkg/sampler"
)

// Backgrounds supplies the optional background image pool a Planner draws
// from, gated by the resource health tracker so a background that keeps
// failing validation (too small, corrupt) stops being selected.
type Backgrounds struct {
	Paths   []string
	Tracker *health.Tracker
}

// Planner samples a Plan for one Task under a BatchSpecification. A
// Planner is stateless beyond the immutable master seed and the shared,
// already-synchronized Backgrounds pool; it never mutates the
// specification it reads from.
type Planner struct {
	MasterSeed  uint64
	Backgrounds *Backgrounds
}

// NewPlanner constructs a Planner for masterSeed, optionally with a
// background pool. bg may be nil when no specification in the batch uses
// backgrounds.
func NewPlanner(masterSeed uint64, bg *Backgrounds) *Planner {
	return &Planner{MasterSeed: masterSeed, Backgrounds: bg}
}

// ImageSeed derives the per-image seed exactly as specified:
// hash(master_seed, image_index, spec_name).
func ImageSeed(masterSeed uint64, imageIndex int, specName string) uint64 {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], masterSeed)
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(imageIndex))
	h.Write(buf[:])
	h.Write([]byte(specName))
	digest := h.Sum(nil)
	return binary.BigEndian.Uint64(digest[:8])
}

// Plan samples the complete parameter vector for task under spec. It is a
// pure function of (task, spec, p.MasterSeed) plus the current state of
// the background health tracker, if any — the same property PlanBatch
// relies on to be deterministic under any scheduling order, since
// background selection only reads health scores, never task ordering.
func (p *Planner) Plan(task Task, spec *config.BatchSpecification) (*Plan, error) {
	seed := ImageSeed(p.MasterSeed, task.ImageIndex, task.SpecName)

	pl := &Plan{
		SpecName:   task.SpecName,
		Text:       task.Text,
		FontPath:   task.FontPath,
		ImageIndex: task.ImageIndex,
		Seed:       seed,
		Direction:  spec.Direction,
		LineBreak:  spec.LineBreak,
		Alignment:  spec.Alignment,
		Placement:  spec.Placement,
		MinPadding: 0,
	}

	sizeRNG := sampler.NewNamedRNG(seed, "planner.font_size")
	pl.FontSize = sampler.Sample(sizeRNG, spec.FontSize.Min, spec.FontSize.Max, dist(spec.FontSize.Dist))

	lineRNG := sampler.NewNamedRNG(seed, "planner.lines")
	pl.NumLines = lineRNG.IntRange(spec.LineCountMin, spec.LineCountMax)

	spacingRNG := sampler.NewNamedRNG(seed, "planner.line_spacing")
	pl.LineSpacing = sampler.Sample(spacingRNG, spec.LineSpacing.Min, spec.LineSpacing.Max, dist(spec.LineSpacing.Dist))

	if err := p.sampleCurve(pl, spec, seed); err != nil {
		return nil, err
	}
	p.sampleColor(pl, spec, seed)
	p.sampleEffects(pl, spec, seed)
	p.sampleAugment(pl, spec, seed)

	overlapRNG := sampler.NewNamedRNG(seed, "planner.overlap")
	pl.OverlapIntensity = overlapRNG.Float64() * 0.3 // mild default range; specs may override via effects in future

	canvasRNG := sampler.NewNamedRNG(seed, "planner.canvas")
	pl.MinPadding = sampler.Sample(canvasRNG, spec.MinPadding.Min, spec.MinPadding.Max, dist(spec.MinPadding.Dist))
	pl.MaxMegapixels = spec.MaxMegapixels
	if pl.MaxMegapixels == 0 {
		pl.MaxMegapixels = 8
	}

	if err := p.selectBackground(pl, seed); err != nil {
		return nil, err
	}

	return pl, nil
}

func (p *Planner) sampleCurve(pl *Plan, spec *config.BatchSpecification, seed uint64) error {
	pl.Curve.Type = spec.Curve.Type
	if spec.Curve.Type == config.CurveNone {
		return nil
	}
	rng := sampler.NewNamedRNG(seed, "planner.curve")
	pl.Curve.Radius = sampler.Sample(rng, spec.Curve.Radius.Min, spec.Curve.Radius.Max, dist(spec.Curve.Radius.Dist))
	pl.Curve.Concavity = sampler.Sample(rng, spec.Curve.Concavity.Min, spec.Curve.Concavity.Max, dist(spec.Curve.Concavity.Dist))
	pl.Curve.Amplitude = sampler.Sample(rng, spec.Curve.Amplitude.Min, spec.Curve.Amplitude.Max, dist(spec.Curve.Amplitude.Dist))
	pl.Curve.Frequency = sampler.Sample(rng, spec.Curve.Frequency.Min, spec.Curve.Frequency.Max, dist(spec.Curve.Frequency.Dist))
	pl.Curve.Phase = sampler.Sample(rng, spec.Curve.Phase.Min, spec.Curve.Phase.Max, dist(spec.Curve.Phase.Dist))
	pl.Curve.Intensity = sampler.Sample(rng, spec.Curve.Intensity.Min, spec.Curve.Intensity.Max, dist(spec.Curve.Intensity.Dist))
	if pl.Curve.Intensity == 0 {
		pl.Curve.Intensity = 0.3
	}
	pl.Curve.Concave = rng.Bool()
	return nil
}

func (p *Planner) sampleColor(pl *Plan, spec *config.BatchSpecification, seed uint64) {
	rng := sampler.NewNamedRNG(seed, "planner.color")
	pl.Color.Mode = spec.Color.Mode
	pl.Color.Palette = spec.Color.Palette

	switch spec.Color.Mode {
	case config.ColorPerGlyph, config.ColorGradient:
		n := len([]rune(pl.Text))
		if n == 0 {
			n = 1
		}
		pl.Color.GlyphRGBs = make([][3]uint8, n)
		for i := range pl.Color.GlyphRGBs {
			pl.Color.GlyphRGBs[i] = randomRGB(rng, spec)
		}
	default:
		rgb := randomRGB(rng, spec)
		pl.Color.GlyphRGBs = [][3]uint8{rgb}
	}

	pl.Color.AutoBG = spec.BackgroundColor.Auto
	if spec.BackgroundColor.Auto {
		pl.Color.Background = contrastingBackground(pl.Color.GlyphRGBs)
	} else {
		pl.Color.Background = spec.BackgroundColor.RGB
	}
}

// contrastingBackground solves BackgroundColor.Auto's "maximum luminance
// contrast" contract: average the sampled glyph colors, then pick whichever
// of pure black or pure white has the greater WCAG relative-luminance
// contrast ratio against that average. Two fixed endpoints, rather than an
// arbitrary inverse color, keep the chosen background itself a clean,
// label-friendly constant.
func contrastingBackground(glyphRGBs [][3]uint8) [3]uint8 {
	if len(glyphRGBs) == 0 {
		return [3]uint8{255, 255, 255}
	}
	var rSum, gSum, bSum int
	for _, c := range glyphRGBs {
		rSum += int(c[0])
		gSum += int(c[1])
		bSum += int(c[2])
	}
	n := len(glyphRGBs)
	avg := [3]uint8{uint8(rSum / n), uint8(gSum / n), uint8(bSum / n)}

	textLum := relativeLuminance(avg)
	if contrastRatio(textLum, 0) >= contrastRatio(textLum, 1) {
		return [3]uint8{0, 0, 0}
	}
	return [3]uint8{255, 255, 255}
}

// relativeLuminance implements the sRGB gamma-corrected luminance formula
// from the WCAG contrast specification.
func relativeLuminance(c [3]uint8) float64 {
	lin := func(v uint8) float64 {
		s := float64(v) / 255
		if s <= 0.03928 {
			return s / 12.92
		}
		return math.Pow((s+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c[0]) + 0.7152*lin(c[1]) + 0.0722*lin(c[2])
}

// contrastRatio is the WCAG contrast ratio between two relative
// luminances, always >= 1.
func contrastRatio(l1, l2 float64) float64 {
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func randomRGB(rng *sampler.NamedRNG, spec *config.BatchSpecification) [3]uint8 {
	if len(spec.Color.Custom) > 0 {
		idx := rng.Intn(len(spec.Color.Custom))
		return spec.Color.Custom[idx]
	}
	lo, hi := spec.Color.RGBMin, spec.Color.RGBMax
	pick := func(lo, hi uint8) uint8 {
		if hi <= lo {
			return lo
		}
		return lo + uint8(rng.Intn(int(hi-lo)+1))
	}
	return [3]uint8{pick(lo[0], hi[0]), pick(lo[1], hi[1]), pick(lo[2], hi[2])}
}

func (p *Planner) sampleEffects(pl *Plan, spec *config.BatchSpecification, seed uint64) {
	rng := sampler.NewNamedRNG(seed, "planner.effects")
	e := &spec.Effects
	pl.Effect = EffectParams{
		InkBleedRadius:   sampler.Sample(rng, e.InkBleedRadius.Min, e.InkBleedRadius.Max, dist(e.InkBleedRadius.Dist)),
		ShadowOffsetX:    sampler.Sample(rng, e.ShadowOffsetX.Min, e.ShadowOffsetX.Max, dist(e.ShadowOffsetX.Dist)),
		ShadowOffsetY:    sampler.Sample(rng, e.ShadowOffsetY.Min, e.ShadowOffsetY.Max, dist(e.ShadowOffsetY.Dist)),
		ShadowBlur:       sampler.Sample(rng, e.ShadowBlur.Min, e.ShadowBlur.Max, dist(e.ShadowBlur.Dist)),
		Relief:           e.Relief,
		ReliefAzimuth:    sampler.Sample(rng, e.ReliefAzimuth.Min, e.ReliefAzimuth.Max, dist(e.ReliefAzimuth.Dist)),
		ReliefElevation:  sampler.Sample(rng, e.ReliefElevation.Min, e.ReliefElevation.Max, dist(e.ReliefElevation.Dist)),
		NoiseDensity:     sampler.Sample(rng, e.NoiseDensity.Min, e.NoiseDensity.Max, dist(e.NoiseDensity.Dist)),
		BlurRadius:       sampler.Sample(rng, e.BlurRadius.Min, e.BlurRadius.Max, dist(e.BlurRadius.Dist)),
		Brightness:       one(sampler.Sample(rng, e.Brightness.Min, e.Brightness.Max, dist(e.Brightness.Dist))),
		Contrast:         one(sampler.Sample(rng, e.Contrast.Min, e.Contrast.Max, dist(e.Contrast.Dist))),
		MorphologyKernel: oddInt(sampler.SampleInt(rng, int(e.MorphologyKernel.Min), int(e.MorphologyKernel.Max), dist(e.MorphologyKernel.Dist))),
		MorphologyDilate: e.MorphologyDilate,
		CutoutSize:       sampler.SampleInt(rng, int(e.CutoutSize.Min), int(e.CutoutSize.Max), dist(e.CutoutSize.Dist)),
	}
}

func (p *Planner) sampleAugment(pl *Plan, spec *config.BatchSpecification, seed uint64) {
	rng := sampler.NewNamedRNG(seed, "planner.augment")
	a := &spec.Augment
	pl.Augmentation = AugmentParams{
		RotationAngle:        sampler.Sample(rng, a.RotationAngle.Min, a.RotationAngle.Max, dist(a.RotationAngle.Dist)),
		PerspectiveMagnitude: sampler.Sample(rng, a.PerspectiveMagnitude.Min, a.PerspectiveMagnitude.Max, dist(a.PerspectiveMagnitude.Dist)),
		ElasticAlpha:         sampler.Sample(rng, a.ElasticAlpha.Min, a.ElasticAlpha.Max, dist(a.ElasticAlpha.Dist)),
		ElasticSigma:         sampler.Sample(rng, a.ElasticSigma.Min, a.ElasticSigma.Max, dist(a.ElasticSigma.Dist)),
		GridSteps:            sampler.SampleInt(rng, int(a.GridSteps.Min), int(a.GridSteps.Max), dist(a.GridSteps.Dist)),
		GridLimit:            sampler.Sample(rng, a.GridLimit.Min, a.GridLimit.Max, dist(a.GridLimit.Dist)),
		OpticalLimit:         sampler.Sample(rng, a.OpticalLimit.Min, a.OpticalLimit.Max, dist(a.OpticalLimit.Dist)),
	}
}

func (p *Planner) selectBackground(pl *Plan, seed uint64) error {
	if p.Backgrounds == nil || len(p.Backgrounds.Paths) == 0 {
		return nil
	}
	rng := sampler.NewNamedRNG(seed, "planner.background")
	candidates := make([]health.Candidate, len(p.Backgrounds.Paths))
	for i, path := range p.Backgrounds.Paths {
		candidates[i] = health.Candidate{ID: path, Weight: 1}
	}
	id, err := p.Backgrounds.Tracker.Select(candidates, rng.Float64())
	if err != nil {
		// No healthy background: fall back to a solid fill, per the
		// background-validation contract, rather than failing the task.
		return nil
	}
	pl.BackgroundPath = id
	return nil
}

// PlanBatch is the vectorized Planner form: it plans every task
// independently and is a pure function of its inputs plus the master
// seed, the property exercised by the index-determinism test.
func (p *Planner) PlanBatch(tasks []Task, specByName map[string]*config.BatchSpecification) ([]*Plan, error) {
	out := make([]*Plan, len(tasks))
	for i, t := range tasks {
		spec, ok := specByName[t.SpecName]
		if !ok {
			return nil, fmt.Errorf("plan: unknown specification %q for task %d", t.SpecName, t.ImageIndex)
		}
		pl, err := p.Plan(t, spec)
		if err != nil {
			return nil, fmt.Errorf("plan: task %d: %w", t.ImageIndex, err)
		}
		out[i] = pl
	}
	return out, nil
}

func dist(name string) sampler.Distribution {
	if name == "" {
		return sampler.Uniform
	}
	return sampler.Distribution(name)
}

func one(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func oddInt(v int) int {
	if v%2 == 0 {
		v++
	}
	if v < 1 {
		v = 1
	}
	return v
}
