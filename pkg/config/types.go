package config

import "fmt"

// Direction names the text direction a batch specification renders in.
type Direction string

const (
	LTR Direction = "LTR"
	RTL Direction = "RTL"
	TTB Direction = "TTB"
	BTT Direction = "BTT"
)

// ValidDirections lists every recognized direction.
var ValidDirections = []Direction{LTR, RTL, TTB, BTT}

func (d Direction) valid() bool {
	for _, v := range ValidDirections {
		if v == d {
			return true
		}
	}
	return false
}

// Horizontal reports whether d lays text out along the x axis.
func (d Direction) Horizontal() bool { return d == LTR || d == RTL }

// Alignment names a text alignment. Its valid set depends on the
// specification's Direction: left/center/right for horizontal directions,
// top/center/bottom for vertical ones.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
	AlignTop    Alignment = "top"
	AlignBottom Alignment = "bottom"
)

// ValidForDirection reports whether a is a legal alignment for d.
func (a Alignment) ValidForDirection(d Direction) bool {
	if d.Horizontal() {
		return a == AlignLeft || a == AlignCenter || a == AlignRight
	}
	return a == AlignTop || a == AlignCenter || a == AlignBottom
}

// LineBreakMode selects how BreakIntoLines splits text.
type LineBreakMode string

const (
	BreakWord      LineBreakMode = "word"
	BreakCharacter LineBreakMode = "character"
)

// CurveType names the baseline curvature applied by the Glyph Shaper.
type CurveType string

const (
	CurveNone  CurveType = "none"
	CurveArc   CurveType = "arc"
	CurveSine  CurveType = "sine"
)

// ColorMode selects how glyph color is determined.
type ColorMode string

const (
	ColorUniform  ColorMode = "uniform"
	ColorPerGlyph ColorMode = "per-glyph"
	ColorGradient ColorMode = "gradient"
	ColorRandom   ColorMode = "random"
)

// PlacementStrategy selects how the Canvas Placer positions the text
// surface on the canvas.
type PlacementStrategy string

const (
	PlaceWeightedRandom PlacementStrategy = "weighted_random"
	PlaceUniformRandom  PlacementStrategy = "uniform_random"
	PlaceCenter         PlacementStrategy = "center"
)

// Relief names the 3D relief effect variant.
type Relief string

const (
	ReliefNone      Relief = "none"
	ReliefRaised    Relief = "raised"
	ReliefEmbossed  Relief = "embossed"
	ReliefEngraved  Relief = "engraved"
)

// Range is an inclusive [Min, Max] bound paired with the distribution used
// to sample within it. Every tunable continuous or integer parameter in a
// BatchSpecification is expressed as a Range.
type Range struct {
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
	Dist string  `yaml:"dist,omitempty" json:"dist,omitempty"`
}

// Validate checks that Min <= Max and, when Dist is set, that it names a
// recognized distribution. Dist is validated against the sampler package's
// name set by the caller (config does not import sampler, to keep this
// package a leaf) through the knownDist callback.
func (r Range) Validate(field string, knownDist func(string) bool) error {
	if r.Min > r.Max {
		return fmt.Errorf("%s: min %v > max %v", field, r.Min, r.Max)
	}
	if r.Dist != "" && knownDist != nil && !knownDist(r.Dist) {
		return fmt.Errorf("%s: unknown distribution %q", field, r.Dist)
	}
	return nil
}

// WeightedPattern pairs a glob pattern (for fonts) or file/directory path
// (for corpora) with a selection weight.
type WeightedPattern struct {
	Pattern string  `yaml:"pattern" json:"pattern"`
	Weight  float64 `yaml:"weight,omitempty" json:"weight,omitempty"`
}

// CorpusSelector names the text source for a specification: a single
// file, a directory, or a glob, each with optional per-file weights.
type CorpusSelector struct {
	File      string            `yaml:"file,omitempty" json:"file,omitempty"`
	Directory string            `yaml:"directory,omitempty" json:"directory,omitempty"`
	Glob      string            `yaml:"glob,omitempty" json:"glob,omitempty"`
	Weights   []WeightedPattern `yaml:"weights,omitempty" json:"weights,omitempty"`
}

// FontSelector names the font source for a specification: a glob pattern
// with optional per-pattern weights.
type FontSelector struct {
	Glob    string            `yaml:"glob" json:"glob"`
	Weights []WeightedPattern `yaml:"weights,omitempty" json:"weights,omitempty"`
}

// CurveConfig bundles the curve type with its parameter ranges. Arc and
// sine ranges must be all-zero when Type is CurveNone.
type CurveConfig struct {
	Type       CurveType `yaml:"type" json:"type"`
	Radius     Range     `yaml:"radius,omitempty" json:"radius,omitempty"`
	Concavity  Range     `yaml:"concavity,omitempty" json:"concavity,omitempty"`
	Amplitude  Range     `yaml:"amplitude,omitempty" json:"amplitude,omitempty"`
	Frequency  Range     `yaml:"frequency,omitempty" json:"frequency,omitempty"`
	Phase      Range     `yaml:"phase,omitempty" json:"phase,omitempty"`
	Intensity  Range     `yaml:"intensity,omitempty" json:"intensity,omitempty"`
}

func (r Range) isZero() bool { return r.Min == 0 && r.Max == 0 }

// Validate enforces that curve parameter ranges are zero when Type is
// CurveNone, per the BatchSpecification invariant in the data model.
func (c CurveConfig) Validate() error {
	if c.Type != CurveNone && c.Type != CurveArc && c.Type != CurveSine {
		return fmt.Errorf("curve: unknown type %q", c.Type)
	}
	if c.Type == CurveNone {
		for name, r := range map[string]Range{
			"radius": c.Radius, "concavity": c.Concavity, "amplitude": c.Amplitude,
			"frequency": c.Frequency, "phase": c.Phase, "intensity": c.Intensity,
		} {
			if !r.isZero() {
				return fmt.Errorf("curve: type=none requires zero %s range, got [%v,%v]", name, r.Min, r.Max)
			}
		}
	}
	return nil
}

// ColorConfig consolidates the two overlapping color dialects referenced
// in the source material (palette-based and min/max RGB range based) into
// one schema: Mode selects how color is assigned, Palette names a built-in
// or custom palette, and Custom/RGBMin/RGBMax back the uniform/gradient
// modes when no named palette is given. Exactly one of Palette or
// Custom/RGBMin+RGBMax should be populated; the Validator rejects
// configurations that set both.
type ColorConfig struct {
	Mode    ColorMode  `yaml:"mode" json:"mode"`
	Palette string     `yaml:"palette,omitempty" json:"palette,omitempty"`
	Custom  [][3]uint8 `yaml:"custom,omitempty" json:"custom,omitempty"`
	RGBMin  [3]uint8   `yaml:"rgb_min,omitempty" json:"rgb_min,omitempty"`
	RGBMax  [3]uint8   `yaml:"rgb_max,omitempty" json:"rgb_max,omitempty"`
}

// BackgroundColor is either a fixed RGB triple or the sentinel "auto",
// meaning the Planner solves for maximum luminance contrast against the
// sampled text color when it resolves this specification's Plan.
type BackgroundColor struct {
	Auto bool     `yaml:"auto,omitempty" json:"auto,omitempty"`
	RGB  [3]uint8 `yaml:"rgb,omitempty" json:"rgb,omitempty"`
}

// EffectRange is the {min, max, distribution} triple attached to every
// effect and augmentation parameter.
type EffectRange = Range

// EffectsConfig collects every per-effect parameter range in the fixed
// application order of the Effect Chain (spec section 4.6).
type EffectsConfig struct {
	InkBleedRadius        EffectRange `yaml:"ink_bleed_radius,omitempty" json:"ink_bleed_radius,omitempty"`
	ShadowOffsetX         EffectRange `yaml:"shadow_offset_x,omitempty" json:"shadow_offset_x,omitempty"`
	ShadowOffsetY         EffectRange `yaml:"shadow_offset_y,omitempty" json:"shadow_offset_y,omitempty"`
	ShadowBlur            EffectRange `yaml:"shadow_blur,omitempty" json:"shadow_blur,omitempty"`
	Relief                Relief      `yaml:"relief,omitempty" json:"relief,omitempty"`
	ReliefAzimuth         EffectRange `yaml:"relief_azimuth,omitempty" json:"relief_azimuth,omitempty"`
	ReliefElevation       EffectRange `yaml:"relief_elevation,omitempty" json:"relief_elevation,omitempty"`
	NoiseDensity          EffectRange `yaml:"noise_density,omitempty" json:"noise_density,omitempty"`
	BlurRadius            EffectRange `yaml:"blur_radius,omitempty" json:"blur_radius,omitempty"`
	Brightness            EffectRange `yaml:"brightness,omitempty" json:"brightness,omitempty"`
	Contrast              EffectRange `yaml:"contrast,omitempty" json:"contrast,omitempty"`
	MorphologyKernel      EffectRange `yaml:"morphology_kernel,omitempty" json:"morphology_kernel,omitempty"`
	MorphologyDilate      bool        `yaml:"morphology_dilate,omitempty" json:"morphology_dilate,omitempty"`
	CutoutSize            EffectRange `yaml:"cutout_size,omitempty" json:"cutout_size,omitempty"`
}

// AugmentConfig collects every augmentation parameter range in the fixed
// application order of the Augmenter (spec section 4.7).
type AugmentConfig struct {
	RotationAngle       EffectRange `yaml:"rotation_angle,omitempty" json:"rotation_angle,omitempty"`
	PerspectiveMagnitude EffectRange `yaml:"perspective_magnitude,omitempty" json:"perspective_magnitude,omitempty"`
	ElasticAlpha        EffectRange `yaml:"elastic_alpha,omitempty" json:"elastic_alpha,omitempty"`
	ElasticSigma        EffectRange `yaml:"elastic_sigma,omitempty" json:"elastic_sigma,omitempty"`
	GridSteps           EffectRange `yaml:"grid_steps,omitempty" json:"grid_steps,omitempty"`
	GridLimit           EffectRange `yaml:"grid_limit,omitempty" json:"grid_limit,omitempty"`
	OpticalLimit        EffectRange `yaml:"optical_limit,omitempty" json:"optical_limit,omitempty"`
}
