package config

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// BatchSpecification is one generation profile: a named slice of the
// overall batch, with its own text direction, corpus and font sources,
// layout parameters, curve, color, and effect/augmentation ranges.
type BatchSpecification struct {
	Name       string  `yaml:"name" json:"name"`
	Proportion float64 `yaml:"proportion" json:"proportion"`

	Direction Direction `yaml:"direction" json:"direction"`

	Corpus CorpusSelector `yaml:"corpus" json:"corpus"`
	Font   FontSelector   `yaml:"font" json:"font"`

	TextLengthMin int `yaml:"text_length_min" json:"text_length_min"`
	TextLengthMax int `yaml:"text_length_max" json:"text_length_max"`

	LineCountMin int           `yaml:"line_count_min" json:"line_count_min"`
	LineCountMax int           `yaml:"line_count_max" json:"line_count_max"`
	LineBreak    LineBreakMode `yaml:"line_break" json:"line_break"`
	LineSpacing  Range         `yaml:"line_spacing" json:"line_spacing"`
	Alignment    Alignment     `yaml:"alignment" json:"alignment"`

	Curve CurveConfig `yaml:"curve" json:"curve"`

	Color           ColorConfig     `yaml:"color" json:"color"`
	BackgroundColor BackgroundColor `yaml:"background_color" json:"background_color"`

	FontSize Range `yaml:"font_size" json:"font_size"`

	Effects   EffectsConfig `yaml:"effects" json:"effects"`
	Augment   AugmentConfig `yaml:"augment" json:"augment"`

	MinPadding     Range   `yaml:"min_padding,omitempty" json:"min_padding,omitempty"`
	MaxMegapixels  float64 `yaml:"max_megapixels,omitempty" json:"max_megapixels,omitempty"`
	Placement      PlacementStrategy `yaml:"placement,omitempty" json:"placement,omitempty"`
	BackgroundDir  string  `yaml:"background_dir,omitempty" json:"background_dir,omitempty"`
}

// Validate checks every per-specification invariant named in the data
// model: ordered bounds, curve/direction/alignment consistency, and
// distribution names. knownDist reports whether a distribution name is
// recognized; pass sampler.Distribution.Valid wrapped to a func(string)bool
// to avoid this package depending on sampler.
func (s *BatchSpecification) Validate(knownDist func(string) bool) error {
	if s.Name == "" {
		return fmt.Errorf("specification: name is required")
	}
	if !s.Direction.valid() {
		return fmt.Errorf("%s: unknown direction %q", s.Name, s.Direction)
	}
	if s.TextLengthMin > s.TextLengthMax {
		return fmt.Errorf("%s: text_length_min %d > text_length_max %d", s.Name, s.TextLengthMin, s.TextLengthMax)
	}
	if s.LineCountMin > s.LineCountMax {
		return fmt.Errorf("%s: line_count_min %d > line_count_max %d", s.Name, s.LineCountMin, s.LineCountMax)
	}
	if s.LineBreak != BreakWord && s.LineBreak != BreakCharacter {
		return fmt.Errorf("%s: unknown line_break mode %q", s.Name, s.LineBreak)
	}
	if !s.Alignment.ValidForDirection(s.Direction) {
		return fmt.Errorf("%s: alignment %q invalid for direction %q", s.Name, s.Alignment, s.Direction)
	}
	if err := s.Curve.Validate(); err != nil {
		return fmt.Errorf("%s: %w", s.Name, err)
	}
	if s.Color.Mode != ColorUniform && s.Color.Mode != ColorPerGlyph && s.Color.Mode != ColorGradient && s.Color.Mode != ColorRandom {
		return fmt.Errorf("%s: unknown color mode %q", s.Name, s.Color.Mode)
	}
	if s.Color.Palette != "" && (len(s.Color.Custom) > 0 || s.Color.RGBMin != [3]uint8{} || s.Color.RGBMax != [3]uint8{}) {
		return fmt.Errorf("%s: color config sets both a named palette and a custom RGB range; choose one dialect", s.Name)
	}
	ranges := map[string]Range{
		"line_spacing":          s.LineSpacing,
		"font_size":             s.FontSize,
		"ink_bleed_radius":      s.Effects.InkBleedRadius,
		"shadow_offset_x":       s.Effects.ShadowOffsetX,
		"shadow_offset_y":       s.Effects.ShadowOffsetY,
		"shadow_blur":           s.Effects.ShadowBlur,
		"relief_azimuth":        s.Effects.ReliefAzimuth,
		"relief_elevation":      s.Effects.ReliefElevation,
		"noise_density":         s.Effects.NoiseDensity,
		"blur_radius":           s.Effects.BlurRadius,
		"brightness":            s.Effects.Brightness,
		"contrast":              s.Effects.Contrast,
		"morphology_kernel":     s.Effects.MorphologyKernel,
		"cutout_size":           s.Effects.CutoutSize,
		"rotation_angle":        s.Augment.RotationAngle,
		"perspective_magnitude": s.Augment.PerspectiveMagnitude,
		"elastic_alpha":         s.Augment.ElasticAlpha,
		"elastic_sigma":         s.Augment.ElasticSigma,
		"grid_steps":            s.Augment.GridSteps,
		"grid_limit":            s.Augment.GridLimit,
		"optical_limit":         s.Augment.OpticalLimit,
	}
	for field, r := range ranges {
		if err := r.Validate(fmt.Sprintf("%s.%s", s.Name, field), knownDist); err != nil {
			return err
		}
	}
	return nil
}

// BatchConfig is the top-level configuration for a generation run.
type BatchConfig struct {
	TotalImages    int                   `yaml:"total_images" json:"total_images"`
	Seed           uint64                `yaml:"seed,omitempty" json:"seed,omitempty"`
	Specifications []*BatchSpecification `yaml:"specifications" json:"specifications"`
}

// proportionTolerance is the allowed deviation of summed proportions from
// 1.0 before the configuration is rejected.
const proportionTolerance = 1e-3

// Validate checks the top-level invariants (proportions summing to ~1.0,
// at least one specification) and then each specification in turn.
func (c *BatchConfig) Validate(knownDist func(string) bool) error {
	if c.TotalImages <= 0 {
		return fmt.Errorf("total_images must be positive, got %d", c.TotalImages)
	}
	if len(c.Specifications) == 0 {
		return fmt.Errorf("at least one specification is required")
	}
	sum := 0.0
	seen := make(map[string]bool, len(c.Specifications))
	for _, s := range c.Specifications {
		if seen[s.Name] {
			return fmt.Errorf("duplicate specification name %q", s.Name)
		}
		seen[s.Name] = true
		sum += s.Proportion
		if err := s.Validate(knownDist); err != nil {
			return err
		}
	}
	if diff := sum - 1.0; diff > proportionTolerance || diff < -proportionTolerance {
		return fmt.Errorf("proportions sum to %.6f, want 1.0 +/- %.0e", sum, proportionTolerance)
	}
	return nil
}

// Load reads and validates a YAML configuration file.
func Load(path string, knownDist func(string) bool) (*BatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return LoadFromBytes(data, knownDist)
}

// LoadFromBytes parses and validates YAML configuration from memory,
// auto-generating a seed when none is supplied.
func LoadFromBytes(data []byte, knownDist func(string) bool) (*BatchConfig, error) {
	var cfg BatchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing YAML: %w", err)
	}
	if cfg.Seed == 0 {
		cfg.Seed = generateSeed()
	}
	if err := cfg.Validate(knownDist); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return &cfg, nil
}

// generateSeed derives a seed from the current time for configs that omit
// one explicitly. It is only ever called at load time, never during
// generation, so it does not compromise the determinism guarantees that
// apply once a seed is fixed.
func generateSeed() uint64 {
	return uint64(time.Now().UnixNano())
}

// Hash returns a stable digest of the configuration's JSON encoding, used
// to detect config drift across resumed runs.
func (c *BatchConfig) Hash() []byte {
	data, _ := json.Marshal(c)
	sum := sha256.Sum256(data)
	return sum[:]
}

// HashUint64 returns the first eight bytes of Hash as a uint64, convenient
// for embedding in compact checkpoint records.
func (c *BatchConfig) HashUint64() uint64 {
	h := c.Hash()
	return binary.BigEndian.Uint64(h[:8])
}
