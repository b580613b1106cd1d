package plan

import "github.com/dshills/ocrsynth/pkg/config"

// Task is a scheduled unit of work: the specification it belongs to, its
// resolved text, a chosen font path, and its stable image index.
type Task struct {
	SpecName   string
	Text       string
	FontPath   string
	ImageIndex int
}

// CurveParams is the sampled curve geometry for one image. Every field is
// present and zero when Type is config.CurveNone, so the label schema
// stays uniform across configurations.
type CurveParams struct {
	Type      config.CurveType `json:"type"`
	Radius    float64          `json:"radius"`
	Concavity float64          `json:"concavity"`
	Amplitude float64          `json:"amplitude"`
	Frequency float64          `json:"frequency"`
	Phase     float64          `json:"phase"`
	Intensity float64          `json:"intensity"`
	Concave   bool             `json:"concave"`
}

// ColorParams is the sampled color configuration for one image.
type ColorParams struct {
	Mode       config.ColorMode `json:"mode"`
	Palette    string           `json:"palette,omitempty"`
	GlyphRGBs  [][3]uint8       `json:"glyph_rgbs,omitempty"`
	Background [3]uint8         `json:"background_rgb"`
	AutoBG     bool             `json:"auto_background"`
}

// EffectParams is the sampled value for every effect in the fixed-order
// chain (spec section 4.6). All fields are always present; an effect
// that is a no-op for this image carries its neutral value (0 radius, 1.0
// multiplier, etc).
type EffectParams struct {
	InkBleedRadius   float64      `json:"ink_bleed_radius"`
	ShadowOffsetX    float64      `json:"shadow_offset_x"`
	ShadowOffsetY    float64      `json:"shadow_offset_y"`
	ShadowBlur       float64      `json:"shadow_blur"`
	Relief           config.Relief `json:"relief"`
	ReliefAzimuth    float64      `json:"relief_azimuth"`
	ReliefElevation  float64      `json:"relief_elevation"`
	NoiseDensity     float64      `json:"noise_density"`
	BlurRadius       float64      `json:"blur_radius"`
	Brightness       float64      `json:"brightness"`
	Contrast         float64      `json:"contrast"`
	MorphologyKernel int          `json:"morphology_kernel"`
	MorphologyDilate bool         `json:"morphology_dilate"`
	CutoutSize       int          `json:"cutout_size"`
}

// AugmentParams is the sampled value for every augmentation in the fixed
// application order (spec section 4.7).
type AugmentParams struct {
	RotationAngle        float64 `json:"rotation_angle"`
	PerspectiveMagnitude float64 `json:"perspective_magnitude"`
	ElasticAlpha         float64 `json:"elastic_alpha"`
	ElasticSigma         float64 `json:"elastic_sigma"`
	GridSteps            int     `json:"grid_steps"`
	GridLimit            float64 `json:"grid_limit"`
	OpticalLimit         float64 `json:"optical_limit"`
}

// Plan is the fully concrete parameter vector for one image. It is pure
// data: the Planner produces it, the Executor consumes it, and the Label
// Serializer writes it out unchanged alongside the derived fields computed
// during execution.
type Plan struct {
	SpecName   string `json:"spec_name"`
	Text       string `json:"text"`
	FontPath   string `json:"font_path"`
	ImageIndex int    `json:"image_index"`
	Seed       uint64 `json:"seed"`

	Direction   config.Direction     `json:"direction"`
	FontSize    float64              `json:"font_size"`
	NumLines    int                  `json:"num_lines"`
	LineBreak   config.LineBreakMode `json:"line_break_mode"`
	LineSpacing float64              `json:"line_spacing"`
	Alignment   config.Alignment     `json:"alignment"`

	Curve  CurveParams  `json:"curve"`
	Color  ColorParams  `json:"color"`
	Effect EffectParams `json:"effect"`
	Augmentation AugmentParams `json:"augmentation"`

	OverlapIntensity float64 `json:"overlap_intensity"`

	MinPadding    float64               `json:"min_padding"`
	MaxMegapixels float64               `json:"max_megapixels"`
	Placement     config.PlacementStrategy `json:"placement_strategy"`

	BackgroundPath string `json:"background_path,omitempty"`
}
