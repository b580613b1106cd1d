package shaper

import (
	"math"

	"github.com/dshills/ocrsynth/pkg/config"
	"github.com/dshills/ocrsynth/pkg/plan"
)

// geometry bundles the straight-kernel dimensions and the curve formulas
// needed to place every glyph, computed once per line so ShapeLine and
// Measure share exactly one source of truth for sizing.
type geometry struct {
	axisLen   float64
	crossSize float64
	curve     plan.CurveParams
	radius    float64 // arc only
	amplitude float64 // sine only
}

const defaultCurveIntensity = 0.3

func computeGeometry(totalAdvance, crossBase float64, curve plan.CurveParams) geometry {
	axisLen := margin*2 + totalAdvance
	g := geometry{axisLen: axisLen, curve: curve}

	intensity := curve.Intensity
	if intensity <= 0 {
		intensity = defaultCurveIntensity
	}

	extraCross := 0.0
	switch curve.Type {
	case config.CurveArc:
		g.radius = math.Max(totalAdvance/(2*intensity), totalAdvance)
		theta := totalAdvance / g.radius
		extraCross = g.radius * (1 - math.Cos(theta))
	case config.CurveSine:
		g.amplitude = crossBase * intensity * 1.5
		extraCross = g.amplitude
	}

	crossSize := crossBase + 2*math.Ceil(extraCross) + margin*2
	if crossSize < crossBase {
		crossSize = crossBase
	}
	g.crossSize = crossSize
	return g
}

// curveAt returns the signed cross-axis offset from the midline and the
// rotation angle (radians) for a glyph centered at arc length s along the
// straight-kernel baseline.
func (g geometry) curveAt(s float64) (signedOffset, rotRad float64) {
	switch g.curve.Type {
	case config.CurveArc:
		theta := s / g.radius
		offset := g.radius * (1 - math.Cos(theta))
		if g.curve.Concave {
			offset = -offset
		}
		return offset, -theta
	case config.CurveSine:
		L := g.axisLen - margin*2
		if L <= 0 {
			return 0, 0
		}
		intensity := g.curve.Intensity
		if intensity <= 0 {
			intensity = defaultCurveIntensity
		}
		phase := g.curve.Phase
		if g.curve.Concave {
			phase = -phase
		}
		w := 2 * math.Pi * (1 + intensity) / L
		arg := w*s + phase
		y := g.amplitude * math.Sin(arg)
		dy := g.amplitude * w * math.Cos(arg)
		return y, math.Atan(dy)
	default:
		return 0, 0
	}
}
