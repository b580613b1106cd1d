package warp

import (
	"image"
	"image/color"
	"math"
)

// Mapper maps one destination pixel center to the source coordinate it
// should be sampled from. Every transform in this package — rotation,
// perspective, displacement field — is expressed as a Mapper so the
// warping loop and the bilinear sampler are written exactly once.
type Mapper func(x, y float64) (sx, sy float64)

// Point is a 2D coordinate, used for corner transforms that feed the
// axis-aligned hull recomputation in pkg/label.
type Point struct{ X, Y float64 }

// Affine is a 2D affine transform (x', y') = (a*x + b*y + c, d*x + e*y + f).
type Affine struct{ A, B, C, D, E, F float64 }

// Identity returns the affine identity transform.
func Identity() Affine { return Affine{A: 1, E: 1} }

// Rotation returns the affine transform that rotates by angleRad radians
// around (cx, cy).
func Rotation(angleRad, cx, cy float64) Affine {
	cos, sin := math.Cos(angleRad), math.Sin(angleRad)
	return Affine{
		A: cos, B: -sin, C: cx - cx*cos + cy*sin,
		D: sin, E: cos, F: cy - cx*sin - cy*cos,
	}
}

// Apply maps (x, y) forward through the transform.
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.B*y + m.C, m.D*x + m.E*y + m.F
}

// ApplyPoint is a Point-typed convenience wrapper around Apply, used when
// transforming a CharacterBox's four corners.
func (m Affine) ApplyPoint(p Point) Point {
	x, y := m.Apply(p.X, p.Y)
	return Point{X: x, Y: y}
}

// Invert returns the inverse of m and whether it exists (false iff m is
// singular, e.g. a degenerate zero-scale transform).
func (m Affine) Invert() (Affine, bool) {
	det := m.A*m.E - m.B*m.D
	if det == 0 {
		return Affine{}, false
	}
	inv := 1 / det
	a := m.E * inv
	b := -m.B * inv
	d := -m.D * inv
	e := m.A * inv
	c := -(a*m.C + b*m.F)
	f := -(d*m.C + e*m.F)
	return Affine{A: a, B: b, C: c, D: d, E: e, F: f}, true
}

// Mapper returns inv as a destination-to-source Mapper: inv must already
// be the inverse of the forward transform applied to pixel data.
func (m Affine) Mapper() Mapper {
	return func(x, y float64) (float64, float64) { return m.Apply(x, y) }
}

// Homography is a 3x3 projective transform used for the Augmenter's
// perspective warp.
type Homography [9]float64

// FitHomography solves for the homography mapping each src[i] to dst[i]
// for four correspondences, via direct linear solution of the 8x8 system
// (the ninth matrix entry is fixed to 1).
func FitHomography(src, dst [4]Point) Homography {
	// Build the 8x8 linear system A*h = b for h = [h11..h32], h33 = 1.
	var a [8][8]float64
	var b [8]float64
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		a[2*i] = [8]float64{x, y, 1, 0, 0, 0, -u * x, -u * y}
		b[2*i] = u
		a[2*i+1] = [8]float64{0, 0, 0, x, y, 1, -v * x, -v * y}
		b[2*i+1] = v
	}
	h := solve8(a, b)
	return Homography{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}
}

// Apply maps (x, y) forward through the homography.
func (h Homography) Apply(x, y float64) (float64, float64) {
	w := h[6]*x + h[7]*y + h[8]
	if w == 0 {
		return x, y
	}
	return (h[0]*x + h[1]*y + h[2]) / w, (h[3]*x + h[4]*y + h[5]) / w
}

// Invert returns the inverse homography via adjugate/determinant.
func (h Homography) Invert() Homography {
	m := [9]float64(h)
	adj := [9]float64{
		m[4]*m[8] - m[5]*m[7], m[2]*m[7] - m[1]*m[8], m[1]*m[5] - m[2]*m[4],
		m[5]*m[6] - m[3]*m[8], m[0]*m[8] - m[2]*m[6], m[2]*m[3] - m[0]*m[5],
		m[3]*m[7] - m[4]*m[6], m[1]*m[6] - m[0]*m[7], m[0]*m[4] - m[1]*m[3],
	}
	det := m[0]*adj[0] + m[1]*adj[3] + m[2]*adj[6]
	if det == 0 {
		return h
	}
	var out Homography
	for i := range adj {
		out[i] = adj[i] / det
	}
	return out
}

// Mapper returns inverse (already the source-from-destination homography)
// as a Mapper.
func (h Homography) Mapper() Mapper {
	return func(x, y float64) (float64, float64) { return h.Apply(x, y) }
}

// Field is a coarse, irregular displacement grid (elastic/grid
// distortion) that Sample interpolates bilinearly at an arbitrary pixel.
type Field struct {
	DX, DY         [][]float64 // [row][col], row = y, col = x
	Width, Height  int         // pixel dimensions the field spans
}

// Sample returns the bilinearly-interpolated (dx, dy) displacement at
// pixel (x, y).
func (f Field) Sample(x, y float64) (dx, dy float64) {
	rows := len(f.DY)
	if rows == 0 {
		return 0, 0
	}
	cols := len(f.DY[0])
	if cols == 0 {
		return 0, 0
	}
	gx := x / float64(f.Width) * float64(cols-1)
	gy := y / float64(f.Height) * float64(rows-1)
	gx = clampF(gx, 0, float64(cols-1))
	gy = clampF(gy, 0, float64(rows-1))
	x0 := int(math.Floor(gx))
	y0 := int(math.Floor(gy))
	x1, y1 := x0+1, y0+1
	if x1 > cols-1 {
		x1 = cols - 1
	}
	if y1 > rows-1 {
		y1 = rows - 1
	}
	tx, ty := gx-float64(x0), gy-float64(y0)
	dx = bilerp(f.DX[y0][x0], f.DX[y0][x1], f.DX[y1][x0], f.DX[y1][x1], tx, ty)
	dy = bilerp(f.DY[y0][x0], f.DY[y0][x1], f.DY[y1][x0], f.DY[y1][x1], tx, ty)
	return dx, dy
}

// Mapper returns the destination-to-source Mapper implied by displacing
// every destination pixel backward by the field's forward displacement —
// the standard inverse-warp convention that avoids holes in the output.
func (f Field) Mapper() Mapper {
	return func(x, y float64) (float64, float64) {
		dx, dy := f.Sample(x, y)
		return x - dx, y - dy
	}
}

func bilerp(v00, v10, v01, v11, tx, ty float64) float64 {
	top := v00 + (v10-v00)*tx
	bot := v01 + (v11-v01)*tx
	return top + (bot-top)*ty
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WarpRGBA produces a dstW x dstH RGBA image by sampling src through inv
// (a destination-to-source Mapper), bilinearly, with transparent black
// for out-of-bounds source coordinates.
func WarpRGBA(src *image.RGBA, dstW, dstH int, inv Mapper) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			sx, sy := inv(float64(x)+0.5, float64(y)+0.5)
			dst.SetRGBA(x, y, bilinearRGBA(src, sx, sy))
		}
	}
	return dst
}

// WarpAlpha produces a dstW x dstH alpha mask by sampling src through inv,
// bilinearly, with 0 for out-of-bounds source coordinates.
func WarpAlpha(src *image.Alpha, dstW, dstH int, inv Mapper) *image.Alpha {
	dst := image.NewAlpha(image.Rect(0, 0, dstW, dstH))
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			sx, sy := inv(float64(x)+0.5, float64(y)+0.5)
			dst.SetAlpha(x, y, color.Alpha{A: bilinearAlpha(src, sx, sy)})
		}
	}
	return dst
}

func bilinearRGBA(src *image.RGBA, x, y float64) color.RGBA {
	b := src.Bounds()
	x -= 0.5
	y -= 0.5
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	tx, ty := x-float64(x0), y-float64(y0)

	get := func(px, py int) color.RGBA {
		if px < b.Min.X || px >= b.Max.X || py < b.Min.Y || py >= b.Max.Y {
			return color.RGBA{}
		}
		return src.RGBAAt(px, py)
	}
	c00, c10 := get(x0, y0), get(x0+1, y0)
	c01, c11 := get(x0, y0+1), get(x0+1, y0+1)

	lerp := func(a, bv uint8, t float64) float64 { return float64(a) + (float64(bv)-float64(a))*t }
	mix := func(v00, v10, v01, v11 uint8) uint8 {
		top := lerp(v00, v10, tx)
		bot := lerp(v01, v11, tx)
		return uint8(clampF(top+(bot-top)*ty, 0, 255))
	}
	return color.RGBA{
		R: mix(c00.R, c10.R, c01.R, c11.R),
		G: mix(c00.G, c10.G, c01.G, c11.G),
		B: mix(c00.B, c10.B, c01.B, c11.B),
		A: mix(c00.A, c10.A, c01.A, c11.A),
	}
}

func bilinearAlpha(src *image.Alpha, x, y float64) uint8 {
	b := src.Bounds()
	x -= 0.5
	y -= 0.5
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	tx, ty := x-float64(x0), y-float64(y0)

	get := func(px, py int) float64 {
		if px < b.Min.X || px >= b.Max.X || py < b.Min.Y || py >= b.Max.Y {
			return 0
		}
		return float64(src.AlphaAt(px, py).A)
	}
	v := bilerp(get(x0, y0), get(x0+1, y0), get(x0, y0+1), get(x0+1, y0+1), tx, ty)
	return uint8(clampF(v, 0, 255))
}

// solve8 solves the 8x8 linear system a*x = b via Gaussian elimination
// with partial pivoting. Used only by FitHomography, whose 4-point
// correspondence system is always well-posed for the Augmenter's
// corner-offset construction.
func solve8(a [8][8]float64, b [8]float64) [8]float64 {
	const n = 8
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]
		if a[col][col] == 0 {
			continue
		}
		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}
	var x [8]float64
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for c := row + 1; c < n; c++ {
			sum -= a[row][c] * x[c]
		}
		if a[row][row] != 0 {
			x[row] = sum / a[row][row]
		}
	}
	return x
}
