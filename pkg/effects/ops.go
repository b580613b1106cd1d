package effects

import (
	"image"
	"image/color"
	"math"

	"github.com/dshills/ocrsynth/pkg/config"
	"github.com/dshills/ocrsynth/pkg/sampler"
)

func applyRelief(img *image.RGBA, relief config.Relief, azimuthDeg, elevationDeg float64) {
	if relief == "" || relief == config.ReliefNone {
		return
	}
	b := img.Bounds()
	az := azimuthDeg * math.Pi / 180
	el := elevationDeg * math.Pi / 180
	light := [3]float64{math.Cos(el) * math.Cos(az), math.Cos(el) * math.Sin(az), math.Sin(el)}

	alphaAt := func(x, y int) float64 {
		if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
			return 0
		}
		return float64(img.RGBAAt(x, y).A)
	}

	out := image.NewRGBA(b)
	copy(out.Pix, img.Pix)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			dx := (alphaAt(x+1, y) - alphaAt(x-1, y)) / 255
			dy := (alphaAt(x, y+1) - alphaAt(x, y-1)) / 255
			normal := normalize3(-dx, -dy, 1)
			intensity := normal[0]*light[0] + normal[1]*light[1] + normal[2]*light[2]
			if intensity < 0 {
				intensity = 0
			}
			if intensity > 1 {
				intensity = 1
			}
			if relief == config.ReliefEngraved {
				intensity = 1 - intensity
			}
			scale := 0.4 + 0.6*intensity // keep some base brightness so relief never goes fully black
			out.SetRGBA(x, y, color.RGBA{
				R: scaleChannel(c.R, scale),
				G: scaleChannel(c.G, scale),
				B: scaleChannel(c.B, scale),
				A: c.A,
			})
		}
	}
	copy(img.Pix, out.Pix)
}

func scaleChannel(v uint8, scale float64) uint8 {
	f := float64(v) * scale
	if f > 255 {
		f = 255
	}
	if f < 0 {
		f = 0
	}
	return uint8(f)
}

func normalize3(x, y, z float64) [3]float64 {
	n := math.Sqrt(x*x + y*y + z*z)
	if n == 0 {
		return [3]float64{0, 0, 1}
	}
	return [3]float64{x / n, y / n, z / n}
}

// applyNoise sets floor(density*W*H) pixels to salt-and-pepper values,
// half black and half white, sampled without replacement via a
// reservoir-free Fisher-Yates-style index shuffle so it stays exact for
// small counts and deterministic under rng.
func applyNoise(img *image.RGBA, density float64, rng *sampler.NamedRNG) {
	if density <= 0 {
		return
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	total := w * h
	count := int(math.Floor(density * float64(total)))
	if count <= 0 {
		return
	}
	if count > total {
		count = total
	}
	indices := make([]int, total)
	for i := range indices {
		indices[i] = i
	}
	rng.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
	for i := 0; i < count; i++ {
		v := uint8(0)
		if i%2 == 0 {
			v = 255
		}
		px := indices[i] % w
		py := indices[i] / w
		img.SetRGBA(b.Min.X+px, b.Min.Y+py, color.RGBA{R: v, G: v, B: v, A: 255})
	}
}

func applyBlur(img *image.RGBA, radius float64) {
	if radius <= 0 {
		return
	}
	out := boxBlurRGBA(img, radius, 3)
	copy(img.Pix, out.Pix)
}

func applyBrightnessContrast(img *image.RGBA, brightness, contrast float64) {
	if brightness == 1 && contrast == 1 {
		return
	}
	if brightness == 0 {
		brightness = 1
	}
	if contrast == 0 {
		contrast = 1
	}
	b := img.Bounds()
	adjust := func(v uint8) uint8 {
		f := float64(v)
		f = (f-127.5)*contrast + 127.5
		f *= brightness
		if f < 0 {
			f = 0
		}
		if f > 255 {
			f = 255
		}
		return uint8(f)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			img.SetRGBA(x, y, color.RGBA{R: adjust(c.R), G: adjust(c.G), B: adjust(c.B), A: c.A})
		}
	}
}

func applyMorphology(img *image.RGBA, kernel int, dilate bool) {
	if kernel <= 1 {
		return
	}
	if kernel%2 == 0 {
		kernel++
	}
	half := kernel / 2
	b := img.Bounds()
	alphaAt := func(x, y int) uint8 {
		if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
			return 0
		}
		return img.RGBAAt(x, y).A
	}
	out := image.NewRGBA(b)
	copy(out.Pix, img.Pix)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var best uint8
			if dilate {
				for dy := -half; dy <= half; dy++ {
					for dx := -half; dx <= half; dx++ {
						if a := alphaAt(x+dx, y+dy); a > best {
							best = a
						}
					}
				}
			} else {
				best = 255
				for dy := -half; dy <= half; dy++ {
					for dx := -half; dx <= half; dx++ {
						if a := alphaAt(x+dx, y+dy); a < best {
							best = a
						}
					}
				}
			}
			c := img.RGBAAt(x, y)
			out.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: best})
		}
	}
	copy(img.Pix, out.Pix)
}

// applyCutout punches a transparent hole of the given size at a random
// position, so the canvas background shows through once the text surface
// is composited — the text-surface frame has no independent "canvas
// color" of its own.
func applyCutout(img *image.RGBA, size int, rng *sampler.NamedRNG) {
	if size <= 0 {
		return
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return
	}
	maxX := w - size
	maxY := h - size
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}
	ox := rng.IntRange(0, maxX)
	oy := rng.IntRange(0, maxY)
	for y := oy; y < oy+size && y < h; y++ {
		for x := ox; x < ox+size && x < w; x++ {
			img.SetRGBA(b.Min.X+x, b.Min.Y+y, color.RGBA{})
		}
	}
}

// boxBlurAlpha returns a blurred copy of img's alpha plane as a flat
// [w*h]uint8 slice, row-major, approximating a Gaussian via passes
// repeated box blurs (no x/image primitive covers blur; documented in
// DESIGN.md).
func boxBlurAlpha(img *image.RGBA, radius float64, passes int) []uint8 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			plane[y*w+x] = img.RGBAAt(b.Min.X+x, b.Min.Y+y).A
		}
	}
	return boxBlurPlane(plane, w, h, radius, passes)
}

func boxBlurPlane(plane []uint8, w, h int, radius float64, passes int) []uint8 {
	r := int(math.Round(radius))
	if r < 1 {
		r = 1
	}
	cur := make([]float64, len(plane))
	for i, v := range plane {
		cur[i] = float64(v)
	}
	for p := 0; p < passes; p++ {
		cur = boxBlurHorizontal(cur, w, h, r)
		cur = boxBlurVertical(cur, w, h, r)
	}
	out := make([]uint8, len(cur))
	for i, v := range cur {
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		out[i] = uint8(v)
	}
	return out
}

func boxBlurHorizontal(src []float64, w, h, r int) []float64 {
	out := make([]float64, len(src))
	for y := 0; y < h; y++ {
		row := y * w
		sum := 0.0
		count := 0
		for x := -r; x <= r; x++ {
			if x >= 0 && x < w {
				sum += src[row+x]
				count++
			}
		}
		for x := 0; x < w; x++ {
			out[row+x] = sum / float64(count)
			leave := x - r
			enter := x + r + 1
			if leave >= 0 {
				sum -= src[row+leave]
				count--
			}
			if enter < w {
				sum += src[row+enter]
				count++
			}
		}
	}
	return out
}

func boxBlurVertical(src []float64, w, h, r int) []float64 {
	out := make([]float64, len(src))
	for x := 0; x < w; x++ {
		sum := 0.0
		count := 0
		for y := -r; y <= r; y++ {
			if y >= 0 && y < h {
				sum += src[y*w+x]
				count++
			}
		}
		for y := 0; y < h; y++ {
			out[y*w+x] = sum / float64(count)
			leave := y - r
			enter := y + r + 1
			if leave >= 0 {
				sum -= src[leave*w+x]
				count--
			}
			if enter < h {
				sum += src[enter*w+x]
				count++
			}
		}
	}
	return out
}

func boxBlurRGBA(img *image.RGBA, radius float64, passes int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	planes := [4][]uint8{make([]uint8, w*h), make([]uint8, w*h), make([]uint8, w*h), make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			i := y*w + x
			planes[0][i], planes[1][i], planes[2][i], planes[3][i] = c.R, c.G, c.B, c.A
		}
	}
	for i := range planes {
		planes[i] = boxBlurPlane(planes[i], w, h, radius, passes)
	}
	out := image.NewRGBA(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			out.SetRGBA(b.Min.X+x, b.Min.Y+y, color.RGBA{R: planes[0][i], G: planes[1][i], B: planes[2][i], A: planes[3][i]})
		}
	}
	return out
}
