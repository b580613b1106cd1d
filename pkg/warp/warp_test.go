package warp

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestRotationIdentityAtZeroAngle(t *testing.T) {
	m := Rotation(0, 5, 5)
	x, y := m.Apply(3, 4)
	if math.Abs(x-3) > 1e-9 || math.Abs(y-4) > 1e-9 {
		t.Fatalf("zero-angle rotation moved point: got (%v,%v)", x, y)
	}
}

func TestRotationRoundTripsThroughInverse(t *testing.T) {
	m := Rotation(math.Pi/3, 10, -4)
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("rotation should always be invertible")
	}
	x, y := m.Apply(7, 2)
	sx, sy := inv.Apply(x, y)
	if math.Abs(sx-7) > 1e-9 || math.Abs(sy-2) > 1e-9 {
		t.Fatalf("round trip = (%v,%v), want (7,2)", sx, sy)
	}
}

func TestFitHomographyIdentityCorners(t *testing.T) {
	sq := [4]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	h := FitHomography(sq, sq)
	for _, p := range sq {
		x, y := h.Apply(p.X, p.Y)
		if math.Abs(x-p.X) > 1e-6 || math.Abs(y-p.Y) > 1e-6 {
			t.Fatalf("identity homography moved corner %v to (%v,%v)", p, x, y)
		}
	}
}

func TestFieldSampleZeroWhenFlat(t *testing.T) {
	f := Field{
		DX:     [][]float64{{0, 0}, {0, 0}},
		DY:     [][]float64{{0, 0}, {0, 0}},
		Width:  10,
		Height: 10,
	}
	dx, dy := f.Sample(5, 5)
	if dx != 0 || dy != 0 {
		t.Fatalf("Sample on flat field = (%v,%v), want (0,0)", dx, dy)
	}
}

func TestWarpRGBAIdentityPreservesPixel(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.SetRGBA(2, 2, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	out := WarpRGBA(src, 4, 4, Identity().Mapper())
	got := out.RGBAAt(2, 2)
	if got.R < 150 {
		t.Fatalf("identity warp lost pixel color: got %+v", got)
	}
}

func TestWarpAlphaOutOfBoundsIsZero(t *testing.T) {
	src := image.NewAlpha(image.Rect(0, 0, 2, 2))
	src.SetAlpha(0, 0, color.Alpha{A: 255})
	out := WarpAlpha(src, 2, 2, func(x, y float64) (float64, float64) { return x + 100, y + 100 })
	if out.AlphaAt(0, 0).A != 0 {
		t.Fatalf("out-of-bounds sample should be 0, got %d", out.AlphaAt(0, 0).A)
	}
}
