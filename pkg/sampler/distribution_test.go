package sampler

import (
	"math"
	"testing"
)

func TestSampleDegenerateRange(t *testing.T) {
	r := NewNamedRNG(7, "t")
	for _, d := range All {
		if v := Sample(r, 3, 3, d); v != 3 {
			t.Fatalf("%s: Sample(3,3) = %v, want 3", d, v)
		}
	}
}

func TestSampleWithinBounds(t *testing.T) {
	r := NewNamedRNG(7, "bounds")
	for _, d := range All {
		for i := 0; i < 2000; i++ {
			v := Sample(r, 10, 20, d)
			if v < 10 || v > 20 {
				t.Fatalf("%s: sample %v outside [10,20]", d, v)
			}
		}
	}
}

// TestUniformChiSquare checks the uniformity property from spec section 8:
// under the uniform distribution with N >= 10000 samples, a chi-square test
// against uniform does not reject at p = 0.01.
func TestUniformChiSquare(t *testing.T) {
	r := NewNamedRNG(123, "uniform-chi2")
	const n = 10000
	const buckets = 20
	counts := make([]int, buckets)
	for i := 0; i < n; i++ {
		v := Sample(r, 0, 1, Uniform)
		b := int(v * buckets)
		if b == buckets {
			b = buckets - 1
		}
		counts[b]++
	}
	expected := float64(n) / buckets
	chi2 := 0.0
	for _, c := range counts {
		diff := float64(c) - expected
		chi2 += diff * diff / expected
	}
	// Critical value for 19 degrees of freedom at p=0.01 is ~36.19.
	const critical = 36.19
	if chi2 > critical {
		t.Fatalf("chi-square statistic %.2f exceeds critical value %.2f", chi2, critical)
	}
}

// TestNormalSigmaFraction checks the normality property from spec section 8:
// the fraction of samples within +-sigma of the mean is 0.68 +- 0.02.
func TestNormalSigmaFraction(t *testing.T) {
	r := NewNamedRNG(123, "normal-sigma")
	const n = 20000
	const min, max = 0.0, 60.0
	mean := (min + max) / 2
	sigma := (max - min) / 6
	within := 0
	for i := 0; i < n; i++ {
		v := Sample(r, min, max, Normal)
		if math.Abs(v-mean) <= sigma {
			within++
		}
	}
	frac := float64(within) / n
	if frac < 0.66 || frac > 0.70 {
		t.Fatalf("fraction within 1 sigma = %.3f, want 0.68 +- 0.02", frac)
	}
}

// TestExponentialMode checks the exponential-mode property from spec
// section 8: at least 55% of samples lie in [0, 0.1*L].
func TestExponentialMode(t *testing.T) {
	r := NewNamedRNG(123, "exp-mode")
	const n = 20000
	const L = 100.0
	low := 0
	for i := 0; i < n; i++ {
		v := Sample(r, 0, L, Exponential)
		if v <= 0.1*L {
			low++
		}
	}
	frac := float64(low) / n
	if frac < 0.55 {
		t.Fatalf("fraction in first decile = %.3f, want >= 0.55", frac)
	}
}

func TestSampleIntRounding(t *testing.T) {
	r := NewNamedRNG(9, "int")
	for i := 0; i < 1000; i++ {
		v := SampleInt(r, 1, 5, Uniform)
		if v < 1 || v > 5 {
			t.Fatalf("SampleInt out of range: %d", v)
		}
	}
}

func TestSampleUnknownDistributionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown distribution")
		}
	}()
	r := NewNamedRNG(1, "x")
	Sample(r, 0, 1, Distribution("bogus"))
}

func TestDistributionValid(t *testing.T) {
	if !Uniform.Valid() {
		t.Fatal("uniform should be valid")
	}
	if Distribution("bogus").Valid() {
		t.Fatal("bogus should not be valid")
	}
}
