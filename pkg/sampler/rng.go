package sampler

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
)

// NamedRNG is a deterministic, independently-seeded random source for one
// named consumer within a single image's generation. Two NamedRNGs derived
// from the same image seed but different names never produce correlated
// sequences.
//
// NamedRNG is not safe for concurrent use; each worker must own its own
// instance for the lifetime of one task.
type NamedRNG struct {
	seed   uint64
	name   string
	source *rand.Rand
}

// NewNamedRNG derives a named RNG from an image seed. The derivation hashes
// the image seed and the name with SHA-256 and takes the first eight bytes
// of the digest as the underlying generator's seed.
func NewNamedRNG(imageSeed uint64, name string) *NamedRNG {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], imageSeed)
	h.Write(buf[:])
	h.Write([]byte(name))
	digest := h.Sum(nil)
	derived := binary.BigEndian.Uint64(digest[:8])
	return &NamedRNG{
		seed:   derived,
		name:   name,
		source: rand.New(rand.NewSource(int64(derived))),
	}
}

// Seed returns the derived seed backing this generator.
func (r *NamedRNG) Seed() uint64 { return r.seed }

// Name returns the consumer name this generator was derived for.
func (r *NamedRNG) Name() string { return r.name }

// Float64 returns a pseudo-random float64 in [0.0, 1.0).
func (r *NamedRNG) Float64() float64 { return r.source.Float64() }

// Uint64 returns a pseudo-random 64-bit unsigned integer.
func (r *NamedRNG) Uint64() uint64 { return r.source.Uint64() }

// NormFloat64 returns a pseudo-random sample from the standard normal
// distribution.
func (r *NamedRNG) NormFloat64() float64 { return r.source.NormFloat64() }

// ExpFloat64 returns a pseudo-random sample from the standard exponential
// distribution with rate 1.
func (r *NamedRNG) ExpFloat64() float64 { return r.source.ExpFloat64() }

// Intn returns a pseudo-random integer in [0, n). It panics if n <= 0.
func (r *NamedRNG) Intn(n int) int {
	if n <= 0 {
		panic("sampler: Intn argument must be positive")
	}
	return r.source.Intn(n)
}

// IntRange returns a pseudo-random integer in [min, max]. It panics if
// min > max.
func (r *NamedRNG) IntRange(min, max int) int {
	if min > max {
		panic("sampler: IntRange min must be <= max")
	}
	if min == max {
		return min
	}
	return min + r.source.Intn(max-min+1)
}

// Shuffle pseudo-randomizes the order of n elements via swap.
func (r *NamedRNG) Shuffle(n int, swap func(i, j int)) {
	r.source.Shuffle(n, swap)
}

// Bool returns a pseudo-random boolean.
func (r *NamedRNG) Bool() bool { return r.source.Intn(2) == 1 }

// WeightedChoice selects an index from weights using weighted random
// selection. Weights must be non-negative. Returns -1 if all weights are
// zero or weights is empty.
func (r *NamedRNG) WeightedChoice(weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	total := 0.0
	for _, w := range weights {
		if w < 0 {
			panic("sampler: WeightedChoice weights must be non-negative")
		}
		total += w
	}
	if total == 0 {
		return -1
	}
	target := r.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if target < cumulative {
			return i
		}
	}
	return len(weights) - 1
}
