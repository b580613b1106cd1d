// Package sampler provides deterministic random number generation and the
// named statistical distributions used to draw scalar and integer
// parameters for image synthesis.
//
// # Overview
//
// A NamedRNG is derived from a per-image seed and a name identifying which
// part of the pipeline is consuming it, so that two components never share
// a random stream even though both descend from the same plan seed:
//
//	seed_named = H(imageSeed, name)
//
// This lets the Planner, Shaper, Effect Chain and Augmenter all draw from
// independent, reproducible sequences without any of them observing wall
// clock time or a shared global generator.
//
// # Distributions
//
// Sample and SampleBatch draw from six named distributions (uniform,
// normal, truncated_normal, exponential, lognormal, beta), each bounded to
// a [min, max] interval. See Distribution for the exact semantics of each.
package sampler
