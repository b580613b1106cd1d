// Package augment applies the Augmenter's fixed-order geometric
// transforms — rotation, perspective, elastic, grid, optical — jointly to
// a text surface and its CharacterBoxes.
//
// Rotation and perspective transform each bbox analytically (corner
// transform plus axis-aligned hull, via pkg/warp). Elastic, grid, and
// optical distortion remap pixels through a smoothly-varying
// displacement field and recompute each box from the distorted alpha
// channel directly, the "robust recalculation" contract from the
// redesign notes: rather than trusting an analytic transform of the old
// corners, re-derive the ink box from the pixels that actually survived
// the remap.
package augment
