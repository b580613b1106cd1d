// Package effects applies the fixed-order visual effect chain — ink
// bleed, drop shadow, 3D relief, color fill, noise, blur, brightness and
// contrast, morphology, and cutout — to a rendered text surface before
// the Augmenter runs. Every effect reads its parameters from a
// plan.EffectParams and never mutates the CharacterBoxes the Shaper
// produced: it operates purely in the text-surface pixel frame.
//
// Dispatched as a small ordered switch, grounded on the re-architecture
// note that favors "an ordered sequence of tagged variants with a small
// dispatch routine" over one procedural block per effect.
package effects
