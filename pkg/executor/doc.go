// Package executor implements generate_from_plan: it seeds every named
// RNG from a Plan's seed and runs Layout -> Shape -> Effect Chain ->
// Augmenter -> Canvas Placer in that fixed order, consuming only the
// parameters the Plan already carries. Re-invoking GenerateFromPlan on
// the same Plan in the same process produces a byte-identical image,
// since every stage derives its randomness from plan.Seed rather than
// wall-clock time or goroutine scheduling order.
package executor
