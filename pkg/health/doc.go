// Package health tracks per-resource (font, background, corpus file)
// success and failure history and steers selection away from resources
// that are failing.
//
// # Overview
//
// Each resource starts at a perfect score of 100 the first time it is
// used. A success nudges the score up by one; a failure drops it by ten
// and opens an exponential-decay cooldown window, doubling in length with
// each consecutive failure up to a configured cap. Select restricts
// candidates to those currently eligible (score at or above threshold, cooldown
// elapsed) and then draws among them weighted by score and any caller-
// supplied pattern weight.
//
// # Concurrency
//
// Tracker is safe for concurrent use: all state is guarded by a single
// mutex, matching the "mutex-guarded table" option described for shared
// resource state. Selection takes a consistent snapshot of the table
// before drawing, so callers never see a resource mutate mid-selection.
package health
