// Package plan defines Task, the unit of scheduled work, and Plan, the
// fully concrete parameter vector sampled for one image. Plan is the sole
// input to the Executor and the sole ground truth serialized into each
// image's label.
package plan
