// Package scheduler builds the task list from a batch configuration's
// per-specification proportions, interleaves it round-robin across
// specifications, and drives the streaming, chunked, parallel worker pool
// that turns each Task into a saved image and label. It owns the font and
// background health trackers, retries classified per-task failures with a
// fresh resource, and checkpoints progress so a cancelled or crashed run
// can resume without regenerating completed images.
package scheduler
