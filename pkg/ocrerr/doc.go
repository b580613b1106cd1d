// Package ocrerr defines the typed error taxonomy used across the
// synthesis pipeline: configuration and resource errors that are fatal
// before generation starts, and per-task errors that the Scheduler
// classifies to decide between a resource-health penalty, a retry, or a
// skip.
package ocrerr
