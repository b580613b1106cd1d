// Package config defines the on-disk, YAML-backed configuration model for
// a synthesis run: BatchConfig and its ordered list of BatchSpecification
// profiles.
//
// Config is constructed once via Load (or LoadFromBytes) and is read-only
// for the remainder of the run; every other package treats *BatchConfig
// and *BatchSpecification as immutable values once handed out.
package config
