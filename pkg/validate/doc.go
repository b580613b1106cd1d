// Package validate runs once before the Scheduler starts: it checks
// every filesystem-dependent precondition config.BatchConfig.Validate
// cannot (glob resolution, corpus file existence) and folds the result
// together with the config's own structural checks into one batched
// Report, mirroring the Passed/Errors/Warnings shape the teacher's
// generation pipeline reports after a run.
package validate
