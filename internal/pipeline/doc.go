// Package pipeline orchestrates variant generation: it walks the
// manifest into a work queue, runs a bounded worker pool over it, folds
// per-item outcomes back into the manifest and persists it as items
// complete so an interrupted run can resume where it stopped.
package pipeline
