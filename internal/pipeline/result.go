package pipeline

import "time"

// Outcome is an item's final processing state.
type Outcome string

const (
	// OutcomeDone means every planned variant succeeded.
	OutcomeDone Outcome = "done"
	// OutcomeSkipped means the planner found nothing to do (cache hit).
	OutcomeSkipped Outcome = "skipped"
	// OutcomePartial means some variants succeeded and some failed; the
	// successful ones are recorded, the errors collected.
	OutcomePartial Outcome = "partial"
	// OutcomeFailed means no variant succeeded, e.g. an unreadable source.
	OutcomeFailed Outcome = "failed"
)

// ItemResult is the outcome of one image.
type ItemResult struct {
	Path    string
	Outcome Outcome
	Planned int
	Encoded int
	Errors  []error
}

// Result aggregates one pipeline run. Already-completed items are never
// rolled back, so a Result with failures still represents durable work.
type Result struct {
	Total    int
	Done     int
	Skipped  int
	Partial  int
	Failed   int
	Encoded  int
	Duration time.Duration
	Items    []ItemResult
	// Cancelled is true when the run stopped early on context
	// cancellation; unprocessed items are simply absent from Items.
	Cancelled bool
}

// Errors returns every collected per-variant and per-item error.
func (r *Result) Errors() []error {
	var errs []error
	for _, item := range r.Items {
		errs = append(errs, item.Errors...)
	}
	return errs
}

// HardFailed reports whether at least one item failed outright. This is
// what drives a non-zero exit status; partial failures are reported but
// not fatal by default.
func (r *Result) HardFailed() bool {
	return r.Failed > 0
}

// HasErrors reports whether any item failed fully or partially.
func (r *Result) HasErrors() bool {
	return r.Failed > 0 || r.Partial > 0
}

func (r *Result) record(item ItemResult) {
	r.Items = append(r.Items, item)
	r.Encoded += item.Encoded
	switch item.Outcome {
	case OutcomeDone:
		r.Done++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomePartial:
		r.Partial++
	case OutcomeFailed:
		r.Failed++
	}
}
