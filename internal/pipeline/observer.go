package pipeline

import "fotosite/internal/planner"

// Observer receives progress events from a run. All methods may be called
// concurrently from worker goroutines; implementations synchronize
// internally. The pipeline works with no observer attached.
type Observer interface {
	// RunStarted reports the total number of items queued.
	RunStarted(total int)
	// ItemStarted reports a worker claiming an item and how many variants
	// it plans to encode.
	ItemStarted(worker int, itemPath string, planned int)
	// VariantFinished reports one variant attempt; err is nil on success.
	VariantFinished(worker int, itemPath string, v planner.Variant, err error)
	// ItemFinished reports an item's final outcome.
	ItemFinished(worker int, itemPath string, outcome Outcome, encoded, planned int)
	// RunFinished reports the aggregated result.
	RunFinished(r *Result)
}

// NopObserver discards all events.
type NopObserver struct{}

// RunStarted implements Observer.
func (NopObserver) RunStarted(int) {}

// ItemStarted implements Observer.
func (NopObserver) ItemStarted(int, string, int) {}

// VariantFinished implements Observer.
func (NopObserver) VariantFinished(int, string, planner.Variant, error) {}

// ItemFinished implements Observer.
func (NopObserver) ItemFinished(int, string, Outcome, int, int) {}

// RunFinished implements Observer.
func (NopObserver) RunFinished(*Result) {}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

// RunStarted implements Observer.
func (m MultiObserver) RunStarted(total int) {
	for _, o := range m {
		o.RunStarted(total)
	}
}

// ItemStarted implements Observer.
func (m MultiObserver) ItemStarted(worker int, itemPath string, planned int) {
	for _, o := range m {
		o.ItemStarted(worker, itemPath, planned)
	}
}

// VariantFinished implements Observer.
func (m MultiObserver) VariantFinished(worker int, itemPath string, v planner.Variant, err error) {
	for _, o := range m {
		o.VariantFinished(worker, itemPath, v, err)
	}
}

// ItemFinished implements Observer.
func (m MultiObserver) ItemFinished(worker int, itemPath string, outcome Outcome, encoded, planned int) {
	for _, o := range m {
		o.ItemFinished(worker, itemPath, outcome, encoded, planned)
	}
}

// RunFinished implements Observer.
func (m MultiObserver) RunFinished(r *Result) {
	for _, o := range m {
		o.RunFinished(r)
	}
}
