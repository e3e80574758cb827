package metrics

import (
	"sync"
	"time"

	"fotosite/internal/pipeline"
	"fotosite/internal/planner"
)

// Observer implements pipeline.Observer using the Prometheus collectors
// declared in this package. Item start times are tracked per path so the
// encode-duration histogram reflects wall time per item.
type Observer struct {
	mu      sync.Mutex
	started map[string]time.Time
}

// NewObserver creates an observer that records pipeline metrics.
func NewObserver() *Observer {
	return &Observer{started: make(map[string]time.Time)}
}

// RunStarted implements pipeline.Observer.
func (o *Observer) RunStarted(total int) {
	PipelineIsRunning.Set(1)
}

// ItemStarted implements pipeline.Observer.
func (o *Observer) ItemStarted(worker int, itemPath string, planned int) {
	PipelineItemsInFlight.Inc()
	VariantsPlannedTotal.Add(float64(planned))

	o.mu.Lock()
	o.started[itemPath] = time.Now()
	o.mu.Unlock()
}

// VariantFinished implements pipeline.Observer.
func (o *Observer) VariantFinished(worker int, itemPath string, v planner.Variant, err error) {
	if err != nil {
		VariantsFailedTotal.WithLabelValues(v.Format).Inc()
		return
	}
	VariantsEncodedTotal.WithLabelValues(v.Format).Inc()
}

// ItemFinished implements pipeline.Observer.
func (o *Observer) ItemFinished(worker int, itemPath string, outcome pipeline.Outcome, encoded, planned int) {
	PipelineItemsInFlight.Dec()
	PipelineItemsTotal.WithLabelValues(string(outcome)).Inc()

	o.mu.Lock()
	startedAt, ok := o.started[itemPath]
	delete(o.started, itemPath)
	o.mu.Unlock()

	if ok && outcome != pipeline.OutcomeSkipped {
		ItemEncodeDuration.Observe(time.Since(startedAt).Seconds())
	}
}

// RunFinished implements pipeline.Observer.
func (o *Observer) RunFinished(r *pipeline.Result) {
	PipelineIsRunning.Set(0)

	switch {
	case r.Cancelled:
		PipelineRunsTotal.WithLabelValues("cancelled").Inc()
	case r.HardFailed():
		PipelineRunsTotal.WithLabelValues("failed").Inc()
	default:
		PipelineRunsTotal.WithLabelValues("completed").Inc()
	}
}
