package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"fotosite/internal/pipeline"
	"fotosite/internal/planner"
)

func TestScanMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"ScanRunsTotal", ScanRunsTotal},
		{"ScanLastRunTimestamp", ScanLastRunTimestamp},
		{"ScanLastRunDuration", ScanLastRunDuration},
		{"ScanItemsTotal", ScanItemsTotal},
		{"ScanItemsPruned", ScanItemsPruned},
		{"ScanErrors", ScanErrors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestPipelineMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"PipelineRunsTotal", PipelineRunsTotal},
		{"PipelineIsRunning", PipelineIsRunning},
		{"PipelineItemsTotal", PipelineItemsTotal},
		{"PipelineItemsInFlight", PipelineItemsInFlight},
		{"VariantsPlannedTotal", VariantsPlannedTotal},
		{"VariantsEncodedTotal", VariantsEncodedTotal},
		{"VariantsFailedTotal", VariantsFailedTotal},
		{"ItemEncodeDuration", ItemEncodeDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestRecordScan(t *testing.T) {
	runsBefore := testutil.ToFloat64(ScanRunsTotal)
	refreshedBefore := testutil.ToFloat64(ScanItemsTotal.WithLabelValues("refreshed"))

	RecordScan(1.5, 3, 10, 1, 2, 0)

	if got := testutil.ToFloat64(ScanRunsTotal); got != runsBefore+1 {
		t.Errorf("ScanRunsTotal = %v, want %v", got, runsBefore+1)
	}
	if got := testutil.ToFloat64(ScanItemsTotal.WithLabelValues("refreshed")); got != refreshedBefore+3 {
		t.Errorf("refreshed counter = %v, want %v", got, refreshedBefore+3)
	}
	if got := testutil.ToFloat64(ScanLastRunDuration); got != 1.5 {
		t.Errorf("ScanLastRunDuration = %v, want 1.5", got)
	}
}

func TestObserverTracksRun(t *testing.T) {
	o := NewObserver()
	v := planner.Variant{Width: 640, Format: "webp", Quality: 85}

	encodedBefore := testutil.ToFloat64(VariantsEncodedTotal.WithLabelValues("webp"))
	failedBefore := testutil.ToFloat64(VariantsFailedTotal.WithLabelValues("webp"))

	o.RunStarted(1)
	if got := testutil.ToFloat64(PipelineIsRunning); got != 1 {
		t.Errorf("PipelineIsRunning = %v during run, want 1", got)
	}

	o.ItemStarted(0, "a.png", 2)
	if got := testutil.ToFloat64(PipelineItemsInFlight); got != 1 {
		t.Errorf("PipelineItemsInFlight = %v, want 1", got)
	}

	o.VariantFinished(0, "a.png", v, nil)
	o.VariantFinished(0, "a.png", v, errors.New("encode failed"))

	o.ItemFinished(0, "a.png", pipeline.OutcomeDone, 2, 2)
	o.RunFinished(&pipeline.Result{Total: 1, Done: 1})

	if got := testutil.ToFloat64(PipelineIsRunning); got != 0 {
		t.Errorf("PipelineIsRunning = %v after run, want 0", got)
	}
	if got := testutil.ToFloat64(PipelineItemsInFlight); got != 0 {
		t.Errorf("PipelineItemsInFlight = %v after item, want 0", got)
	}
	if got := testutil.ToFloat64(VariantsEncodedTotal.WithLabelValues("webp")); got != encodedBefore+1 {
		t.Errorf("encoded counter = %v, want %v", got, encodedBefore+1)
	}
	if got := testutil.ToFloat64(VariantsFailedTotal.WithLabelValues("webp")); got != failedBefore+1 {
		t.Errorf("failed counter = %v, want %v", got, failedBefore+1)
	}
	if len(o.started) != 0 {
		t.Errorf("observer leaked %d start records", len(o.started))
	}
}

type staticStats struct{ s Stats }

func (p staticStats) GetStats() Stats { return p.s }

func TestCollectorUpdatesGauges(t *testing.T) {
	c := NewCollector(staticStats{Stats{TotalNodes: 4, TotalImages: 12, TotalMarkdown: 2, VariantsRecorded: 36}}, time.Hour)
	c.collect()

	if got := testutil.ToFloat64(LibraryNodesTotal); got != 4 {
		t.Errorf("LibraryNodesTotal = %v, want 4", got)
	}
	if got := testutil.ToFloat64(LibraryEntriesTotal.WithLabelValues("image")); got != 12 {
		t.Errorf("image entries gauge = %v, want 12", got)
	}
	if got := testutil.ToFloat64(LibraryVariantsRecorded); got != 36 {
		t.Errorf("LibraryVariantsRecorded = %v, want 36", got)
	}
}

func TestCollectorNilProvider(t *testing.T) {
	c := NewCollector(nil, time.Hour)
	c.collect() // must not panic
}
