package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan metrics
var (
	ScanRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fotosite_scan_runs_total",
			Help: "Total number of completed source tree scans",
		},
	)

	ScanLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fotosite_scan_last_run_timestamp",
			Help: "Unix timestamp of the last completed scan",
		},
	)

	ScanLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fotosite_scan_last_run_duration_seconds",
			Help: "Duration of the last scan in seconds",
		},
	)

	ScanItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fotosite_scan_items_total",
			Help: "Total number of content entries seen by scans",
		},
		[]string{"state"}, // "refreshed", "unchanged", "excluded"
	)

	ScanItemsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fotosite_scan_items_pruned_total",
			Help: "Total number of manifest entries pruned after their source file disappeared",
		},
	)

	ScanErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fotosite_scan_errors_total",
			Help: "Total number of per-file scan errors",
		},
	)
)

// Pipeline metrics
var (
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fotosite_pipeline_runs_total",
			Help: "Total number of encode runs",
		},
		[]string{"result"}, // "completed", "cancelled", "failed"
	)

	PipelineIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fotosite_pipeline_running",
			Help: "Whether an encode run is currently active (1 = running, 0 = idle)",
		},
	)

	PipelineItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fotosite_pipeline_items_total",
			Help: "Total number of processed items by outcome",
		},
		[]string{"outcome"}, // "done", "skipped", "partial", "failed"
	)

	PipelineItemsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fotosite_pipeline_items_in_flight",
			Help: "Number of items currently claimed by encode workers",
		},
	)

	VariantsPlannedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fotosite_variants_planned_total",
			Help: "Total number of image variants scheduled for encoding",
		},
	)

	VariantsEncodedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fotosite_variants_encoded_total",
			Help: "Total number of image variants successfully encoded",
		},
		[]string{"format"},
	)

	VariantsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fotosite_variants_failed_total",
			Help: "Total number of image variant encode failures",
		},
		[]string{"format"},
	)

	ItemEncodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fotosite_item_encode_duration_seconds",
			Help:    "Wall time spent encoding all of one item's variants",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Library metrics
var (
	LibraryEntriesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fotosite_library_entries_total",
			Help: "Total number of content entries in the manifest by kind",
		},
		[]string{"kind"}, // "image", "markdown"
	)

	LibraryNodesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fotosite_library_nodes_total",
			Help: "Total number of gallery nodes in the manifest",
		},
	)

	LibraryVariantsRecorded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fotosite_library_variants_recorded",
			Help: "Total number of size/format pairs recorded as generated",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fotosite_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fotosite_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fotosite_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fotosite_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

// RecordScan folds one completed scan pass into the scan metrics.
func RecordScan(durationSeconds float64, refreshed, unchanged, excluded, pruned int, errors int64) {
	ScanRunsTotal.Inc()
	ScanLastRunDuration.Set(durationSeconds)
	ScanLastRunTimestamp.SetToCurrentTime()
	ScanItemsTotal.WithLabelValues("refreshed").Add(float64(refreshed))
	ScanItemsTotal.WithLabelValues("unchanged").Add(float64(unchanged))
	ScanItemsTotal.WithLabelValues("excluded").Add(float64(excluded))
	ScanItemsPruned.Add(float64(pruned))
	ScanErrors.Add(float64(errors))
}
