// Package metrics provides Prometheus instrumentation for the generator.
//
// All metrics are prefixed with "fotosite_" to avoid naming collisions
// with other applications. The preview server exposes them on /metrics;
// one-shot generate runs register them but never export them.
//
// # Metric Categories
//
// ## Scan Metrics
//
// Track incremental source tree scans:
//   - ScanRunsTotal: Counter of completed scan passes
//   - ScanLastRunTimestamp: Gauge of last scan completion time
//   - ScanLastRunDuration: Gauge of last scan duration
//   - ScanItemsTotal: Counter of entries seen by state (refreshed/unchanged/excluded)
//   - ScanItemsPruned: Counter of entries removed after their file vanished
//   - ScanErrors: Counter of per-file scan errors
//
// ## Pipeline Metrics
//
// Monitor variant encoding runs:
//   - PipelineRunsTotal: Counter of encode runs by result
//   - PipelineIsRunning: Gauge indicating if an encode run is active
//   - PipelineItemsTotal: Counter of processed items by outcome
//   - PipelineItemsInFlight: Gauge of items currently claimed by workers
//   - VariantsPlannedTotal: Counter of variants scheduled for encoding
//   - VariantsEncodedTotal: Counter of successful encodes by format
//   - VariantsFailedTotal: Counter of failed encodes by format
//   - ItemEncodeDuration: Histogram of per-item encode wall time
//
// ## Library Metrics
//
// Gauges describing the current manifest, refreshed periodically by the
// [Collector] while the preview server runs:
//   - LibraryEntriesTotal: Gauge of content entries by kind
//   - LibraryNodesTotal: Gauge of gallery nodes
//   - LibraryVariantsRecorded: Gauge of size/format pairs recorded as generated
//
// ## HTTP Metrics
//
// Track preview server request performance:
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//
// ## Application Info
//
// Expose build information:
//   - AppInfo: Gauge with version, commit, and Go version labels
//
// # Usage
//
// Metrics are automatically registered with the default Prometheus registry
// using promauto. To expose them, mount the promhttp.Handler() on your
// metrics endpoint:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// To record metrics from other packages, import this package and use the
// exported metric variables:
//
//	metrics.VariantsEncodedTotal.WithLabelValues("webp").Inc()
//	metrics.ItemEncodeDuration.Observe(0.42)
//
// The [Observer] type adapts the pipeline's progress events onto these
// collectors, and [InitializeMetrics] pre-populates known label
// combinations so every series appears from the first scrape.
//
// # Prometheus Queries
//
// Encode throughput by format:
//
//	sum(rate(fotosite_variants_encoded_total[5m])) by (format)
//
// Encode failure rate:
//
//	sum(rate(fotosite_variants_failed_total[5m])) / sum(rate(fotosite_variants_planned_total[5m]))
//
// Cache effectiveness (skipped items per run):
//
//	rate(fotosite_pipeline_items_total{outcome="skipped"}[1h]) /
//	rate(fotosite_pipeline_items_total[1h])
package metrics
