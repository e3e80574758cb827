package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics(formats []string) {
	// --- Scan item states ---
	for _, state := range []string{"refreshed", "unchanged", "excluded"} {
		ScanItemsTotal.WithLabelValues(state)
	}

	// --- Pipeline run results and item outcomes ---
	for _, result := range []string{"completed", "cancelled", "failed"} {
		PipelineRunsTotal.WithLabelValues(result)
	}
	for _, outcome := range []string{"done", "skipped", "partial", "failed"} {
		PipelineItemsTotal.WithLabelValues(outcome)
	}

	// --- Variant counters per configured output format ---
	for _, format := range formats {
		VariantsEncodedTotal.WithLabelValues(format)
		VariantsFailedTotal.WithLabelValues(format)
	}

	// --- Library entry kinds ---
	for _, kind := range []string{"image", "markdown"} {
		LibraryEntriesTotal.WithLabelValues(kind)
	}
}
