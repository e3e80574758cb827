package metrics

import (
	"time"

	"fotosite/internal/logging"
)

// StatsProvider interface for collecting library stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current library statistics
type Stats struct {
	TotalNodes       int
	TotalImages      int
	TotalMarkdown    int
	VariantsRecorded int
}

// Collector periodically collects and updates the library gauges
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	LibraryEntriesTotal.WithLabelValues("image").Set(float64(stats.TotalImages))
	LibraryEntriesTotal.WithLabelValues("markdown").Set(float64(stats.TotalMarkdown))
	LibraryNodesTotal.Set(float64(stats.TotalNodes))
	LibraryVariantsRecorded.Set(float64(stats.VariantsRecorded))

	logging.Debug("Metrics collected: nodes=%d, images=%d, markdown=%d, variants=%d",
		stats.TotalNodes, stats.TotalImages, stats.TotalMarkdown, stats.VariantsRecorded)
}
