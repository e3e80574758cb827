package cmd

import (
	"context"
	"fmt"
	"os"

	"fotosite/internal/config"
	"fotosite/internal/encoder"
	"fotosite/internal/fingerprint"
	"fotosite/internal/logging"
	"fotosite/internal/manifest"
	"fotosite/internal/metrics"
	"fotosite/internal/pipeline"
	"fotosite/internal/planner"
	"fotosite/internal/progress"
	"fotosite/internal/scanner"
	"fotosite/internal/workers"
)

// runBuild performs one full build pass: scan, then encode. It is the
// heart of generate and the rebuild callback of serve.
func runBuild(ctx context.Context, cfg *config.Config, store *manifest.Store, enc encoder.Encoder, withProgress bool) (*pipeline.Result, error) {
	m := store.Load()

	cfgHash := fingerprint.ConfigHash(cfg.Sizes, cfg.Formats)
	scanHash := fingerprint.ScanConfigHash(cfg.Placeholder, cfg.MinWidth, cfg.MinHeight)

	sc := scanner.New(scanner.Config{
		SourceDir:      cfg.AbsSourceDir(),
		Sizes:          cfg.Sizes,
		MinWidth:       cfg.MinWidth,
		MinHeight:      cfg.MinHeight,
		Placeholder:    cfg.Placeholder,
		ConfigHash:     cfgHash,
		ScanConfigHash: scanHash,
		Workers:        cfg.Workers,
	})

	stats, err := sc.Scan(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", cfg.SourceDir, err)
	}
	metrics.RecordScan(stats.Duration.Seconds(), stats.Refreshed, stats.Unchanged, stats.Excluded, stats.Pruned, stats.Errors)

	// Persist the scan before encoding starts so a crash mid-encode never
	// loses the refreshed metadata.
	if err := store.Save(m); err != nil {
		return nil, fmt.Errorf("saving manifest: %w", err)
	}

	plan := &planner.Planner{
		Sizes:             cfg.Sizes,
		Formats:           cfg.Formats,
		StoredConfigHash:  m.Meta.ConfigHash,
		CurrentConfigHash: cfgHash,
		OutputDir:         cfg.OutputDir,
	}

	workerCount := cfg.Workers
	if workerCount <= 0 {
		workerCount = workers.ForEncoding(0)
	}

	observers := pipeline.MultiObserver{metrics.NewObserver()}
	if withProgress {
		observers = append(observers, progress.New(os.Stdout, workerCount))
	}

	pipe := pipeline.New(store, m, plan, enc, cfg.AbsSourceDir(), pipeline.Options{
		Workers:      workerCount,
		SaveEachItem: true,
		Observer:     observers,
	})

	result := pipe.Run(ctx)
	if result.Cancelled {
		logging.Warn("Build interrupted; completed work is saved and the next run resumes")
	}
	return result, nil
}
