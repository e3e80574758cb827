package pipeline

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"fotosite/internal/encoder"
	"fotosite/internal/logging"
	"fotosite/internal/manifest"
	"fotosite/internal/planner"
	"fotosite/internal/workers"
)

// Options tunes a pipeline run.
type Options struct {
	// Workers is the item-level concurrency; 0 derives it from CPU count.
	Workers int
	// SaveEachItem persists the manifest after every completed item. This
	// is what makes an interrupted batch resumable; disable only in tests
	// that assert on save counts.
	SaveEachItem bool
	// Observer receives progress events; nil means no reporting.
	Observer Observer
}

// Pipeline runs variant generation over one loaded manifest. The manifest
// tree is the only shared mutable state; a single coarse mutex guards all
// mutation, and workers operate on snapshots taken under that lock.
type Pipeline struct {
	store     *manifest.Store
	m         *manifest.Manifest
	plan      *planner.Planner
	enc       encoder.Encoder
	sourceDir string
	obs       Observer
	workers   int
	saveEach  bool

	mu sync.Mutex // guards m and store writes
}

// workItem is a queued image: the node path, the source file, and a
// snapshot of the manifest entry taken while holding the lock.
type workItem struct {
	nodePath string
	filename string
	snapshot manifest.ImageContent
}

// New assembles a pipeline. The planner carries the config fingerprints;
// they are passed in as values so callers control invalidation.
func New(store *manifest.Store, m *manifest.Manifest, plan *planner.Planner, enc encoder.Encoder, sourceDir string, opts Options) *Pipeline {
	obs := opts.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	count := opts.Workers
	if count <= 0 {
		count = workers.ForEncoding(0)
	}
	return &Pipeline{
		store:     store,
		m:         m,
		plan:      plan,
		enc:       enc,
		sourceDir: sourceDir,
		obs:       obs,
		workers:   count,
		saveEach:  opts.SaveEachItem,
	}
}

// Run processes every image in the manifest and returns the aggregated
// result. Cancellation is honored between items: an in-flight item
// finishes its current variants, its outcome is recorded and persisted,
// and remaining queued items are left untouched for the next run.
func (p *Pipeline) Run(ctx context.Context) *Result {
	start := time.Now()

	queue := p.buildQueue()
	result := &Result{Total: len(queue)}
	p.obs.RunStarted(len(queue))

	if len(queue) == 0 {
		result.Duration = time.Since(start)
		p.obs.RunFinished(result)
		return result
	}

	logging.Info("Processing %d items with %d workers", len(queue), p.workers)

	jobs := make(chan workItem)
	results := make(chan ItemResult)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.worker(ctx, id, jobs, results)
		}(i)
	}

	var collectorWg sync.WaitGroup
	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for item := range results {
			result.record(item)
		}
	}()

enqueue:
	for _, job := range queue {
		select {
		case jobs <- job:
		case <-ctx.Done():
			result.Cancelled = true
			break enqueue
		}
	}
	close(jobs)
	wg.Wait()
	close(results)
	collectorWg.Wait()

	if ctx.Err() != nil {
		result.Cancelled = true
	}

	// Stamp the processed-under fingerprints only after an uncancelled
	// pass, then persist once more regardless: partial progress is still
	// durable progress.
	p.mu.Lock()
	if !result.Cancelled {
		p.m.Meta.ConfigHash = p.plan.CurrentConfigHash
		p.m.Meta.Quality = p.plan.Formats
		p.m.Meta.LastImagesProcessed = time.Now()
	}
	if err := p.store.Save(p.m); err != nil {
		logging.Error("Failed to persist manifest: %v", err)
	}
	p.mu.Unlock()

	result.Duration = time.Since(start)
	p.obs.RunFinished(result)
	return result
}

// buildQueue walks the manifest once under the lock, snapshotting each
// image so planning and encoding never touch shared state.
func (p *Pipeline) buildQueue() []workItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	var queue []workItem
	p.m.Walk(func(node *manifest.ContentNode, img *manifest.ImageContent) bool {
		queue = append(queue, workItem{
			nodePath: node.Path,
			filename: img.Filename,
			snapshot: *img,
		})
		return true
	})
	return queue
}

func (p *Pipeline) worker(ctx context.Context, id int, jobs <-chan workItem, results chan<- ItemResult) {
	logging.Debug("Pipeline worker %d started", id)
	for job := range jobs {
		// Cancellation is checked between items, never mid-item.
		select {
		case <-ctx.Done():
			continue // drain remaining jobs without processing
		default:
		}
		results <- p.processItem(id, job)
	}
	logging.Debug("Pipeline worker %d finished", id)
}

// processItem plans and encodes one item's entire variant list. Variant
// failures are contained: remaining variants are still attempted and the
// successful ones recorded.
func (p *Pipeline) processItem(worker int, job workItem) ItemResult {
	itemPath := job.nodePath + "/" + job.filename
	if job.nodePath == "" {
		itemPath = job.filename
	}

	variants := p.plan.Plan(job.nodePath, &job.snapshot)
	if len(variants) == 0 {
		logging.Debug("Cache hit for %s", itemPath)
		p.obs.ItemFinished(worker, itemPath, OutcomeSkipped, 0, 0)
		return ItemResult{Path: itemPath, Outcome: OutcomeSkipped}
	}

	p.obs.ItemStarted(worker, itemPath, len(variants))
	sourcePath := filepath.Join(p.sourceDir, filepath.FromSlash(job.nodePath), job.filename)

	var (
		errs        []error
		doneWidths  []int
		doneFormats []string
		encoded     int
	)
	for _, v := range variants {
		err := p.enc.Encode(sourcePath, v)
		p.obs.VariantFinished(worker, itemPath, v, err)
		if err != nil {
			logging.Warn("Variant failed for %s: %v", itemPath, err)
			errs = append(errs, err)
			continue
		}
		encoded++
		doneWidths = append(doneWidths, v.Width)
		doneFormats = append(doneFormats, v.Format)
	}

	outcome := OutcomeDone
	switch {
	case encoded == 0:
		outcome = OutcomeFailed
	case len(errs) > 0:
		outcome = OutcomePartial
	}

	// Record successes even on partial failure; no result is discarded.
	if encoded > 0 {
		p.recordItem(job, doneWidths, doneFormats)
	}

	p.obs.ItemFinished(worker, itemPath, outcome, encoded, len(variants))
	return ItemResult{
		Path:    itemPath,
		Outcome: outcome,
		Planned: len(variants),
		Encoded: encoded,
		Errors:  errs,
	}
}

// recordItem folds an item's successful variants back into the manifest
// under the coarse lock and persists if configured to.
func (p *Pipeline) recordItem(job workItem, widths []int, formats []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	node := p.m.FindNode(job.nodePath)
	if node == nil {
		logging.Warn("Node %q vanished from manifest during run", job.nodePath)
		return
	}
	img := node.FindImage(job.filename)
	if img == nil {
		logging.Warn("Item %q vanished from manifest during run", job.filename)
		return
	}

	img.GeneratedSizes = mergeInts(img.GeneratedSizes, widths)
	img.GeneratedFormats = mergeStrings(img.GeneratedFormats, formats)
	if img.OutputPath == "" {
		img.OutputPath = planner.OutputBase(job.nodePath, job.filename)
	}

	if p.saveEach {
		if err := p.store.Save(p.m); err != nil {
			logging.Warn("Incremental manifest save failed: %v", err)
		}
	}
}

func mergeInts(existing, add []int) []int {
	seen := make(map[int]bool, len(existing)+len(add))
	var out []int
	for _, v := range append(existing, add...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

func mergeStrings(existing, add []string) []string {
	seen := make(map[string]bool, len(existing)+len(add))
	var out []string
	for _, v := range append(existing, add...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
