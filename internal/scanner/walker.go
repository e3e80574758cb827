package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"fotosite/internal/logging"
	"fotosite/internal/manifest"
	"fotosite/internal/workers"
)

// fileJob is one source file handed to a scan worker.
type fileJob struct {
	path    string
	relPath string
	info    os.FileInfo
}

// fileResult is one processed file: the node it belongs to and its
// content entry, or an exclusion/error marker.
type fileResult struct {
	nodePath  string
	content   manifest.GalleryContent
	refreshed bool
	excluded  bool
	err       error
}

// walker fans file jobs out to a bounded worker set, in the same
// jobs/results shape the rest of the pipeline uses.
type walker struct {
	sourceDir string
	numWorker int
	process   func(fileJob) fileResult

	jobs    chan fileJob
	results chan fileResult
	wg      sync.WaitGroup

	filesSeen  atomic.Int64
	dirsSeen   atomic.Int64
	errorCount atomic.Int64
}

func newWalker(sourceDir string, numWorkers int, process func(fileJob) fileResult) *walker {
	if numWorkers <= 0 {
		numWorkers = workers.ForScanning(8)
	}
	return &walker{
		sourceDir: sourceDir,
		numWorker: numWorkers,
		process:   process,
		jobs:      make(chan fileJob, 256),
		results:   make(chan fileResult, 256),
	}
}

// run walks the tree, processing files in parallel. collect is called on
// the collector goroutine for every result; dirs receives each directory
// relative path from the producer (the walk itself is single-threaded, so
// directory order is deterministic).
func (w *walker) run(ctx context.Context, dirs func(relPath string), collect func(fileResult)) error {
	for i := 0; i < w.numWorker; i++ {
		w.wg.Add(1)
		go w.worker(ctx, i)
	}

	var collectorWg sync.WaitGroup
	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for res := range w.results {
			// An unreadable source file is dropped from the manifest just
			// like a deleted one, so say which it was.
			if res.err != nil {
				w.errorCount.Add(1)
				logging.Warn("Skipping unreadable file: %v", res.err)
				continue
			}
			collect(res)
		}
	}()

	err := filepath.WalkDir(w.sourceDir, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return fs.SkipAll
		default:
		}

		if err != nil {
			logging.Warn("Error accessing %s: %v", path, err)
			w.errorCount.Add(1)
			return nil
		}

		// Hidden files and directories never become content.
		if strings.HasPrefix(d.Name(), ".") && path != w.sourceDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(w.sourceDir, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			w.dirsSeen.Add(1)
			if relPath == "." {
				relPath = ""
			}
			dirs(relPath)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logging.Warn("Error statting %s: %v", path, err)
			w.errorCount.Add(1)
			return nil
		}

		w.filesSeen.Add(1)
		select {
		case w.jobs <- fileJob{path: path, relPath: relPath, info: info}:
		case <-ctx.Done():
			return fs.SkipAll
		}
		return nil
	})

	close(w.jobs)
	w.wg.Wait()
	close(w.results)
	collectorWg.Wait()

	if err != nil {
		return err
	}
	return ctx.Err()
}

func (w *walker) worker(ctx context.Context, id int) {
	defer w.wg.Done()
	for job := range w.jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		select {
		case w.results <- w.process(job):
		case <-ctx.Done():
			return
		}
	}
}
