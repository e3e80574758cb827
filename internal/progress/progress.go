package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"fotosite/internal/logging"
	"fotosite/internal/pipeline"
	"fotosite/internal/planner"
)

// Reporter implements pipeline.Observer, rendering either a live
// multi-line display (TTY) or plain log lines (everything else).
type Reporter struct {
	mu      sync.Mutex
	out     io.Writer
	tty     bool
	workers int

	total     int
	completed int
	encoded   int
	states    []workerState // one per worker, current activity
	rendered  int           // lines currently on screen
}

// workerState is what one worker's display row shows: the item it holds
// and how many of its planned variants have finished.
type workerState struct {
	item    string
	planned int
	done    int
}

// New creates a reporter writing to out. TTY rendering is enabled only
// when out is a terminal.
func New(out io.Writer, workers int) *Reporter {
	if workers < 1 {
		workers = 1
	}
	r := &Reporter{out: out, workers: workers, states: make([]workerState, workers)}
	if f, ok := out.(*os.File); ok {
		r.tty = term.IsTerminal(int(f.Fd()))
	}
	return r
}

// RunStarted implements pipeline.Observer.
func (r *Reporter) RunStarted(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
	r.completed = 0
	r.encoded = 0
	for i := range r.states {
		r.states[i] = workerState{}
	}
	if r.tty {
		fmt.Fprintf(r.out, "Processing %d items with %d workers\n", total, r.workers)
		r.redraw()
	} else {
		logging.Info("Processing %d items with %d workers", total, r.workers)
	}
}

// ItemStarted implements pipeline.Observer.
func (r *Reporter) ItemStarted(worker int, itemPath string, planned int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if worker >= 0 && worker < len(r.states) {
		r.states[worker] = workerState{item: itemPath, planned: planned}
	}
	if r.tty {
		r.redraw()
	}
}

// VariantFinished implements pipeline.Observer. Each finished variant,
// failed or not, advances its worker's done count on the display row.
func (r *Reporter) VariantFinished(worker int, itemPath string, v planner.Variant, err error) {
	if err != nil && !r.tty {
		logging.Warn("Encode failed: %s at %dpx %s: %v", itemPath, v.Width, v.Format, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if worker >= 0 && worker < len(r.states) && r.states[worker].item == itemPath {
		r.states[worker].done++
		if r.tty {
			r.redraw()
		}
	}
}

// ItemFinished implements pipeline.Observer.
func (r *Reporter) ItemFinished(worker int, itemPath string, outcome pipeline.Outcome, encoded, planned int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
	r.encoded += encoded
	if worker >= 0 && worker < len(r.states) {
		r.states[worker] = workerState{}
	}
	if r.tty {
		r.redraw()
		return
	}
	switch outcome {
	case pipeline.OutcomeSkipped:
		logging.Debug("[%d/%d] %s up to date", r.completed, r.total, itemPath)
	case pipeline.OutcomeDone:
		logging.Info("[%d/%d] %s: %d variants", r.completed, r.total, itemPath, encoded)
	default:
		logging.Warn("[%d/%d] %s: %s (%d/%d variants)", r.completed, r.total, itemPath, outcome, encoded, planned)
	}
}

// RunFinished implements pipeline.Observer.
func (r *Reporter) RunFinished(res *pipeline.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tty {
		r.clear()
	}
	fmt.Fprint(r.out, Summary(res))
}

// redraw repaints the per-worker block in place. Caller holds the lock.
func (r *Reporter) redraw() {
	r.clear()
	var b strings.Builder
	fmt.Fprintf(&b, "  %d/%d items, %d variants encoded\n", r.completed, r.total, r.encoded)
	for i, st := range r.states {
		line := "idle"
		if st.item != "" {
			line = fmt.Sprintf("%s (%d/%d variants)", st.item, st.done, st.planned)
		}
		fmt.Fprintf(&b, "  worker %d: %s\n", i, line)
	}
	fmt.Fprint(r.out, b.String())
	r.rendered = 1 + len(r.states)
}

// clear removes the previously rendered block. Caller holds the lock.
func (r *Reporter) clear() {
	if r.rendered > 0 {
		fmt.Fprintf(r.out, "\x1b[%dA\x1b[J", r.rendered)
		r.rendered = 0
	}
}

// Summary formats the final run summary, one line per fact.
func Summary(res *pipeline.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Processed %d items in %s\n", res.Total, res.Duration.Round(10*time.Millisecond))
	fmt.Fprintf(&b, "  encoded: %d variants across %d items\n", res.Encoded, res.Done+res.Partial)
	fmt.Fprintf(&b, "  up to date: %d items\n", res.Skipped)
	if res.Partial > 0 {
		fmt.Fprintf(&b, "  partial: %d items\n", res.Partial)
	}
	if res.Failed > 0 {
		fmt.Fprintf(&b, "  failed: %d items\n", res.Failed)
	}
	if res.Cancelled {
		fmt.Fprint(&b, "  run cancelled before completion\n")
	}
	return b.String()
}
