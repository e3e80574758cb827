package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"fotosite/internal/pipeline"
	"fotosite/internal/planner"
)

func TestReporterNonTTY(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, 2)
	if r.tty {
		t.Fatal("bytes.Buffer detected as TTY")
	}

	v := planner.Variant{Width: 640, Format: "jpg", Quality: 90}
	r.RunStarted(2)
	r.ItemStarted(0, "a.png", 2)
	r.VariantFinished(0, "a.png", v, nil)
	r.ItemFinished(0, "a.png", pipeline.OutcomeDone, 2, 2)
	r.ItemStarted(1, "b.png", 0)
	r.ItemFinished(1, "b.png", pipeline.OutcomeSkipped, 0, 0)
	r.RunFinished(&pipeline.Result{Total: 2, Done: 1, Skipped: 1, Encoded: 2, Duration: time.Second})

	out := buf.String()
	// Non-TTY output carries no cursor-movement escapes.
	if strings.Contains(out, "\x1b[") {
		t.Errorf("ANSI escapes in non-TTY output: %q", out)
	}
	if !strings.Contains(out, "Processed 2 items") {
		t.Errorf("summary missing from output: %q", out)
	}
}

func TestReporterVariantCountOnWorkerRow(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, 2)
	r.tty = true // force the live display path

	v := planner.Variant{Width: 640, Format: "jpg"}
	r.RunStarted(1)
	r.ItemStarted(0, "travel/a.png", 4)
	r.VariantFinished(0, "travel/a.png", v, nil)
	r.VariantFinished(0, "travel/a.png", v, nil)

	if got := r.states[0].done; got != 2 {
		t.Errorf("worker 0 done = %d, want 2", got)
	}
	if !strings.Contains(buf.String(), "travel/a.png (2/4 variants)") {
		t.Errorf("worker row does not show variants done vs planned:\n%s", buf.String())
	}

	// A result for an item the worker no longer holds changes nothing.
	r.VariantFinished(0, "other.png", v, nil)
	if got := r.states[0].done; got != 2 {
		t.Errorf("mismatched item advanced the count: %d", got)
	}

	r.ItemFinished(0, "travel/a.png", pipeline.OutcomeDone, 4, 4)
	if r.states[0].item != "" {
		t.Errorf("worker row not reset after item finish: %+v", r.states[0])
	}
}

func TestReporterOutOfRangeWorker(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, 1)
	r.RunStarted(1)
	// A worker index beyond the configured count must not panic.
	r.ItemStarted(5, "a.png", 1)
	r.VariantFinished(5, "a.png", planner.Variant{Width: 320, Format: "jpg"}, nil)
	r.ItemFinished(5, "a.png", pipeline.OutcomeDone, 1, 1)
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		res  pipeline.Result
		want []string
		not  []string
	}{
		{
			name: "clean run",
			res:  pipeline.Result{Total: 10, Done: 8, Skipped: 2, Encoded: 48},
			want: []string{"Processed 10 items", "encoded: 48 variants", "up to date: 2"},
			not:  []string{"partial", "failed", "cancelled"},
		},
		{
			name: "with failures",
			res:  pipeline.Result{Total: 3, Done: 1, Partial: 1, Failed: 1, Encoded: 7},
			want: []string{"partial: 1 items", "failed: 1 items"},
		},
		{
			name: "cancelled",
			res:  pipeline.Result{Total: 5, Done: 1, Cancelled: true},
			want: []string{"run cancelled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summary(&tt.res)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("summary missing %q:\n%s", w, got)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(got, n) {
					t.Errorf("summary unexpectedly contains %q:\n%s", n, got)
				}
			}
		})
	}
}
