package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-json"

	"fotosite/internal/manifest"
)

// testServer builds a server over a manifest with one gallery and two
// recorded images.
func testServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	store := manifest.NewStore(filepath.Join(dir, ".cache"))

	m := manifest.New()
	m.UpsertNode("travel", func(n *manifest.ContentNode) {
		a := manifest.NewImageContent("a.png", 100, "hash-a")
		a.GeneratedSizes = []int{320, 640}
		a.GeneratedFormats = []string{"jpg", "webp"}
		b := manifest.NewImageContent("b.png", 200, "hash-b")
		n.Content = []manifest.GalleryContent{a, b, manifest.NewMarkdownContent("notes.md", 10, "hash-c", time.Now())}
	})
	if err := store.Save(m); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "public")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(out, "index.html"), []byte("<html>site</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	return New(Config{OutputDir: out, Version: "test"}, store, nil)
}

func TestHealthCheck(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.TotalImages != 2 {
		t.Errorf("TotalImages = %d, want 2", resp.TotalImages)
	}
}

func TestGetVersion(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["version"] != "test" {
		t.Errorf("version = %q, want test", resp["version"])
	}
}

func TestGetManifest(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/manifest", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var m manifest.Manifest
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("manifest endpoint returned invalid JSON: %v", err)
	}
	if m.FindNode("travel") == nil {
		t.Error("served manifest missing travel node")
	}
}

func TestRebuildNotAvailable(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rebuild", nil))

	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501 with nil rebuild callback", rec.Code)
	}
}

func TestRebuildTriggered(t *testing.T) {
	s := testServer(t)
	var calls atomic.Int32
	done := make(chan struct{})
	s.rebuild = func(context.Context) error {
		calls.Add(1)
		close(done)
		return nil
	}

	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rebuild", nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("rebuild callback never ran")
	}
	if calls.Load() != 1 {
		t.Errorf("rebuild ran %d times, want 1", calls.Load())
	}
}

func TestStaticFileServing(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "<html>site</html>" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestGetStats(t *testing.T) {
	s := testServer(t)
	stats := s.GetStats()

	if stats.TotalImages != 2 {
		t.Errorf("TotalImages = %d, want 2", stats.TotalImages)
	}
	if stats.TotalMarkdown != 1 {
		t.Errorf("TotalMarkdown = %d, want 1", stats.TotalMarkdown)
	}
	// 2 sizes x 2 formats recorded on one image.
	if stats.VariantsRecorded != 4 {
		t.Errorf("VariantsRecorded = %d, want 4", stats.VariantsRecorded)
	}
}

func TestWatcherTriggersOnChange(t *testing.T) {
	dir := t.TempDir()
	fired := make(chan struct{}, 1)

	w, err := newWatcher(dir, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.run(ctx)

	// Give the watch loop a moment to start before producing events.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "new.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never fired after file creation")
	}
}

func TestWatcherIgnores(t *testing.T) {
	w := &watcher{}
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"regular write", fsnotify.Event{Name: "/src/a.jpg", Op: fsnotify.Write}, false},
		{"hidden file", fsnotify.Event{Name: "/src/.DS_Store", Op: fsnotify.Write}, true},
		{"bare chmod", fsnotify.Event{Name: "/src/a.jpg", Op: fsnotify.Chmod}, true},
	}
	for _, tt := range tests {
		if got := w.ignore(tt.ev); got != tt.want {
			t.Errorf("%s: ignore = %v, want %v", tt.name, got, tt.want)
		}
	}
}
