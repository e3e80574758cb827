package preview

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fotosite/internal/logging"
	"fotosite/internal/manifest"
	"fotosite/internal/metrics"
	"fotosite/internal/middleware"
)

// Config holds the preview server configuration.
type Config struct {
	Host      string
	Port      int
	OutputDir string
	SourceDir string
	// Watch enables source tree watching; changes trigger the rebuild
	// callback passed to New.
	Watch   bool
	Version string
}

// Server is the local preview server.
type Server struct {
	cfg        Config
	store      *manifest.Store
	rebuild    func(context.Context) error
	started    time.Time
	rebuilding atomic.Bool
}

// New creates a preview server. rebuild may be nil, in which case source
// watching is disabled regardless of cfg.Watch.
func New(cfg Config, store *manifest.Store, rebuild func(context.Context) error) *Server {
	return &Server{cfg: cfg, store: store, rebuild: rebuild}
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.started = time.Now()

	if s.cfg.Watch && s.rebuild != nil {
		w, err := newWatcher(s.cfg.SourceDir, func() { s.triggerRebuild(ctx) })
		if err != nil {
			return fmt.Errorf("starting source watcher: %w", err)
		}
		go w.run(ctx)
	}

	loggedHandler := middleware.Logger(middleware.DefaultLoggingConfig())(s.router())
	handler := middleware.Metrics(middleware.DefaultMetricsConfig())(loggedHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Server shutdown error: %v", err)
		}
	}()

	logging.Info("Preview server listening on http://%s", srv.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.healthCheck).Methods("GET")
	r.HandleFunc("/livez", s.livenessCheck).Methods("GET")
	r.HandleFunc("/version", s.getVersion).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/manifest", s.getManifest).Methods("GET")
	api.HandleFunc("/rebuild", s.triggerRebuildHandler).Methods("POST")

	// The generated site itself.
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.cfg.OutputDir)))

	return r
}

// HealthResponse contains the health check response
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	Rebuilding bool   `json:"rebuilding"`

	// Library summary
	TotalNodes  int `json:"totalNodes"`
	TotalImages int `json:"totalImages"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	stats := s.GetStats()

	response := HealthResponse{
		Status:       "healthy",
		Version:      s.cfg.Version,
		Uptime:       time.Since(s.started).Round(time.Second).String(),
		Rebuilding:   s.rebuilding.Load(),
		TotalNodes:   stats.TotalNodes,
		TotalImages:  stats.TotalImages,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}
	if response.Rebuilding {
		response.Status = "rebuilding"
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) livenessCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) getVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":   s.cfg.Version,
		"goVersion": runtime.Version(),
	})
}

// getManifest exposes the current manifest so local tooling can inspect
// what the generator believes about the library.
func (s *Server) getManifest(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Load())
}

func (s *Server) triggerRebuildHandler(w http.ResponseWriter, r *http.Request) {
	if s.rebuild == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "rebuild not available"})
		return
	}
	go s.triggerRebuild(r.Context())
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "rebuild started"})
}

// triggerRebuild runs the rebuild callback, coalescing concurrent
// triggers into one running rebuild.
func (s *Server) triggerRebuild(ctx context.Context) {
	if !s.rebuilding.CompareAndSwap(false, true) {
		logging.Debug("Rebuild already in progress, trigger ignored")
		return
	}
	defer s.rebuilding.Store(false)

	logging.Info("Source change detected, rebuilding")
	if err := s.rebuild(ctx); err != nil {
		logging.Error("Rebuild failed: %v", err)
	}
}

// GetStats implements metrics.StatsProvider against the stored manifest.
func (s *Server) GetStats() metrics.Stats {
	m := s.store.Load()

	stats := metrics.Stats{}
	m.Nodes(func(n *manifest.ContentNode) bool {
		stats.TotalNodes++
		for _, c := range n.Content {
			switch img := c.(type) {
			case *manifest.ImageContent:
				stats.TotalImages++
				stats.VariantsRecorded += len(img.GeneratedSizes) * len(img.GeneratedFormats)
			case *manifest.MarkdownContent:
				stats.TotalMarkdown++
			}
		}
		return true
	})
	return stats
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("Encoding response: %v", err)
	}
}
