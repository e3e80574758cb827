package encoder

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"

	"fotosite/internal/logging"
	"fotosite/internal/planner"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
)

// InitVips initializes libvips. Call once at startup, before the worker
// pool runs. threads is vips' internal concurrency per operation; item
// parallelism comes from the worker pool, so keeping this low avoids CPU
// oversubscription when many workers encode at once.
func InitVips(threads int) {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return
	}

	if threads < 1 {
		threads = 1
	}

	// Route vips' own log lines through our logger at a matching level.
	vipsLogLevel := vips.LogLevelWarning
	if logging.IsDebugEnabled() {
		vipsLogLevel = vips.LogLevelInfo
	}
	vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
		switch {
		case level >= vips.LogLevelError:
			logging.Error("[%s] %s", domain, msg)
		case level == vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}, vipsLogLevel)

	vips.Startup(&vips.Config{
		ConcurrencyLevel: threads,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
		ReportLeaks:      false,
		CacheTrace:       false,
		CollectStats:     false,
	})

	vipsInitialized = true
	logging.Info("libvips initialized (version: %s, concurrency: %d)", vips.Version, threads)
}

// ShutdownVips releases libvips resources.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		logging.Info("libvips shutdown complete")
	}
}

// VipsEncoder encodes variants with libvips. Stateless; vips handles its
// own operation-level locking.
type VipsEncoder struct{}

// NewVips returns a libvips-backed encoder. InitVips must have run.
func NewVips() *VipsEncoder {
	return &VipsEncoder{}
}

// Encode loads the source, shrinks it to the variant width with
// decode-time shrinking where the loader supports it, and exports in the
// variant's format.
func (e *VipsEncoder) Encode(sourcePath string, v planner.Variant) error {
	ref, err := vips.LoadImageFromFile(sourcePath, vips.NewImportParams())
	if err != nil {
		return &EncodeError{Width: v.Width, Format: v.Format, Err: fmt.Errorf("load: %w", err)}
	}
	defer ref.Close()

	width := v.Width
	if width > ref.Width() {
		// Upscales are filtered out by the planner; clamp as a backstop.
		width = ref.Width()
	}
	height := scaledHeight(ref.Width(), ref.Height(), width)

	if err := ref.Thumbnail(width, height, vips.InterestingNone); err != nil {
		return &EncodeError{Width: v.Width, Format: v.Format, Err: fmt.Errorf("resize: %w", err)}
	}

	data, err := exportVips(ref, v.Format, v.Quality)
	if err != nil {
		return &EncodeError{Width: v.Width, Format: v.Format, Err: err}
	}

	if err := writeVariant(v.OutputPath, data); err != nil {
		return &EncodeError{Width: v.Width, Format: v.Format, Err: err}
	}

	logging.Debug("Encoded %s -> %s (%d bytes)", filepath.Base(sourcePath), v.OutputPath, len(data))
	return nil
}

func exportVips(ref *vips.ImageRef, format string, quality int) ([]byte, error) {
	switch format {
	case "jpg":
		params := vips.NewJpegExportParams()
		params.Quality = quality
		params.OptimizeCoding = true
		params.StripMetadata = true
		data, _, err := ref.ExportJpeg(params)
		return data, err
	case "webp":
		params := vips.NewWebpExportParams()
		params.Quality = quality
		params.StripMetadata = true
		data, _, err := ref.ExportWebp(params)
		return data, err
	case "png":
		params := vips.NewPngExportParams()
		params.StripMetadata = true
		data, _, err := ref.ExportPng(params)
		return data, err
	case "avif":
		params := vips.NewAvifExportParams()
		params.Quality = quality
		params.StripMetadata = true
		data, _, err := ref.ExportAvif(params)
		return data, err
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// scaledHeight preserves aspect ratio for a target width.
func scaledHeight(srcWidth, srcHeight, targetWidth int) int {
	if srcWidth <= 0 {
		return targetWidth
	}
	h := srcHeight * targetWidth / srcWidth
	if h < 1 {
		h = 1
	}
	return h
}

func writeVariant(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
