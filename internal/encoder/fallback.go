package encoder

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"fotosite/internal/logging"
	"fotosite/internal/planner"

	// Decoders for the fallback path.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP decode support
)

// FallbackEncoder is a pure-Go encoder used when libvips is unavailable.
// It decodes the full image in memory, so it is slower and hungrier than
// vips, and it can only write jpg and png.
type FallbackEncoder struct{}

// NewFallback returns the pure-Go encoder.
func NewFallback() *FallbackEncoder {
	logging.Warn("libvips not in use, falling back to pure-Go encoding (jpg/png only)")
	return &FallbackEncoder{}
}

// Encode resizes with Lanczos resampling and writes the variant.
func (e *FallbackEncoder) Encode(sourcePath string, v planner.Variant) error {
	img, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return &EncodeError{Width: v.Width, Format: v.Format, Err: fmt.Errorf("load: %w", err)}
	}

	width := v.Width
	if width > img.Bounds().Dx() {
		width = img.Bounds().Dx()
	}
	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	if err := saveFallback(resized, v); err != nil {
		return &EncodeError{Width: v.Width, Format: v.Format, Err: err}
	}
	return nil
}

func saveFallback(img image.Image, v planner.Variant) error {
	if err := os.MkdirAll(filepath.Dir(v.OutputPath), 0o755); err != nil {
		return err
	}
	switch v.Format {
	case "jpg":
		return imaging.Save(img, v.OutputPath, imaging.JPEGQuality(v.Quality))
	case "png":
		return imaging.Save(img, v.OutputPath)
	default:
		return fmt.Errorf("format %q requires libvips", v.Format)
	}
}
