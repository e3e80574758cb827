package scanner

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Decoders for dimension probing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP dimension support

	"fotosite/internal/logging"
	"fotosite/internal/manifest"
)

// imageExtensions are the source formats the generator accepts.
var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".tiff": true, ".tif": true,
}

// markdownExtensions are the prose formats galleries can carry.
var markdownExtensions = map[string]bool{
	".md": true, ".markdown": true,
}

func isImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

func isMarkdown(name string) bool {
	return markdownExtensions[strings.ToLower(filepath.Ext(name))]
}

// readDimensions probes width and height without decoding pixel data.
func readDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decoding dimensions of %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// readExif extracts the EXIF fields the site renders. EXIF is optional
// metadata: any failure is logged at debug level and yields nils.
func readExif(path string, img *manifest.ImageContent) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		logging.Debug("No EXIF in %s: %v", path, err)
		return
	}

	if taken, err := x.DateTime(); err == nil {
		img.DateTaken = &taken
	}

	data := &manifest.ExifData{}
	populated := false

	if tag, err := x.Get(exif.Model); err == nil {
		if model, err := tag.StringVal(); err == nil {
			data.Camera = strings.TrimSpace(model)
			populated = true
		}
	}
	if tag, err := x.Get(exif.LensModel); err == nil {
		if lens, err := tag.StringVal(); err == nil {
			data.LensModel = strings.TrimSpace(lens)
			populated = true
		}
	}
	if tag, err := x.Get(exif.FocalLength); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			data.FocalLength = fmt.Sprintf("%gmm", float64(num)/float64(den))
			populated = true
		}
	}
	if tag, err := x.Get(exif.FNumber); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			data.Aperture = fmt.Sprintf("f/%.1f", float64(num)/float64(den))
			populated = true
		}
	}
	if tag, err := x.Get(exif.ExposureTime); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && num != 0 {
			if num == 1 {
				data.ShutterSpeed = fmt.Sprintf("1/%d", den)
			} else {
				data.ShutterSpeed = fmt.Sprintf("%d/%d", num, den)
			}
			populated = true
		}
	}
	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if iso, err := tag.Int(0); err == nil {
			data.ISO = iso
			populated = true
		}
	}

	if populated {
		img.Exif = data
	}
}
