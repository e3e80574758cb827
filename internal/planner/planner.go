package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fotosite/internal/logging"
	"fotosite/internal/manifest"
)

// Variant is one planned (width, format) output for an image.
type Variant struct {
	Width      int
	Format     string
	Quality    int
	OutputPath string
}

// Planner holds the configuration one run plans against. Config hashes are
// passed in as values rather than read from ambient state so tests can
// exercise several configs side by side.
type Planner struct {
	// Sizes is the global size ladder.
	Sizes []int
	// Formats maps output format to encode quality.
	Formats map[string]int
	// StoredConfigHash is the hash the manifest was last processed under;
	// CurrentConfigHash is the hash of the active configuration. Any
	// mismatch disables cache hits entirely.
	StoredConfigHash  string
	CurrentConfigHash string
	// OutputDir is the root the variant files are written under.
	OutputDir string
}

// EligibleSizes returns the widths an image of the given native width is
// rendered at: every ladder entry at or below the native width, plus the
// native width itself whenever a ladder entry exceeds it, so the largest
// variant is capped at native rather than dropped. Upscaling is never
// planned.
func (p *Planner) EligibleSizes(nativeWidth int) []int {
	if nativeWidth <= 0 {
		return nil
	}
	var widths []int
	capped := false
	for _, w := range p.Sizes {
		if w <= nativeWidth {
			widths = append(widths, w)
		} else {
			capped = true
		}
	}
	if capped && !containsInt(widths, nativeWidth) {
		widths = append(widths, nativeWidth)
	}
	if len(widths) == 0 {
		widths = []int{nativeWidth}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(widths)))
	return widths
}

// OutputBase derives the stable output-path segment for an image: the
// node path joined with the filename stem.
func OutputBase(nodePath, filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	if nodePath == "" {
		return stem
	}
	return nodePath + "/" + stem
}

// VariantPath returns the deterministic output file for one variant.
func (p *Planner) VariantPath(outputBase string, width int, format string) string {
	return filepath.Join(p.OutputDir, filepath.FromSlash(outputBase)+fmt.Sprintf("-%d.%s", width, format))
}

// Plan returns the variants still required for one image, largest width
// first. A pair is skipped only when the config hash is unchanged, the
// pair is recorded as generated, and the output file is actually present.
// The manifest may be optimistic but must never claim a file that is gone.
func (p *Planner) Plan(nodePath string, img *manifest.ImageContent) []Variant {
	widths := img.Sizes
	if len(widths) == 0 {
		widths = p.EligibleSizes(img.Width)
	} else {
		widths = append([]int(nil), widths...)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(widths)))

	formats := make([]string, 0, len(p.Formats))
	for f := range p.Formats {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	base := img.OutputPath
	if base == "" {
		base = OutputBase(nodePath, img.Filename)
	}

	configValid := p.StoredConfigHash != "" && p.StoredConfigHash == p.CurrentConfigHash

	var variants []Variant
	for _, w := range widths {
		for _, f := range formats {
			path := p.VariantPath(base, w, f)
			if configValid && containsInt(img.GeneratedSizes, w) && containsString(img.GeneratedFormats, f) {
				if _, err := os.Stat(path); err == nil {
					continue // cache hit
				}
				logging.Debug("Variant %s recorded but missing on disk, replanning", path)
			}
			variants = append(variants, Variant{
				Width:      w,
				Format:     f,
				Quality:    p.Formats[f],
				OutputPath: path,
			})
		}
	}
	return variants
}

// TotalPairs returns how many (width, format) pairs the image requires
// regardless of cache state. Used for progress reporting.
func (p *Planner) TotalPairs(img *manifest.ImageContent) int {
	widths := img.Sizes
	if len(widths) == 0 {
		widths = p.EligibleSizes(img.Width)
	}
	return len(widths) * len(p.Formats)
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
