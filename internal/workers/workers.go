package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns the number of workers for a given task type.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//   - 1.5 for mixed tasks
//
// The limit parameter caps the worker count; 0 means no limit.
//
// Can be overridden with the FOTOSITE_WORKERS environment variable.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("FOTOSITE_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForEncoding returns the worker count for image encoding. Encodes are
// CPU-bound inside libvips, so one item worker per CPU; vips' own
// per-encode concurrency is tuned separately.
func ForEncoding(limit int) int {
	return Count(1.0, limit)
}

// ForScanning returns the worker count for directory scanning, which is
// stat-dominated I/O.
func ForScanning(limit int) int {
	return Count(2.0, limit)
}
