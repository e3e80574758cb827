package workers

import (
	"os"
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	originalEnv := os.Getenv("FOTOSITE_WORKERS")
	defer func() {
		if originalEnv != "" {
			os.Setenv("FOTOSITE_WORKERS", originalEnv)
		} else {
			os.Unsetenv("FOTOSITE_WORKERS")
		}
	}()
	os.Unsetenv("FOTOSITE_WORKERS")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{"CPU-bound", 1.0, 0, 1, availableCPU},
		{"I/O-bound", 2.0, 0, 1, availableCPU * 2},
		{"mixed", 1.5, 0, 1, int(float64(availableCPU) * 1.5)},
		{"limit below calculated", 2.0, 2, 1, 2},
		{"tiny multiplier floors at one", 0.01, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, want in [%d, %d]",
					tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountOverride(t *testing.T) {
	originalEnv := os.Getenv("FOTOSITE_WORKERS")
	defer func() {
		if originalEnv != "" {
			os.Setenv("FOTOSITE_WORKERS", originalEnv)
		} else {
			os.Unsetenv("FOTOSITE_WORKERS")
		}
	}()

	os.Setenv("FOTOSITE_WORKERS", "7")
	if got := Count(1.0, 0); got != 7 {
		t.Errorf("override ignored, Count = %d, want 7", got)
	}
	if got := Count(1.0, 4); got != 4 {
		t.Errorf("limit not applied to override, Count = %d, want 4", got)
	}

	os.Setenv("FOTOSITE_WORKERS", "not-a-number")
	if got := Count(1.0, 0); got < 1 {
		t.Errorf("invalid override broke Count: %d", got)
	}

	os.Setenv("FOTOSITE_WORKERS", "-3")
	if got := Count(1.0, 0); got < 1 {
		t.Errorf("negative override broke Count: %d", got)
	}
}

func TestHelpers(t *testing.T) {
	os.Unsetenv("FOTOSITE_WORKERS")
	if got := ForEncoding(0); got < 1 {
		t.Errorf("ForEncoding = %d", got)
	}
	if got := ForScanning(0); got < 1 {
		t.Errorf("ForScanning = %d", got)
	}
}
