package encoder

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fotosite/internal/planner"
)

// writeTestPNG writes a solid-color PNG of the given size.
func writeTestPNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestFallbackEncodeJPEG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writeTestPNG(t, src, 400, 300)

	enc := &FallbackEncoder{}
	v := planner.Variant{Width: 200, Format: "jpg", Quality: 85, OutputPath: filepath.Join(dir, "out", "src-200.jpg")}
	if err := enc.Encode(src, v); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	f, err := os.Open(v.OutputPath)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("output not decodable: %v", err)
	}
	if cfg.Width != 200 || cfg.Height != 150 {
		t.Errorf("output %dx%d, want 200x150", cfg.Width, cfg.Height)
	}
}

func TestFallbackEncodeClampsUpscale(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writeTestPNG(t, src, 100, 80)

	enc := &FallbackEncoder{}
	v := planner.Variant{Width: 500, Format: "png", OutputPath: filepath.Join(dir, "src-500.png")}
	if err := enc.Encode(src, v); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	f, _ := os.Open(v.OutputPath)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width > 100 {
		t.Errorf("output width %d exceeds native 100", cfg.Width)
	}
}

func TestFallbackEncodeUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writeTestPNG(t, src, 100, 80)

	enc := &FallbackEncoder{}
	v := planner.Variant{Width: 50, Format: "webp", Quality: 85, OutputPath: filepath.Join(dir, "src-50.webp")}
	err := enc.Encode(src, v)
	if err == nil {
		t.Fatal("webp accepted by fallback encoder")
	}

	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("error type %T, want *EncodeError", err)
	}
	if encErr.Width != 50 || encErr.Format != "webp" {
		t.Errorf("EncodeError carries (%d, %s), want (50, webp)", encErr.Width, encErr.Format)
	}
}

func TestFallbackEncodeMissingSource(t *testing.T) {
	enc := &FallbackEncoder{}
	v := planner.Variant{Width: 50, Format: "jpg", OutputPath: filepath.Join(t.TempDir(), "out.jpg")}
	if err := enc.Encode(filepath.Join(t.TempDir(), "absent.png"), v); err == nil {
		t.Error("missing source accepted")
	}
}

func TestEncodeErrorMessage(t *testing.T) {
	err := &EncodeError{Width: 640, Format: "webp", Err: errors.New("boom")}
	msg := err.Error()
	if !strings.Contains(msg, "640") || !strings.Contains(msg, "webp") || !strings.Contains(msg, "boom") {
		t.Errorf("EncodeError message missing details: %q", msg)
	}
	if !errors.Is(err, err.Err) {
		t.Error("EncodeError does not unwrap")
	}
}

func TestScaledHeight(t *testing.T) {
	tests := []struct {
		srcW, srcH, targetW, want int
	}{
		{1280, 853, 640, 426},
		{4000, 3000, 320, 240},
		{100, 100, 50, 50},
		{0, 100, 50, 50},
	}
	for _, tt := range tests {
		if got := scaledHeight(tt.srcW, tt.srcH, tt.targetW); got != tt.want {
			t.Errorf("scaledHeight(%d, %d, %d) = %d, want %d", tt.srcW, tt.srcH, tt.targetW, got, tt.want)
		}
	}
}
