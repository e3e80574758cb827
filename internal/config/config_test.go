package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	return &Config{
		SourceDir:   "./photos",
		OutputDir:   "./public",
		CacheDir:    ".cache",
		Sizes:       []int{320, 640, 1920},
		Formats:     map[string]int{"jpg": 90, "webp": 85},
		Placeholder: PlaceholderBlur,
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty source dir", func(c *Config) { c.SourceDir = "" }},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }},
		{"empty ladder", func(c *Config) { c.Sizes = nil }},
		{"zero width", func(c *Config) { c.Sizes = []int{320, 0} }},
		{"negative width", func(c *Config) { c.Sizes = []int{-640} }},
		{"duplicate width", func(c *Config) { c.Sizes = []int{320, 320} }},
		{"no formats", func(c *Config) { c.Formats = nil }},
		{"unknown format", func(c *Config) { c.Formats = map[string]int{"bmp": 90} }},
		{"quality too low", func(c *Config) { c.Formats = map[string]int{"jpg": 0} }},
		{"quality too high", func(c *Config) { c.Formats = map[string]int{"jpg": 101} }},
		{"negative min width", func(c *Config) { c.MinWidth = -1 }},
		{"unknown placeholder", func(c *Config) { c.Placeholder = "sparkle" }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with no config file: %v", err)
	}
	if cfg.CacheDir != ".cache" {
		t.Errorf("default cache dir = %q", cfg.CacheDir)
	}
	if len(cfg.Sizes) == 0 {
		t.Error("default size ladder empty")
	}
	if cfg.Formats["jpg"] == 0 {
		t.Error("default jpg quality missing")
	}
	if cfg.Placeholder != PlaceholderBlur {
		t.Errorf("default placeholder = %q", cfg.Placeholder)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "fotosite.yml")
	payload := `source_dir: /srv/photos
output_dir: /srv/public
sizes: [480, 960]
formats:
  webp: 80
placeholder: none
workers: 2
`
	if err := os.WriteFile(cfgPath, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SourceDir != "/srv/photos" {
		t.Errorf("source dir = %q", cfg.SourceDir)
	}
	if len(cfg.Sizes) != 2 || cfg.Sizes[0] != 480 || cfg.Sizes[1] != 960 {
		t.Errorf("sizes = %v", cfg.Sizes)
	}
	if cfg.Formats["webp"] != 80 {
		t.Errorf("webp quality = %d", cfg.Formats["webp"])
	}
	if cfg.Placeholder != PlaceholderNone {
		t.Errorf("placeholder = %q", cfg.Placeholder)
	}
	if cfg.Workers != 2 {
		t.Errorf("workers = %d", cfg.Workers)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("explicitly named missing config file accepted")
	}
}

func TestLoadInvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "fotosite.yml")
	if err := os.WriteFile(cfgPath, []byte("sizes: [-100]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Error("config with negative width accepted")
	}
}
