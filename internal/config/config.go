package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultConfigFile is the config file looked up in the working directory
// when none is given explicitly.
const DefaultConfigFile = "fotosite.yml"

// Placeholder strategies for tiny inline previews.
const (
	PlaceholderNone = "none"
	PlaceholderBlur = "blur"
)

// knownFormats maps configurable output formats to their file extensions.
var knownFormats = map[string]bool{
	"jpg":  true,
	"webp": true,
	"png":  true,
	"avif": true,
}

// Config holds all generator configuration. The core packages receive
// plain values from here, never the viper instance, so tests can exercise
// multiple configs without process-level setup.
type Config struct {
	SourceDir string `mapstructure:"source_dir" yaml:"source_dir"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	CacheDir  string `mapstructure:"cache_dir" yaml:"cache_dir"`

	// Sizes is the global size ladder: target widths in pixels.
	Sizes []int `mapstructure:"sizes" yaml:"sizes"`
	// Formats maps output format to encode quality (1-100).
	Formats map[string]int `mapstructure:"formats" yaml:"formats"`

	MinWidth    int    `mapstructure:"min_width" yaml:"min_width"`
	MinHeight   int    `mapstructure:"min_height" yaml:"min_height"`
	Placeholder string `mapstructure:"placeholder" yaml:"placeholder"`

	// Workers is the item-level concurrency; 0 means derive from CPU count.
	Workers int `mapstructure:"workers" yaml:"workers"`
	// EncoderThreads is libvips' internal concurrency per encode.
	EncoderThreads int `mapstructure:"encoder_threads" yaml:"encoder_threads"`

	Preview PreviewConfig `mapstructure:"preview" yaml:"preview"`
}

// PreviewConfig configures the local preview server.
type PreviewConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source_dir", "./photos")
	v.SetDefault("output_dir", "./public")
	v.SetDefault("cache_dir", ".cache")
	v.SetDefault("sizes", []int{320, 640, 1280, 1920})
	v.SetDefault("formats", map[string]int{"jpg": 90, "webp": 85})
	v.SetDefault("min_width", 0)
	v.SetDefault("min_height", 0)
	v.SetDefault("placeholder", PlaceholderBlur)
	v.SetDefault("workers", 0)
	v.SetDefault("encoder_threads", 1)
	v.SetDefault("preview.host", "127.0.0.1")
	v.SetDefault("preview.port", 8080)
}

// Load reads configuration from the given file (or DefaultConfigFile when
// empty), layered under FOTOSITE_* environment overrides. A missing
// default config file is fine; an explicitly named missing file is not.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FOTOSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := cfgFile != ""
	if !explicit {
		cfgFile = DefaultConfigFile
	}
	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if explicit {
			return nil, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		// Default file absent: run on defaults and env.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails fast on configuration that would affect every item
// identically, so bad settings never reach the worker pool.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source_dir must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if len(c.Sizes) == 0 {
		return fmt.Errorf("sizes: the size ladder must not be empty")
	}
	seen := make(map[int]bool, len(c.Sizes))
	for _, w := range c.Sizes {
		if w <= 0 {
			return fmt.Errorf("sizes: width %d is not positive", w)
		}
		if seen[w] {
			return fmt.Errorf("sizes: width %d appears twice", w)
		}
		seen[w] = true
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("formats: at least one output format is required")
	}
	for format, quality := range c.Formats {
		if !knownFormats[format] {
			return fmt.Errorf("formats: unknown format %q", format)
		}
		if quality < 1 || quality > 100 {
			return fmt.Errorf("formats: %s quality %d outside [1,100]", format, quality)
		}
	}
	if c.MinWidth < 0 || c.MinHeight < 0 {
		return fmt.Errorf("min_width/min_height must not be negative")
	}
	switch c.Placeholder {
	case PlaceholderNone, PlaceholderBlur:
	default:
		return fmt.Errorf("placeholder: unknown strategy %q", c.Placeholder)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.EncoderThreads < 0 {
		return fmt.Errorf("encoder_threads must not be negative")
	}
	return nil
}

// ManifestDir returns the directory the manifest lives in.
func (c *Config) ManifestDir() string {
	return c.CacheDir
}

// AbsSourceDir returns the absolute source directory.
func (c *Config) AbsSourceDir() string {
	abs, err := filepath.Abs(c.SourceDir)
	if err != nil {
		return c.SourceDir
	}
	return abs
}
