// Package config loads the server settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"printshop/internal/mask"
	"printshop/internal/products"
	"printshop/internal/units"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

const (
	MinDPI = 150
	MaxDPI = 600

	// MaxArcHeightCm is the height of a 10x15 print.
	MaxArcHeightCm = 15
)

// Config holds the server settings. The zero value is not usable; start from
// Default.
type Config struct {
	Addr string `yaml:"addr"`
	// DPI is the default print resolution; requests may override it within
	// [MinDPI, MaxDPI].
	DPI     int `yaml:"dpi"`
	Quality int `yaml:"jpeg_quality"`
	// Background is a hex color for padding and masked areas.
	Background string `yaml:"background"`

	// ArcHeightCm is the half-moon dome height on the 10x6 window.
	ArcHeightCm  float64 `yaml:"arc_height_cm"`
	HeightFactor float64 `yaml:"ellipse_height_factor"`
	WidthFactor  float64 `yaml:"ellipse_width_factor"`
	Antialias    bool    `yaml:"antialias"`

	MaxUploadMB int64 `yaml:"max_upload_mb"`
	// MaxMegapixels caps the decoded size of an upload. Compressed files
	// far smaller than MaxUploadMB can declare huge dimensions.
	MaxMegapixels float64       `yaml:"max_megapixels"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	Presets       string        `yaml:"presets"`

	LogLevel string `yaml:"log_level"`
	// LogFile, when set, receives the log as well as stderr and is rotated.
	LogFile string `yaml:"log_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:          ":8080",
		DPI:           300,
		Quality:       95,
		Background:    "#ffffff",
		ArcHeightCm:   6,
		HeightFactor:  mask.DefaultHeightFactor,
		WidthFactor:   mask.DefaultWidthFactor,
		MaxUploadMB:   32,
		MaxMegapixels: 100,
		SessionTTL:    2 * time.Hour,
		LogLevel:      "info",
	}
}

// Load reads path over the defaults. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path comes from the command line
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", cleanPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return cfg, nil
}

// Validate checks every setting and reports the first problem.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr is empty", ErrInvalidConfig)
	case c.DPI < MinDPI || c.DPI > MaxDPI:
		return fmt.Errorf("%w: dpi %d outside [%d, %d]", ErrInvalidConfig, c.DPI, MinDPI, MaxDPI)
	case c.Quality < 1 || c.Quality > 100:
		return fmt.Errorf("%w: jpeg_quality %d outside [1, 100]", ErrInvalidConfig, c.Quality)
	case c.ArcHeightCm <= 0 || c.ArcHeightCm > MaxArcHeightCm:
		return fmt.Errorf("%w: arc_height_cm %g outside (0, %d]", ErrInvalidConfig, c.ArcHeightCm, MaxArcHeightCm)
	case c.HeightFactor < 1 || c.WidthFactor < 1:
		return fmt.Errorf("%w: ellipse factors must be at least 1", ErrInvalidConfig)
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("%w: max_upload_mb must be positive", ErrInvalidConfig)
	case c.MaxMegapixels <= 0:
		return fmt.Errorf("%w: max_megapixels must be positive", ErrInvalidConfig)
	case c.SessionTTL < 0:
		return fmt.Errorf("%w: session_ttl is negative", ErrInvalidConfig)
	}
	if _, err := products.ParseColor(c.Background); err != nil {
		return fmt.Errorf("%w: background: %v", ErrInvalidConfig, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
	}
	return nil
}

// BackgroundColor returns the parsed background, white if it does not parse.
func (c Config) BackgroundColor() color.NRGBA {
	bg, err := products.ParseColor(c.Background)
	if err != nil {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return bg
}

// ArcHeight returns the dome height in pixels at dpi.
func (c Config) ArcHeight(dpi int) (int, error) {
	return units.CmToPx(c.ArcHeightCm, dpi)
}

// MaskOptions returns the configured half-moon curve.
func (c Config) MaskOptions() mask.Options {
	return mask.Options{HeightFactor: c.HeightFactor, WidthFactor: c.WidthFactor, Antialias: c.Antialias}
}

// Level returns the configured log level, info if it does not parse.
func (c Config) Level() log.Level {
	l, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c Config) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }

// MaxPixels is MaxMegapixels as a pixel count.
func (c Config) MaxPixels() int { return int(c.MaxMegapixels * 1e6) }
