// Package config holds runtime configuration: defaults, file and environment
// loading, CLI flag binding, and validation. Defaults reproduce the classic
// 6×3 contact sheet with 360px thumbnails.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is built by [Load] and the CLI flag
// layer, validated once, and then handed by value to the pipeline so no
// stage can mutate settings shared with another.
type Config struct {
	// Inputs are video files or directories (set from positional args).
	Inputs []string `yaml:"-" env:"-"`

	// Grid layout.
	Rows        int     `yaml:"rows" env:"ROWS"`                 // Default: 6.
	Cols        int     `yaml:"cols" env:"COLS"`                 // Default: 3.
	ThumbWidth  int     `yaml:"thumb_width" env:"THUMB_WIDTH"`   // Default: 360. Height follows the source aspect ratio.
	MarginV     int     `yaml:"margin_v" env:"MARGIN_V"`         // Default: 20 (top and bottom).
	MarginH     int     `yaml:"margin_h" env:"MARGIN_H"`         // Default: 20 (left and right).
	VSpace      int     `yaml:"vspace" env:"VSPACE"`             // Default: 10 (between rows).
	HSpace      int     `yaml:"hspace" env:"HSPACE"`             // Default: 10 (between columns).
	FontSize    float64 `yaml:"font_size" env:"FONT_SIZE"`       // Default: 15 points.
	JPEGQuality int     `yaml:"jpeg_quality" env:"JPEG_QUALITY"` // Default: 90.

	// Scheduling.
	LeadOffset int `yaml:"lead_offset" env:"LEAD_OFFSET"` // Default: 60s, added to the first timestamp only.

	// Extraction.
	Workers     int           `yaml:"workers" env:"WORKERS"`                   // Default: 0 = one per CPU.
	TaskTimeout time.Duration `yaml:"task_timeout" env:"TASK_TIMEOUT"`         // Default: 2m per frame; 0 disables.
	Attempts    int           `yaml:"extract_attempts" env:"EXTRACT_ATTEMPTS"` // Default: 2 (one fallback run per frame).
	FFmpegBin   string        `yaml:"ffmpeg_bin" env:"FFMPEG_BIN"`             // Default: "ffmpeg".
	FFprobeBin  string        `yaml:"ffprobe_bin" env:"FFPROBE_BIN"`           // Default: "ffprobe".

	// Behavior flags.
	Overwrite bool `yaml:"overwrite" env:"OVERWRITE"` // Default: true. Cleared by --no-overwrite.
	DryRun    bool `yaml:"dry_run" env:"DRY_RUN"`
	Recursive bool `yaml:"recursive" env:"RECURSIVE"` // Default: true. Cleared by --no-recursive.

	// Display and logging.
	Verbose     bool      `yaml:"verbose" env:"VERBOSE"`
	Progress    bool      `yaml:"progress" env:"PROGRESS"` // Default: true. Only drawn on a TTY.
	ColorMode   ColorMode `yaml:"color" env:"COLOR"`       // Default: "auto".
	LogFile     string    `yaml:"log_file" env:"LOG_FILE"`
	MetricsFile string    `yaml:"metrics_file" env:"METRICS_FILE"` // Prometheus textfile written after the batch.
	CheckOnly   bool      `yaml:"-" env:"-"`                       // Run --check diagnostics and exit.
	Survey      bool      `yaml:"-" env:"-"`                       // Probe inputs and print a table instead of generating.
}

// DefaultConfig returns a Config with every default applied. Used as the
// base layer before file, environment and flag overrides.
func DefaultConfig() Config {
	return Config{
		Rows:        6,
		Cols:        3,
		ThumbWidth:  360,
		MarginV:     20,
		MarginH:     20,
		VSpace:      10,
		HSpace:      10,
		FontSize:    15,
		JPEGQuality: 90,
		LeadOffset:  60,
		Workers:     0,
		TaskTimeout: 2 * time.Minute,
		Attempts:    2,
		FFmpegBin:   "ffmpeg",
		FFprobeBin:  "ffprobe",
		Overwrite:   true,
		DryRun:      false,
		Recursive:   true,
		Verbose:     false,
		Progress:    true,
		ColorMode:   ColorAuto,
	}
}

// EffectiveWorkers resolves the extraction pool size: the configured value,
// or the number of available CPUs when unset.
func (c *Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// Validate checks ranges and enum values. When not in CheckOnly mode it also
// requires at least one input.
func (c *Config) Validate() error {
	if c.Rows < 1 || c.Cols < 1 {
		return fmt.Errorf("grid must be at least 1x1 (got %dx%d)", c.Rows, c.Cols)
	}
	if c.ThumbWidth < 1 {
		return fmt.Errorf("thumb width must be positive (got %d)", c.ThumbWidth)
	}
	if c.MarginV < 0 || c.MarginH < 0 || c.VSpace < 0 || c.HSpace < 0 {
		return errors.New("margins and spacing must not be negative")
	}
	if c.LeadOffset < 0 {
		return fmt.Errorf("lead offset must not be negative (got %d)", c.LeadOffset)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative (got %d)", c.Workers)
	}
	if c.TaskTimeout < 0 {
		return fmt.Errorf("task timeout must not be negative (got %s)", c.TaskTimeout)
	}
	if c.Attempts < 1 {
		return fmt.Errorf("extract attempts must be at least 1 (got %d)", c.Attempts)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be 1-100 (got %d)", c.JPEGQuality)
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("font size must be positive (got %g)", c.FontSize)
	}
	if strings.TrimSpace(c.FFmpegBin) == "" || strings.TrimSpace(c.FFprobeBin) == "" {
		return errors.New("ffmpeg and ffprobe binaries must be named")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.CheckOnly {
		return nil
	}
	if len(c.Inputs) == 0 {
		return errors.New("need at least one video file or directory")
	}
	return nil
}
