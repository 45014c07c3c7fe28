// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for ffmpeg and ffprobe.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/backmassage/contactsheet/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// Runner executes name with args and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Checker runs diagnostics against the configured binaries.
type Checker struct {
	FFmpeg  string
	FFprobe string

	lookPath func(string) (string, error)
	run      Runner
}

// New returns a Checker for the binaries named in cfg.
func New(cfg *config.Config) *Checker {
	return &Checker{
		FFmpeg:   cfg.FFmpegBin,
		FFprobe:  cfg.FFprobeBin,
		lookPath: exec.LookPath,
		run:      runCombined,
	}
}

// RunCheck runs the interactive --check flow: tool versions, JPEG encoder
// availability, and a one-frame render into a temp file. Returns false if
// any required capability is missing.
func (c *Checker) RunCheck(ctx context.Context, log Logger) bool {
	log.Info("=== System Check ===")

	ok := c.checkVersion(ctx, log, c.FFmpeg)
	ok = c.checkVersion(ctx, log, c.FFprobe) && ok
	if !ok {
		return false
	}
	ok = c.checkMJPEG(ctx, log) && ok
	ok = c.checkSnapshot(ctx, log) && ok
	return ok
}

// CheckDeps is the pre-pipeline validation: both binaries must resolve.
func (c *Checker) CheckDeps() error {
	if _, err := c.lookPath(c.FFmpeg); err != nil {
		return fmt.Errorf("%w (%s)", ErrFfmpegNotFound, c.FFmpeg)
	}
	if _, err := c.lookPath(c.FFprobe); err != nil {
		return fmt.Errorf("%w (%s)", ErrFfprobeNotFound, c.FFprobe)
	}
	return nil
}

// checkVersion verifies bin resolves and logs the first line of -version.
func (c *Checker) checkVersion(ctx context.Context, log Logger, bin string) bool {
	if _, err := c.lookPath(bin); err != nil {
		log.Error("%s not found", bin)
		return false
	}
	out, err := c.run(ctx, bin, "-version")
	if err != nil {
		log.Warn("%s found but -version failed: %v", bin, err)
		return false
	}
	log.Success("%s: %s", filepath.Base(bin), firstLine(string(out)))
	return true
}

// checkMJPEG confirms ffmpeg lists the mjpeg encoder used for frame files.
func (c *Checker) checkMJPEG(ctx context.Context, log Logger) bool {
	out, err := c.run(ctx, c.FFmpeg, "-hide_banner", "-encoders")
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return false
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "mjpeg" {
			log.Success("JPEG encoder: %s", strings.TrimSpace(line))
			return true
		}
	}
	log.Error("ffmpeg has no mjpeg encoder")
	return false
}

// checkSnapshot renders one synthetic frame the same way the extractor does.
func (c *Checker) checkSnapshot(ctx context.Context, log Logger) bool {
	dir, err := os.MkdirTemp("", "contactsheet-check-")
	if err != nil {
		log.Error("Cannot create temp dir: %v", err)
		return false
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "probe.jpg")
	log.Info("Testing single-frame extraction...")
	if _, err := c.run(ctx, c.FFmpeg, snapshotTestArgs(out)...); err != nil {
		log.Error("Frame extraction test failed: %v", err)
		return false
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		log.Error("Frame extraction test wrote no image")
		return false
	}
	log.Success("Frame extraction works")
	return true
}

func snapshotTestArgs(out string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=64x36:d=0.1",
		"-frames:v", "1", "-f", "image2", "-y", out,
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		return s[:idx]
	}
	return s
}

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
