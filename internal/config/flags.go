package config

// This file binds CLI flags. Flags are registered against a scratch Config
// so help text shows the defaults; Apply then copies only the flags the user
// actually passed, leaving file and environment values intact otherwise.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Flags is the CLI layer of the configuration.
type Flags struct {
	fs      *pflag.FlagSet
	v       Config
	negated negatedFlags

	// ConfigFile is the --config path ("" means search the default locations).
	ConfigFile string
}

// negatedFlags holds boolean flags that invert a default (e.g. noOverwrite ->
// Overwrite=false). They are applied after the positive forms so that
// "--no-x" always wins.
type negatedFlags struct {
	noOverwrite bool
	noRecursive bool
	noProgress  bool
	forceColor  bool
	noColor     bool
}

// RegisterFlags defines every contactsheet flag on fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs, v: DefaultConfig()}

	fs.StringVar(&f.ConfigFile, "config", "", "YAML config file (default: ./contactsheet.yaml)")

	defineGridFlags(fs, &f.v)
	defineExtractionFlags(fs, &f.v)
	defineBehaviorFlags(fs, &f.v, &f.negated)
	defineDisplayFlags(fs, &f.v, &f.negated)
	return f
}

// defineGridFlags registers layout and labeling flags.
func defineGridFlags(fs *pflag.FlagSet, v *Config) {
	fs.IntVarP(&v.Rows, "rows", "r", v.Rows, "Number of thumbnail rows")
	fs.IntVarP(&v.Cols, "cols", "c", v.Cols, "Number of thumbnail columns")
	fs.IntVarP(&v.ThumbWidth, "width", "w", v.ThumbWidth, "Thumbnail width in pixels (height follows aspect ratio)")
	fs.IntVar(&v.MarginV, "margin-v", v.MarginV, "Top/bottom margin in pixels")
	fs.IntVar(&v.MarginH, "margin-h", v.MarginH, "Left/right margin in pixels")
	fs.IntVar(&v.VSpace, "vspace", v.VSpace, "Vertical space between rows in pixels")
	fs.IntVar(&v.HSpace, "hspace", v.HSpace, "Horizontal space between columns in pixels")
	fs.Float64Var(&v.FontSize, "font-size", v.FontSize, "Timecode label size in points")
	fs.IntVarP(&v.JPEGQuality, "quality", "q", v.JPEGQuality, "JPEG quality of the sheet (1-100)")
	fs.IntVar(&v.LeadOffset, "offset", v.LeadOffset, "Seconds added to the first timestamp (skips black intros)")
}

// defineExtractionFlags registers worker pool and tool flags.
func defineExtractionFlags(fs *pflag.FlagSet, v *Config) {
	fs.IntVarP(&v.Workers, "workers", "j", v.Workers, "Parallel frame extractions (0 = one per CPU)")
	fs.DurationVar(&v.TaskTimeout, "task-timeout", v.TaskTimeout, "Per-frame extraction timeout (0 disables)")
	fs.IntVar(&v.Attempts, "attempts", v.Attempts, "Extraction attempts per frame, including fallbacks")
	fs.StringVar(&v.FFmpegBin, "ffmpeg", v.FFmpegBin, "ffmpeg binary")
	fs.StringVar(&v.FFprobeBin, "ffprobe", v.FFprobeBin, "ffprobe binary")
}

// defineBehaviorFlags registers overwrite, dry-run and recursion flags.
func defineBehaviorFlags(fs *pflag.FlagSet, v *Config, n *negatedFlags) {
	fs.BoolVarP(&v.DryRun, "dry-run", "d", false, "Report output paths only; write nothing")
	fs.BoolVar(&n.noOverwrite, "no-overwrite", false, "Skip videos whose sheet already exists")
	fs.BoolVar(&n.noRecursive, "no-recursive", false, "Do not descend into subdirectories")
}

// defineDisplayFlags registers logging, color, progress and diagnostics flags.
func defineDisplayFlags(fs *pflag.FlagSet, v *Config, n *negatedFlags) {
	fs.BoolVarP(&v.Verbose, "verbose", "v", false, "Verbose output (log every ffmpeg command)")
	fs.BoolVar(&n.noProgress, "no-progress", false, "Hide the extraction progress bar")
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.StringVarP(&v.LogFile, "log", "l", "", "Append logs to file")
	fs.StringVar(&v.MetricsFile, "metrics-file", "", "Write Prometheus textfile metrics after the batch")
	fs.BoolVar(&v.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&v.Survey, "survey", false, "Probe inputs and print a table instead of generating sheets")
}

// Apply copies every flag set on the command line into cfg, then applies
// the negated flags.
func (f *Flags) Apply(cfg *Config) {
	setters := map[string]func(){
		"rows":         func() { cfg.Rows = f.v.Rows },
		"cols":         func() { cfg.Cols = f.v.Cols },
		"width":        func() { cfg.ThumbWidth = f.v.ThumbWidth },
		"margin-v":     func() { cfg.MarginV = f.v.MarginV },
		"margin-h":     func() { cfg.MarginH = f.v.MarginH },
		"vspace":       func() { cfg.VSpace = f.v.VSpace },
		"hspace":       func() { cfg.HSpace = f.v.HSpace },
		"font-size":    func() { cfg.FontSize = f.v.FontSize },
		"quality":      func() { cfg.JPEGQuality = f.v.JPEGQuality },
		"offset":       func() { cfg.LeadOffset = f.v.LeadOffset },
		"workers":      func() { cfg.Workers = f.v.Workers },
		"task-timeout": func() { cfg.TaskTimeout = f.v.TaskTimeout },
		"attempts":     func() { cfg.Attempts = f.v.Attempts },
		"ffmpeg":       func() { cfg.FFmpegBin = f.v.FFmpegBin },
		"ffprobe":      func() { cfg.FFprobeBin = f.v.FFprobeBin },
		"dry-run":      func() { cfg.DryRun = f.v.DryRun },
		"verbose":      func() { cfg.Verbose = f.v.Verbose },
		"log":          func() { cfg.LogFile = f.v.LogFile },
		"metrics-file": func() { cfg.MetricsFile = f.v.MetricsFile },
		"check":        func() { cfg.CheckOnly = f.v.CheckOnly },
		"survey":       func() { cfg.Survey = f.v.Survey },
	}
	f.fs.Visit(func(fl *pflag.Flag) {
		if set, ok := setters[fl.Name]; ok {
			set()
		}
	})

	n := &f.negated
	if n.noOverwrite {
		cfg.Overwrite = false
	}
	if n.noRecursive {
		cfg.Recursive = false
	}
	if n.noProgress {
		cfg.Progress = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// ParseColorMode converts user input into a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
}
