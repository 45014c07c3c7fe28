// Command contactsheet renders a grid of timestamped thumbnails for each
// video it is given.
//
// It loads configuration (defaults, YAML file, CONTACTSHEET_* environment,
// then flags), validates it, and either runs system diagnostics (--check),
// prints a probe-only survey (--survey), or generates sheets.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/contactsheet/internal/check"
	"github.com/backmassage/contactsheet/internal/config"
	"github.com/backmassage/contactsheet/internal/display"
	"github.com/backmassage/contactsheet/internal/logging"
	"github.com/backmassage/contactsheet/internal/metrics"
	"github.com/backmassage/contactsheet/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	code := 0
	cmd := newRootCmd(&code)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "contactsheet: %v\n", err)
		return 1
	}
	return code
}

func newRootCmd(code *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "contactsheet [flags] <video|dir>...",
		Short:         "Render a contact sheet of timestamped thumbnails for each video",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := config.RegisterFlags(cmd.Flags())
	cmd.RunE = func(c *cobra.Command, args []string) error {
		*code = execute(c.Context(), flags, args, c.OutOrStdout())
		return nil
	}
	return cmd
}

func execute(parent context.Context, flags *config.Flags, args []string, stdout io.Writer) int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr.
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "contactsheet: %v\n", err)
		return 1
	}
	flags.Apply(&cfg)
	cfg.Inputs = args

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "contactsheet: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "contactsheet: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available.
	display.PrintBanner(stdout, log.ColorEnabled())

	if parent == nil {
		parent = context.Background()
	}
	checker := check.New(&cfg)
	if cfg.CheckOnly {
		if !checker.RunCheck(parent, log) {
			return 1
		}
		return 0
	}

	log.Info("=== contactsheet v%s (%s) ===", version, commit)
	if cfg.DryRun {
		log.Warn("DRY RUN: no sheets will be written")
	}

	// Fail fast if ffmpeg or ffprobe is unavailable. A dry run calls neither.
	if !cfg.DryRun {
		if err := checker.CheckDeps(); err != nil {
			log.Error("%v", err)
			return 1
		}
	}

	// Phase 3: Signal handling. Cancelling stops between videos and kills
	// running extractions; the current video's temp frames are still removed.
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, stopping…")
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.Survey {
		if _, err := pipeline.Survey(ctx, cfg, log, nil, stdout); err != nil {
			return 1
		}
		return 0
	}

	// Phase 4: Generate.
	deps := pipeline.Deps{}
	if cfg.MetricsFile != "" {
		deps.Metrics = metrics.New()
	}
	if cfg.Progress && logging.IsTerminal(os.Stderr) {
		deps.Progress = os.Stderr
	}

	stats, err := pipeline.Run(ctx, cfg, log, deps)

	if werr := deps.Metrics.WriteTextfile(cfg.MetricsFile); werr != nil {
		log.Warn("Cannot write metrics to %s: %v", cfg.MetricsFile, werr)
	}

	if err != nil || !stats.OK() || ctx.Err() != nil {
		return 1
	}
	return 0
}
