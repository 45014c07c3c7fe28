package pipeline

import (
	"context"
	"path/filepath"

	"github.com/backmassage/contactsheet/internal/config"
	"github.com/backmassage/contactsheet/internal/display"
	"github.com/backmassage/contactsheet/internal/logging"
	"github.com/backmassage/contactsheet/internal/naming"
)

// Run is the top-level batch entry point. It expands inputs, then generates
// one sheet per video sequentially. A failed video never stops the batch;
// only a canceled context does. The error is non-nil only when the batch
// could not start.
func Run(ctx context.Context, cfg config.Config, log *logging.Logger, deps Deps) (RunStats, error) {
	var stats RunStats

	files, err := ExpandInputs(cfg.Inputs, cfg.Recursive)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return stats, err
	}
	stats.Total = len(files)
	if stats.Total == 0 {
		log.Warn("No videos found")
		return stats, nil
	}

	if deps.Claims == nil {
		deps.Claims = naming.NewClaims()
	}
	gen, err := NewGenerator(cfg, log, deps)
	if err != nil {
		log.Error("Cannot start: %v", err)
		return stats, err
	}
	defer gen.Close()

	logBatchHeader(&cfg, log, &stats)

	for i, path := range files {
		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}
		stats.Current = i + 1
		log.Info("[%d/%d] %s", stats.Current, stats.Total, filepath.Base(path))
		stats.Add(gen.Generate(ctx, path))
	}

	logSummary(&cfg, log, &stats)
	return stats, nil
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Found %d videos", stats.Total)
	log.Info("Grid: %s, thumbnails %dpx wide, first frame at +%ds",
		display.FormatGrid(cfg.Rows, cfg.Cols), cfg.ThumbWidth, cfg.LeadOffset)
	log.Info("Workers: %d, per-frame timeout: %s, attempts: %d",
		cfg.EffectiveWorkers(), cfg.TaskTimeout, cfg.Attempts)
	if !cfg.Overwrite {
		log.Info("Existing sheets: keep (skip)")
	}
	if cfg.DryRun {
		log.Info("Dry run: nothing will be written")
	}
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d written, %d skipped, %d failed", stats.Done, stats.Skipped, stats.Failed)
	log.Info("Summary report:")
	log.Info("  Total videos processed: %d", stats.Current)

	if cfg.DryRun {
		log.Info("  Sheets written: n/a (dry run)")
		return
	}
	if stats.Done > 0 {
		log.Success("  Sheets written: %s", display.FormatBytes(stats.BytesWritten))
	}
	if stats.BlankCells > 0 {
		log.Warn("  Blank cells: %d (frames that could not be extracted)", stats.BlankCells)
	}
}
