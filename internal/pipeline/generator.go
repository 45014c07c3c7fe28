package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/contactsheet/internal/config"
	"github.com/backmassage/contactsheet/internal/display"
	"github.com/backmassage/contactsheet/internal/ffmpeg"
	"github.com/backmassage/contactsheet/internal/logging"
	"github.com/backmassage/contactsheet/internal/metrics"
	"github.com/backmassage/contactsheet/internal/naming"
	"github.com/backmassage/contactsheet/internal/probe"
	"github.com/backmassage/contactsheet/internal/schedule"
	"github.com/backmassage/contactsheet/internal/sheet"
)

// ErrCleanup wraps a failure to remove a run's temporary frames. It is
// logged and never changes the run's status.
var ErrCleanup = errors.New("cleanup failed")

// ErrInterrupted marks a run abandoned because its context was canceled.
var ErrInterrupted = errors.New("interrupted")

// Stage is a step of the per-video state machine.
type Stage int

const (
	StageUninitialized Stage = iota
	StageValidated
	StageProbed
	StageScheduled
	StageExtracting
	StageComposing
	StageDone
	StageSkipped
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageUninitialized:
		return "uninitialized"
	case StageValidated:
		return "validated"
	case StageProbed:
		return "probed"
	case StageScheduled:
		return "scheduled"
	case StageExtracting:
		return "extracting"
	case StageComposing:
		return "composing"
	case StageDone:
		return "done"
	case StageSkipped:
		return "skipped"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Status is the terminal outcome of one video.
type Status int

const (
	StatusDone Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result reports what happened to one video.
type Result struct {
	Source    string
	SheetPath string
	Status    Status
	Stage     Stage // terminal stage: StageDone, StageSkipped or StageFailed
	FailedAt  Stage // stage in progress when a failure occurred
	Reason    string
	Err       error

	FramesTotal  int
	FramesFailed int
	Bytes        int64
	Elapsed      time.Duration
}

// FrameExtractor is satisfied by *ffmpeg.Extractor.
type FrameExtractor interface {
	ExtractAll(ctx context.Context, b ffmpeg.Batch) ffmpeg.Outcomes
}

// Deps are the Generator's collaborators. Zero fields get production
// defaults built from the config.
type Deps struct {
	Prober    Prober
	Extractor FrameExtractor
	Metrics   *metrics.Metrics
	Claims    *naming.Claims // batch-wide sheet path claims; nil disables
	Progress  io.Writer      // frame progress bars; nil disables
	WorkDir   string         // base for relative inputs; default os.Getwd
	TempDir   string         // parent of per-run frame directories; default os.TempDir
}

// Generator produces one contact sheet per call to Generate. It keeps no
// per-video state between calls, but is not safe for concurrent use: the
// labeler's font face is shared.
type Generator struct {
	cfg       config.Config
	log       *logging.Logger
	prober    Prober
	extractor FrameExtractor
	labeler   *sheet.Labeler
	metrics   *metrics.Metrics
	claims    *naming.Claims
	progress  io.Writer
	workDir   string
	tempDir   string
}

// NewGenerator builds a Generator. cfg is copied; later changes to the
// caller's value have no effect. Call Close when done.
func NewGenerator(cfg config.Config, log *logging.Logger, deps Deps) (*Generator, error) {
	if log == nil {
		log = logging.Nop()
	}
	g := &Generator{
		cfg:       cfg,
		log:       log,
		prober:    deps.Prober,
		extractor: deps.Extractor,
		metrics:   deps.Metrics,
		claims:    deps.Claims,
		progress:  deps.Progress,
		workDir:   deps.WorkDir,
		tempDir:   deps.TempDir,
	}
	if g.prober == nil {
		g.prober = probe.NewProber(g.cfg.FFprobeBin)
	}
	if g.extractor == nil {
		g.extractor = ffmpeg.NewExtractor(&g.cfg, log)
	}
	if g.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		g.workDir = wd
	}

	lb, err := sheet.NewLabeler(cfg.FontSize)
	if err != nil {
		return nil, err
	}
	g.labeler = lb
	return g, nil
}

// Close releases the label font.
func (g *Generator) Close() error {
	return g.labeler.Close()
}

// Generate runs the full state machine for one video and never panics on
// bad input: every outcome, including failures, is reported in the Result.
func (g *Generator) Generate(ctx context.Context, path string) (res Result) {
	start := time.Now()
	res = Result{Source: path, Stage: StageUninitialized}
	log := g.log.With("file", filepath.Base(path))

	defer func() {
		res.Elapsed = time.Since(start)
		g.metrics.SheetFinished(res.Status.String(), res.Bytes)
	}()

	// --- Validate ---
	src, err := NewVideoSource(path, g.workDir)
	if err != nil {
		return g.fail(log, res, "unsupported format", err)
	}
	if g.claims != nil {
		resolved, changed := g.claims.Claim(src.Path, src.SheetPath)
		if changed {
			log.Warn("%s already claimed in this run, writing %s", filepath.Base(src.SheetPath), filepath.Base(resolved))
		}
		src.SheetPath = resolved
	}
	res.SheetPath = src.SheetPath
	res.Stage = StageValidated

	// --- Skip-existing check ---
	if !g.cfg.Overwrite {
		if _, err := os.Stat(src.SheetPath); err == nil {
			log.Warn("Skip (exists): %s", filepath.Base(src.SheetPath))
			return skipped(res, "sheet exists")
		}
	}

	// --- Dry-run ---
	if g.cfg.DryRun {
		log.Success("[DRY] Would write %s", src.SheetPath)
		return skipped(res, "dry run")
	}

	// --- Probe ---
	stageStart := time.Now()
	pr, err := src.Probe(ctx, g.prober)
	g.metrics.ObserveStage(StageProbed.String(), time.Since(stageStart))
	if err != nil {
		return g.fail(log, res, "probe failed", err)
	}
	for _, w := range pr.Warnings {
		log.Warn("%s", w)
	}
	res.Stage = StageProbed

	// --- Schedule ---
	vw, vh := pr.Dimensions()
	thumbHeight := schedule.ThumbHeight(g.cfg.ThumbWidth, vw, vh)
	stamps := schedule.Schedule(pr.DurationSeconds(), g.cfg.Rows, g.cfg.Cols, g.cfg.LeadOffset)
	res.FramesTotal = len(stamps)

	composer, err := sheet.NewComposer(sheet.NewLayout(&g.cfg, thumbHeight), g.labeler, log)
	if err != nil {
		return g.fail(log, res, "invalid layout", err)
	}
	cw, ch := composer.Layout().CanvasSize()
	log.Info("%s, %s, %s grid of %dx%d -> %dx%d",
		schedule.FormatClock(pr.DurationSeconds()), pr.Resolution(),
		display.FormatGrid(g.cfg.Rows, g.cfg.Cols), g.cfg.ThumbWidth, thumbHeight, cw, ch)
	res.Stage = StageScheduled

	// --- Extract ---
	runID := uuid.NewString()
	tmp, err := os.MkdirTemp(g.tempDir, "contactsheet-"+runID[:8]+"-")
	if err != nil {
		return g.fail(log, res, "cannot create temp directory", err)
	}
	defer g.cleanup(log, tmp)
	log.Debug("run %s: frames in %s", runID, tmp)

	res.Stage = StageExtracting
	stageStart = time.Now()
	outcomes := g.extract(ctx, src.Path, stamps, thumbHeight, tmp)
	g.metrics.ObserveStage(StageExtracting.String(), time.Since(stageStart))

	if err := ctx.Err(); err != nil {
		return g.fail(log, res, "interrupted", fmt.Errorf("%w: %v", ErrInterrupted, err))
	}
	res.FramesFailed = g.reportFrames(log, outcomes)

	// --- Compose and save ---
	res.Stage = StageComposing
	stageStart = time.Now()
	frames := make(map[int]sheet.Frame, len(outcomes))
	for idx, oc := range outcomes {
		frames[idx] = sheet.Frame{Timestamp: oc.Timestamp, Path: oc.Path}
	}
	img, rep, err := composer.Compose(frames)
	if err != nil {
		return g.fail(log, res, "composition failed", err)
	}
	n, err := sheet.Save(img, src.SheetPath, g.cfg.JPEGQuality)
	g.metrics.ObserveStage(StageComposing.String(), time.Since(stageStart))
	if err != nil {
		return g.fail(log, res, "cannot save sheet", err)
	}

	res.Bytes = n
	res.Status = StatusDone
	res.Stage = StageDone
	if blank := len(rep.Skipped); blank > 0 {
		log.Success("Wrote %s (%d/%d cells, %d blank, %s)",
			filepath.Base(src.SheetPath), rep.Placed, res.FramesTotal, blank, display.FormatBytes(n))
	} else {
		log.Success("Wrote %s (%s)", filepath.Base(src.SheetPath), display.FormatBytes(n))
	}
	return res
}

func (g *Generator) extract(ctx context.Context, input string, stamps []schedule.Timestamp, thumbHeight int, dir string) ffmpeg.Outcomes {
	batch := ffmpeg.Batch{
		Input:      input,
		Timestamps: stamps,
		Width:      g.cfg.ThumbWidth,
		Height:     thumbHeight,
		OutputDir:  dir,
	}
	var bar *display.Progress
	if g.progress != nil {
		bar = display.NewProgress(g.progress, len(stamps), "frames")
		batch.Progress = bar.Step
	}
	outcomes := g.extractor.ExtractAll(ctx, batch)
	bar.Finish()
	return outcomes
}

// reportFrames logs failed cells with their diagnostics, feeds metrics and
// returns the number of blank cells.
func (g *Generator) reportFrames(log *logging.Logger, outcomes ffmpeg.Outcomes) int {
	failed := outcomes.Failed()
	for _, oc := range outcomes {
		if oc.OK() {
			g.metrics.FrameExtracted(oc.Attempts)
		}
	}
	for _, oc := range failed {
		f := oc.Failure
		if f == nil {
			f = &ffmpeg.ExtractionFailure{Kind: ffmpeg.KindNoOutput, Reason: "no frame"}
		}
		g.metrics.FrameFailed(f.Kind.Label(), oc.Attempts)
		log.Warn("Frame %d at %s failed: %s", oc.Timestamp.Index, oc.Timestamp.Label(), f.Reason)
		if len(f.Command) > 0 {
			log.Debug("  command: %s", f.CommandLine())
		}
		for _, line := range f.StderrTail(stderrTailLines) {
			log.Debug("  %s", line)
		}
	}
	return len(failed)
}

const stderrTailLines = 20

// cleanup removes the run's temp directory. Failures are reported, never
// propagated.
func (g *Generator) cleanup(log *logging.Logger, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Warn("%v", fmt.Errorf("%w: %s: %v", ErrCleanup, dir, err))
	}
}

func (g *Generator) fail(log *logging.Logger, res Result, reason string, err error) Result {
	res.FailedAt = res.Stage
	res.Stage = StageFailed
	res.Status = StatusFailed
	res.Reason = reason
	res.Err = err
	log.Error("%s: %v", reason, err)
	return res
}

func skipped(res Result, reason string) Result {
	res.Stage = StageSkipped
	res.Status = StatusSkipped
	res.Reason = reason
	return res
}
