package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/contactsheet/internal/config"
	"github.com/backmassage/contactsheet/internal/schedule"
)

// Logger is the subset of the application logger the extractor uses.
type Logger interface {
	Debug(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}

// Batch is one video's worth of extraction work.
type Batch struct {
	Input      string
	Timestamps []schedule.Timestamp
	Width      int
	Height     int
	OutputDir  string // must exist; owned by the caller

	// Progress, if set, is called once per finished cell. It may be called
	// from several goroutines at once.
	Progress func()
}

// Outcome is the result for one grid cell: either Path names a non-empty
// JPEG or Failure says why there is none.
type Outcome struct {
	Timestamp schedule.Timestamp
	Path      string
	Attempts  int
	Failure   *ExtractionFailure
}

// OK reports whether the cell has a frame on disk.
func (o Outcome) OK() bool { return o.Failure == nil && o.Path != "" }

// Outcomes maps cell index to its outcome. Every scheduled index is present.
type Outcomes map[int]Outcome

// Failed returns the failed outcomes ordered by cell index.
func (o Outcomes) Failed() []Outcome {
	var out []Outcome
	for _, oc := range o {
		if !oc.OK() {
			out = append(out, oc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Index < out[j].Timestamp.Index })
	return out
}

// Succeeded counts cells with a frame.
func (o Outcomes) Succeeded() int {
	n := 0
	for _, oc := range o {
		if oc.OK() {
			n++
		}
	}
	return n
}

// Extractor runs ffmpeg snapshot jobs on a bounded pool. It holds no
// per-batch state and may be reused across videos.
type Extractor struct {
	Binary      string
	Workers     int           // pool size; <= 0 means runtime.NumCPU()
	TaskTimeout time.Duration // per attempt; 0 disables
	MaxAttempts int           // total runs per frame including fallbacks

	log Logger
	run Runner
}

// NewExtractor returns an Extractor configured from cfg.
func NewExtractor(cfg *config.Config, log Logger) *Extractor {
	return NewExtractorWithRunner(cfg, log, execRunner)
}

// NewExtractorWithRunner is NewExtractor with an injected process runner.
func NewExtractorWithRunner(cfg *config.Config, log Logger, run Runner) *Extractor {
	if log == nil {
		log = nopLogger{}
	}
	return &Extractor{
		Binary:      cfg.FFmpegBin,
		Workers:     cfg.EffectiveWorkers(),
		TaskTimeout: cfg.TaskTimeout,
		MaxAttempts: cfg.Attempts,
		log:         log,
		run:         run,
	}
}

// ExtractAll extracts one frame per timestamp and returns an outcome for
// every cell. It blocks until all started tasks have finished.
//
// Tasks do not cancel each other. When ctx is canceled, running ffmpeg
// processes are killed and cells not yet started are marked canceled.
// Output files are left in b.OutputDir for the caller to remove.
func (e *Extractor) ExtractAll(ctx context.Context, b Batch) Outcomes {
	out := make(Outcomes, len(b.Timestamps))
	var mu sync.Mutex
	record := func(o Outcome) {
		mu.Lock()
		out[o.Timestamp.Index] = o
		mu.Unlock()
		if b.Progress != nil {
			b.Progress()
		}
	}

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var g errgroup.Group
	g.SetLimit(workers)

	for _, ts := range b.Timestamps {
		if err := ctx.Err(); err != nil {
			record(canceledOutcome(ts, err))
			continue
		}
		job := Job{
			Timestamp: ts,
			Input:     b.Input,
			Width:     b.Width,
			Height:    b.Height,
			Output:    filepath.Join(b.OutputDir, fmt.Sprintf("%d-%s.jpg", ts.Index, uuid.NewString())),
		}
		g.Go(func() error {
			record(e.extract(ctx, job))
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// extract runs job, applying fallbacks until it produces a frame or the
// retry state gives up.
func (e *Extractor) extract(ctx context.Context, job Job) Outcome {
	if err := ctx.Err(); err != nil {
		return canceledOutcome(job.Timestamp, err)
	}

	rs := NewRetryState(e.MaxAttempts)
	for {
		f := e.attempt(ctx, job, rs)
		if f == nil {
			return Outcome{Timestamp: job.Timestamp, Path: job.Output, Attempts: rs.Attempt + 1}
		}
		f.Attempts = rs.Attempt + 1

		action := rs.Advance(f)
		if action == RetryNone {
			_ = os.Remove(job.Output)
			return Outcome{Timestamp: job.Timestamp, Attempts: f.Attempts, Failure: f}
		}
		e.log.Debug("frame %d at %s: %s, retrying with %s",
			job.Timestamp.Index, job.Timestamp.Label(), f.Reason, action)
	}
}

// attempt performs one ffmpeg run and checks its output. A nil return
// means the output file exists and is non-empty.
func (e *Extractor) attempt(ctx context.Context, job Job, rs *RetryState) *ExtractionFailure {
	tctx := ctx
	if e.TaskTimeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, e.TaskTimeout)
		defer cancel()
	}

	args := BuildArgs(job, rs)
	cmd := append([]string{e.Binary}, args...)
	e.log.Debug("running: %s", strings.Join(cmd, " "))

	res := Execute(tctx, e.run, e.Binary, args)

	switch {
	case ctx.Err() != nil:
		return newFailure(KindCanceled, "canceled", cmd, res.Stderr, ctx.Err())
	case errors.Is(tctx.Err(), context.DeadlineExceeded):
		return newFailure(KindTimeout, fmt.Sprintf("timed out after %s", e.TaskTimeout),
			cmd, res.Stderr, context.DeadlineExceeded)
	case res.Err != nil:
		kind := Classify(res.Stderr)
		return newFailure(kind, fmt.Sprintf("%s (%v)", kind, res.Err), cmd, res.Stderr, res.Err)
	}

	info, err := os.Stat(job.Output)
	if err != nil || info.Size() == 0 {
		kind := Classify(res.Stderr)
		if kind == KindUnknown {
			kind = KindNoOutput
		}
		return newFailure(kind, fmt.Sprintf("%s: %v", kind, ErrNoFrame), cmd, res.Stderr, ErrNoFrame)
	}
	return nil
}

func canceledOutcome(ts schedule.Timestamp, err error) Outcome {
	return Outcome{
		Timestamp: ts,
		Failure:   newFailure(KindCanceled, "canceled", nil, "", err),
	}
}
