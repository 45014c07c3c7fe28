package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/contactsheet/internal/config"
	"github.com/backmassage/contactsheet/internal/logging"
	"github.com/backmassage/contactsheet/internal/probe"
	"github.com/backmassage/contactsheet/internal/schedule"
)

// SurveyRow is the probed data for one video in a survey.
type SurveyRow struct {
	Name        string
	Duration    int
	Resolution  string
	ThumbHeight int
	SheetExists bool
}

// SurveyStats summarizes a survey.
type SurveyStats struct {
	Videos   int
	Probed   int
	Missing  int // probed videos without a sheet yet
	Failed   int
	Duration int // seconds, across probed videos
}

// Survey expands cfg.Inputs, probes every video and prints a table of what
// a run would produce, without extracting anything. p may be nil.
func Survey(ctx context.Context, cfg config.Config, log *logging.Logger, p Prober, w io.Writer) (SurveyStats, error) {
	var stats SurveyStats
	if p == nil {
		p = probe.NewProber(cfg.FFprobeBin)
	}

	files, err := ExpandInputs(cfg.Inputs, cfg.Recursive)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return stats, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return stats, err
	}

	var rows []SurveyRow
	for _, path := range files {
		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}
		stats.Videos++

		src, err := NewVideoSource(path, cwd)
		if err != nil {
			stats.Failed++
			log.Warn("Skip (unsupported): %s", filepath.Base(path))
			continue
		}
		pr, err := src.Probe(ctx, p)
		if err != nil {
			stats.Failed++
			log.Warn("Skip (probe failed): %s: %v", filepath.Base(path), err)
			continue
		}

		vw, vh := pr.Dimensions()
		row := SurveyRow{
			Name:        filepath.Base(path),
			Duration:    pr.DurationSeconds(),
			Resolution:  pr.Resolution(),
			ThumbHeight: schedule.ThumbHeight(cfg.ThumbWidth, vw, vh),
		}
		if _, err := os.Stat(src.SheetPath); err == nil {
			row.SheetExists = true
		} else {
			stats.Missing++
		}
		stats.Probed++
		stats.Duration += row.Duration
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		log.Warn("No videos could be probed")
		return stats, nil
	}
	printSurveyTable(w, rows, cfg.ThumbWidth)
	log.Info("%d videos, %d probed, %d without a sheet, %d failed, total running time %s",
		stats.Videos, stats.Probed, stats.Missing, stats.Failed, schedule.FormatClock(stats.Duration))
	return stats, nil
}

func printSurveyTable(w io.Writer, rows []SurveyRow, thumbWidth int) {
	nameW := len("File")
	resW := len("Resolution")
	for _, r := range rows {
		if len(r.Name) > nameW {
			nameW = len(r.Name)
		}
		if len(r.Resolution) > resW {
			resW = len(r.Resolution)
		}
	}
	if nameW > 50 {
		nameW = 50
	}

	header := fmt.Sprintf("  %-*s  %9s  %-*s  %-9s  %s", nameW, "File", "Duration", resW, "Resolution", "Thumb", "Sheet")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "  "+strings.Repeat("─", len(header)-2))

	for _, r := range rows {
		name := r.Name
		if len(name) > nameW {
			name = name[:nameW-1] + "…"
		}
		sheet := "missing"
		if r.SheetExists {
			sheet = "exists"
		}
		fmt.Fprintf(w, "  %-*s  %9s  %-*s  %-9s  %s\n",
			nameW, name,
			schedule.FormatClock(r.Duration),
			resW, r.Resolution,
			fmt.Sprintf("%dx%d", thumbWidth, r.ThumbHeight),
			sheet,
		)
	}
	fmt.Fprintln(w)
}
