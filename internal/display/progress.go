package display

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Progress counts finished frame extractions for one video. A nil *Progress
// is valid and does nothing, so callers need no TTY checks of their own.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress draws a bar of total steps on w, labeled with desc.
func NewProgress(w io.Writer, total int, desc string) *Progress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &Progress{bar: bar}
}

// Step advances the bar by one. Safe for concurrent use.
func (p *Progress) Step() {
	if p == nil {
		return
	}
	_ = p.bar.Add(1)
}

// Finish completes and clears the bar.
func (p *Progress) Finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
}
