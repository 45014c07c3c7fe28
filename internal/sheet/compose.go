package sheet

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // frame decoder
	"os"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	"github.com/backmassage/contactsheet/internal/schedule"
)

// Logger is the subset of the application logger the composer uses.
type Logger interface {
	Warn(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{}) {}

// Frame is one cell's input. An empty Path means extraction failed and the
// cell stays blank.
type Frame struct {
	Timestamp schedule.Timestamp
	Path      string
}

// Skip records a cell left blank and why.
type Skip struct {
	Index  int
	Label  string
	Reason string
}

// Report summarizes one composition.
type Report struct {
	Placed  int
	Skipped []Skip
}

// Composer renders frames onto a canvas. It only builds the image; [Save]
// persists it.
type Composer struct {
	layout  Layout
	labeler *Labeler
	log     Logger
}

// NewComposer validates layout and returns a Composer. log may be nil.
func NewComposer(layout Layout, labeler *Labeler, log Logger) (*Composer, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if labeler == nil {
		return nil, fmt.Errorf("%w: no labeler", ErrComposition)
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Composer{layout: layout, labeler: labeler, log: log}, nil
}

// Layout returns the composer's geometry.
func (c *Composer) Layout() Layout { return c.layout }

// Compose allocates a white canvas and pastes every available frame at its
// cell in row-major order. Missing frames and frames that fail to decode
// are skipped and reported; neither fails the composition.
func (c *Composer) Compose(frames map[int]Frame) (*image.RGBA, Report, error) {
	w, h := c.layout.CanvasSize()
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	var rep Report
	for i := 0; i < c.layout.Cells(); i++ {
		fr, ok := frames[i]
		if !ok {
			c.skip(&rep, i, "-", "no frame scheduled")
			continue
		}
		if fr.Path == "" {
			c.skip(&rep, i, fr.Timestamp.Label(), "no frame extracted")
			continue
		}
		thumb, err := c.renderThumb(fr)
		if err != nil {
			c.skip(&rep, i, fr.Timestamp.Label(), err.Error())
			continue
		}
		cell := c.layout.CellRect(i)
		tb := thumb.Bounds()
		draw.Draw(canvas, image.Rectangle{Min: cell.Min, Max: cell.Min.Add(tb.Size())}, thumb, tb.Min, draw.Src)
		rep.Placed++
	}
	return canvas, rep, nil
}

func (c *Composer) skip(rep *Report, index int, label, reason string) {
	rep.Skipped = append(rep.Skipped, Skip{Index: index, Label: label, Reason: reason})
	c.log.Warn("cell %d (%s) left blank: %s", index, label, reason)
}

// renderThumb decodes a frame, stamps its timecode and shrinks it to fit the
// cell if ffmpeg produced something larger.
func (c *Composer) renderThumb(fr Frame) (image.Image, error) {
	src, err := decodeFile(fr.Path)
	if err != nil {
		return nil, err
	}

	sb := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, sb.Min, draw.Src)
	c.labeler.Draw(rgba, fr.Timestamp.Label())

	tw, th := c.layout.ThumbWidth, c.layout.ThumbHeight
	if sb.Dx() <= tw && sb.Dy() <= th {
		return rgba, nil
	}
	return resize.Thumbnail(uint(tw), uint(th), rgba, resize.Lanczos3), nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}
