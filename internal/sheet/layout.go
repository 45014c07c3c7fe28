// Package sheet lays out and renders contact sheets: a white canvas holding a
// grid of timecode-labeled thumbnails.
package sheet

import (
	"errors"
	"fmt"
	"image"

	"github.com/backmassage/contactsheet/internal/config"
)

// ErrComposition wraps every error that stops a sheet from being built or
// written.
var ErrComposition = errors.New("composition failed")

// maxCanvasPixels bounds the canvas allocation (about 1 GiB of RGBA).
const maxCanvasPixels = 1 << 28

// Layout is the pixel geometry of one sheet. ThumbHeight is derived per
// video from the source aspect ratio; everything else comes from config.
type Layout struct {
	Rows        int
	Cols        int
	ThumbWidth  int
	ThumbHeight int
	MarginV     int // top and bottom
	MarginH     int // left and right
	VSpace      int // between rows
	HSpace      int // between columns
}

// NewLayout builds the layout for a video whose thumbnails are thumbHeight
// pixels tall.
func NewLayout(cfg *config.Config, thumbHeight int) Layout {
	return Layout{
		Rows:        cfg.Rows,
		Cols:        cfg.Cols,
		ThumbWidth:  cfg.ThumbWidth,
		ThumbHeight: thumbHeight,
		MarginV:     cfg.MarginV,
		MarginH:     cfg.MarginH,
		VSpace:      cfg.VSpace,
		HSpace:      cfg.HSpace,
	}
}

// Validate rejects geometry that cannot produce a canvas.
func (l Layout) Validate() error {
	if l.Rows < 1 || l.Cols < 1 {
		return fmt.Errorf("%w: grid %dx%d", ErrComposition, l.Rows, l.Cols)
	}
	if l.ThumbWidth < 1 || l.ThumbHeight < 1 {
		return fmt.Errorf("%w: thumbnail %dx%d", ErrComposition, l.ThumbWidth, l.ThumbHeight)
	}
	if l.MarginV < 0 || l.MarginH < 0 || l.VSpace < 0 || l.HSpace < 0 {
		return fmt.Errorf("%w: negative margin or spacing", ErrComposition)
	}
	w, h := l.CanvasSize()
	if int64(w)*int64(h) > maxCanvasPixels {
		return fmt.Errorf("%w: canvas %dx%d too large", ErrComposition, w, h)
	}
	return nil
}

// Cells is the number of grid cells.
func (l Layout) Cells() int { return l.Rows * l.Cols }

// CanvasSize returns the full sheet dimensions.
func (l Layout) CanvasSize() (width, height int) {
	width = l.Cols*l.ThumbWidth + 2*l.MarginH + l.HSpace*(l.Cols-1)
	height = l.Rows*l.ThumbHeight + 2*l.MarginV + l.VSpace*(l.Rows-1)
	return width, height
}

// CellOrigin returns the top-left pixel of a cell.
func (l Layout) CellOrigin(row, col int) image.Point {
	return image.Pt(
		l.MarginH+col*(l.ThumbWidth+l.HSpace),
		l.MarginV+row*(l.ThumbHeight+l.VSpace),
	)
}

// CellRect returns the thumbnail-sized rectangle of the cell at index,
// counted in row-major order.
func (l Layout) CellRect(index int) image.Rectangle {
	o := l.CellOrigin(index/l.Cols, index%l.Cols)
	return image.Rect(o.X, o.Y, o.X+l.ThumbWidth, o.Y+l.ThumbHeight)
}
