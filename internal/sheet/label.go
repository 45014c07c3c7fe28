package sheet

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// labelInset is the distance of the label's top-left corner from the
// frame's top-left corner.
const labelInset = 10

// Labeler stamps timecodes onto frames with the embedded Go Regular face.
// It is not safe for concurrent use.
type Labeler struct {
	face font.Face
}

// NewLabeler parses the embedded font at the given point size (72 DPI, so
// points equal pixels).
func NewLabeler(size float64) (*Labeler, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return &Labeler{face: face}, nil
}

// Draw writes text near the top-left corner of dst in white over a one
// pixel black shadow, so it reads on both light and dark frames.
func (lb *Labeler) Draw(dst draw.Image, text string) {
	b := dst.Bounds()
	ascent := lb.face.Metrics().Ascent
	origin := fixed.Point26_6{
		X: fixed.I(b.Min.X + labelInset),
		Y: fixed.I(b.Min.Y+labelInset) + ascent,
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: lb.face,
		Dot:  origin.Add(fixed.P(1, 1)),
	}
	d.DrawString(text)

	d.Src = image.NewUniform(color.White)
	d.Dot = origin
	d.DrawString(text)
}

// Close releases the font face.
func (lb *Labeler) Close() error {
	return lb.face.Close()
}
