// Package schedule computes where in a video each contact-sheet frame is
// taken from. Everything here is pure arithmetic on whole seconds.
package schedule

import (
	"fmt"
	"math"
)

// Timestamp is one extraction point paired with its grid cell. Index is the
// row-major cell number (Row*cols + Col).
type Timestamp struct {
	Index   int
	Row     int
	Col     int
	Seconds int
}

// Label renders the offset as H:MM:SS, the text stamped onto each frame.
func (t Timestamp) Label() string {
	return FormatClock(t.Seconds)
}

// FormatClock renders whole seconds as H:MM:SS. Hours are not zero-padded
// and are not capped at 24.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

// Schedule returns rows*cols timestamps in row-major order. Entry i sits at
// floor(duration*i/n); leadOffset is added to entry 0 only, to step past a
// black opening frame. A zero duration yields [leadOffset, 0, 0, ...].
func Schedule(durationSeconds, rows, cols, leadOffset int) []Timestamp {
	if rows < 1 || cols < 1 {
		return nil
	}
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	n := rows * cols
	out := make([]Timestamp, n)
	for i := range out {
		out[i] = Timestamp{
			Index:   i,
			Row:     i / cols,
			Col:     i % cols,
			Seconds: int(int64(durationSeconds) * int64(i) / int64(n)),
		}
	}
	out[0].Seconds += leadOffset
	return out
}

// ThumbHeight scales thumbWidth by the source aspect ratio, rounding to the
// nearest pixel. The result is at least 1.
func ThumbHeight(thumbWidth, videoWidth, videoHeight int) int {
	if thumbWidth <= 0 || videoWidth <= 0 || videoHeight <= 0 {
		return 1
	}
	h := int(math.Round(float64(thumbWidth) * float64(videoHeight) / float64(videoWidth)))
	if h < 1 {
		return 1
	}
	return h
}
