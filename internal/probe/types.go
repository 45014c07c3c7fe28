package probe

import "strconv"

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	FormatName string
	Duration   float64
	Size       int64
	BitRate    int64
}

// VideoStream holds the parsed properties of a single video stream.
type VideoStream struct {
	Index         int
	Codec         string
	Width         int
	Height        int
	IsAttachedPic bool
}

// ProbeResult is the parsed output of a single ffprobe JSON call. It is not
// modified after ParseJSON returns.
//
// PrimaryVideo is the first stream whose codec_type is "video". When more
// than one video stream exists the first still wins and a note is appended
// to Warnings.
type ProbeResult struct {
	Format           FormatInfo
	PrimaryVideo     *VideoStream
	VideoStreamCount int
	Warnings         []string
}

// DurationSeconds returns the container duration truncated to whole seconds.
func (p *ProbeResult) DurationSeconds() int {
	if p.Format.Duration <= 0 {
		return 0
	}
	return int(p.Format.Duration)
}

// Dimensions returns the primary video stream's width and height.
func (p *ProbeResult) Dimensions() (width, height int) {
	if p.PrimaryVideo == nil {
		return 0, 0
	}
	return p.PrimaryVideo.Width, p.PrimaryVideo.Height
}

// Resolution returns "WxH" for the primary video stream, or "unknown".
func (p *ProbeResult) Resolution() string {
	w, h := p.Dimensions()
	if w <= 0 || h <= 0 {
		return "unknown"
	}
	return strconv.Itoa(w) + "x" + strconv.Itoa(h)
}
