package ffmpeg

import (
	"fmt"
	"strconv"

	"github.com/backmassage/contactsheet/internal/schedule"
)

// Job is the complete input for one frame extraction.
type Job struct {
	Timestamp schedule.Timestamp
	Input     string // source video path
	Width     int    // target frame width
	Height    int    // target frame height
	Output    string // JPEG path to write
}

// SnapshotArgs returns the argument vector (without the binary) for a
// first-attempt snapshot: fast input-side seek, one frame, scaled to the
// thumbnail size.
func SnapshotArgs(job Job) []string {
	return BuildArgs(job, nil)
}

// BuildArgs returns the argument vector for job, adjusted by the fallbacks
// recorded in rs. A nil rs yields the first-attempt command.
//
// The command is always an argument vector; paths are never interpolated
// into a shell string.
func BuildArgs(job Job, rs *RetryState) []string {
	args := make([]string, 0, 24)
	args = append(args, "-hide_banner", "-nostdin", "-loglevel", "error")

	seek := strconv.Itoa(job.Timestamp.Seconds)
	accurate := rs != nil && rs.AccurateSeek

	if rs != nil && rs.TimestampFix {
		args = append(args, "-fflags", "+genpts+discardcorrupt")
	}

	// Input-side -ss jumps to the nearest keyframe before decoding; output-side
	// -ss decodes from the start and is exact but slow.
	if !accurate {
		args = append(args, "-ss", seek)
	}
	args = append(args, "-i", job.Input)
	if accurate {
		args = append(args, "-ss", seek)
	}

	args = append(args,
		"-frames:v", "1",
		"-f", "image2",
		"-s", fmt.Sprintf("%dx%d", job.Width, job.Height),
		"-y", job.Output,
	)
	return args
}
