package ffmpeg

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoFrame reports an ffmpeg run that exited cleanly but left no usable
// output file, which is what a seek past the end of the stream looks like.
var ErrNoFrame = errors.New("no frame written")

// FailureKind buckets a failed extraction by its likely cause. It is used
// for diagnostics and to pick a fallback attempt; it never changes whether
// the cell is left blank.
type FailureKind int

const (
	KindUnknown FailureKind = iota
	KindSeekPastEnd
	KindInvalidInput
	KindPermission
	KindNoOutput
	KindTimeout
	KindCanceled
)

func (k FailureKind) String() string {
	switch k {
	case KindSeekPastEnd:
		return "seek past end"
	case KindInvalidInput:
		return "invalid input"
	case KindPermission:
		return "permission denied"
	case KindNoOutput:
		return "no output"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Label returns the hyphenated token used as a metric label value.
func (k FailureKind) Label() string {
	switch k {
	case KindSeekPastEnd:
		return "seek-past-end"
	case KindInvalidInput:
		return "invalid-input"
	case KindPermission:
		return "permission"
	case KindNoOutput:
		return "no-output"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Pre-compiled regexes for classifying ffmpeg stderr. [Classify] checks
// them in declaration order.
var (
	rePermission = regexp.MustCompile(
		`(?i)Permission denied|Operation not permitted|Read-only file system`)

	reSeekPastEnd = regexp.MustCompile(
		`(?i)Output file is empty|nothing was encoded|could not seek|` +
			`seek.*(failed|beyond)|End of file`)

	reInvalidInput = regexp.MustCompile(
		`(?i)Invalid data found when processing input|moov atom not found|` +
			`could not find codec parameters|No such file or directory|` +
			`Error while decoding stream|Invalid NAL unit|decode_slice_header error|` +
			`Error opening input`)

	reTimestampIssue = regexp.MustCompile(
		`(?i)Non-monotonous DTS|non monotonically increasing dts|` +
			`DTS .*out of order|PTS .*out of order|` +
			`pts has no value|missing PTS|Timestamps are unset`)
)

// Classify maps ffmpeg stderr to a FailureKind.
func Classify(stderr string) FailureKind {
	switch {
	case rePermission.MatchString(stderr):
		return KindPermission
	case reSeekPastEnd.MatchString(stderr):
		return KindSeekPastEnd
	case reInvalidInput.MatchString(stderr):
		return KindInvalidInput
	default:
		return KindUnknown
	}
}

// MatchTimestampIssue reports whether stderr contains a timestamp discontinuity.
func MatchTimestampIssue(stderr string) bool {
	return reTimestampIssue.MatchString(stderr)
}

// ExtractionFailure records why one cell has no frame. It carries the
// command that was run and its stderr so the failure can be reproduced by
// hand.
type ExtractionFailure struct {
	Kind     FailureKind
	Reason   string
	Command  []string
	Stderr   string
	Err      error
	Attempts int
}

func (f *ExtractionFailure) Error() string {
	var b strings.Builder
	b.WriteString("frame extraction failed: ")
	b.WriteString(f.Reason)
	if f.Attempts > 1 {
		fmt.Fprintf(&b, " (after %d attempts)", f.Attempts)
	}
	return b.String()
}

func (f *ExtractionFailure) Unwrap() error { return f.Err }

// CommandLine renders the argument vector for diagnostics.
func (f *ExtractionFailure) CommandLine() string {
	return strings.Join(f.Command, " ")
}

// StderrTail returns at most the last n non-blank lines of stderr.
func (f *ExtractionFailure) StderrTail(n int) []string {
	var lines []string
	for _, line := range strings.Split(f.Stderr, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, "\r"))
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

func newFailure(kind FailureKind, reason string, cmd []string, stderr string, err error) *ExtractionFailure {
	return &ExtractionFailure{
		Kind:    kind,
		Reason:  reason,
		Command: cmd,
		Stderr:  stderr,
		Err:     err,
	}
}
