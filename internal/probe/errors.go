package probe

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned (wrapped) by Probe and ParseJSON.
var (
	ErrNotFound      = errors.New("video file not found")
	ErrProbeTool     = errors.New("ffprobe failed")
	ErrParse         = errors.New("cannot parse ffprobe output")
	ErrNoVideoStream = errors.New("no video stream")
)

// ToolError describes an ffprobe run that exited non-zero or wrote to its
// error stream. errors.Is(err, ErrProbeTool) matches it.
type ToolError struct {
	Command []string
	Stderr  string
	Err     error // exit error; nil when only stderr output was seen
}

func (e *ToolError) Error() string {
	var b strings.Builder
	b.WriteString(ErrProbeTool.Error())
	if e.Err != nil {
		fmt.Fprintf(&b, " (%v)", e.Err)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		fmt.Fprintf(&b, ": %s", msg)
	}
	return b.String()
}

func (e *ToolError) Unwrap() error { return e.Err }

// Is reports a match against ErrProbeTool.
func (e *ToolError) Is(target error) bool { return target == ErrProbeTool }

// CommandLine renders the argument vector for diagnostics.
func (e *ToolError) CommandLine() string {
	return strings.Join(e.Command, " ")
}
