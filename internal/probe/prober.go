package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes one command and returns its separated output streams.
// Tests substitute a fake; production uses exec.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// Prober runs ffprobe. The zero value is not usable; call [NewProber].
type Prober struct {
	Binary string
	run    Runner
}

// NewProber returns a Prober invoking binary (usually "ffprobe").
func NewProber(binary string) *Prober {
	return &Prober{Binary: binary, run: execRunner}
}

// NewProberWithRunner returns a Prober that executes through run.
func NewProberWithRunner(binary string, run Runner) *Prober {
	return &Prober{Binary: binary, run: run}
}

// Probe runs a single ffprobe JSON call against path and returns the parsed
// result. It has no side effects beyond the subprocess, so repeated calls
// are safe; callers cache the result.
func (p *Prober) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	args := Args(path)
	stdout, stderr, err := p.run(ctx, p.Binary, args...)
	if err != nil || len(bytes.TrimSpace(stderr)) > 0 {
		return nil, fmt.Errorf("%s: %w", path, &ToolError{
			Command: append([]string{p.Binary}, args...),
			Stderr:  string(stderr),
			Err:     err,
		})
	}

	pr, err := ParseJSON(stdout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pr, nil
}

// Args returns the ffprobe argument vector (without the binary) for path.
// Errors stay on stderr so Probe can report them.
func Args(path string) []string {
	return []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	}
}

// ParseJSON converts raw ffprobe JSON output into a ProbeResult.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*ProbeResult, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if raw.Format.Duration == nil {
		return nil, fmt.Errorf("%w: format.duration missing", ErrParse)
	}
	return buildResult(&raw)
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string  `json:"filename"`
	FormatName string  `json:"format_name"`
	Duration   *number `json:"duration"`
	Size       string  `json:"size"`
	BitRate    string  `json:"bit_rate"`
}

type ffprobeStream struct {
	Index       int            `json:"index"`
	CodecName   string         `json:"codec_name"`
	CodecType   string         `json:"codec_type"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Disposition map[string]int `json:"disposition"`
}

// number accepts both encodings ffprobe and its wrappers emit for numeric
// fields: a JSON string ("1437.123000") or a bare JSON number.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", string(b))
	}
	*n = number(f)
	return nil
}

// --- Conversion from wire types to domain types ---

func buildResult(raw *ffprobeOutput) (*ProbeResult, error) {
	pr := &ProbeResult{
		Format: FormatInfo{
			Filename:   raw.Format.Filename,
			FormatName: raw.Format.FormatName,
			Duration:   float64(*raw.Format.Duration),
			Size:       parseInt64(raw.Format.Size),
			BitRate:    parseInt64(raw.Format.BitRate),
		},
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType != "video" {
			continue
		}
		pr.VideoStreamCount++
		if pr.PrimaryVideo == nil {
			pr.PrimaryVideo = &VideoStream{
				Index:         s.Index,
				Codec:         s.CodecName,
				Width:         s.Width,
				Height:        s.Height,
				IsAttachedPic: s.Disposition["attached_pic"] == 1,
			}
		}
	}

	if pr.PrimaryVideo == nil {
		return nil, ErrNoVideoStream
	}
	if pr.PrimaryVideo.Width <= 0 || pr.PrimaryVideo.Height <= 0 {
		return nil, fmt.Errorf("%w: stream %d has no dimensions", ErrNoVideoStream, pr.PrimaryVideo.Index)
	}
	if pr.VideoStreamCount > 1 {
		pr.Warnings = append(pr.Warnings,
			fmt.Sprintf("%d video streams detected, using stream %d", pr.VideoStreamCount, pr.PrimaryVideo.Index))
	}
	return pr, nil
}

// parseInt64 reads ffprobe's string-encoded integers; blanks become 0.
func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
