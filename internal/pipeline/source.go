package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/backmassage/contactsheet/internal/naming"
	"github.com/backmassage/contactsheet/internal/probe"
)

// ErrUnsupportedFormat rejects files whose extension is not a known
// container.
var ErrUnsupportedFormat = errors.New("unsupported video format")

// videoExtensions is the container allow-list (lowercase, with leading dot).
var videoExtensions = map[string]bool{
	".m4v": true,
	".wmv": true,
	".avi": true,
	".mkv": true,
	".mp4": true,
	".vob": true,
}

// IsVideoFile reports whether path has an allow-listed extension, compared
// case-insensitively.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// Prober is satisfied by *probe.Prober.
type Prober interface {
	Probe(ctx context.Context, path string) (*probe.ProbeResult, error)
}

// VideoSource is a validated input video and the sheet path derived from
// it. Its probe result is computed on first use and cached.
type VideoSource struct {
	Path      string
	SheetPath string

	mu     sync.Mutex
	probed bool
	result *probe.ProbeResult
	err    error
}

// NewVideoSource validates path against the extension allow-list and
// derives the sheet path relative to cwd. It never touches the file.
func NewVideoSource(path, cwd string) (*VideoSource, error) {
	if !IsVideoFile(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return &VideoSource{
		Path:      path,
		SheetPath: naming.SheetPath(path, cwd),
	}, nil
}

// Probe returns the cached probe result, running p at most once per
// VideoSource. A failed probe is cached too; probe errors are not retried.
func (v *VideoSource) Probe(ctx context.Context, p Prober) (*probe.ProbeResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.probed {
		v.result, v.err = p.Probe(ctx, v.Path)
		v.probed = true
	}
	return v.result, v.err
}
