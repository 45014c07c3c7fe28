package ffmpeg

import (
	"bytes"
	"context"
	"os/exec"
)

// Runner executes one command and returns whatever it wrote to stderr.
// Tests substitute a fake that writes the output file itself.
type Runner func(ctx context.Context, name string, args ...string) (stderr []byte, err error)

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stderr string
	Err    error
}

// Execute runs bin with args through run and captures stderr for failure
// classification. Stdout is discarded; ffmpeg writes frames to a file.
func Execute(ctx context.Context, run Runner, bin string, args []string) ExecResult {
	stderr, err := run(ctx, bin, args...)
	return ExecResult{
		Stderr: string(stderr),
		Err:    err,
	}
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderrBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderrBuf
	err := cmd.Run()
	return stderrBuf.Bytes(), err
}
