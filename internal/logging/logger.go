// Package logging provides the leveled console logger used across the
// pipeline, backed by zerolog. Console output is human-formatted (colored
// when enabled); the optional log file receives one JSON object per line.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/backmassage/contactsheet/internal/config"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger provides leveled, optionally colored logging with optional file sink.
// Children created by [Logger.With] share the parent's file.
type Logger struct {
	zl    zerolog.Logger
	color bool
	file  *fileSink
}

type fileSink struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// NewLogger resolves colors from cfg and optionally opens cfg.LogFile for
// appending. Call Close() when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	color := colorEnabled(cfg.ColorMode)
	console := levelSplitWriter{
		out: zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeFormat, NoColor: !color},
		err: zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: timeFormat, NoColor: !color},
	}

	writers := []io.Writer{console}
	var sink *fileSink
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		sink = &fileSink{f: f, path: cfg.LogFile}
		writers = append(writers, f)
	}

	l := newLogger(zerolog.MultiLevelWriter(writers...), cfg.Verbose)
	l.color = color
	l.file = sink
	return l, nil
}

// New returns a Logger writing zerolog JSON lines to w. Intended for tests
// and embedding; it never colors and has no file sink.
func New(w io.Writer, verbose bool) *Logger {
	return newLogger(w, verbose)
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func newLogger(w io.Writer, verbose bool) *Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// With returns a child logger that tags every line with key=value.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{
		zl:    l.zl.With().Str(key, value).Logger(),
		color: l.color,
		file:  l.file,
	}
}

// ColorEnabled reports whether console output is colored.
func (l *Logger) ColorEnabled() bool { return l.color }

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	l.file.mu.Lock()
	defer l.file.mu.Unlock()
	if l.file.f != nil {
		err := l.file.f.Close()
		l.file.f = nil
		return err
	}
	return nil
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// Success logs a completed step at INFO level, tagged success=true.
func (l *Logger) Success(format string, args ...interface{}) {
	l.zl.Info().Bool("success", true).Msg(fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs at ERROR level; console output goes to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level; dropped unless the logger was built verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

// levelSplitWriter sends ERROR and above to err, everything else to out.
type levelSplitWriter struct {
	out, err io.Writer
}

func (w levelSplitWriter) Write(p []byte) (int, error) {
	return w.out.Write(p)
}

func (w levelSplitWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel && level != zerolog.NoLevel {
		return w.err.Write(p)
	}
	return w.out.Write(p)
}

// colorEnabled resolves the color mode against TTY detection and the
// NO_COLOR env var (https://no-color.org).
func colorEnabled(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
