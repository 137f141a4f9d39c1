// Package logging provides the leveled, printf-style logger used across the
// tool. Console output goes through a tint handler (colored when the terminal
// allows it); an optional log file receives plain key=value lines.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lmittmann/tint"

	"github.com/backmassage/doppelrender/internal/config"
	"github.com/backmassage/doppelrender/internal/term"
)

// Logger writes every record to the console and, when configured, to a log
// file. It is safe for concurrent use.
type Logger struct {
	*sinks
	attrs []any
}

// sinks is shared by a Logger and every Logger derived from it with With,
// so closing the file sink is seen by all of them.
type sinks struct {
	mu      sync.Mutex
	console *slog.Logger
	file    *slog.Logger
	f       *os.File
}

// NewLogger builds a Logger from cfg: colors from cfg.ColorMode, debug level
// from cfg.Verbose, and an append-only file sink when cfg.LogFile is set.
// Call Close when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	color := term.Configure(cfg.ColorMode)
	l := New(os.Stdout, cfg.Verbose, !color)

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.f = f
		l.file = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level(cfg.Verbose)}))
	}
	return l, nil
}

// New returns a console-only Logger writing to w. Tests use it with
// io.Discard or a buffer.
func New(w io.Writer, verbose, noColor bool) *Logger {
	h := tint.NewHandler(w, &tint.Options{
		Level:      level(verbose),
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
	return &Logger{sinks: &sinks{console: slog.New(h)}}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, false, true)
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// With returns a Logger that adds the given key/value pairs to every record.
// The returned Logger shares the underlying sinks: after Close on either one,
// neither writes to the log file.
func (l *Logger) With(args ...any) *Logger {
	attrs := make([]any, 0, len(l.attrs)+len(args))
	attrs = append(attrs, l.attrs...)
	attrs = append(attrs, args...)
	return &Logger{sinks: l.sinks, attrs: attrs}
}

// Close closes the log file if one was opened. Loggers derived with With
// keep logging to the console.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f != nil {
		err := l.f.Close()
		l.f = nil
		l.file = nil
		return err
	}
	return nil
}

// log writes msg to both sinks. color, when non-empty, is applied to the
// console copy only so the log file stays free of escape sequences.
func (l *Logger) log(lvl slog.Level, color, msg string) {
	ctx := context.Background()
	l.mu.Lock()
	defer l.mu.Unlock()
	if color != "" {
		l.console.Log(ctx, lvl, term.Paint(color, msg), l.attrs...)
	} else {
		l.console.Log(ctx, lvl, msg, l.attrs...)
	}
	if l.file != nil {
		l.file.Log(ctx, lvl, msg, l.attrs...)
	}
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...any) {
	l.log(slog.LevelInfo, "", fmt.Sprintf(format, args...))
}

// Success logs a completed step at INFO level.
func (l *Logger) Success(format string, args ...any) {
	l.log(slog.LevelInfo, term.Green, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...any) {
	l.log(slog.LevelWarn, "", fmt.Sprintf(format, args...))
}

// Error logs at ERROR level.
func (l *Logger) Error(format string, args ...any) {
	l.log(slog.LevelError, "", fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level; dropped unless the logger is verbose.
func (l *Logger) Debug(format string, args ...any) {
	l.log(slog.LevelDebug, "", fmt.Sprintf(format, args...))
}
