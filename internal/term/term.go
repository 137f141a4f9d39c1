// Package term decides whether output gets ANSI colors and whether a stream
// is an interactive terminal.
//
// The decision is made once at startup by [Configure]; the log handler and
// the banner both consult [Enabled] afterwards.
package term

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/backmassage/doppelrender/internal/config"
)

// ANSI sequences used outside the log handler.
const (
	Magenta = "\033[1;95m"
	Green   = "\033[1;92m"
	Reset   = "\033[0m"
)

var enabled atomic.Bool

// Configure resolves mode against the environment and records the result.
// It returns the resolved value for callers that configure their own writers.
func Configure(mode config.ColorMode) bool {
	on := Resolve(mode, os.Stdout)
	enabled.Store(on)
	return on
}

// Enabled reports whether ANSI colors are currently active.
func Enabled() bool { return enabled.Load() }

// Paint wraps s in the given color sequence when colors are enabled.
func Paint(color, s string) string {
	if !Enabled() {
		return s
	}
	return color + s + Reset
}

// Resolve determines whether colors should be enabled for f based on the
// configured mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func Resolve(mode config.ColorMode, f *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(f) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
