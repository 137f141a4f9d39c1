// Package config holds runtime configuration: defaults, environment and CLI
// flag parsing, and validation. Defaults match the Blender add-on the tool
// grew out of (5% thumbnails, 20 samples, copy clones).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/backmassage/doppelrender/internal/framepath"
)

// --- Enum types for validated string fields ---

// Engine selects the render backend.
type Engine string

const (
	EngineBlender  Engine = "blender"  // Blender in background mode (default).
	EngineFFmpeg   Engine = "ffmpeg"   // Decoded frames of a source video.
	EngineImageSeq Engine = "imageseq" // Frames of an existing image sequence.
)

// CloneMode selects how duplicate frames are materialized.
type CloneMode string

const (
	CloneCopy    CloneMode = "copy"    // Independent byte copy (default).
	CloneSymlink CloneMode = "symlink" // Relative symbolic link to the core frame.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Unset marks a frame bound that should be taken from the engine.
const Unset = -1

// Config holds all runtime settings. It is populated by [DefaultConfig],
// [LoadEnv] and [ParseFlags], in that order, and is immutable once the
// pipeline starts.
type Config struct {
	// Paths (set from positional args).
	Source         string // .blend file, video, or image sequence template.
	OutputTemplate string // Full-resolution output template.

	// Engine selection.
	Engine      Engine
	Scene       string // Blender scene name; empty uses the file's active scene.
	BlenderPath string // Default: "blender".
	FFmpegPath  string // Default: "ffmpeg".
	FFprobePath string // Default: "ffprobe".

	// Frame range (inclusive). Unset bounds come from the engine.
	FrameStart int
	FrameEnd   int

	// Proxy pass.
	ThumbPercent int    // Default: 5. Range 1-100.
	ThumbSamples int    // Default: 20.
	ThumbPath    string // Default: <tmp>/dopthumbs/tiny####.png.
	KeepThumbs   bool   // Keep proxy images after grouping.
	Workers      int    // Parallel hashing workers. Default: NumCPU.

	// Clone materialization.
	CloneMode CloneMode // Default: "copy".
	Force     bool      // Replace pre-existing clone paths in symlink mode.

	// Behavior flags.
	DryRun bool

	// Reporting.
	ReportFile  string // Optional JSON report path.
	HistoryDB   string // Optional SQLite run ledger.
	ShowHistory bool   // Print recent runs from HistoryDB and exit.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run --check diagnostics and exit.
}

// DefaultConfig returns a Config with the add-on defaults. Used as the base
// before [LoadEnv] and [ParseFlags] apply overrides.
func DefaultConfig() Config {
	return Config{
		Engine:       EngineBlender,
		BlenderPath:  "blender",
		FFmpegPath:   "ffmpeg",
		FFprobePath:  "ffprobe",
		FrameStart:   Unset,
		FrameEnd:     Unset,
		ThumbPercent: 5,
		ThumbSamples: 20,
		ThumbPath:    DefaultThumbPath(),
		Workers:      runtime.NumCPU(),
		CloneMode:    CloneCopy,
		ColorMode:    ColorAuto,
	}
}

// DefaultThumbPath is the scratch proxy template under the system temp dir.
func DefaultThumbPath() string {
	return filepath.Join(os.TempDir(), "dopthumbs", "tiny####.png")
}

// Validate rejects configuration errors before the pipeline starts. It never
// touches the filesystem.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineBlender, EngineFFmpeg, EngineImageSeq:
		// valid
	default:
		return errors.New("invalid engine (use 'blender', 'ffmpeg' or 'imageseq')")
	}

	switch c.CloneMode {
	case CloneCopy, CloneSymlink:
		// valid
	default:
		return errors.New("invalid clone mode (use 'copy' or 'symlink')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode")
	}

	if c.ShowHistory {
		if c.HistoryDB == "" {
			return errors.New("--show-history needs --history <db>")
		}
		return nil
	}
	if c.CheckOnly {
		return nil
	}

	if c.Source == "" || c.OutputTemplate == "" {
		return errors.New("need exactly source and output_template")
	}
	if c.ThumbPercent < 1 || c.ThumbPercent > 100 {
		return fmt.Errorf("thumbnail size must be 1-100%% (got %d)", c.ThumbPercent)
	}
	if c.ThumbSamples < 1 {
		return fmt.Errorf("thumbnail samples must be positive (got %d)", c.ThumbSamples)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive (got %d)", c.Workers)
	}
	if err := c.validateRange(); err != nil {
		return err
	}
	return c.validateTemplates()
}

func (c *Config) validateRange() error {
	if c.FrameStart != Unset && c.FrameStart < 0 {
		return fmt.Errorf("start frame must not be negative (got %d)", c.FrameStart)
	}
	if c.FrameEnd != Unset && c.FrameEnd < 0 {
		return fmt.Errorf("end frame must not be negative (got %d)", c.FrameEnd)
	}
	// ffmpeg numbers decoded frames from 1.
	if c.Engine == EngineFFmpeg {
		if c.FrameStart != Unset && c.FrameStart < 1 {
			return fmt.Errorf("ffmpeg frames start at 1 (got start %d)", c.FrameStart)
		}
		if c.FrameEnd != Unset && c.FrameEnd < 1 {
			return fmt.Errorf("ffmpeg frames start at 1 (got end %d)", c.FrameEnd)
		}
	}
	if c.FrameStart != Unset && c.FrameEnd != Unset && c.FrameEnd < c.FrameStart {
		return fmt.Errorf("end frame %d is before start frame %d", c.FrameEnd, c.FrameStart)
	}
	return nil
}

// validateTemplates parses both path templates and makes sure neither glob
// can pick up the other template's files. Stale proxies are deleted by glob,
// so a proxy glob that also matches final renders would delete them.
func (c *Config) validateTemplates() error {
	thumb, err := framepath.Parse(c.ThumbPath)
	if err != nil {
		return fmt.Errorf("thumbnail path: %w", err)
	}
	if !thumb.HasPlaceholder() {
		return fmt.Errorf("thumbnail path %q needs a #### frame placeholder", c.ThumbPath)
	}
	out, err := framepath.WithDefault(c.OutputTemplate)
	if err != nil {
		return fmt.Errorf("output template: %w", err)
	}
	if overlaps(thumb, out) || overlaps(out, thumb) {
		return errors.New("thumbnail path and output template must not match the same files")
	}
	if c.Engine == EngineImageSeq {
		src, err := framepath.Parse(c.Source)
		if err != nil {
			return fmt.Errorf("source template: %w", err)
		}
		if !src.HasPlaceholder() {
			return fmt.Errorf("imageseq source %q needs a #### frame placeholder", c.Source)
		}
	}
	return nil
}

// overlaps reports whether a's glob matches a frame path of b.
func overlaps(a, b framepath.Template) bool {
	pattern := filepath.Clean(a.Glob())
	for _, n := range []int{0, 1, 12345} {
		if ok, _ := filepath.Match(pattern, filepath.Clean(b.Path(n))); ok {
			return true
		}
	}
	return false
}

// Output returns the parsed full-resolution template. Validate must have
// succeeded first.
func (c *Config) Output() framepath.Template {
	t, _ := framepath.WithDefault(c.OutputTemplate)
	return t
}

// Thumbs returns the parsed proxy template. Validate must have succeeded first.
func (c *Config) Thumbs() framepath.Template {
	t, _ := framepath.Parse(c.ThumbPath)
	return t
}

// NormalizePathArg trims surrounding whitespace from a positional argument.
// Trailing slashes are kept: they mark a directory output template.
func NormalizePathArg(path string) string {
	return strings.TrimSpace(path)
}
