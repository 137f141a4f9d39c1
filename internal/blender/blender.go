// Package blender drives Blender in background mode as a render.Engine.
//
// Every call is a separate blender process. Setting overrides from the Job
// are applied with a --python-expr snippet before rendering, so the .blend
// file on disk is never modified.
package blender

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/doppelrender/internal/render"
)

// Engine renders frames of one .blend file.
type Engine struct {
	Bin     string // blender executable
	File    string // .blend file
	Scene   string // scene for range queries; jobs carry their own
	Verbose bool
}

// New returns an Engine for file using the blender binary at bin.
func New(bin, file, scene string, verbose bool) *Engine {
	return &Engine{Bin: bin, File: file, Scene: scene, Verbose: verbose}
}

func (e *Engine) Name() string { return "blender" }

// Animation renders job.Frames to the job's output template.
func (e *Engine) Animation(ctx context.Context, job render.Job) error {
	return e.run(ctx, buildAnimation(e.File, job))
}

// Still renders job.Frame and moves the result to job.Settings.OutputPath.
func (e *Engine) Still(ctx context.Context, job render.Job) error {
	dst := job.Settings.OutputPath
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	scratch, err := os.MkdirTemp(filepath.Dir(dst), ".doppelrender-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)

	tmpl := filepath.Join(scratch, "still_####")
	if err := e.run(ctx, buildStill(e.File, job, tmpl)); err != nil {
		return err
	}

	produced, err := filepath.Glob(filepath.Join(scratch, "still_*"))
	if err != nil {
		return err
	}
	if len(produced) != 1 {
		return fmt.Errorf("frame %d: %w (found %d files)", job.Frame, ErrNoOutput, len(produced))
	}
	return os.Rename(produced[0], dst)
}

// FrameRange asks blender for the scene's frame_start and frame_end.
func (e *Engine) FrameRange(ctx context.Context) (render.Range, error) {
	res := render.Exec(ctx, e.Verbose, e.Bin, buildRangeQuery(e.File, e.Scene)...)
	if res.Err != nil {
		return render.Range{}, e.execError(res)
	}
	return parseRange(res.Stdout)
}

// Check runs blender --version and returns its first line.
func (e *Engine) Check(ctx context.Context) (string, error) {
	res := render.Exec(ctx, false, e.Bin, "--version")
	if res.Err != nil {
		return "", fmt.Errorf("%s --version: %w", e.Bin, res.Err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\n")
	return strings.TrimSpace(line), nil
}

func (e *Engine) run(ctx context.Context, args []string) error {
	res := render.Exec(ctx, e.Verbose, e.Bin, args...)
	if res.Err != nil {
		return e.execError(res)
	}
	// Blender exits 0 after some python errors; treat a traceback as failure.
	if rePython.MatchString(res.Stdout + res.Stderr) {
		return &render.ExecError{Tool: "blender", Output: res.Stdout + res.Stderr, Err: ErrPython}
	}
	return nil
}

func (e *Engine) execError(res render.ExecResult) error {
	// Blender reports most errors on stdout.
	out := res.Stdout + res.Stderr
	return &render.ExecError{Tool: "blender", Output: out, Err: classify(out, res.Err)}
}

var _ render.Engine = (*Engine)(nil)
