// Package render defines the boundary to the external renderer: the Engine
// interface implemented by the blender, ffmpeg and imageseq packages, the
// Host that carries engine-wide settings, and the subprocess helper the
// command-line engines share.
package render

import (
	"context"
	"fmt"
)

// Range is an inclusive frame range.
type Range struct {
	Start int
	End   int
}

// Len returns the number of frames in r (0 for an empty or inverted range).
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether n lies within r.
func (r Range) Contains(n int) bool {
	return n >= r.Start && n <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Job is one renderer invocation. For an animation render, Settings.OutputPath
// is a frame template ("####") and Frames is the range. For a still render,
// Settings.OutputPath is the final file path and Frame is the frame to render.
type Job struct {
	Scene    string
	Settings Settings
	Frames   Range
	Frame    int
}

// Engine is an external renderer. Calls block until the renderer exits and
// must produce exactly the files described by the Job; any failure is
// returned as an error and treated as fatal by the pipeline.
type Engine interface {
	// Name identifies the engine in logs and reports.
	Name() string

	// Animation renders every frame of job.Frames to the job's output
	// template.
	Animation(ctx context.Context, job Job) error

	// Still renders job.Frame to the job's output path.
	Still(ctx context.Context, job Job) error

	// FrameRange returns the source's own frame range, used when the range
	// is not given on the command line.
	FrameRange(ctx context.Context) (Range, error)

	// Check verifies the engine can run and returns a one-line version
	// description.
	Check(ctx context.Context) (string, error)
}
