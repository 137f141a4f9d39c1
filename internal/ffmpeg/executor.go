package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/doppelrender/internal/probe"
	"github.com/backmassage/doppelrender/internal/render"
)

// Engine extracts frames from one source video.
type Engine struct {
	Bin      string // ffmpeg executable
	ProbeBin string // ffprobe executable
	Source   string
	Verbose  bool
}

// New returns an Engine for the video at src.
func New(bin, probeBin, src string, verbose bool) *Engine {
	return &Engine{Bin: bin, ProbeBin: probeBin, Source: src, Verbose: verbose}
}

func (e *Engine) Name() string { return "ffmpeg" }

// Animation writes job.Frames to the job's output template.
func (e *Engine) Animation(ctx context.Context, job render.Job) error {
	args, err := buildAnimation(e.Source, job, e.Verbose)
	if err != nil {
		return err
	}
	return e.run(ctx, args)
}

// Still writes job.Frame to job.Settings.OutputPath.
func (e *Engine) Still(ctx context.Context, job render.Job) error {
	if err := os.MkdirAll(filepath.Dir(job.Settings.OutputPath), 0o755); err != nil {
		return err
	}
	if err := e.run(ctx, buildStill(e.Source, job, e.Verbose)); err != nil {
		return err
	}
	if _, err := os.Stat(job.Settings.OutputPath); err != nil {
		return fmt.Errorf("frame %d: %w", job.Frame, ErrNoFrames)
	}
	return nil
}

// FrameRange returns 1..N where N is the source's frame count. The
// container count is used when present; otherwise the stream is decoded to
// count frames.
func (e *Engine) FrameRange(ctx context.Context) (render.Range, error) {
	pr, err := probe.Probe(ctx, e.Source, probe.Options{Bin: e.ProbeBin})
	if err != nil {
		return render.Range{}, err
	}
	if pr.PrimaryVideo == nil {
		return render.Range{}, fmt.Errorf("%s: no video stream", e.Source)
	}
	if pr.PrimaryVideo.NbFrames == 0 {
		pr, err = probe.Probe(ctx, e.Source, probe.Options{Bin: e.ProbeBin, CountFrames: true})
		if err != nil {
			return render.Range{}, err
		}
	}
	n := pr.FrameCount()
	if n <= 0 {
		return render.Range{}, fmt.Errorf("%s: %w", e.Source, ErrUnknownLength)
	}
	return render.Range{Start: 1, End: n}, nil
}

// Check verifies ffmpeg and ffprobe run and returns ffmpeg's version line.
// When the source can be probed its resolution is appended.
func (e *Engine) Check(ctx context.Context) (string, error) {
	res := render.Exec(ctx, false, e.Bin, "-version")
	if res.Err != nil {
		return "", fmt.Errorf("%s -version: %w", e.Bin, res.Err)
	}
	if probeRes := render.Exec(ctx, false, e.ProbeBin, "-version"); probeRes.Err != nil {
		return "", fmt.Errorf("%s -version: %w", e.ProbeBin, probeRes.Err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\n")
	desc := strings.TrimSpace(line)
	if e.Source != "" {
		if pr, err := probe.Probe(ctx, e.Source, probe.Options{Bin: e.ProbeBin}); err == nil {
			desc += " (source " + pr.Resolution() + ")"
		}
	}
	return desc, nil
}

func (e *Engine) run(ctx context.Context, args []string) error {
	res := render.Exec(ctx, e.Verbose, e.Bin, args...)
	if res.Err != nil {
		return &render.ExecError{Tool: "ffmpeg", Output: res.Stderr, Err: classify(res.Stderr, res.Err)}
	}
	// ffmpeg exits 0 when the select filter matched nothing.
	if MatchNoFrames(res.Stderr) {
		return &render.ExecError{Tool: "ffmpeg", Output: res.Stderr, Err: ErrNoFrames}
	}
	return nil
}

var _ render.Engine = (*Engine)(nil)
