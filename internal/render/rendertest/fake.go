// Package rendertest provides an in-process render.Engine for tests. It
// paints every frame a solid color chosen by a callback, so tests control
// exactly which frames look identical.
package rendertest

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/backmassage/doppelrender/internal/framepath"
	"github.com/backmassage/doppelrender/internal/render"
)

// Fake is a render.Engine that writes solid-color PNGs.
type Fake struct {
	// Width and Height are the full-resolution frame size. Default 200x100.
	Width, Height int

	// Color picks the color of frame n. Default: every frame is black.
	Color func(n int) color.NRGBA

	// Range is returned by FrameRange.
	Range render.Range

	// Set to make the corresponding call fail.
	AnimationErr error
	StillErr     map[int]error

	mu         sync.Mutex
	animations []render.Job
	stills     []render.Job
}

// Solid returns a Color func that maps frames to palette entries via group:
// frames with the same group index get the same color.
func Solid(group func(n int) int) func(int) color.NRGBA {
	return func(n int) color.NRGBA {
		g := group(n)
		return color.NRGBA{R: uint8(g * 37), G: uint8(g * 71), B: uint8(g * 113), A: 255}
	}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Check(context.Context) (string, error) { return "fake renderer", nil }

func (f *Fake) FrameRange(context.Context) (render.Range, error) { return f.Range, nil }

// Animation writes one proxy per frame of job.Frames to the job's template,
// scaled by the resolution percentage.
func (f *Fake) Animation(ctx context.Context, job render.Job) error {
	f.mu.Lock()
	f.animations = append(f.animations, job)
	f.mu.Unlock()
	if f.AnimationErr != nil {
		return f.AnimationErr
	}
	tmpl, err := framepath.Parse(job.Settings.OutputPath)
	if err != nil {
		return err
	}
	for n := job.Frames.Start; n <= job.Frames.End; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f.write(tmpl.Path(n), n, job.Settings.ResolutionPercent); err != nil {
			return err
		}
	}
	return nil
}

// Still writes job.Frame at full size to job.Settings.OutputPath.
func (f *Fake) Still(ctx context.Context, job render.Job) error {
	f.mu.Lock()
	f.stills = append(f.stills, job)
	f.mu.Unlock()
	if err := f.StillErr[job.Frame]; err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.write(job.Settings.OutputPath, job.Frame, job.Settings.ResolutionPercent)
}

// Animations returns every animation job received so far.
func (f *Fake) Animations() []render.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]render.Job(nil), f.animations...)
}

// Stills returns every still job received so far, in call order.
func (f *Fake) Stills() []render.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]render.Job(nil), f.stills...)
}

// StillFrames returns the frame numbers of every still job, in call order.
func (f *Fake) StillFrames() []int {
	jobs := f.Stills()
	frames := make([]int, len(jobs))
	for i, j := range jobs {
		frames[i] = j.Frame
	}
	return frames
}

func (f *Fake) write(path string, n, percent int) error {
	w, h := f.Width, f.Height
	if w == 0 || h == 0 {
		w, h = 200, 100
	}
	if percent > 0 && percent < 100 {
		w = max(1, w*percent/100)
		h = max(1, h*percent/100)
	}
	c := color.NRGBA{A: 255}
	if f.Color != nil {
		c = f.Color(n)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("encode frame %d: %w", n, err)
	}
	return out.Close()
}

var _ render.Engine = (*Fake)(nil)
