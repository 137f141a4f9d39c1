// Package imageseq treats an existing image sequence as the renderer:
// rendering frame N reads <source>(N), resizes it to the requested
// percentage and writes it out. It needs no external tools, which makes it
// useful for re-deduplicating plates and for exercising the pipeline.
package imageseq

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"

	"github.com/backmassage/doppelrender/internal/framepath"
	"github.com/backmassage/doppelrender/internal/render"
)

// ErrEmpty is returned by FrameRange when no source frames exist.
var ErrEmpty = errors.New("no source frames found")

// Engine renders from a source image sequence.
type Engine struct {
	Source framepath.Template
}

// New returns an Engine reading frames from the source template.
func New(src framepath.Template) *Engine {
	return &Engine{Source: src}
}

func (e *Engine) Name() string { return "imageseq" }

// Animation writes every frame of job.Frames to the job's output template.
func (e *Engine) Animation(ctx context.Context, job render.Job) error {
	out, err := framepath.Parse(job.Settings.OutputPath)
	if err != nil {
		return err
	}
	if !out.HasPlaceholder() {
		return fmt.Errorf("output %q has no frame placeholder", out)
	}
	if err := os.MkdirAll(out.Dir(), 0o755); err != nil {
		return err
	}
	for n := job.Frames.Start; n <= job.Frames.End; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.frame(n, out.Path(n), job.Settings.ResolutionPercent); err != nil {
			return err
		}
	}
	return nil
}

// Still writes job.Frame to job.Settings.OutputPath.
func (e *Engine) Still(ctx context.Context, job render.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(job.Settings.OutputPath), 0o755); err != nil {
		return err
	}
	return e.frame(job.Frame, job.Settings.OutputPath, job.Settings.ResolutionPercent)
}

// FrameRange spans the lowest to highest frame present in the source.
func (e *Engine) FrameRange(context.Context) (render.Range, error) {
	matches, err := filepath.Glob(e.Source.Glob())
	if err != nil {
		return render.Range{}, err
	}
	r, found := render.Range{}, false
	for _, m := range matches {
		n, ok := e.Source.Frame(m)
		if !ok {
			continue
		}
		if !found || n < r.Start {
			r.Start = n
		}
		if !found || n > r.End {
			r.End = n
		}
		found = true
	}
	if !found {
		return render.Range{}, fmt.Errorf("%s: %w", e.Source, ErrEmpty)
	}
	return r, nil
}

// Check reports the source template; there is no binary to probe.
func (e *Engine) Check(context.Context) (string, error) {
	return "built-in image sequence reader (" + e.Source.String() + ")", nil
}

func (e *Engine) frame(n int, dst string, percent int) error {
	img, err := load(e.Source.Path(n))
	if err != nil {
		return fmt.Errorf("frame %d: %w", n, err)
	}
	if percent > 0 && percent < 100 {
		b := img.Bounds()
		w := max(1, b.Dx()*percent/100)
		h := max(1, b.Dy()*percent/100)
		img = resize.Resize(uint(w), uint(h), img, resize.Bilinear)
	}
	return save(dst, img)
}

func load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// save encodes by extension: JPEG for .jpg/.jpeg, PNG otherwise. The image
// is written to a temporary file beside path and renamed into place, so a
// failed encode never leaves a partial frame under the real name.
func save(path string, img image.Image) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		err = fmt.Errorf("encode %s: %w", path, err)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(f.Name(), 0o644)
	}
	if err == nil {
		err = os.Rename(f.Name(), path)
	}
	if err != nil {
		os.Remove(f.Name())
	}
	return err
}

var _ render.Engine = (*Engine)(nil)
