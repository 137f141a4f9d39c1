package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/backmassage/doppelrender/internal/framepath"
	"github.com/backmassage/doppelrender/internal/render"
)

// Generator runs the proxy pass: one animation render of the whole range at
// reduced resolution and sample count.
type Generator struct {
	Host    *render.Host
	Engine  render.Engine
	Thumbs  framepath.Template
	Percent int // resolution percentage
	Samples int
}

// Render renders a proxy for every frame in rng. The active scene's output
// path, resolution, samples and animated seed are overridden for the
// duration of the call; every scene's settings are restored on return,
// whether or not the render succeeded.
func (g *Generator) Render(ctx context.Context, rng render.Range) error {
	if !g.Thumbs.HasPlaceholder() {
		return fmt.Errorf("proxy template %q has no frame placeholder", g.Thumbs)
	}
	if err := os.MkdirAll(g.Thumbs.Dir(), 0o755); err != nil {
		return fmt.Errorf("create proxy directory: %w", err)
	}

	restore := g.Host.Override(func(s *render.Settings) {
		s.OutputPath = g.Thumbs.String()
		s.ResolutionPercent = g.Percent
		s.Samples = g.Samples
		s.AnimatedSeed = render.Off
	})
	defer restore()

	return g.Engine.Animation(ctx, g.Host.Job(rng))
}

// RemoveStale deletes files matching the proxy glob left over from an
// earlier run, so they cannot be mistaken for this run's proxies. It returns
// the number of files removed.
func RemoveStale(tmpl framepath.Template) (int, error) {
	files, err := Discover(tmpl)
	if err != nil {
		return 0, err
	}
	return len(files), Remove(files)
}

// Remove deletes the given proxy files. Files that are already gone are
// ignored.
func Remove(paths []string) error {
	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
