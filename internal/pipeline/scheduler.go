package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/backmassage/doppelrender/internal/logging"
	"github.com/backmassage/doppelrender/internal/planner"
	"github.com/backmassage/doppelrender/internal/render"
)

// FrameTiming records the wall-clock cost of producing one output frame.
type FrameTiming struct {
	Frame    int           `json:"frame"`
	Path     string        `json:"path"`
	Duration time.Duration `json:"duration_ns"`
	Bytes    int64         `json:"bytes"`
}

// scheduler renders core frames one at a time at full settings.
type scheduler struct {
	host   *render.Host
	engine render.Engine
	log    *logging.Logger
}

// renderCores renders every job in order. For each core the host's current
// frame and the active scene's output path are pointed at that frame; both
// are put back when renderCores returns, on success or failure. The first
// failure aborts the phase.
func (s *scheduler) renderCores(ctx context.Context, jobs []planner.RenderJob, bar *progress) ([]FrameTiming, error) {
	snap := s.host.Snapshot()
	defer s.host.Restore(snap)

	timings := make([]FrameTiming, 0, len(jobs))
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return timings, phaseErr(PhaseRender, job.Frame, err)
		}
		bar.describe(fmt.Sprintf("Rendering %d", job.Frame))
		s.log.Debug("[%d/%d] render frame %d -> %s", i+1, len(jobs), job.Frame, job.Path)

		s.host.SetFrame(job.Frame)
		s.host.Update(func(st *render.Settings) { st.OutputPath = job.Path })

		start := time.Now()
		if err := s.engine.Still(ctx, s.host.Job(render.Range{Start: job.Frame, End: job.Frame})); err != nil {
			return timings, phaseErr(PhaseRender, job.Frame, err)
		}
		elapsed := time.Since(start)

		fi, err := os.Stat(job.Path)
		if err != nil {
			return timings, phaseErr(PhaseRender, job.Frame, fmt.Errorf("renderer produced no output: %w", err))
		}
		timings = append(timings, FrameTiming{
			Frame:    job.Frame,
			Path:     job.Path,
			Duration: elapsed,
			Bytes:    fi.Size(),
		})
		bar.add()
	}
	return timings, nil
}
