package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/backmassage/doppelrender/internal/clone"
	"github.com/backmassage/doppelrender/internal/logging"
	"github.com/backmassage/doppelrender/internal/planner"
)

// materialize writes every clone from its core's rendered output. Any
// failure is fatal and names the clone frame.
func materialize(ctx context.Context, log *logging.Logger, jobs []planner.CloneJob, opts clone.Options, bar *progress) ([]FrameTiming, error) {
	timings := make([]FrameTiming, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return timings, phaseErr(PhaseClone, job.Frame, err)
		}
		start := time.Now()
		res, err := clone.Make(job.CorePath, job.Path, opts)
		if err != nil {
			return timings, phaseErr(PhaseClone, job.Frame, fmt.Errorf("from core %d: %w", job.Core, err))
		}
		log.Debug("%s frame %d <- %d", opts.Mode, job.Frame, job.Core)
		timings = append(timings, FrameTiming{
			Frame:    job.Frame,
			Path:     res.Path,
			Duration: time.Since(start),
			Bytes:    res.Bytes,
		})
		bar.add()
	}
	return timings, nil
}
