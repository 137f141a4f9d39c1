package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/backmassage/doppelrender/internal/clone"
	"github.com/backmassage/doppelrender/internal/config"
	"github.com/backmassage/doppelrender/internal/display"
	"github.com/backmassage/doppelrender/internal/doppel"
	"github.com/backmassage/doppelrender/internal/fingerprint"
	"github.com/backmassage/doppelrender/internal/history"
	"github.com/backmassage/doppelrender/internal/logging"
	"github.com/backmassage/doppelrender/internal/planner"
	"github.com/backmassage/doppelrender/internal/render"
	"github.com/backmassage/doppelrender/internal/term"
)

// Run is the top-level entry point. It renders proxies, groups identical
// frames, renders one core per group, clones the rest, and reports the time
// saved. The returned Report is non-nil even when err is set.
//
// After the run the report is written to cfg.ReportFile and recorded in
// cfg.HistoryDB when those are set; failures there are logged, not returned.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, engine render.Engine) (*Report, error) {
	host := render.NewHost(cfg.Scene, render.Settings{OutputPath: cfg.Output().String()})
	r := newRunner(cfg, log, engine, host)
	r.out = os.Stdout
	r.tty = term.IsTerminal(os.Stdout)

	err := r.run(ctx)
	r.finish(ctx, err)
	return r.rep, err
}

type runner struct {
	cfg    *config.Config
	log    *logging.Logger
	engine render.Engine
	host   *render.Host

	out io.Writer // plan table and progress bars
	tty bool      // show progress bars

	rep *Report
}

func newRunner(cfg *config.Config, log *logging.Logger, engine render.Engine, host *render.Host) *runner {
	id := history.NewID()
	return &runner{
		cfg:    cfg,
		log:    log.With("run", id[:8]),
		engine: engine,
		host:   host,
		out:    io.Discard,
		rep: &Report{
			ID:        id,
			StartedAt: time.Now(),
			Engine:    engine.Name(),
			Source:    cfg.Source,
			Output:    cfg.Output().String(),
			CloneMode: string(cfg.CloneMode),
			DryRun:    cfg.DryRun,
		},
	}
}

// run executes the phases in order. Every failure is fatal; nothing is
// retried and a new run starts over from the proxy pass.
func (r *runner) run(ctx context.Context) error {
	cfg, log, rep := r.cfg, r.log, r.rep
	stats := &rep.Stats

	// --- Frame range ---
	rng, err := r.resolveRange(ctx)
	if err != nil {
		return phaseErr(PhaseProxy, NoFrame, err)
	}
	rep.Start, rep.End = rng.Start, rng.End
	r.logRunHeader(rng)

	// --- Proxy pass ---
	thumbs := cfg.Thumbs()
	if n, err := fingerprint.RemoveStale(thumbs); err != nil {
		log.Warn("Could not remove stale proxies: %v", err)
	} else if n > 0 {
		log.Debug("Removed %d stale proxies", n)
	}

	gen := &fingerprint.Generator{
		Host:    r.host,
		Engine:  r.engine,
		Thumbs:  thumbs,
		Percent: cfg.ThumbPercent,
		Samples: cfg.ThumbSamples,
	}
	log.Info("Rendering %d proxies...", rng.Len())
	start := time.Now()
	if err := gen.Render(ctx, rng); err != nil {
		return phaseErr(PhaseProxy, NoFrame, err)
	}
	stats.ProxyTime = time.Since(start)

	// --- Fingerprint ---
	start = time.Now()
	files, err := fingerprint.Discover(thumbs)
	if err != nil {
		return phaseErr(PhaseFingerprint, NoFrame, err)
	}
	bar := newProgress(r.out, r.tty, len(files), "Hashing")
	buckets, err := fingerprint.Index(ctx, files, cfg.Workers, bar.add)
	bar.done()
	if err != nil {
		return phaseErr(PhaseFingerprint, NoFrame, err)
	}
	stats.HashTime = time.Since(start)
	log.Debug("Hashed %d proxies into %d digests in %s", buckets.Files(), len(buckets), display.FormatDuration(stats.HashTime))
	for _, d := range buckets.Digests() {
		if paths := buckets[d]; len(paths) > 1 {
			log.Debug("  %s: %d identical proxies", d.Short(), len(paths))
		}
	}

	if !cfg.KeepThumbs {
		if err := fingerprint.Remove(files); err != nil {
			log.Warn("Could not remove proxies: %v", err)
		}
	}

	// --- Group ---
	sets, dropped := doppel.Group(buckets)
	for _, p := range dropped {
		log.Warn("Ignoring proxy without a frame number: %s", p)
	}
	sets, outside := doppel.Filter(sets, rng)
	if len(outside) > 0 {
		log.Warn("Ignoring %d proxies outside %s: %s", len(outside), rng, frameList(outside))
	}
	if len(files) == 0 {
		log.Warn("No proxies found at %s", thumbs.Glob())
	} else if missing := doppel.Missing(sets, rng); len(missing) > 0 {
		log.Warn("No proxy for %d frames (not rendered): %s", len(missing), frameList(missing))
		rep.Missing = missing
	}
	rep.Dropped, rep.Outside = dropped, outside

	if err := doppel.Validate(sets); err != nil {
		return phaseErr(PhaseGroup, NoFrame, err)
	}
	plan, err := planner.Build(sets, cfg.Output())
	if err != nil {
		return phaseErr(PhaseGroup, NoFrame, err)
	}
	rep.Sets = sets
	stats.Frames = plan.Frames()
	stats.Sets = len(sets)

	est := planner.EstimatePlan(plan)
	log.Info("Found %d doppel sets in %d frames: %d renders, %d clones (%d%% avoided)",
		len(sets), est.Frames, est.Renders, est.Avoided, est.RatioPct)
	if est.Largest > 1 {
		log.Debug("Largest set: %d frames", est.Largest)
	}

	// --- Dry-run ---
	if cfg.DryRun {
		printPlanTable(r.out, plan)
		log.Success("[DRY] Would render %d frames and %s %d", est.Renders, cfg.CloneMode, est.Avoided)
		return nil
	}
	if cfg.Verbose {
		printPlanTable(r.out, plan)
	}

	// --- Render cores ---
	sched := &scheduler{host: r.host, engine: r.engine, log: log}
	bar = newProgress(r.out, r.tty, len(plan.Renders), "Rendering")
	rep.Renders, err = sched.renderCores(ctx, plan.Renders, bar)
	bar.done()
	for _, t := range rep.Renders {
		stats.RenderTime += t.Duration
	}
	stats.Renders = len(rep.Renders)
	if err != nil {
		return err
	}

	// --- Clone ---
	mode, _ := clone.ParseMode(string(cfg.CloneMode))
	opts := clone.Options{Mode: mode, Force: cfg.Force}
	bar = newProgress(r.out, r.tty, len(plan.Clones), "Cloning")
	rep.Clones, err = materialize(ctx, log, plan.Clones, opts, bar)
	bar.done()
	coreBytes := make(map[string]int64, len(rep.Renders))
	for _, t := range rep.Renders {
		coreBytes[t.Path] = t.Bytes
	}
	for i, t := range rep.Clones {
		stats.CloneTime += t.Duration
		if mode == clone.Symlink {
			stats.LinkedBytes += coreBytes[plan.Clones[i].CorePath]
		} else {
			stats.CopiedBytes += t.Bytes
		}
	}
	stats.Clones = len(rep.Clones)
	if err != nil {
		return err
	}

	logSummary(log, stats)
	return nil
}

// resolveRange fills bounds missing from the command line with the engine's
// own range.
func (r *runner) resolveRange(ctx context.Context) (render.Range, error) {
	rng := render.Range{Start: r.cfg.FrameStart, End: r.cfg.FrameEnd}
	if rng.Start == config.Unset || rng.End == config.Unset {
		def, err := r.engine.FrameRange(ctx)
		if err != nil {
			return rng, fmt.Errorf("frame range: %w", err)
		}
		if rng.Start == config.Unset {
			rng.Start = def.Start
		}
		if rng.End == config.Unset {
			rng.End = def.End
		}
	}
	if rng.End < rng.Start {
		return rng, fmt.Errorf("empty frame range %s", rng)
	}
	return rng, nil
}

// finish sets the final status, prints renderer output for failed renders,
// and writes the optional report file and history row.
func (r *runner) finish(ctx context.Context, err error) {
	rep, log := r.rep, r.log
	switch {
	case err != nil:
		rep.Status = history.StatusFailed
		rep.Error = err.Error()
		log.Error("Run failed: %v", err)
		var execErr *render.ExecError
		if errors.As(err, &execErr) {
			logStderr(log, execErr)
		}
	case r.cfg.DryRun:
		rep.Status = history.StatusDryRun
	default:
		rep.Status = history.StatusOK
	}

	if r.cfg.ReportFile != "" {
		if err := rep.WriteJSON(r.cfg.ReportFile); err != nil {
			log.Warn("Could not write report: %v", err)
		} else {
			log.Debug("Report written to %s", r.cfg.ReportFile)
		}
	}
	if r.cfg.HistoryDB != "" {
		if err := record(context.WithoutCancel(ctx), r.cfg.HistoryDB, rep); err != nil {
			log.Warn("Could not record run: %v", err)
		}
	}
}

func logStderr(log *logging.Logger, e *render.ExecError) {
	lines := e.Tail()
	if len(lines) == 0 {
		return
	}
	log.Error("Last %s output:", e.Tool)
	for _, l := range lines {
		log.Error("  %s", l)
	}
}

// --- Logging helpers ---

func (r *runner) logRunHeader(rng render.Range) {
	cfg, log := r.cfg, r.log
	log.Info("Engine: %s | Source: %s", r.engine.Name(), cfg.Source)
	if cfg.Scene != "" {
		log.Info("Scene: %s", cfg.Scene)
	}
	log.Info("Frames: %s (%d)", rng, rng.Len())
	log.Info("Output: %s", cfg.Output())
	log.Info("Proxies: %d%% size, %d samples -> %s", cfg.ThumbPercent, cfg.ThumbSamples, cfg.Thumbs())
	log.Info("Clones: %s", cfg.CloneMode)
	if cfg.DryRun {
		log.Info("Dry run: nothing is rendered at full quality")
	}
}

func logSummary(log *logging.Logger, s *RunStats) {
	log.Info("==============================")
	log.Info("Timings: proxies %s, hashing %s, %d full renders %s, %d clones %s",
		display.FormatSeconds(s.ProxyTime),
		display.FormatSeconds(s.HashTime),
		s.Renders, display.FormatSeconds(s.RenderTime),
		s.Clones, display.FormatSeconds(s.CloneTime))
	log.Info("Avg frame render: %s, avg clone: %s",
		display.FormatSeconds(s.AvgRender()), display.FormatSeconds(s.AvgClone()))

	switch {
	case s.CopiedBytes > 0:
		log.Info("Disk: %s duplicated by copies", display.FormatBytes(s.CopiedBytes))
	case s.LinkedBytes > 0:
		log.Info("Disk: %s avoided by symlinks", display.FormatBytes(s.LinkedBytes))
	}

	saved := s.Saved()
	if saved >= 0 {
		log.Success("Time saved: %s (%s of %d frames cloned)",
			display.FormatSavings(saved), display.FormatPercent(s.Clones, s.Frames), s.Frames)
	} else {
		log.Warn("Time saved: %s (duplicate detection cost more than it saved)",
			display.FormatSavings(saved))
	}
}
