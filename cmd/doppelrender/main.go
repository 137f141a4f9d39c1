// Command doppelrender renders an animation while rendering each distinct
// frame only once.
//
// It parses flags, validates configuration, and either runs system
// diagnostics (--check), lists past runs (--show-history), or runs the
// proxy → group → render → clone pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/doppelrender/internal/blender"
	"github.com/backmassage/doppelrender/internal/check"
	"github.com/backmassage/doppelrender/internal/config"
	"github.com/backmassage/doppelrender/internal/display"
	"github.com/backmassage/doppelrender/internal/ffmpeg"
	"github.com/backmassage/doppelrender/internal/framepath"
	"github.com/backmassage/doppelrender/internal/history"
	"github.com/backmassage/doppelrender/internal/imageseq"
	"github.com/backmassage/doppelrender/internal/logging"
	"github.com/backmassage/doppelrender/internal/pipeline"
	"github.com/backmassage/doppelrender/internal/render"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

// historyLimit is how many runs --show-history lists.
const historyLimit = 20

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr.
	cfg := config.DefaultConfig()
	if err := config.LoadEnv(&cfg, ".env"); err != nil {
		fmt.Fprintf(os.Stderr, "doppelrender: %v\n", err)
		return 1
	}
	if err := config.ParseFlags(&cfg, os.Args[1:], version); err != nil {
		fmt.Fprintf(os.Stderr, "doppelrender: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "doppelrender: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "doppelrender: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available.
	display.PrintBanner(os.Stdout)

	// Phase 3: Signal handling. Cancelling the context kills the running
	// renderer; the run then fails and a re-run starts over.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, stopping renderer…")
		cancel()
	}()

	if cfg.ShowHistory {
		return showHistory(ctx, &cfg, log)
	}

	engine, err := newEngine(&cfg)
	if cfg.CheckOnly {
		if err != nil {
			log.Warn("%v", err)
		}
		if !check.RunCheck(ctx, &cfg, log, engine) {
			return 1
		}
		return 0
	}
	if err != nil {
		log.Error("%v", err)
		return 1
	}

	log.Info("=== doppelrender v%s (%s) ===", version, commit)
	if cfg.DryRun {
		log.Warn("DRY RUN: proxies only, nothing rendered at full quality")
	}

	// Fail fast if the engine's binaries or the source are unavailable.
	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	// Phase 4: Run pipeline (proxy → group → render → clone → report).
	if _, err := pipeline.Run(ctx, &cfg, log, engine); err != nil {
		return 1
	}
	return 0
}

// newEngine builds the render backend selected by cfg.Engine.
func newEngine(cfg *config.Config) (render.Engine, error) {
	switch cfg.Engine {
	case config.EngineFFmpeg:
		return ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, cfg.Source, cfg.Verbose), nil
	case config.EngineImageSeq:
		src, err := framepath.Parse(cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("source template: %w", err)
		}
		return imageseq.New(src), nil
	default:
		return blender.New(cfg.BlenderPath, cfg.Source, cfg.Scene, cfg.Verbose), nil
	}
}

// showHistory lists the most recent runs from the ledger.
func showHistory(ctx context.Context, cfg *config.Config, log *logging.Logger) int {
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	defer store.Close()

	runs, err := store.Recent(ctx, historyLimit)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	if len(runs) == 0 {
		log.Info("No runs recorded in %s", cfg.HistoryDB)
		return 0
	}
	for _, r := range runs {
		line := fmt.Sprintf("%s  %s  %-8s %d-%d  %d renders, %d clones  saved %s  [%s]",
			r.ID[:8], r.StartedAt.Local().Format("2006-01-02 15:04"), r.Engine,
			r.Start, r.End, r.Renders, r.Clones, display.FormatSavings(r.Saved), r.Status)
		switch r.Status {
		case history.StatusFailed:
			log.Error("%s %s", line, r.Error)
		case history.StatusDryRun:
			log.Info("%s", line)
		default:
			log.Success("%s", line)
		}
	}
	return 0
}
