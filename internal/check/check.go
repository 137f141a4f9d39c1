// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for the selected render engine.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/backmassage/doppelrender/internal/config"
	"github.com/backmassage/doppelrender/internal/framepath"
	"github.com/backmassage/doppelrender/internal/render"
)

// Sentinel errors returned by CheckDeps when a required tool or input is missing.
var (
	ErrBlenderNotFound = errors.New("blender not found on PATH")
	ErrFFmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFFprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrSourceMissing   = errors.New("source not found")
)

// Logger is the minimal logging interface needed by RunCheck.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
	Debug(string, ...any)
}

// RunCheck runs the interactive --check flow: tool availability on PATH,
// then the engine's own self-report. It returns false when the selected
// engine cannot run.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger, engine render.Engine) bool {
	log.Info("=== System Check ===")

	ok := true
	for _, t := range tools(cfg) {
		path, err := exec.LookPath(t.bin)
		if err != nil {
			log.Error("%s not found (%s)", t.name, t.bin)
			ok = false
			continue
		}
		log.Debug("%s: %s", t.name, path)
	}

	if engine == nil {
		return ok
	}
	desc, err := engine.Check(ctx)
	if err != nil {
		log.Error("%s engine unusable: %v", engine.Name(), err)
		return false
	}
	log.Success("%s: %s", engine.Name(), desc)
	return ok
}

// CheckDeps is the pre-pipeline validation: the engine's binaries must be on
// PATH and the source must exist. Returns a sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	for _, t := range tools(cfg) {
		if _, err := exec.LookPath(t.bin); err != nil {
			return t.missing
		}
	}
	return checkSource(cfg)
}

type tool struct {
	name    string
	bin     string
	missing error
}

// tools lists the external binaries the configured engine shells out to.
func tools(cfg *config.Config) []tool {
	switch cfg.Engine {
	case config.EngineBlender:
		return []tool{{"blender", cfg.BlenderPath, ErrBlenderNotFound}}
	case config.EngineFFmpeg:
		return []tool{
			{"ffmpeg", cfg.FFmpegPath, ErrFFmpegNotFound},
			{"ffprobe", cfg.FFprobePath, ErrFFprobeNotFound},
		}
	}
	return nil
}

func checkSource(cfg *config.Config) error {
	if cfg.Engine == config.EngineImageSeq {
		src, err := framepath.Parse(cfg.Source)
		if err != nil {
			return err
		}
		if _, err := os.Stat(src.Dir()); err != nil {
			return fmt.Errorf("%w: %s", ErrSourceMissing, src.Dir())
		}
		return nil
	}
	fi, err := os.Stat(cfg.Source)
	if err != nil || fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrSourceMissing, cfg.Source)
	}
	return nil
}
