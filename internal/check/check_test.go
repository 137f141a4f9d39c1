package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/doppelrender/internal/config"
	"github.com/backmassage/doppelrender/internal/render/rendertest"
)

type mockLogger struct {
	lines []string
}

func (m *mockLogger) add(level, f string, args ...any) {
	m.lines = append(m.lines, level+" "+fmt.Sprintf(f, args...))
}
func (m *mockLogger) Info(f string, a ...any)    { m.add("INFO", f, a...) }
func (m *mockLogger) Success(f string, a ...any) { m.add("OK", f, a...) }
func (m *mockLogger) Warn(f string, a ...any)    { m.add("WARN", f, a...) }
func (m *mockLogger) Error(f string, a ...any)   { m.add("ERROR", f, a...) }
func (m *mockLogger) Debug(f string, a ...any)   { m.add("DEBUG", f, a...) }

func (m *mockLogger) has(prefix string) bool {
	for _, l := range m.lines {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

func executable(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCheckDeps(t *testing.T) {
	dir := t.TempDir()
	blender := executable(t, dir, "blender")
	ffmpeg := executable(t, dir, "ffmpeg")
	ffprobe := executable(t, dir, "ffprobe")
	blend := filepath.Join(dir, "shot.blend")
	os.WriteFile(blend, []byte("BLENDER"), 0o644)
	missing := filepath.Join(dir, "nope")

	tests := []struct {
		name string
		mod  func(*config.Config)
		want error
	}{
		{"blender ok", func(c *config.Config) { c.BlenderPath = blender }, nil},
		{"blender missing", func(c *config.Config) { c.BlenderPath = missing }, ErrBlenderNotFound},
		{"source missing", func(c *config.Config) {
			c.BlenderPath = blender
			c.Source = missing
		}, ErrSourceMissing},
		{"source is dir", func(c *config.Config) {
			c.BlenderPath = blender
			c.Source = dir
		}, ErrSourceMissing},
		{"ffmpeg ok", func(c *config.Config) {
			c.Engine = config.EngineFFmpeg
			c.FFmpegPath, c.FFprobePath = ffmpeg, ffprobe
		}, nil},
		{"ffprobe missing", func(c *config.Config) {
			c.Engine = config.EngineFFmpeg
			c.FFmpegPath, c.FFprobePath = ffmpeg, missing
		}, ErrFFprobeNotFound},
		{"ffmpeg missing", func(c *config.Config) {
			c.Engine = config.EngineFFmpeg
			c.FFmpegPath, c.FFprobePath = missing, ffprobe
		}, ErrFFmpegNotFound},
		{"imageseq ok", func(c *config.Config) {
			c.Engine = config.EngineImageSeq
			c.Source = filepath.Join(dir, "src_####.png")
		}, nil},
		{"imageseq dir missing", func(c *config.Config) {
			c.Engine = config.EngineImageSeq
			c.Source = filepath.Join(missing, "src_####.png")
		}, ErrSourceMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Source = blend
			tt.mod(&cfg)
			err := CheckDeps(&cfg)
			if tt.want == nil {
				if err != nil {
					t.Errorf("CheckDeps: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("CheckDeps = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunCheck_EngineReport(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine = config.EngineImageSeq
	log := &mockLogger{}

	if !RunCheck(context.Background(), &cfg, log, &rendertest.Fake{}) {
		t.Fatal("RunCheck = false, want true")
	}
	if !log.has("OK fake: fake renderer") {
		t.Errorf("missing engine line in %v", log.lines)
	}
}

func TestRunCheck_MissingTool(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BlenderPath = filepath.Join(t.TempDir(), "blender")
	log := &mockLogger{}

	if RunCheck(context.Background(), &cfg, log, nil) {
		t.Error("RunCheck = true with blender missing")
	}
	if !log.has("ERROR blender not found") {
		t.Errorf("missing error line in %v", log.lines)
	}
}
