package config

import (
	"os"
	"path/filepath"
	"testing"
)

// validConfig returns a config that passes Validate, for tests that tweak one field.
func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Source = "/scenes/shot.blend"
	cfg.OutputTemplate = "/renders/shot_####.png"
	cfg.ThumbPath = "/tmp/dopthumbs/tiny####.png"
	return cfg
}

func TestDefaultConfig_SaneDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Engine != EngineBlender {
		t.Errorf("default Engine = %q, want %q", cfg.Engine, EngineBlender)
	}
	if cfg.CloneMode != CloneCopy {
		t.Errorf("default CloneMode = %q, want %q", cfg.CloneMode, CloneCopy)
	}
	if cfg.ThumbPercent != 5 {
		t.Errorf("default ThumbPercent = %d, want 5", cfg.ThumbPercent)
	}
	if cfg.ThumbSamples != 20 {
		t.Errorf("default ThumbSamples = %d, want 20", cfg.ThumbSamples)
	}
	if cfg.FrameStart != Unset || cfg.FrameEnd != Unset {
		t.Errorf("default range = %d..%d, want unset", cfg.FrameStart, cfg.FrameEnd)
	}
	if filepath.Base(cfg.ThumbPath) != "tiny####.png" {
		t.Errorf("default ThumbPath = %q", cfg.ThumbPath)
	}
	if cfg.Workers < 1 {
		t.Errorf("default Workers = %d, want >= 1", cfg.Workers)
	}
	if cfg.DryRun || cfg.Force || cfg.KeepThumbs {
		t.Error("behavior flags should default to false")
	}
}

func TestValidate_Engine(t *testing.T) {
	tests := []struct {
		name    string
		engine  Engine
		wantErr bool
	}{
		{"blender is valid", EngineBlender, false},
		{"ffmpeg is valid", EngineFFmpeg, false},
		{"empty is invalid", "", true},
		{"unknown is invalid", "cycles", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Engine = tt.engine
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CloneMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    CloneMode
		wantErr bool
	}{
		{"copy is valid", CloneCopy, false},
		{"symlink is valid", CloneSymlink, false},
		{"hardlink is invalid", "hardlink", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.CloneMode = tt.mode
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ThumbPercent(t *testing.T) {
	tests := []struct {
		pct     int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{5, false},
		{100, false},
		{101, true},
		{-3, true},
	}
	for _, tt := range tests {
		cfg := validConfig()
		cfg.ThumbPercent = tt.pct
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("ThumbPercent=%d: Validate() error = %v, wantErr %v", tt.pct, err, tt.wantErr)
		}
	}
}

func TestValidate_Range(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		wantErr    bool
	}{
		{"both unset", Unset, Unset, false},
		{"start only", 10, Unset, false},
		{"single frame", 4, 4, false},
		{"ordered", 1, 250, false},
		{"reversed", 10, 1, true},
		{"negative start", -2, 5, true},
		{"start zero", 0, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.FrameStart, cfg.FrameEnd = tt.start, tt.end
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_FFmpegRangeStartsAtOne(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		wantErr    bool
	}{
		{"unset", Unset, Unset, false},
		{"from one", 1, 24, false},
		{"start zero", 0, 24, true},
		{"end zero", Unset, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Engine = EngineFFmpeg
			cfg.Source = "/footage/in.mov"
			cfg.FrameStart, cfg.FrameEnd = tt.start, tt.end
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Templates(t *testing.T) {
	tests := []struct {
		name    string
		thumb   string
		output  string
		wantErr bool
	}{
		{"defaults", "/tmp/dopthumbs/tiny####.png", "/renders/####.png", false},
		{"output dir only", "/tmp/dopthumbs/tiny####.png", "/renders", false},
		{"thumb without placeholder", "/tmp/dopthumbs/tiny.png", "/renders/####.png", true},
		{"thumb with two runs", "/tmp/##/t##.png", "/renders/####.png", true},
		{"output with two runs", "/tmp/t####.png", "/renders/##_##.png", true},
		{"same glob", "/renders/####.png", "/renders/##.png", true},
		{"thumb glob covers output", "/renders/####.png", "/renders/full_####.png", true},
		{"output glob covers thumb", "/renders/tiny####.png", "/renders/####.png", true},
		{"same dir, disjoint names", "/renders/tiny####.png", "/renders/full_####.png", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ThumbPath = tt.thumb
			cfg.OutputTemplate = tt.output
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ImageSeqSourceNeedsPlaceholder(t *testing.T) {
	cfg := validConfig()
	cfg.Engine = EngineImageSeq
	cfg.Source = "/plates/plate.png"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject an imageseq source without ####")
	}
	cfg.Source = "/plates/plate.####.png"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_RequiresPaths(t *testing.T) {
	cfg := validConfig()
	cfg.Source = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail when source is empty")
	}
}

func TestValidate_CheckOnlySkipsPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckOnly = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() should pass with empty paths when CheckOnly is true, got: %v", err)
	}
}

func TestValidate_ShowHistoryNeedsDB(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShowHistory = true
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for --show-history without --history")
	}
	cfg.HistoryDB = "/tmp/runs.db"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestOutput_AppendsDefaultName(t *testing.T) {
	cfg := validConfig()
	cfg.OutputTemplate = "/renders/shot01"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("/renders/shot01", "####.png")
	if got := cfg.Output().String(); got != want {
		t.Errorf("Output() = %q, want %q", got, want)
	}
}

func TestParseFlags(t *testing.T) {
	cfg := DefaultConfig()
	args := []string{
		"-e", "imageseq",
		"--start", "3", "-E", "12",
		"-t", "10",
		"-m", "symlink",
		"--no-color",
		"-j", "2",
		"/plates/p.####.png", "/renders/",
	}
	if err := ParseFlags(&cfg, args, "test"); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if cfg.Engine != EngineImageSeq {
		t.Errorf("Engine = %q", cfg.Engine)
	}
	if cfg.FrameStart != 3 || cfg.FrameEnd != 12 {
		t.Errorf("range = %d..%d, want 3..12", cfg.FrameStart, cfg.FrameEnd)
	}
	if cfg.ThumbPercent != 10 {
		t.Errorf("ThumbPercent = %d", cfg.ThumbPercent)
	}
	if cfg.CloneMode != CloneSymlink {
		t.Errorf("CloneMode = %q", cfg.CloneMode)
	}
	if cfg.ColorMode != ColorNever {
		t.Errorf("ColorMode = %q", cfg.ColorMode)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if cfg.Source != "/plates/p.####.png" || cfg.OutputTemplate != "/renders/" {
		t.Errorf("positional args = %q, %q", cfg.Source, cfg.OutputTemplate)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing output", []string{"/scenes/a.blend"}},
		{"bad engine", []string{"-e", "eevee", "a", "b"}},
		{"bad clone mode", []string{"-m", "hardlink", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := ParseFlags(&cfg, tt.args, "test"); err == nil {
				t.Errorf("ParseFlags(%v) should fail", tt.args)
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "DOPPELRENDER_BLENDER=/opt/blender/blender\nDOPPELRENDER_THUMB_SIZE=8\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOPPELRENDER_CLONE_MODE", "symlink")
	// Keep the process environment clean for variables the .env file sets.
	t.Setenv("DOPPELRENDER_BLENDER", "")
	t.Setenv("DOPPELRENDER_THUMB_SIZE", "")
	os.Unsetenv("DOPPELRENDER_BLENDER")
	os.Unsetenv("DOPPELRENDER_THUMB_SIZE")

	cfg := DefaultConfig()
	if err := LoadEnv(&cfg, envFile); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.BlenderPath != "/opt/blender/blender" {
		t.Errorf("BlenderPath = %q", cfg.BlenderPath)
	}
	if cfg.ThumbPercent != 8 {
		t.Errorf("ThumbPercent = %d, want 8", cfg.ThumbPercent)
	}
	if cfg.CloneMode != CloneSymlink {
		t.Errorf("CloneMode = %q, want symlink", cfg.CloneMode)
	}
}

func TestLoadEnv_MissingFileIsFine(t *testing.T) {
	cfg := DefaultConfig()
	if err := LoadEnv(&cfg, filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("LoadEnv with missing file: %v", err)
	}
}

func TestLoadEnv_BadNumber(t *testing.T) {
	t.Setenv("DOPPELRENDER_WORKERS", "many")
	cfg := DefaultConfig()
	if err := LoadEnv(&cfg, ""); err == nil {
		t.Error("LoadEnv should reject a non-numeric DOPPELRENDER_WORKERS")
	}
}
