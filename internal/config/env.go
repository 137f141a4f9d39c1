package config

// This file applies DOPPELRENDER_* environment variables on top of the
// defaults. A .env file in the working directory is loaded first when present;
// variables already set in the real environment take precedence over it.

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable name read by LoadEnv.
const EnvPrefix = "DOPPELRENDER_"

// LoadEnv loads envFile (if it exists) and applies recognized variables to
// cfg. A missing envFile is not an error; a malformed one is.
func LoadEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	strVars := map[string]*string{
		"BLENDER":    &cfg.BlenderPath,
		"FFMPEG":     &cfg.FFmpegPath,
		"FFPROBE":    &cfg.FFprobePath,
		"THUMB_PATH": &cfg.ThumbPath,
		"HISTORY":    &cfg.HistoryDB,
		"LOG":        &cfg.LogFile,
		"SCENE":      &cfg.Scene,
	}
	for name, p := range strVars {
		if v, ok := lookup(name); ok {
			*p = v
		}
	}

	intVars := map[string]*int{
		"THUMB_SIZE":    &cfg.ThumbPercent,
		"THUMB_SAMPLES": &cfg.ThumbSamples,
		"WORKERS":       &cfg.Workers,
	}
	for name, p := range intVars {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		n, err := parseInt(v, EnvPrefix+name)
		if err != nil {
			return err
		}
		*p = n
	}

	if v, ok := lookup("ENGINE"); ok {
		if err := (&engineValue{&cfg.Engine}).Set(v); err != nil {
			return err
		}
	}
	if v, ok := lookup("CLONE_MODE"); ok {
		if err := (&cloneModeValue{&cfg.CloneMode}).Set(v); err != nil {
			return err
		}
	}
	return nil
}

// lookup returns the trimmed value of EnvPrefix+name when it is set and non-empty.
func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// parseInt parses a string as an integer for numeric flags and variables;
// returns a clear error on failure.
func parseInt(s, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number (got %q)", name, s)
	}
	return n, nil
}
