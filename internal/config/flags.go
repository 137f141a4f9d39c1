package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into engine, range, proxy pass, clone, display, and utility.
// Negated flags (e.g. --no-color) are applied after Parse so Config defaults hold unless set.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses args (without the program name) into cfg. On --help or
// --version it prints and exits. On error it returns non-nil (e.g. unknown
// flag, missing positional args).
func ParseFlags(cfg *Config, args []string, version string) error {
	fs := flag.NewFlagSet("doppelrender", flag.ContinueOnError)
	fs.Usage = func() { printUsage(version) }

	var n negatedFlags

	defineEngineFlags(fs, cfg)
	defineRangeFlags(fs, cfg)
	defineProxyFlags(fs, cfg)
	defineCloneFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &n)
	defineUtilityFlags(fs, cfg, &n)

	if err := fs.Parse(args); err != nil {
		return err
	}

	applyNegatedFlags(cfg, &n)

	if n.showHelp {
		printUsage(version)
		os.Exit(0)
	}
	if n.showVersion {
		fmt.Fprintln(os.Stdout, "doppelrender v"+version)
		os.Exit(0)
	}

	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
type negatedFlags struct {
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineEngineFlags registers -e/--engine, --scene and the tool paths.
func defineEngineFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var(&engineValue{&cfg.Engine}, "engine", "Render engine: blender | ffmpeg | imageseq")
	fs.Var(&engineValue{&cfg.Engine}, "e", "Same as --engine")
	fs.StringVar(&cfg.Scene, "scene", cfg.Scene, "Blender scene to render (default: active scene)")
	fs.StringVar(&cfg.BlenderPath, "blender", cfg.BlenderPath, "Path to the blender executable")
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "Path to the ffmpeg executable")
	fs.StringVar(&cfg.FFprobePath, "ffprobe", cfg.FFprobePath, "Path to the ffprobe executable")
}

// defineRangeFlags registers -s/--start and -E/--end.
func defineRangeFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.FrameStart, "start", cfg.FrameStart, "First frame (default: from source)")
	fs.IntVar(&cfg.FrameStart, "s", cfg.FrameStart, "Same as --start")
	fs.IntVar(&cfg.FrameEnd, "end", cfg.FrameEnd, "Last frame, inclusive (default: from source)")
	fs.IntVar(&cfg.FrameEnd, "E", cfg.FrameEnd, "Same as --end")
}

// defineProxyFlags registers the thumbnail pass settings.
func defineProxyFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.ThumbPercent, "thumb-size", cfg.ThumbPercent, "Thumbnail resolution percentage (1-100)")
	fs.IntVar(&cfg.ThumbPercent, "t", cfg.ThumbPercent, "Same as --thumb-size")
	fs.IntVar(&cfg.ThumbSamples, "thumb-samples", cfg.ThumbSamples, "Render samples for thumbnails")
	fs.StringVar(&cfg.ThumbPath, "thumb-path", cfg.ThumbPath, "Thumbnail path template (needs ####)")
	fs.BoolVar(&cfg.KeepThumbs, "keep-thumbs", false, "Keep thumbnails after comparison")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Parallel thumbnail hashing workers")
	fs.IntVar(&cfg.Workers, "j", cfg.Workers, "Same as --workers")
}

// defineCloneFlags registers clone mode, force, dry-run and reporting.
func defineCloneFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var(&cloneModeValue{&cfg.CloneMode}, "clone-mode", "Duplicate frames: copy | symlink")
	fs.Var(&cloneModeValue{&cfg.CloneMode}, "m", "Same as --clone-mode")
	fs.BoolVar(&cfg.Force, "force", false, "Replace existing files at symlink clone paths")
	fs.BoolVar(&cfg.Force, "f", false, "Same as --force")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Compare thumbnails and print the plan; no full render")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
	fs.StringVar(&cfg.ReportFile, "report", "", "Write a JSON run report to this path")
	fs.StringVar(&cfg.HistoryDB, "history", cfg.HistoryDB, "Record runs in this SQLite database")
	fs.BoolVar(&cfg.ShowHistory, "show-history", false, "List recent runs from --history and exit")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run renderer diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
}

// defineUtilityFlags registers --version and --help (exit after printing).
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets Source and OutputTemplate from the two positional
// args unless the run only prints diagnostics or history.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly || cfg.ShowHistory {
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("need exactly source and output_template")
	}
	cfg.Source = NormalizePathArg(args[0])
	cfg.OutputTemplate = NormalizePathArg(args[1])
	return nil
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(version string) {
	const col1 = 30 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "doppelrender v" + version + " - render animations, reuse duplicate frames"},
		{"", ""},
		{"  doppelrender [OPTIONS] <source> <output_template>", ""},
		{"", ""},
		{"Engine", ""},
		{"  -e, --engine <name>", "blender | ffmpeg | imageseq (default: blender)"},
		{"  --scene <name>", "Blender scene (default: active scene)"},
		{"  --blender <path>", "blender executable (default: blender)"},
		{"  --ffmpeg <path>", "ffmpeg executable (default: ffmpeg)"},
		{"  --ffprobe <path>", "ffprobe executable (default: ffprobe)"},
		{"", ""},
		{"Frames", ""},
		{"  -s, --start <n>", "First frame (default: from source)"},
		{"  -E, --end <n>", "Last frame, inclusive (default: from source)"},
		{"", ""},
		{"Thumbnails", ""},
		{"  -t, --thumb-size <pct>", "Thumbnail resolution, 1-100 (default: 5)"},
		{"  --thumb-samples <n>", "Thumbnail render samples (default: 20)"},
		{"  --thumb-path <tmpl>", "Thumbnail template (default: <tmp>/dopthumbs/tiny####.png)"},
		{"  --keep-thumbs", "Keep thumbnails after comparison"},
		{"  -j, --workers <n>", "Parallel hashing workers (default: CPU count)"},
		{"", ""},
		{"Output & behavior", ""},
		{"  -m, --clone-mode <mode>", "copy | symlink (default: copy)"},
		{"  -f, --force", "Replace existing files at symlink clone paths"},
		{"  -d, --dry-run", "Compare thumbnails and print the plan only"},
		{"  --report <path>", "Write a JSON run report"},
		{"  --history <db>", "Record runs in a SQLite database"},
		{"  --show-history", "List recent runs from --history and exit"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "Renderer diagnostics"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
		{"", ""},
		{"", "Templates use a run of # for the zero-padded frame number; an output"},
		{"", "template without # gets ####.png appended. Environment variables"},
		{"", EnvPrefix + "* (and a .env file) set defaults for most options."},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapters so we can use enum types (Engine, CloneMode) with flag.Var.

type engineValue struct{ p *Engine }

func (e *engineValue) String() string {
	if e.p == nil {
		return ""
	}
	return string(*e.p)
}

func (e *engineValue) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blender":
		*e.p = EngineBlender
	case "ffmpeg":
		*e.p = EngineFFmpeg
	case "imageseq":
		*e.p = EngineImageSeq
	default:
		return fmt.Errorf("invalid engine %q (use 'blender', 'ffmpeg' or 'imageseq')", s)
	}
	return nil
}

type cloneModeValue struct{ p *CloneMode }

func (c *cloneModeValue) String() string {
	if c.p == nil {
		return ""
	}
	return string(*c.p)
}

func (c *cloneModeValue) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "copy":
		*c.p = CloneCopy
	case "symlink", "link":
		*c.p = CloneSymlink
	default:
		return fmt.Errorf("invalid clone mode %q (use 'copy' or 'symlink')", s)
	}
	return nil
}
