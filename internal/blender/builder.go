package blender

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/doppelrender/internal/render"
)

// rangeMarker prefixes the line the frame-range query prints on stdout.
const rangeMarker = "DOPPELRENDER_RANGE"

// Output formats by file extension. Anything else renders as PNG.
var formats = map[string]string{
	".png":  "PNG",
	".jpg":  "JPEG",
	".jpeg": "JPEG",
	".exr":  "OPEN_EXR",
	".tif":  "TIFF",
	".tiff": "TIFF",
	".bmp":  "BMP",
	".tga":  "TARGA",
}

// formatFor returns the Blender image format name for path's extension.
func formatFor(path string) string {
	if f, ok := formats[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return "PNG"
}

// buildAnimation returns the argument list (without the binary) that renders
// job.Frames to the job's output template.
func buildAnimation(file string, job render.Job) []string {
	args := preamble(file, job)
	args = append(args,
		"-o", job.Settings.OutputPath,
		"-F", formatFor(job.Settings.OutputPath),
		"-x", "1",
		"-s", strconv.Itoa(job.Frames.Start),
		"-e", strconv.Itoa(job.Frames.End),
		"-a",
	)
	return args
}

// buildStill renders job.Frame to outTemplate. Blender always inserts the
// frame number into the output name, so stills go to a '#' template and are
// renamed afterwards.
func buildStill(file string, job render.Job, outTemplate string) []string {
	args := preamble(file, job)
	args = append(args,
		"-o", outTemplate,
		"-F", formatFor(job.Settings.OutputPath),
		"-x", "1",
		"-f", strconv.Itoa(job.Frame),
	)
	return args
}

// buildRangeQuery prints the scene's frame range behind rangeMarker.
func buildRangeQuery(file, scene string) []string {
	args := []string{"-b", file}
	if scene != "" {
		args = append(args, "-S", scene)
	}
	expr := fmt.Sprintf("import bpy\ns = bpy.context.scene\nprint(%q, s.frame_start, s.frame_end, flush=True)\n", rangeMarker)
	return append(args, "--python-expr", expr)
}

// preamble is the shared head: background mode, file, scene, and the
// settings overrides expressed as a python snippet.
func preamble(file string, job render.Job) []string {
	args := []string{"-b", file}
	if job.Scene != "" {
		args = append(args, "-S", job.Scene)
	}
	if expr := settingsExpr(job.Settings); expr != "" {
		args = append(args, "--python-expr", expr)
	}
	return args
}

// settingsExpr converts the non-zero settings to python assignments on the
// active scene. The output path is passed with -o instead.
func settingsExpr(s render.Settings) string {
	var b strings.Builder
	if s.ResolutionPercent > 0 {
		fmt.Fprintf(&b, "s.render.resolution_percentage = %d\n", s.ResolutionPercent)
	}
	if s.Samples > 0 {
		fmt.Fprintf(&b, "if hasattr(s, 'cycles'):\n    s.cycles.samples = %d\n", s.Samples)
		fmt.Fprintf(&b, "if hasattr(s, 'eevee'):\n    s.eevee.taa_render_samples = %d\n", s.Samples)
	}
	if v, ok := s.AnimatedSeed.Bool(); ok {
		py := "False"
		if v {
			py = "True"
		}
		fmt.Fprintf(&b, "if hasattr(s, 'cycles'):\n    s.cycles.use_animated_seed = %s\n", py)
	}
	if b.Len() == 0 {
		return ""
	}
	return "import bpy\ns = bpy.context.scene\n" + b.String()
}

// parseRange finds the marker line in the query output.
func parseRange(stdout string) (render.Range, error) {
	for _, line := range strings.Split(stdout, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) != 3 || fields[0] != rangeMarker {
			continue
		}
		start, err1 := strconv.Atoi(fields[1])
		end, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			return render.Range{}, fmt.Errorf("bad frame range line %q", line)
		}
		return render.Range{Start: start, End: end}, nil
	}
	return render.Range{}, ErrNoRange
}
