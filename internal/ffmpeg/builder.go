package ffmpeg

import (
	"fmt"
	"strconv"

	"github.com/backmassage/doppelrender/internal/framepath"
	"github.com/backmassage/doppelrender/internal/render"
)

// preamble is the shared head of every command.
func preamble(verbose bool) []string {
	args := make([]string, 0, 24)
	args = append(args, "-hide_banner", "-nostdin", "-y")

	// warning (not error) so "nothing was encoded" reaches classification.
	if verbose {
		args = append(args, "-loglevel", "info")
	} else {
		args = append(args, "-loglevel", "warning")
	}
	return args
}

// buildAnimation extracts every frame of job.Frames to the job's output
// template, numbered by frame.
func buildAnimation(src string, job render.Job, verbose bool) ([]string, error) {
	tmpl, err := framepath.Parse(job.Settings.OutputPath)
	if err != nil {
		return nil, err
	}
	if !tmpl.HasPlaceholder() {
		return nil, fmt.Errorf("output %q has no frame placeholder", tmpl)
	}

	args := preamble(verbose)
	args = append(args, "-i", src)
	args = append(args,
		"-vf", filterChain(
			fmt.Sprintf(`select='between(n\,%d\,%d)'`, job.Frames.Start-1, job.Frames.End-1),
			job.Settings.ResolutionPercent),
		"-fps_mode", "passthrough",
		"-frames:v", strconv.Itoa(job.Frames.Len()),
		"-start_number", strconv.Itoa(job.Frames.Start),
		"-f", "image2",
		tmpl.Printf(),
	)
	return args, nil
}

// buildStill extracts job.Frame to exactly job.Settings.OutputPath.
func buildStill(src string, job render.Job, verbose bool) []string {
	args := preamble(verbose)
	args = append(args, "-i", src)
	args = append(args,
		"-vf", filterChain(fmt.Sprintf(`select='eq(n\,%d)'`, job.Frame-1), job.Settings.ResolutionPercent),
		"-fps_mode", "passthrough",
		"-frames:v", "1",
		"-f", "image2",
		"-update", "1",
		job.Settings.OutputPath,
	)
	return args
}

// filterChain appends a scale filter to sel when percent reduces the size.
func filterChain(sel string, percent int) string {
	if percent <= 0 || percent >= 100 {
		return sel
	}
	return fmt.Sprintf(`%s,scale=w='max(1\,trunc(iw*%d/100))':h='max(1\,trunc(ih*%d/100))':flags=bilinear`,
		sel, percent, percent)
}
