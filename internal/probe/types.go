package probe

import (
	"math"
	"strconv"
	"strings"
)

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	FormatName string
	Duration   float64
	Size       int64
}

// VideoStream holds the properties of a video stream that matter for
// frame addressing.
type VideoStream struct {
	Index         int
	Codec         string
	Width         int
	Height        int
	NbFrames      int     // 0 when the container does not record it
	NbReadFrames  int     // set only when probed with CountFrames
	Duration      float64 // seconds; 0 when unknown
	AvgFrameRate  string  // e.g. "24000/1001"
	IsAttachedPic bool
}

// ProbeResult is the parsed output of a single ffprobe JSON call.
// PrimaryVideo is the first non-attached-pic video stream (nil if none).
type ProbeResult struct {
	Format       FormatInfo
	PrimaryVideo *VideoStream
}

// FrameRate returns the primary video's average frame rate in frames per
// second, or 0 when unknown.
func (p *ProbeResult) FrameRate() float64 {
	if p.PrimaryVideo == nil {
		return 0
	}
	return parseRational(p.PrimaryVideo.AvgFrameRate)
}

// FrameCount returns the number of frames in the primary video. It prefers
// an actual decode count, then the container's frame count, and finally
// estimates from duration and frame rate. 0 means unknown.
func (p *ProbeResult) FrameCount() int {
	v := p.PrimaryVideo
	if v == nil {
		return 0
	}
	if v.NbReadFrames > 0 {
		return v.NbReadFrames
	}
	if v.NbFrames > 0 {
		return v.NbFrames
	}
	dur := v.Duration
	if dur <= 0 {
		dur = p.Format.Duration
	}
	fps := p.FrameRate()
	if dur <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Round(dur * fps))
}

// Resolution returns "WxH" for the primary video stream, or "unknown".
func (p *ProbeResult) Resolution() string {
	if p.PrimaryVideo == nil || p.PrimaryVideo.Width <= 0 || p.PrimaryVideo.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(p.PrimaryVideo.Width) + "x" + strconv.Itoa(p.PrimaryVideo.Height)
}

// parseRational parses ffprobe's "num/den" rates. "0/0" yields 0.
func parseRational(s string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return parseFloat(num)
	}
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return parseFloat(num) / d
}
