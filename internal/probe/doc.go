// Package probe inspects source videos with ffprobe. A single JSON call per
// file yields the primary video stream's size, rate and frame count, which
// the ffmpeg engine uses to address frames by number.
package probe
