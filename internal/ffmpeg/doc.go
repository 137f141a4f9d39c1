// Package ffmpeg renders frames of an existing video as a render.Engine.
//
// Frame N is the N-th decoded frame of the source (1-based). Proxies are
// produced with a select+scale filter chain in one ffmpeg call; full frames
// are extracted one at a time. Samples and the animated seed have no
// meaning for a decoded video and are ignored.
//
// Files: builder.go (argument lists), executor.go (Engine), errors.go
// (stderr classification).
package ffmpeg
