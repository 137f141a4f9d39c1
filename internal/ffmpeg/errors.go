package ffmpeg

import (
	"errors"
	"fmt"
	"regexp"
)

// Failure classes recognized in ffmpeg's stderr.
var (
	ErrSourceUnreadable = errors.New("source video could not be read")
	ErrNoFrames         = errors.New("no frames were extracted")
	ErrUnknownLength    = errors.New("source frame count is unknown")
)

// Pre-compiled regexes for classifying ffmpeg stderr output.
var (
	reSourceUnreadable = regexp.MustCompile(
		`No such file or directory|Invalid data found when processing input|` +
			`moov atom not found|Permission denied`)

	reNoFrames = regexp.MustCompile(
		`Output file is empty, nothing was encoded|` +
			`Output file #0 does not contain any stream`)
)

// MatchSourceUnreadable reports whether stderr shows an unreadable input.
func MatchSourceUnreadable(stderr string) bool {
	return reSourceUnreadable.MatchString(stderr)
}

// MatchNoFrames reports whether stderr shows that nothing was written.
func MatchNoFrames(stderr string) bool {
	return reNoFrames.MatchString(stderr)
}

// classify wraps err with the failure class stderr points to.
func classify(stderr string, err error) error {
	switch {
	case MatchSourceUnreadable(stderr):
		return fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	case MatchNoFrames(stderr):
		return fmt.Errorf("%w: %v", ErrNoFrames, err)
	}
	return err
}
