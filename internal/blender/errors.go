package blender

import (
	"errors"
	"fmt"
	"regexp"
)

// Failure classes recognized in blender's output.
var (
	ErrUnreadable   = errors.New("blend file could not be read")
	ErrSceneMissing = errors.New("scene not found")
	ErrPython       = errors.New("settings script failed")
	ErrNoRange      = errors.New("frame range not reported")
	ErrNoOutput     = errors.New("blender wrote no image")
)

var (
	reUnreadable = regexp.MustCompile(
		`(?i)cannot read file|file format is not supported|not a blend file`)

	reSceneMissing = regexp.MustCompile(
		`(?i)scene ['"]?.*['"]? not found|can't find scene`)

	rePython = regexp.MustCompile(
		`Traceback \(most recent call last\)|Error: Python`)
)

// classify wraps err with the first failure class matching output. Unknown
// failures are returned unchanged.
func classify(output string, err error) error {
	switch {
	case reUnreadable.MatchString(output):
		return fmt.Errorf("%w: %v", ErrUnreadable, err)
	case reSceneMissing.MatchString(output):
		return fmt.Errorf("%w: %v", ErrSceneMissing, err)
	case rePython.MatchString(output):
		return fmt.Errorf("%w: %v", ErrPython, err)
	}
	return err
}
