// Package framepath maps frame numbers to file paths and back.
//
// A template is an ordinary path containing one run of '#' characters, e.g.
// "/renders/shot_####.png". The run length is the zero-padding width:
// frame 7 becomes "/renders/shot_0007.png". Frame numbers wider than the run
// are written in full, never truncated.
package framepath

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Placeholder is the character whose run marks the frame number.
const Placeholder = '#'

// DefaultName is joined to a base path that carries no placeholder.
const DefaultName = "####.png"

// ErrMultipleRuns is returned when a template has more than one separate
// placeholder run, which makes the frame position ambiguous.
var ErrMultipleRuns = errors.New("template has more than one # run")

// Template is a parsed frame path template. The zero value is unusable.
type Template struct {
	raw    string
	prefix string
	suffix string
	width  int // 0 when the template has no placeholder
}

// Parse parses raw into a Template. A template without any placeholder is
// valid and maps every frame to raw itself.
func Parse(raw string) (Template, error) {
	if strings.TrimSpace(raw) == "" {
		return Template{}, errors.New("template must not be empty")
	}
	start := strings.IndexRune(raw, Placeholder)
	if start < 0 {
		return Template{raw: raw, prefix: raw}, nil
	}
	end := start
	for end < len(raw) && raw[end] == Placeholder {
		end++
	}
	if strings.ContainsRune(raw[end:], Placeholder) {
		return Template{}, fmt.Errorf("%q: %w", raw, ErrMultipleRuns)
	}
	return Template{
		raw:    raw,
		prefix: raw[:start],
		suffix: raw[end:],
		width:  end - start,
	}, nil
}

// WithDefault parses raw and, when it has no placeholder, treats it as a
// directory (or file prefix ending in a separator) and joins DefaultName.
func WithDefault(raw string) (Template, error) {
	if strings.TrimSpace(raw) != "" && !strings.ContainsRune(raw, Placeholder) {
		raw = filepath.Join(raw, DefaultName)
	}
	return Parse(raw)
}

// MustParse is like Parse but panics on error. For constants and tests.
func MustParse(raw string) Template {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the template as given.
func (t Template) String() string { return t.raw }

// HasPlaceholder reports whether the template contains a frame placeholder.
func (t Template) HasPlaceholder() bool { return t.width > 0 }

// Dir returns the directory part of the template. The placeholder is allowed
// in directory components, in which case Dir still contains it.
func (t Template) Dir() string { return filepath.Dir(t.raw) }

// Path returns the path for frame n.
func (t Template) Path(n int) string {
	if t.width == 0 {
		return t.raw
	}
	return t.prefix + Pad(n, t.width) + t.suffix
}

// Frame extracts the frame number from a path produced by the template. ok
// is false when path does not fit the template or the number part is not
// all digits.
func (t Template) Frame(path string) (n int, ok bool) {
	if t.width == 0 || len(path) <= len(t.prefix)+len(t.suffix) ||
		!strings.HasPrefix(path, t.prefix) || !strings.HasSuffix(path, t.suffix) {
		return 0, false
	}
	digits := path[len(t.prefix) : len(path)-len(t.suffix)]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	return n, err == nil
}

// Glob returns a filepath.Glob pattern matching every frame path of the
// template. Glob metacharacters in the fixed parts are escaped.
func (t Template) Glob() string {
	if t.width == 0 {
		return escapeGlob(t.raw)
	}
	return escapeGlob(t.prefix) + "*" + escapeGlob(t.suffix)
}

// Printf returns the template in printf form ("%04d") for tools such as
// ffmpeg. Literal '%' characters are doubled.
func (t Template) Printf() string {
	esc := func(s string) string { return strings.ReplaceAll(s, "%", "%%") }
	if t.width == 0 {
		return esc(t.raw)
	}
	return esc(t.prefix) + "%0" + strconv.Itoa(t.width) + "d" + esc(t.suffix)
}

// Pad formats n with at least width digits, zero-filled on the left.
func Pad(n, width int) string {
	s := strconv.Itoa(n)
	if n < 0 || len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// escapeGlob quotes glob metacharacters. filepath.Match has no escaping on
// Windows, so the string is returned unchanged there.
func escapeGlob(s string) string {
	if filepath.Separator == '\\' {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
