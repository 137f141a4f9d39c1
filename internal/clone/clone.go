// Package clone materializes duplicate frames from their rendered core.
//
// Two modes are supported. Copy writes an independent byte copy that keeps
// the core's permission bits and modification time. Symlink creates a
// relative link to the core file; linked clones share the core's lifetime,
// so editing or deleting the core changes or breaks every clone pointing at
// it.
package clone

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Mode selects how a clone is written.
type Mode int

const (
	Copy Mode = iota
	Symlink
)

func (m Mode) String() string {
	if m == Symlink {
		return "symlink"
	}
	return "copy"
}

// ParseMode maps "copy" and "symlink" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "copy":
		return Copy, nil
	case "symlink":
		return Symlink, nil
	}
	return Copy, fmt.Errorf("unknown clone mode %q", s)
}

var (
	// ErrCoreMissing is returned when the core's rendered file does not exist.
	ErrCoreMissing = errors.New("core frame output is missing")
	// ErrExists is returned in symlink mode when the clone path is already
	// taken and Force is not set.
	ErrExists = errors.New("clone path already exists")
)

// Options control how clones are written.
type Options struct {
	Mode  Mode
	Force bool // symlink mode: replace an existing file at the clone path
}

// Result describes one materialized clone.
type Result struct {
	Path  string
	Bytes int64 // bytes written; 0 for a symlink
}

// Make materializes the clone at dst from the core file at src.
func Make(src, dst string, opts Options) (Result, error) {
	fi, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrCoreMissing, src)
		}
		return Result{}, err
	}
	if !fi.Mode().IsRegular() {
		return Result{}, fmt.Errorf("core %s is not a regular file", src)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Result{}, err
	}

	if opts.Mode == Symlink {
		return link(src, dst, opts.Force)
	}
	return copyFile(src, dst, fi)
}

// link creates a symlink at dst pointing at src, relative to dst's
// directory.
func link(src, dst string, force bool) (Result, error) {
	target, err := relTarget(src, dst)
	if err != nil {
		return Result{}, err
	}
	if _, err := os.Lstat(dst); err == nil {
		if !force {
			return Result{}, fmt.Errorf("%w: %s", ErrExists, dst)
		}
		if err := os.Remove(dst); err != nil {
			return Result{}, err
		}
	}
	if err := os.Symlink(target, dst); err != nil {
		return Result{}, err
	}
	return Result{Path: dst}, nil
}

func relTarget(src, dst string) (string, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return "", err
	}
	absDir, err := filepath.Abs(filepath.Dir(dst))
	if err != nil {
		return "", err
	}
	return filepath.Rel(absDir, absSrc)
}

// copyFile writes a byte copy of src next to dst and renames it into place
// once the mode and modification time are set, so dst is either the
// complete copy or untouched. Renaming over a symlink at dst replaces the
// link itself, never the file it points to.
func copyFile(src, dst string, fi os.FileInfo) (Result, error) {
	if same, err := sameFile(fi, dst); err != nil {
		return Result{}, err
	} else if same {
		return Result{}, fmt.Errorf("clone %s is the core file itself", dst)
	}

	in, err := os.Open(src)
	if err != nil {
		return Result{}, err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return Result{}, err
	}
	n, err := copyBytes(tmp, in)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), fi.Mode().Perm())
	}
	if err == nil {
		err = os.Chtimes(tmp.Name(), fi.ModTime(), fi.ModTime())
	}
	if err == nil {
		err = os.Rename(tmp.Name(), dst)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return Result{}, err
	}
	return Result{Path: dst, Bytes: n}, nil
}

// copyBytes is io.Copy; tests swap it to fail mid-write.
var copyBytes = io.Copy

// sameFile reports whether dst is a hard link to (or the same path as) the
// core. A symlink at dst is not followed.
func sameFile(src os.FileInfo, dst string) (bool, error) {
	dfi, err := os.Lstat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return os.SameFile(src, dfi), nil
}
