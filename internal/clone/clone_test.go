package clone

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeCore(t *testing.T, dir string) string {
	t.Helper()
	core := filepath.Join(dir, "0002.png")
	if err := os.WriteFile(core, []byte("rendered frame two"), 0o640); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(core, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return core
}

func TestMake_Copy(t *testing.T) {
	dir := t.TempDir()
	core := writeCore(t, dir)
	dst := filepath.Join(dir, "0003.png")

	res, err := Make(core, dst, Options{Mode: Copy})
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if res.Bytes != int64(len("rendered frame two")) {
		t.Errorf("Bytes = %d", res.Bytes)
	}

	assertSameBytes(t, core, dst)
	cfi, _ := os.Stat(core)
	dfi, _ := os.Lstat(dst)
	if dfi.Mode()&os.ModeSymlink != 0 {
		t.Fatal("copy mode produced a symlink")
	}
	if dfi.Mode().Perm() != cfi.Mode().Perm() {
		t.Errorf("mode = %v, want %v", dfi.Mode().Perm(), cfi.Mode().Perm())
	}
	if !dfi.ModTime().Equal(cfi.ModTime()) {
		t.Errorf("mtime = %v, want %v", dfi.ModTime(), cfi.ModTime())
	}

	// Independent copy: changing the clone leaves the core intact.
	os.WriteFile(dst, []byte("edited"), 0o640)
	if b, _ := os.ReadFile(core); string(b) != "rendered frame two" {
		t.Errorf("core changed to %q", b)
	}
}

func TestMake_CopyOverwritesRegularFile(t *testing.T) {
	dir := t.TempDir()
	core := writeCore(t, dir)
	dst := filepath.Join(dir, "0003.png")
	os.WriteFile(dst, []byte("stale render from an earlier run, longer than the core"), 0o644)

	if _, err := Make(core, dst, Options{Mode: Copy}); err != nil {
		t.Fatalf("Make: %v", err)
	}
	assertSameBytes(t, core, dst)
}

func TestMake_CopyFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	core := writeCore(t, dir)
	dst := filepath.Join(dir, "0003.png")

	diskFull := errors.New("no space left on device")
	orig := copyBytes
	copyBytes = func(w io.Writer, r io.Reader) (int64, error) {
		n, _ := io.CopyN(w, r, 5)
		return n, diskFull
	}
	t.Cleanup(func() { copyBytes = orig })

	if _, err := Make(core, dst, Options{Mode: Copy}); !errors.Is(err, diskFull) {
		t.Fatalf("Make error = %v, want %v", err, diskFull)
	}
	if _, err := os.Lstat(dst); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial clone left at %s (stat err %v)", dst, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir holds %v, want only the core", names)
	}
}

func TestMake_CopyReplacesSymlinkWithoutTouchingCore(t *testing.T) {
	dir := t.TempDir()
	core := writeCore(t, dir)
	dst := filepath.Join(dir, "0003.png")
	if err := os.Symlink("0002.png", dst); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if _, err := Make(core, dst, Options{Mode: Copy}); err != nil {
		t.Fatalf("Make: %v", err)
	}
	fi, _ := os.Lstat(dst)
	if fi.Mode()&os.ModeSymlink != 0 {
		t.Error("clone is still a symlink")
	}
	assertSameBytes(t, core, dst)
}

func TestMake_Symlink(t *testing.T) {
	dir := t.TempDir()
	core := writeCore(t, dir)
	dst := filepath.Join(dir, "0003.png")

	res, err := Make(core, dst, Options{Mode: Symlink})
	if err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if res.Bytes != 0 {
		t.Errorf("Bytes = %d, want 0 for a link", res.Bytes)
	}
	target, err := os.Readlink(dst)
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if target != "0002.png" {
		t.Errorf("link target = %q, want relative base name", target)
	}
	assertSameBytes(t, core, dst)
}

func TestMake_SymlinkAcrossDirectories(t *testing.T) {
	dir := t.TempDir()
	core := writeCore(t, dir)
	dst := filepath.Join(dir, "sub", "0003.png")

	if _, err := Make(core, dst, Options{Mode: Symlink}); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	target, _ := os.Readlink(dst)
	if target != filepath.Join("..", "0002.png") {
		t.Errorf("link target = %q", target)
	}
	assertSameBytes(t, core, dst)
}

func TestMake_SymlinkExisting(t *testing.T) {
	dir := t.TempDir()
	core := writeCore(t, dir)
	dst := filepath.Join(dir, "0003.png")
	os.WriteFile(dst, []byte("old"), 0o644)

	if _, err := Make(core, dst, Options{Mode: Symlink}); !errors.Is(err, ErrExists) {
		t.Fatalf("Make without force = %v, want ErrExists", err)
	}
	if _, err := Make(core, dst, Options{Mode: Symlink, Force: true}); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	assertSameBytes(t, core, dst)
}

func TestMake_CoreMissing(t *testing.T) {
	dir := t.TempDir()
	for _, mode := range []Mode{Copy, Symlink} {
		t.Run(mode.String(), func(t *testing.T) {
			_, err := Make(filepath.Join(dir, "0002.png"), filepath.Join(dir, "0003.png"), Options{Mode: mode})
			if !errors.Is(err, ErrCoreMissing) {
				t.Errorf("err = %v, want ErrCoreMissing", err)
			}
		})
	}
}

func TestMake_Idempotent(t *testing.T) {
	dir := t.TempDir()
	core := writeCore(t, dir)
	dst := filepath.Join(dir, "0003.png")
	for i := 0; i < 2; i++ {
		if _, err := Make(core, dst, Options{Mode: Copy}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	assertSameBytes(t, core, dst)
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("symlink"); err != nil || m != Symlink {
		t.Errorf("ParseMode(symlink) = %v, %v", m, err)
	}
	if m, err := ParseMode("copy"); err != nil || m != Copy {
		t.Errorf("ParseMode(copy) = %v, %v", m, err)
	}
	if _, err := ParseMode("hardlink"); err == nil {
		t.Error("expected error")
	}
}

func assertSameBytes(t *testing.T, a, b string) {
	t.Helper()
	ab, err := os.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	bb, err := os.ReadFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ab, bb) {
		t.Errorf("%s and %s differ", a, b)
	}
}
