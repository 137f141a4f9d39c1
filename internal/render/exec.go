package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// stderrTailLines is how much renderer output an ExecError keeps.
const stderrTailLines = 20

// ExecResult holds the outcome of a single renderer invocation.
type ExecResult struct {
	Stdout string
	Stderr string
	Err    error
}

// ExecError is returned when a renderer process fails. It carries the tail
// of the process output for the error report.
type ExecError struct {
	Tool   string
	Output string
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Tail returns the last lines of the captured renderer output.
func (e *ExecError) Tail() []string {
	return Tail(e.Output, stderrTailLines)
}

// Exec runs name with args and captures both output streams. When verbose is
// set, stderr is tee'd to os.Stderr in real time.
func Exec(ctx context.Context, verbose bool, name string, args ...string) ExecResult {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if verbose {
		cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)
	} else {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	return ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Err:    err,
	}
}

// Tail returns at most n trailing non-empty lines of s.
func Tail(s string, n int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
