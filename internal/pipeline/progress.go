package pipeline

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v2"
)

// progress wraps a progress bar that only exists when stdout is a terminal.
// A nil *progress is valid and does nothing, which keeps piped and logged
// output free of carriage-return noise.
type progress struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func newProgress(w io.Writer, enabled bool, max int, desc string) *progress {
	if !enabled || max <= 0 {
		return nil
	}
	bar := progressbar.NewOptions(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &progress{bar: bar}
}

// add is called from the hashing workers.
func (p *progress) add() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.Add(1)
}

func (p *progress) describe(desc string) {
	if p == nil {
		return
	}
	p.bar.Describe(desc)
}

// done finishes the bar. It is safe to call more than once.
func (p *progress) done() {
	if p == nil {
		return
	}
	p.bar.Finish()
	p.bar.Clear()
}
