package pipeline

import "time"

// RunStats tracks counters and phase timings across a run.
type RunStats struct {
	Frames  int `json:"frames"`
	Sets    int `json:"sets"`
	Renders int `json:"renders"`
	Clones  int `json:"clones"`

	ProxyTime  time.Duration `json:"proxy_ns"`
	HashTime   time.Duration `json:"hash_ns"`
	RenderTime time.Duration `json:"render_ns"`
	CloneTime  time.Duration `json:"clone_ns"`

	CopiedBytes int64 `json:"copied_bytes"` // written by copy clones
	LinkedBytes int64 `json:"linked_bytes"` // core bytes shared by symlink clones
}

// AvgRender is the mean wall-clock time of one full render, 0 with no renders.
func (s *RunStats) AvgRender() time.Duration {
	if s.Renders == 0 {
		return 0
	}
	return s.RenderTime / time.Duration(s.Renders)
}

// AvgClone is the mean time to materialize one clone, 0 with no clones.
func (s *RunStats) AvgClone() time.Duration {
	if s.Clones == 0 {
		return 0
	}
	return s.CloneTime / time.Duration(s.Clones)
}

// Overhead is the time spent finding duplicates: proxy render plus hashing.
func (s *RunStats) Overhead() time.Duration {
	return s.ProxyTime + s.HashTime
}

// Saved estimates the net time deduplication saved: the renders the clones
// replaced, minus the cloning itself, minus the overhead. Negative when the
// proxy pass cost more than it saved; 0 when nothing was cloned.
func (s *RunStats) Saved() time.Duration {
	if s.Clones == 0 {
		return 0
	}
	n := time.Duration(s.Clones)
	return n*s.AvgRender() - n*s.AvgClone() - s.Overhead()
}
