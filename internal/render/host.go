package render

import (
	"fmt"
	"sync"
)

// Toggle is a tri-state boolean: Unset leaves the scene's own value alone.
type Toggle int8

const (
	Unset Toggle = iota
	On
	Off
)

// Bool reports the toggle as a bool and whether it is set at all.
func (t Toggle) Bool() (value, ok bool) {
	return t == On, t != Unset
}

func (t Toggle) String() string {
	switch t {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "unset"
	}
}

// Settings are the per-scene render settings the pipeline overrides.
// Zero numeric values mean "use the scene's own value".
type Settings struct {
	OutputPath        string
	ResolutionPercent int
	Samples           int
	AnimatedSeed      Toggle
}

// Host holds the render state that behaves like process-wide engine
// configuration: settings for every scene, which scene is active, and the
// current frame. Phases that need different settings go through Override,
// which restores the previous values when released.
type Host struct {
	mu     sync.Mutex
	scenes map[string]Settings
	active string
	frame  int
}

// NewHost returns a Host with one active scene holding base settings.
// An empty scene name stands for "whatever scene the file opens with".
func NewHost(scene string, base Settings) *Host {
	return &Host{
		scenes: map[string]Settings{scene: base},
		active: scene,
	}
}

// Settings returns the current settings of scene.
func (h *Host) Settings(scene string) (Settings, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.scenes[scene]
	if !ok {
		return Settings{}, fmt.Errorf("unknown scene %q", scene)
	}
	return s, nil
}

// Frame returns the current frame.
func (h *Host) Frame() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame
}

// SetFrame moves the current-frame pointer.
func (h *Host) SetFrame(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame = n
}

// Update applies fn to the active scene's settings in place.
func (h *Host) Update(fn func(*Settings)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.scenes[h.active]
	fn(&s)
	h.scenes[h.active] = s
}

// Snapshot is a saved copy of every scene's settings and the current frame.
type Snapshot struct {
	scenes map[string]Settings
	frame  int
}

// Snapshot captures the full host state.
func (h *Host) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	saved := make(map[string]Settings, len(h.scenes))
	for n, s := range h.scenes {
		saved[n] = s
	}
	return Snapshot{scenes: saved, frame: h.frame}
}

// Restore puts every scene's settings and the current frame back exactly as
// captured. Scenes added after the snapshot are left untouched.
func (h *Host) Restore(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for n, st := range s.scenes {
		h.scenes[n] = st
	}
	h.frame = s.frame
}

// Override snapshots the host, applies fn to the active scene, and returns a
// function that restores the snapshot. Callers defer the returned function so
// the restore happens on every exit path:
//
//	restore := host.Override(func(s *render.Settings) { s.Samples = 20 })
//	defer restore()
func (h *Host) Override(fn func(*Settings)) (restore func()) {
	snap := h.Snapshot()
	h.Update(fn)
	var once sync.Once
	return func() { once.Do(func() { h.Restore(snap) }) }
}

// Job builds the immutable description of a render from the current host
// state. Engines only ever see Jobs, never the Host.
func (h *Host) Job(frames Range) Job {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Job{
		Scene:    h.active,
		Settings: h.scenes[h.active],
		Frames:   frames,
		Frame:    h.frame,
	}
}
