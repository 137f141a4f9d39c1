package pipeline

import "fmt"

// Phase names the pipeline stage a failure happened in.
type Phase string

const (
	PhaseProxy       Phase = "proxy"
	PhaseFingerprint Phase = "fingerprint"
	PhaseGroup       Phase = "group"
	PhaseRender      Phase = "render"
	PhaseClone       Phase = "clone"
)

// NoFrame is PhaseError.Frame for failures not tied to a single frame.
// Frame 0 is a valid frame number.
const NoFrame = -1

// PhaseError is the fatal error of a run.
type PhaseError struct {
	Phase Phase
	Frame int
	Err   error
}

func (e *PhaseError) Error() string {
	if e.Frame != NoFrame {
		return fmt.Sprintf("%s frame %d: %v", e.Phase, e.Frame, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

func phaseErr(p Phase, frame int, err error) *PhaseError {
	return &PhaseError{Phase: p, Frame: frame, Err: err}
}
