package planner

// RenderJob is one full-quality render of a core frame.
type RenderJob struct {
	Frame  int
	Path   string
	Clones int // number of frames that will be cloned from this one
}

// CloneJob materializes one duplicate frame from its core's output.
type CloneJob struct {
	Frame    int
	Core     int
	Path     string
	CorePath string
}

// Plan holds every decision for a run. It is produced by Build and consumed
// by the render scheduler and the clone materializer.
type Plan struct {
	Renders []RenderJob // ascending by frame
	Clones  []CloneJob  // ascending by frame
}

// Frames returns the number of frames the plan covers.
func (p *Plan) Frames() int { return len(p.Renders) + len(p.Clones) }
