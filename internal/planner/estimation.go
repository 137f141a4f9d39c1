package planner

// Estimate summarizes how much rendering a plan avoids, for the dry-run
// report and the run header.
type Estimate struct {
	Frames   int // frames covered by the plan
	Renders  int // full renders still needed
	Avoided  int // renders replaced by clones
	RatioPct int // avoided as a percentage of frames
	Largest  int // size of the largest doppel set
}

// EstimatePlan computes the Estimate for p.
func EstimatePlan(p *Plan) Estimate {
	e := Estimate{
		Frames:  p.Frames(),
		Renders: len(p.Renders),
		Avoided: len(p.Clones),
	}
	if e.Frames > 0 {
		e.RatioPct = e.Avoided * 100 / e.Frames
	}
	for _, r := range p.Renders {
		e.Largest = max(e.Largest, r.Clones+1)
	}
	return e
}
