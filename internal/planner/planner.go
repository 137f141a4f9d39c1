package planner

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/backmassage/doppelrender/internal/doppel"
	"github.com/backmassage/doppelrender/internal/framepath"
)

// Build produces the Plan for a list of doppel sets. Every set yields one
// render of its core; every other member yields a clone job pointing at the
// core's output path.
//
// Flow:
//  1. Validate the partition (no frame planned twice)
//  2. One RenderJob per set core, ascending
//  3. One CloneJob per remaining member, ascending by frame
//  4. Reject plans where two frames map to the same output path
func Build(sets []doppel.Set, out framepath.Template) (*Plan, error) {
	if err := doppel.Validate(sets); err != nil {
		return nil, err
	}
	if !out.HasPlaceholder() && doppel.Frames(sets) > 1 {
		return nil, fmt.Errorf("output %q has no frame placeholder", out)
	}

	plan := &Plan{
		Renders: make([]RenderJob, 0, len(sets)),
	}
	for _, s := range sets {
		corePath := out.Path(s.Core())
		plan.Renders = append(plan.Renders, RenderJob{
			Frame:  s.Core(),
			Path:   corePath,
			Clones: len(s.Clones()),
		})
		for _, n := range s.Clones() {
			plan.Clones = append(plan.Clones, CloneJob{
				Frame:    n,
				Core:     s.Core(),
				Path:     out.Path(n),
				CorePath: corePath,
			})
		}
	}
	sort.Slice(plan.Clones, func(i, j int) bool { return plan.Clones[i].Frame < plan.Clones[j].Frame })

	if err := checkPaths(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// checkPaths makes sure no two frames write the same file.
func checkPaths(p *Plan) error {
	seen := make(map[string]int, p.Frames())
	claim := func(path string, frame int) error {
		key := filepath.Clean(path)
		if other, dup := seen[key]; dup {
			return fmt.Errorf("frames %d and %d both map to %s", other, frame, path)
		}
		seen[key] = frame
		return nil
	}
	for _, r := range p.Renders {
		if err := claim(r.Path, r.Frame); err != nil {
			return err
		}
	}
	for _, c := range p.Clones {
		if err := claim(c.Path, c.Frame); err != nil {
			return err
		}
	}
	return nil
}
