// Package planner turns doppel sets into an ordered list of render and
// clone jobs with their output paths.
//
//   - Plan, RenderJob, CloneJob (types.go)
//   - Build: one render per set core, one clone per other member, with
//     duplicate output path detection (planner.go)
//   - EstimatePlan: renders avoided and dedup ratio (estimation.go)
package planner
