// Package pipeline orchestrates a deduplicated render: proxy pass,
// fingerprinting, grouping, core renders, cloning, and the summary report.
//
// Types:
//   - Report (sets, per-frame timings, RunStats, status) and PhaseError
//   - RunStats (counts, phase timings, disk usage; AvgRender, AvgClone and
//     Saved)
//
// Functions:
//   - Run(ctx, cfg, log, engine) → *Report, error
//     resolve range → remove stale proxies → proxy render → hash →
//     group → plan → dry-run exit → render cores → clone → summary →
//     optional JSON report and history row.
//
// The pipeline is sequential except for hashing, which runs on
// cfg.Workers goroutines.
package pipeline
