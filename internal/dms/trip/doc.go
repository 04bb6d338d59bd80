// Package trip orchestrates one trip's analysis end to end: segment
// assembly, per-frame signal extraction, debouncing, scoring, and
// report serialization.
//
// Responsibilities:
//   - Own the single-worker-task sequencing that spec §5 requires:
//     frames are processed one at a time because they mutate shared
//     Debouncer/PERCLOS state.
//   - Translate taxonomy errors (internal/errs) into a written trip
//     report with status/limitations rather than letting the caller
//     crash on a single bad clip or missing provider.
//
// Key types: Engine, Report, FrameSource.
//
// Dependency rule: trip may depend on l1clip-l6score, but never on eval.
package trip
