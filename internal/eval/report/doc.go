// Package report writes one evaluation run's outputs to disk: the full
// evaluation.json payload, a compact summary.json, and four CSV
// breakdowns (by event type, by stream, by scenario, and the
// confidence threshold sweep), all under a
// `<prefix>_<UTC-YYYYMMDD_HHMMSS>` directory (spec §6 evaluate/
// evaluate-range output). Plot rendering (reliability diagram,
// threshold curve) is an external collaborator and is not produced
// here.
package report
