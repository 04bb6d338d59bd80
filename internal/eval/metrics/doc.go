// Package metrics reduces matched events (internal/eval/matching) into
// the Evaluation Engine's reportable statistics: precision/recall/F1
// overall and sliced by event type, stream, and scenario; a confidence
// threshold sweep; and confidence calibration (ECE, Brier score,
// per-bucket accuracy) (spec §5 Evaluation Engine: core, spec §6
// evaluation.json).
package metrics
