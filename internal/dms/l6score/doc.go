// Package l6score aggregates emitted events into per-trip category
// scores.
//
// Responsibilities:
//   - Map each event type to one of four categories (fatigue,
//     distraction, lane, following) and apply its penalty weight.
//   - Reduce per-category penalty totals to a 0-100 sub-score, and the
//     four sub-scores to a single overall score via gonum/stat.Mean.
//
// Key types: CategoryScores, ScoreDetails.
//
// Dependency rule: L6 may depend on L1-L5, but never on trip/jobs.
package l6score
