// Package l4interpret folds raw per-frame signals into candidate event
// activations.
//
// Responsibilities:
//   - Maintain a 60 second PERCLOS ring buffer and a microsleep closed-eye
//     streak counter; these are the only state this package owns.
//   - Translate Driver Face, Lane, Seatbelt, and Scene signals into up to
//     eight candidate activations, each carrying a boolean, a confidence,
//     and a metadata map.
//
// Key types: Interpreter, Activation.
//
// Dependency rule: L4 may depend on L1-L3, but never on L5+.
package l4interpret
